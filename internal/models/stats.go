package models

// OccupancyStats aggregates seat usage across the whole catalog.
type OccupancyStats struct {
	TotalSeats          int     `json:"totalSeats"`
	OccupiedSeats       int     `json:"occupiedSeats"`
	OccupancyRate       float64 `json:"occupancyRate"`
	RemedialCourses     int     `json:"remedialCourses"`
	OfficialCourses     int     `json:"officialCourses"`
	QualifiedStudents   int     `json:"qualifiedStudents"`
	UnqualifiedStudents int     `json:"unqualifiedStudents"`
}

// Totals mirrors the dashboard counters of the admin console.
type Totals struct {
	Courses         int `json:"courses"`
	Students        int `json:"students"`
	Enrollments     int `json:"enrollments"`
	PendingRequests int `json:"pendingRequests"`
}
