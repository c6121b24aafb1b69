package models

// CourseType distinguishes remedial classes from official ones.
type CourseType string

// Possible course types.
const (
	CourseTypeRemedial CourseType = "remedial"
	CourseTypeOfficial CourseType = "official"
)

// Capacity bounds for a course.
const (
	MinCourseCapacity = 10
	MaxCourseCapacity = 120
)

// Course is an offered class with a capacity and type. The opaque ID is
// assigned at creation and never changes; the human-readable Code is the
// key dependent records reference and may be renamed, which forces a
// cascading rewrite of those records.
type Course struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Instructor  string     `json:"instructor"`
	Type        CourseType `json:"type"`
	MaxStudents int        `json:"maxStudents"`
}

// IsOfficial reports whether the eligibility threshold applies.
func (c Course) IsOfficial() bool {
	return c.Type == CourseTypeOfficial
}

// CourseSummary enriches a Course with its current occupancy.
type CourseSummary struct {
	Course
	EnrolledCount int  `json:"enrolledCount"`
	Full          bool `json:"full"`
}

// CascadeResult reports how many dependent records a delete cascade removed.
type CascadeResult struct {
	EnrollmentsRemoved int `json:"enrollmentsRemoved"`
	RequestsRemoved    int `json:"requestsRemoved"`
}
