package models

import "time"

// Enrollment is a confirmed seat held by a student in a course. IDs are
// creation-ordered; StudentID and CourseCode are natural-key references
// rewritten by the engine when the owning record is renamed.
type Enrollment struct {
	ID         int64     `json:"id"`
	StudentID  string    `json:"studentId"`
	CourseCode string    `json:"courseCode"`
	EnrollDate time.Time `json:"enrollDate"`
}

// EnrollmentDetail joins an Enrollment with its student and course info
// for roster listings.
type EnrollmentDetail struct {
	Enrollment
	StudentName string     `json:"studentName"`
	CourseName  string     `json:"courseName"`
	CourseType  CourseType `json:"courseType"`
	Instructor  string     `json:"instructor"`
}

// EnrollmentFilter narrows enrollment listings: exact course code plus a
// case-insensitive substring match on student name or ID.
type EnrollmentFilter struct {
	CourseCode  string
	StudentText string
}

// PendingRequest is an unapproved registration intent awaiting an admin
// decision. It is resolved by promotion to an Enrollment or by deletion.
type PendingRequest struct {
	ID          int64     `json:"id"`
	StudentID   string    `json:"studentId"`
	CourseCode  string    `json:"courseCode"`
	RequestDate time.Time `json:"requestDate"`
}

// PendingRequestDetail joins a request with its referents for listings.
type PendingRequestDetail struct {
	PendingRequest
	StudentName string     `json:"studentName"`
	CourseName  string     `json:"courseName"`
	CourseType  CourseType `json:"courseType"`
}
