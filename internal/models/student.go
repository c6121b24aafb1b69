package models

import "math"

// OfficialScoreThreshold is the minimum high-school score qualifying a
// student for official course enrollment.
const OfficialScoreThreshold = 5.0

// RoleStudent is the role mirrored into the users projection for every student.
const RoleStudent = "student"

// Student represents a learner managed by the admin console. StudentID is
// the mutable natural key referenced by enrollments and pending requests.
type Student struct {
	StudentID       string  `json:"studentId"`
	Username        string  `json:"username"`
	FullName        string  `json:"fullName"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	HighSchoolScore float64 `json:"highSchoolScore"`
	Role            string  `json:"role"`
}

// EligibleForOfficial reports whether the student qualifies for official courses.
func (s Student) EligibleForOfficial() bool {
	return s.HighSchoolScore >= OfficialScoreThreshold
}

// StudentSummary annotates a Student with the derived eligibility flag and
// hides the credential.
type StudentSummary struct {
	StudentID       string  `json:"studentId"`
	Username        string  `json:"username"`
	FullName        string  `json:"fullName"`
	Email           string  `json:"email"`
	HighSchoolScore float64 `json:"highSchoolScore"`
	Eligible        bool    `json:"eligible"`
}

// Summary strips the credential and derives eligibility.
func (s Student) Summary() StudentSummary {
	return StudentSummary{
		StudentID:       s.StudentID,
		Username:        s.Username,
		FullName:        s.FullName,
		Email:           s.Email,
		HighSchoolScore: s.HighSchoolScore,
		Eligible:        s.EligibleForOfficial(),
	}
}

// AvailableStudent is a student not yet enrolled in a given course,
// annotated with eligibility for that course's type.
type AvailableStudent struct {
	StudentSummary
	CanEnroll bool `json:"canEnroll"`
}

// RoundScore clamps a high-school score to two fractional digits. Values
// with more precision are rounded rather than rejected.
func RoundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
