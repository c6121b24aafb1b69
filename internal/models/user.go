package models

// RoleAdmin marks the administrative principal allowed into the console.
const RoleAdmin = "admin"

// User is the denormalized credential projection an external
// authentication collaborator reads. Student records are mirrored here on
// every create/update/delete; admin principals live here directly.
type User struct {
	StudentID       string  `json:"studentId,omitempty"`
	Username        string  `json:"username,omitempty"`
	FullName        string  `json:"fullName,omitempty"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	HighSchoolScore float64 `json:"highSchoolScore,omitempty"`
	Role            string  `json:"role"`
}

// UserFromStudent mirrors a student record into the users projection.
func UserFromStudent(s Student) User {
	return User{
		StudentID:       s.StudentID,
		Username:        s.Username,
		FullName:        s.FullName,
		Email:           s.Email,
		Password:        s.Password,
		HighSchoolScore: s.HighSchoolScore,
		Role:            RoleStudent,
	}
}
