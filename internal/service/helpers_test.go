package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enroll-admin-api/internal/blob"
	"github.com/noah-isme/enroll-admin-api/internal/models"
	"github.com/noah-isme/enroll-admin-api/internal/repository"
)

// newTestStore builds a memory-backed store hydrated with the default
// course catalog.
func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	store := repository.New(blob.NewMemoryStore(), nil)
	require.NoError(t, store.Load(context.Background()))
	return store
}

func addStudent(store *repository.Store, id, name string, score float64) models.Student {
	st := models.Student{
		StudentID:       id,
		Username:        "user_" + id,
		FullName:        name,
		Email:           id + "@school.edu",
		Password:        "$2a$10$abcdefghijklmnopqrstuvwxyz012345678901234567890123456",
		HighSchoolScore: score,
		Role:            models.RoleStudent,
	}
	store.Students.Insert(st)
	store.Users.Insert(models.UserFromStudent(st))
	return st
}

func addEnrollment(store *repository.Store, id int64, studentID, courseCode string) models.Enrollment {
	e := models.Enrollment{
		ID:         id,
		StudentID:  studentID,
		CourseCode: courseCode,
		EnrollDate: time.Now().UTC(),
	}
	store.Enrollments.Insert(e)
	return e
}

func addRequest(store *repository.Store, id int64, studentID, courseCode string) models.PendingRequest {
	r := models.PendingRequest{
		ID:          id,
		StudentID:   studentID,
		CourseCode:  courseCode,
		RequestDate: time.Now().UTC(),
	}
	store.Requests.Insert(r)
	return r
}

// fillCourse seats enough synthetic students to reach the course capacity.
func fillCourse(store *repository.Store, courseCode string, capacity int) {
	for i := 0; i < capacity; i++ {
		addEnrollment(store, int64(1000+i), "SV900000", courseCode)
	}
}
