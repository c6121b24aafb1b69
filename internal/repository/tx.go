package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/enroll-admin-api/internal/models"
)

// Tx wraps one engine operation in an all-or-none commit. Begin snapshots
// every collection; Commit persists the named collections in the given
// order (dependents before owners); any persist failure rolls the
// in-memory state back to the snapshot so memory never outruns the blob
// store.
type Tx struct {
	store *Store

	courses     []models.Course
	students    []models.Student
	enrollments []models.Enrollment
	requests    []models.PendingRequest
	users       []models.User
}

// Begin snapshots the current in-memory state.
func (s *Store) Begin() *Tx {
	return &Tx{
		store:       s,
		courses:     s.Courses.Snapshot(),
		students:    s.Students.Snapshot(),
		enrollments: s.Enrollments.Snapshot(),
		requests:    s.Requests.Snapshot(),
		users:       s.Users.Snapshot(),
	}
}

// Commit persists the named collections in order. On the first persist
// failure it restores the snapshot and returns the error; the caller must
// treat the whole operation as failed.
func (t *Tx) Commit(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := t.store.persist(ctx, key); err != nil {
			t.Rollback()
			t.store.logger.Error("persist failed, state rolled back",
				zap.String("collection", key), zap.Error(err))
			return err
		}
	}
	return nil
}

// Rollback restores every collection to the snapshot taken at Begin.
func (t *Tx) Rollback() {
	t.store.Courses.Replace(t.courses)
	t.store.Students.Replace(t.students)
	t.store.Enrollments.Replace(t.enrollments)
	t.store.Requests.Replace(t.requests)
	t.store.Users.Replace(t.users)
}
