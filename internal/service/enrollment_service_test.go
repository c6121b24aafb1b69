package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enroll-admin-api/internal/models"
	appErrors "github.com/noah-isme/enroll-admin-api/pkg/errors"
)

func TestEnrollDirect(t *testing.T) {
	store := newTestStore(t)
	svc := NewEnrollmentService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)

	enrollment, err := svc.EnrollDirect(context.Background(), EnrollDirectRequest{
		StudentID:  "SV100001",
		CourseCode: "ENG_TC_101",
	})
	require.NoError(t, err)
	assert.Positive(t, enrollment.ID)
	assert.False(t, enrollment.EnrollDate.IsZero())
	assert.Equal(t, 1, store.EnrollmentCount("ENG_TC_101"))
}

func TestEnrollDirectCourseNotFound(t *testing.T) {
	store := newTestStore(t)
	svc := NewEnrollmentService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)

	_, err := svc.EnrollDirect(context.Background(), EnrollDirectRequest{
		StudentID:  "SV100001",
		CourseCode: "ENG_XX_000",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestEnrollDirectCapacity(t *testing.T) {
	store := newTestStore(t)
	svc := NewEnrollmentService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	fillCourse(store, "ENG_TC_101", 30)

	_, err := svc.EnrollDirect(context.Background(), EnrollDirectRequest{
		StudentID:  "SV100001",
		CourseCode: "ENG_TC_101",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCapacityExceeded))
}

func TestEnrollDirectAlreadyEnrolled(t *testing.T) {
	store := newTestStore(t)
	svc := NewEnrollmentService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	addEnrollment(store, 1, "SV100001", "ENG_TC_101")

	_, err := svc.EnrollDirect(context.Background(), EnrollDirectRequest{
		StudentID:  "SV100001",
		CourseCode: "ENG_TC_101",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyEnrolled))
}

func TestEnrollDirectEligibility(t *testing.T) {
	store := newTestStore(t)
	svc := NewEnrollmentService(store, nil, nil)

	addStudent(store, "SV100001", "Lê Văn Cường", 4.5)

	// Official course blocks a sub-threshold student without an override.
	_, err := svc.EnrollDirect(context.Background(), EnrollDirectRequest{
		StudentID:  "SV100001",
		CourseCode: "ENG_CT_A1",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrEligibilityWarning))

	// The override turns the warning into a confirmed seat.
	enrollment, err := svc.EnrollDirect(context.Background(), EnrollDirectRequest{
		StudentID:  "SV100001",
		CourseCode: "ENG_CT_A1",
		Override:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "ENG_CT_A1", enrollment.CourseCode)
}

func TestEnrollDirectRemedialIgnoresScore(t *testing.T) {
	store := newTestStore(t)
	svc := NewEnrollmentService(store, nil, nil)

	addStudent(store, "SV100001", "Lê Văn Cường", 2.0)

	_, err := svc.EnrollDirect(context.Background(), EnrollDirectRequest{
		StudentID:  "SV100001",
		CourseCode: "ENG_TC_101",
	})
	require.NoError(t, err)
}

func TestUnenrollIdempotent(t *testing.T) {
	store := newTestStore(t)
	svc := NewEnrollmentService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	addEnrollment(store, 42, "SV100001", "ENG_TC_101")

	require.NoError(t, svc.Unenroll(context.Background(), 42))
	assert.Equal(t, 0, store.EnrollmentCount("ENG_TC_101"))

	// Removing the same seat again is a no-op, not an error.
	require.NoError(t, svc.Unenroll(context.Background(), 42))
}

func TestEnrollmentListFilters(t *testing.T) {
	store := newTestStore(t)
	svc := NewEnrollmentService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	addStudent(store, "SV100002", "Lê Văn Cường", 6.0)
	addEnrollment(store, 1, "SV100001", "ENG_TC_101")
	addEnrollment(store, 2, "SV100002", "ENG_TC_101")
	addEnrollment(store, 3, "SV100001", "ENG_CT_A1")

	all := svc.List(context.Background(), models.EnrollmentFilter{})
	assert.Len(t, all, 3)

	byCourse := svc.List(context.Background(), models.EnrollmentFilter{CourseCode: "ENG_TC_101"})
	assert.Len(t, byCourse, 2)

	byName := svc.List(context.Background(), models.EnrollmentFilter{StudentText: "bình"})
	assert.Len(t, byName, 2)

	byID := svc.List(context.Background(), models.EnrollmentFilter{CourseCode: "ENG_TC_101", StudentText: "sv100002"})
	require.Len(t, byID, 1)
	assert.Equal(t, "Lê Văn Cường", byID[0].StudentName)
}

func TestEnrollmentListSkipsDanglingRows(t *testing.T) {
	store := newTestStore(t)
	svc := NewEnrollmentService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	addEnrollment(store, 1, "SV100001", "ENG_TC_101")
	addEnrollment(store, 2, "SV999999", "ENG_TC_101")

	details := svc.List(context.Background(), models.EnrollmentFilter{})
	require.Len(t, details, 1)
	assert.Equal(t, int64(1), details[0].ID)
}
