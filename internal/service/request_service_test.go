package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/enroll-admin-api/pkg/errors"
)

func TestRequestSubmit(t *testing.T) {
	store := newTestStore(t)
	svc := NewRequestService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)

	request, err := svc.Submit(context.Background(), SubmitRequestPayload{
		StudentID:  "SV100001",
		CourseCode: "ENG_TC_101",
	})
	require.NoError(t, err)
	assert.Positive(t, request.ID)
	assert.True(t, store.HasPendingRequest("SV100001", "ENG_TC_101"))
}

func TestRequestSubmitDuplicatePending(t *testing.T) {
	store := newTestStore(t)
	svc := NewRequestService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	addRequest(store, 1, "SV100001", "ENG_TC_101")

	_, err := svc.Submit(context.Background(), SubmitRequestPayload{
		StudentID:  "SV100001",
		CourseCode: "ENG_TC_101",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateKey))
}

func TestRequestSubmitAlreadyEnrolled(t *testing.T) {
	store := newTestStore(t)
	svc := NewRequestService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	addEnrollment(store, 1, "SV100001", "ENG_TC_101")

	_, err := svc.Submit(context.Background(), SubmitRequestPayload{
		StudentID:  "SV100001",
		CourseCode: "ENG_TC_101",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyEnrolled))
}

func TestRequestApprove(t *testing.T) {
	store := newTestStore(t)
	svc := NewRequestService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	addRequest(store, 7, "SV100001", "ENG_CT_A1")

	enrollment, err := svc.Approve(context.Background(), 7, false)
	require.NoError(t, err)
	assert.Equal(t, "SV100001", enrollment.StudentID)
	assert.Equal(t, "ENG_CT_A1", enrollment.CourseCode)

	// The request is consumed by the approval.
	_, ok := store.FindRequest(7)
	assert.False(t, ok)
	assert.True(t, store.HasEnrollment("SV100001", "ENG_CT_A1"))
}

func TestRequestApproveDanglingStudent(t *testing.T) {
	store := newTestStore(t)
	svc := NewRequestService(store, nil, nil)

	addRequest(store, 7, "SV999999", "ENG_CT_A1")

	_, err := svc.Approve(context.Background(), 7, false)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDanglingReference))
	assert.Equal(t, "student", appErrors.FromError(err).Details["entity"])

	// The dangling request stays pending for explicit rejection.
	_, ok := store.FindRequest(7)
	assert.True(t, ok)
}

func TestRequestApproveDanglingCourse(t *testing.T) {
	store := newTestStore(t)
	svc := NewRequestService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	addRequest(store, 7, "SV100001", "ENG_XX_000")

	_, err := svc.Approve(context.Background(), 7, false)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDanglingReference))
	assert.Equal(t, "course", appErrors.FromError(err).Details["entity"])
}

func TestRequestApproveCapacity(t *testing.T) {
	store := newTestStore(t)
	svc := NewRequestService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	fillCourse(store, "ENG_CT_A1", 35)
	addRequest(store, 7, "SV100001", "ENG_CT_A1")

	_, err := svc.Approve(context.Background(), 7, false)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCapacityExceeded))
}

func TestRequestApproveEligibilityOverride(t *testing.T) {
	store := newTestStore(t)
	svc := NewRequestService(store, nil, nil)

	addStudent(store, "SV100001", "Lê Văn Cường", 4.5)
	addRequest(store, 7, "SV100001", "ENG_CT_A1")

	_, err := svc.Approve(context.Background(), 7, false)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrEligibilityWarning))

	enrollment, err := svc.Approve(context.Background(), 7, true)
	require.NoError(t, err)
	assert.Equal(t, "ENG_CT_A1", enrollment.CourseCode)
}

func TestRequestApproveNotFound(t *testing.T) {
	store := newTestStore(t)
	svc := NewRequestService(store, nil, nil)

	_, err := svc.Approve(context.Background(), 404, false)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestRequestRejectIdempotent(t *testing.T) {
	store := newTestStore(t)
	svc := NewRequestService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	addRequest(store, 7, "SV100001", "ENG_TC_101")

	require.NoError(t, svc.Reject(context.Background(), 7))
	_, ok := store.FindRequest(7)
	assert.False(t, ok)

	// Rejecting a request that is already gone is a no-op.
	require.NoError(t, svc.Reject(context.Background(), 7))
}

func TestRequestListSkipsDanglingRows(t *testing.T) {
	store := newTestStore(t)
	svc := NewRequestService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	addRequest(store, 1, "SV100001", "ENG_TC_101")
	addRequest(store, 2, "SV999999", "ENG_TC_101")

	details := svc.List(context.Background())
	require.Len(t, details, 1)
	assert.Equal(t, int64(1), details[0].ID)
	assert.Equal(t, "Trần Thị Bình", details[0].StudentName)
}
