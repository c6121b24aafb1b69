package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enroll-admin-api/internal/models"
	appErrors "github.com/noah-isme/enroll-admin-api/pkg/errors"
)

func TestCourseServiceCreate(t *testing.T) {
	store := newTestStore(t)
	svc := NewCourseService(store, nil, nil)

	course, err := svc.Create(context.Background(), CreateCourseRequest{
		Name:        "Tiếng Anh Giao Tiếp",
		Code:        "ENG_GT_201",
		Instructor:  "Nguyễn Văn An",
		Type:        models.CourseTypeRemedial,
		MaxStudents: 25,
	})
	require.NoError(t, err)
	require.NotNil(t, course)
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, "ENG_GT_201", course.Code)

	stored, ok := store.FindCourseByCode("ENG_GT_201")
	require.True(t, ok)
	assert.Equal(t, course.ID, stored.ID)
}

func TestCourseServiceCreateDuplicateCode(t *testing.T) {
	store := newTestStore(t)
	svc := NewCourseService(store, nil, nil)

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		Name:        "Duplicate",
		Code:        "ENG_TC_101",
		Instructor:  "Nguyễn Văn An",
		Type:        models.CourseTypeRemedial,
		MaxStudents: 20,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateKey))
	assert.Equal(t, "ENG_TC_101", appErrors.FromError(err).Details["value"])
}

func TestCourseServiceCreateCapacityOutOfRange(t *testing.T) {
	store := newTestStore(t)
	svc := NewCourseService(store, nil, nil)

	for _, max := range []int{5, 121} {
		_, err := svc.Create(context.Background(), CreateCourseRequest{
			Name:        "Bad Capacity",
			Code:        "ENG_XX_999",
			Instructor:  "Nguyễn Văn An",
			Type:        models.CourseTypeRemedial,
			MaxStudents: max,
		})
		require.Error(t, err)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	}
}

func TestCourseServiceUpdateRenameCascades(t *testing.T) {
	store := newTestStore(t)
	svc := NewCourseService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	addEnrollment(store, 1, "SV100001", "ENG_TC_101")
	addRequest(store, 2, "SV100001", "ENG_TC_101")

	course, ok := store.FindCourseByCode("ENG_TC_101")
	require.True(t, ok)

	updated, err := svc.Update(context.Background(), course.ID, UpdateCourseRequest{
		Name:        course.Name,
		Code:        "ENG_TC_102",
		Instructor:  course.Instructor,
		Type:        course.Type,
		MaxStudents: course.MaxStudents,
	})
	require.NoError(t, err)
	assert.Equal(t, "ENG_TC_102", updated.Code)

	enrollment, ok := store.FindEnrollment(1)
	require.True(t, ok)
	assert.Equal(t, "ENG_TC_102", enrollment.CourseCode)

	request, ok := store.FindRequest(2)
	require.True(t, ok)
	assert.Equal(t, "ENG_TC_102", request.CourseCode)

	_, ok = store.FindCourseByCode("ENG_TC_101")
	assert.False(t, ok)
}

func TestCourseServiceUpdateSeededInstructorAccepted(t *testing.T) {
	store := newTestStore(t)
	svc := NewCourseService(store, nil, nil)

	// Seeded courses must stay editable when their fields are passed
	// back unchanged.
	for _, code := range []string{"ENG_TC_101", "ENG_CT_A1"} {
		course, ok := store.FindCourseByCode(code)
		require.True(t, ok)

		updated, err := svc.Update(context.Background(), course.ID, UpdateCourseRequest{
			Name:        course.Name,
			Code:        course.Code,
			Instructor:  course.Instructor,
			Type:        course.Type,
			MaxStudents: course.MaxStudents,
		})
		require.NoError(t, err)
		assert.Equal(t, course.Instructor, updated.Instructor)
	}
}

func TestCourseServiceUpdateCapacityBelowEnrollment(t *testing.T) {
	store := newTestStore(t)
	svc := NewCourseService(store, nil, nil)

	fillCourse(store, "ENG_TC_101", 12)

	course, ok := store.FindCourseByCode("ENG_TC_101")
	require.True(t, ok)

	_, err := svc.Update(context.Background(), course.ID, UpdateCourseRequest{
		Name:        course.Name,
		Code:        course.Code,
		Instructor:  course.Instructor,
		Type:        course.Type,
		MaxStudents: 10,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCapacityExceeded))
	assert.Equal(t, "ENG_TC_101", appErrors.FromError(err).Details["courseCode"])

	// Shrinking down to exactly the roster size is allowed.
	updated, err := svc.Update(context.Background(), course.ID, UpdateCourseRequest{
		Name:        course.Name,
		Code:        course.Code,
		Instructor:  course.Instructor,
		Type:        course.Type,
		MaxStudents: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, updated.MaxStudents)
}

func TestCourseServiceUpdateCodeCollision(t *testing.T) {
	store := newTestStore(t)
	svc := NewCourseService(store, nil, nil)

	course, ok := store.FindCourseByCode("ENG_TC_101")
	require.True(t, ok)

	_, err := svc.Update(context.Background(), course.ID, UpdateCourseRequest{
		Name:        course.Name,
		Code:        "ENG_CT_A1",
		Instructor:  course.Instructor,
		Type:        course.Type,
		MaxStudents: course.MaxStudents,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateKey))
}

func TestCourseServiceDeleteCascades(t *testing.T) {
	store := newTestStore(t)
	svc := NewCourseService(store, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	addStudent(store, "SV100002", "Lê Văn Cường", 4.0)
	addEnrollment(store, 1, "SV100001", "ENG_TC_101")
	addEnrollment(store, 2, "SV100002", "ENG_TC_101")
	addRequest(store, 3, "SV100002", "ENG_TC_101")
	addEnrollment(store, 4, "SV100001", "ENG_CT_A1")

	course, ok := store.FindCourseByCode("ENG_TC_101")
	require.True(t, ok)

	cascade, err := svc.Delete(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, cascade.EnrollmentsRemoved)
	assert.Equal(t, 1, cascade.RequestsRemoved)

	_, ok = store.FindCourseByCode("ENG_TC_101")
	assert.False(t, ok)
	// The other course keeps its roster.
	_, ok = store.FindEnrollment(4)
	assert.True(t, ok)
}

func TestCourseServiceDeleteNotFound(t *testing.T) {
	store := newTestStore(t)
	svc := NewCourseService(store, nil, nil)

	_, err := svc.Delete(context.Background(), "missing-id")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestCourseServiceListOccupancy(t *testing.T) {
	store := newTestStore(t)
	svc := NewCourseService(store, nil, nil)

	addEnrollment(store, 1, "SV100001", "ENG_TC_101")
	addEnrollment(store, 2, "SV100002", "ENG_TC_101")

	summaries := svc.List(context.Background())
	require.Len(t, summaries, 2)
	for _, s := range summaries {
		if s.Code == "ENG_TC_101" {
			assert.Equal(t, 2, s.EnrolledCount)
			assert.False(t, s.Full)
		}
	}
}
