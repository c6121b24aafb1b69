package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/enroll-admin-api/internal/models"
	"github.com/noah-isme/enroll-admin-api/internal/repository"
	"github.com/noah-isme/enroll-admin-api/internal/validation"
	appErrors "github.com/noah-isme/enroll-admin-api/pkg/errors"
)

// CreateCourseRequest describes course creation fields.
type CreateCourseRequest struct {
	Name        string            `json:"name" validate:"required"`
	Code        string            `json:"code" validate:"required"`
	Instructor  string            `json:"instructor" validate:"required,instructor_name"`
	Type        models.CourseType `json:"type" validate:"required,oneof=remedial official"`
	MaxStudents int               `json:"maxStudents" validate:"required,min=10,max=120"`
}

// UpdateCourseRequest describes course update fields; a changed code
// cascades to every dependent record.
type UpdateCourseRequest struct {
	Name        string            `json:"name" validate:"required"`
	Code        string            `json:"code" validate:"required"`
	Instructor  string            `json:"instructor" validate:"required,instructor_name"`
	Type        models.CourseType `json:"type" validate:"required,oneof=remedial official"`
	MaxStudents int               `json:"maxStudents" validate:"required,min=10,max=120"`
}

// CourseService orchestrates the course lifecycle, including the
// referential cascades a code rename or deletion forces.
type CourseService struct {
	store     *repository.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(store *repository.Store, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{store: store, validator: validate, logger: logger}
}

// List returns every course annotated with its occupancy.
func (s *CourseService) List(ctx context.Context) []models.CourseSummary {
	courses := s.store.Courses.All()
	summaries := make([]models.CourseSummary, 0, len(courses))
	for _, course := range courses {
		count := s.store.EnrollmentCount(course.Code)
		summaries = append(summaries, models.CourseSummary{
			Course:        course,
			EnrolledCount: count,
			Full:          count >= course.MaxStudents,
		})
	}
	return summaries
}

// Get resolves one course by its opaque id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseSummary, error) {
	course, ok := s.store.FindCourseByID(id)
	if !ok {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrNotFound, "course not found"),
			map[string]string{"entity": "course", "key": id})
	}
	count := s.store.EnrollmentCount(course.Code)
	return &models.CourseSummary{Course: course, EnrolledCount: count, Full: count >= course.MaxStudents}, nil
}

// Create validates the fields, enforces code uniqueness and persists the
// new course.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err)
	}
	if _, exists := s.store.FindCourseByCode(req.Code); exists {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrDuplicateKey, "course code already exists"),
			map[string]string{"field": "code", "value": req.Code})
	}

	course := models.Course{
		ID:          uuid.NewString(),
		Code:        req.Code,
		Name:        req.Name,
		Instructor:  req.Instructor,
		Type:        req.Type,
		MaxStudents: req.MaxStudents,
	}

	tx := s.store.Begin()
	s.store.Courses.Insert(course)
	if err := tx.Commit(ctx, repository.KeyCourses); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist course")
	}

	s.logger.Info("course created", zap.String("code", course.Code))
	return &course, nil
}

// Update applies field changes to a course. When the code changes, every
// enrollment and pending request referencing the old code is rewritten
// and persisted before the course itself.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	idx := s.store.Courses.FindIndex(func(c models.Course) bool { return c.ID == id })
	if idx < 0 {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrNotFound, "course not found"),
			map[string]string{"entity": "course", "key": id})
	}
	current := s.store.Courses.Get(idx)

	if req.Code != current.Code {
		if _, exists := s.store.FindCourseByCode(req.Code); exists {
			return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrDuplicateKey, "course code already exists"),
				map[string]string{"field": "code", "value": req.Code})
		}
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err)
	}
	// Capacity can never drop below the live roster.
	if count := s.store.EnrollmentCount(current.Code); req.MaxStudents < count {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrCapacityExceeded, "capacity below current enrollment"),
			map[string]string{"courseCode": current.Code})
	}

	tx := s.store.Begin()
	keys := []string{}

	if req.Code != current.Code {
		oldCode := current.Code
		s.store.Enrollments.Update(
			func(e models.Enrollment) bool { return e.CourseCode == oldCode },
			func(e *models.Enrollment) { e.CourseCode = req.Code },
		)
		s.store.Requests.Update(
			func(r models.PendingRequest) bool { return r.CourseCode == oldCode },
			func(r *models.PendingRequest) { r.CourseCode = req.Code },
		)
		keys = append(keys, repository.KeyEnrollments, repository.KeyRequests)
	}

	updated := current
	updated.Code = req.Code
	updated.Name = req.Name
	updated.Instructor = req.Instructor
	updated.Type = req.Type
	updated.MaxStudents = req.MaxStudents
	s.store.Courses.Set(idx, updated)
	keys = append(keys, repository.KeyCourses)

	if err := tx.Commit(ctx, keys...); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist course update")
	}

	s.logger.Info("course updated", zap.String("code", updated.Code), zap.Bool("renamed", updated.Code != current.Code))
	return &updated, nil
}

// Delete removes a course and cascades to every enrollment and pending
// request referencing its code. The cascade is unconditional once
// invoked; confirmation is the caller's concern.
func (s *CourseService) Delete(ctx context.Context, id string) (*models.CascadeResult, error) {
	course, ok := s.store.FindCourseByID(id)
	if !ok {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrNotFound, "course not found"),
			map[string]string{"entity": "course", "key": id})
	}

	tx := s.store.Begin()
	cascade := &models.CascadeResult{
		EnrollmentsRemoved: s.store.Enrollments.DeleteWhere(func(e models.Enrollment) bool { return e.CourseCode == course.Code }),
		RequestsRemoved:    s.store.Requests.DeleteWhere(func(r models.PendingRequest) bool { return r.CourseCode == course.Code }),
	}
	s.store.Courses.DeleteWhere(func(c models.Course) bool { return c.ID == id })

	if err := tx.Commit(ctx, repository.KeyEnrollments, repository.KeyRequests, repository.KeyCourses); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist course deletion")
	}

	s.logger.Info("course deleted",
		zap.String("code", course.Code),
		zap.Int("enrollments_removed", cascade.EnrollmentsRemoved),
		zap.Int("requests_removed", cascade.RequestsRemoved),
	)
	return cascade, nil
}
