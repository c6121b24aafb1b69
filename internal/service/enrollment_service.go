package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/enroll-admin-api/internal/models"
	"github.com/noah-isme/enroll-admin-api/internal/repository"
	"github.com/noah-isme/enroll-admin-api/internal/validation"
	appErrors "github.com/noah-isme/enroll-admin-api/pkg/errors"
)

// EnrollDirectRequest is the admin-side direct enrollment payload.
type EnrollDirectRequest struct {
	StudentID  string `json:"studentId" validate:"required,student_code"`
	CourseCode string `json:"courseCode" validate:"required"`
	Override   bool   `json:"override"`
}

// EnrollmentService manages confirmed seats: direct admin enrollment,
// removal, and the filtered roster listings.
type EnrollmentService struct {
	store     *repository.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(store *repository.Store, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{store: store, validator: validate, logger: logger}
}

// List returns enrollments joined with student and course info, narrowed
// by exact course code and a case-insensitive student name/id substring.
// Rows whose referents have vanished are skipped, matching the console's
// lenient roster rendering.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) []models.EnrollmentDetail {
	details := []models.EnrollmentDetail{}
	for _, e := range s.store.Enrollments.All() {
		if filter.CourseCode != "" && e.CourseCode != filter.CourseCode {
			continue
		}
		student, okStudent := s.store.FindStudent(e.StudentID)
		course, okCourse := s.store.FindCourseByCode(e.CourseCode)
		if !okStudent || !okCourse {
			continue
		}
		if !repository.MatchesStudentText(student, filter.StudentText) {
			continue
		}
		details = append(details, models.EnrollmentDetail{
			Enrollment:  e,
			StudentName: student.FullName,
			CourseName:  course.Name,
			CourseType:  course.Type,
			Instructor:  course.Instructor,
		})
	}
	return details
}

// EnrollDirect registers a student into a course without a pending
// request, applying the same capacity and eligibility rules as approval.
func (s *EnrollmentService) EnrollDirect(ctx context.Context, req EnrollDirectRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err)
	}
	course, ok := s.store.FindCourseByCode(req.CourseCode)
	if !ok {
		return nil, courseNotFoundByCode(req.CourseCode)
	}
	student, ok := s.store.FindStudent(req.StudentID)
	if !ok {
		return nil, studentNotFound(req.StudentID)
	}
	if s.store.EnrollmentCount(course.Code) >= course.MaxStudents {
		return nil, capacityExceeded(course.Code)
	}
	if s.store.HasEnrollment(req.StudentID, req.CourseCode) {
		return nil, alreadyEnrolled(req.StudentID, req.CourseCode)
	}
	if course.IsOfficial() && !student.EligibleForOfficial() && !req.Override {
		return nil, eligibilityWarning(student, course.Code)
	}

	enrollment := models.Enrollment{
		ID:         s.store.NextEnrollmentID(),
		StudentID:  req.StudentID,
		CourseCode: req.CourseCode,
		EnrollDate: time.Now().UTC(),
	}

	tx := s.store.Begin()
	s.store.Enrollments.Insert(enrollment)
	if err := tx.Commit(ctx, repository.KeyEnrollments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist enrollment")
	}

	s.logger.Info("student enrolled",
		zap.Int64("enrollment_id", enrollment.ID),
		zap.String("student_id", req.StudentID),
		zap.String("course_code", req.CourseCode),
		zap.Bool("override", req.Override),
	)
	return &enrollment, nil
}

// Unenroll removes a confirmed seat. Removing an already-absent
// enrollment is an idempotent no-op.
func (s *EnrollmentService) Unenroll(ctx context.Context, enrollmentID int64) error {
	if _, ok := s.store.FindEnrollment(enrollmentID); !ok {
		return nil
	}

	tx := s.store.Begin()
	s.store.Enrollments.DeleteWhere(func(e models.Enrollment) bool { return e.ID == enrollmentID })
	if err := tx.Commit(ctx, repository.KeyEnrollments); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist unenrollment")
	}

	s.logger.Info("enrollment removed", zap.Int64("enrollment_id", enrollmentID))
	return nil
}
