package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/enroll-admin-api/internal/models"
	"github.com/noah-isme/enroll-admin-api/internal/repository"
	"github.com/noah-isme/enroll-admin-api/internal/validation"
	appErrors "github.com/noah-isme/enroll-admin-api/pkg/errors"
)

// SubmitRequestPayload is the student-facing registration intent.
type SubmitRequestPayload struct {
	StudentID  string `json:"studentId" validate:"required,student_code"`
	CourseCode string `json:"courseCode" validate:"required"`
}

// RequestService resolves pending registration requests: approval promotes
// a request into an enrollment, rejection discards it. Both transitions
// are terminal; nothing returns to the pending state.
type RequestService struct {
	store     *repository.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequestService constructs RequestService.
func NewRequestService(store *repository.Store, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{store: store, validator: validate, logger: logger}
}

// List joins every pending request with its referents. Requests whose
// student or course has vanished are skipped, matching the console's
// lenient listing; Approve still reports them as dangling.
func (s *RequestService) List(ctx context.Context) []models.PendingRequestDetail {
	details := []models.PendingRequestDetail{}
	for _, req := range s.store.Requests.All() {
		student, okStudent := s.store.FindStudent(req.StudentID)
		course, okCourse := s.store.FindCourseByCode(req.CourseCode)
		if !okStudent || !okCourse {
			continue
		}
		details = append(details, models.PendingRequestDetail{
			PendingRequest: req,
			StudentName:    student.FullName,
			CourseName:     course.Name,
			CourseType:     course.Type,
		})
	}
	return details
}

// Submit records a registration intent coming from the student-facing
// surface. Referents must exist and the pair must hold neither a seat nor
// an unresolved request.
func (s *RequestService) Submit(ctx context.Context, payload SubmitRequestPayload) (*models.PendingRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, validation.Error(err)
	}
	if _, ok := s.store.FindStudent(payload.StudentID); !ok {
		return nil, studentNotFound(payload.StudentID)
	}
	if _, ok := s.store.FindCourseByCode(payload.CourseCode); !ok {
		return nil, courseNotFoundByCode(payload.CourseCode)
	}
	if s.store.HasEnrollment(payload.StudentID, payload.CourseCode) {
		return nil, alreadyEnrolled(payload.StudentID, payload.CourseCode)
	}
	if s.store.HasPendingRequest(payload.StudentID, payload.CourseCode) {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrDuplicateKey, "request already pending for this course"),
			map[string]string{"studentId": payload.StudentID, "courseCode": payload.CourseCode})
	}

	request := models.PendingRequest{
		ID:          s.store.NextRequestID(),
		StudentID:   payload.StudentID,
		CourseCode:  payload.CourseCode,
		RequestDate: time.Now().UTC(),
	}

	tx := s.store.Begin()
	s.store.Requests.Insert(request)
	if err := tx.Commit(ctx, repository.KeyRequests); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist request")
	}

	s.logger.Info("request submitted",
		zap.Int64("request_id", request.ID),
		zap.String("student_id", request.StudentID),
		zap.String("course_code", request.CourseCode),
	)
	return &request, nil
}

// Approve promotes a pending request into an enrollment. A full course
// fails with CAPACITY_EXCEEDED; an official course with a sub-threshold
// student fails with the advisory ELIGIBILITY_WARNING unless the caller
// supplies an explicit override.
func (s *RequestService) Approve(ctx context.Context, requestID int64, override bool) (*models.Enrollment, error) {
	request, ok := s.store.FindRequest(requestID)
	if !ok {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrNotFound, "pending request not found"),
			map[string]string{"entity": "pendingRequest", "key": fmt.Sprintf("%d", requestID)})
	}

	student, okStudent := s.store.FindStudent(request.StudentID)
	if !okStudent {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrDanglingReference, "student referenced by request no longer exists"),
			map[string]string{"entity": "student", "key": request.StudentID})
	}
	course, okCourse := s.store.FindCourseByCode(request.CourseCode)
	if !okCourse {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrDanglingReference, "course referenced by request no longer exists"),
			map[string]string{"entity": "course", "key": request.CourseCode})
	}

	if s.store.EnrollmentCount(course.Code) >= course.MaxStudents {
		return nil, capacityExceeded(course.Code)
	}
	if course.IsOfficial() && !student.EligibleForOfficial() && !override {
		return nil, eligibilityWarning(student, course.Code)
	}

	enrollment := models.Enrollment{
		ID:         s.store.NextEnrollmentID(),
		StudentID:  request.StudentID,
		CourseCode: request.CourseCode,
		EnrollDate: time.Now().UTC(),
	}

	tx := s.store.Begin()
	s.store.Enrollments.Insert(enrollment)
	s.store.Requests.DeleteWhere(func(r models.PendingRequest) bool { return r.ID == requestID })
	if err := tx.Commit(ctx, repository.KeyEnrollments, repository.KeyRequests); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist approval")
	}

	s.logger.Info("request approved",
		zap.Int64("request_id", requestID),
		zap.Int64("enrollment_id", enrollment.ID),
		zap.Bool("override", override),
	)
	return &enrollment, nil
}

// Reject discards a pending request. Rejecting an already-resolved
// request is an idempotent no-op.
func (s *RequestService) Reject(ctx context.Context, requestID int64) error {
	if _, ok := s.store.FindRequest(requestID); !ok {
		return nil
	}

	tx := s.store.Begin()
	s.store.Requests.DeleteWhere(func(r models.PendingRequest) bool { return r.ID == requestID })
	if err := tx.Commit(ctx, repository.KeyRequests); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist rejection")
	}

	s.logger.Info("request rejected", zap.Int64("request_id", requestID))
	return nil
}

func courseNotFoundByCode(code string) *appErrors.Error {
	return appErrors.WithDetails(appErrors.Clone(appErrors.ErrNotFound, "course not found"),
		map[string]string{"entity": "course", "key": code})
}

func alreadyEnrolled(studentID, courseCode string) *appErrors.Error {
	return appErrors.WithDetails(appErrors.Clone(appErrors.ErrAlreadyEnrolled, "student already enrolled in course"),
		map[string]string{"studentId": studentID, "courseCode": courseCode})
}

func capacityExceeded(courseCode string) *appErrors.Error {
	return appErrors.WithDetails(appErrors.Clone(appErrors.ErrCapacityExceeded, "course is full"),
		map[string]string{"courseCode": courseCode})
}

func eligibilityWarning(student models.Student, courseCode string) *appErrors.Error {
	return appErrors.WithDetails(
		appErrors.Clone(appErrors.ErrEligibilityWarning,
			fmt.Sprintf("student scored %.2f, below the %.1f official threshold; supply override to proceed",
				student.HighSchoolScore, models.OfficialScoreThreshold)),
		map[string]string{"studentId": student.StudentID, "courseCode": courseCode})
}
