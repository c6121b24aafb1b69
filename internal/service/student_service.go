package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/enroll-admin-api/internal/models"
	"github.com/noah-isme/enroll-admin-api/internal/repository"
	"github.com/noah-isme/enroll-admin-api/internal/validation"
	appErrors "github.com/noah-isme/enroll-admin-api/pkg/errors"
)

// maxIDAttempts bounds the retry loop for auto-generated student IDs.
const maxIDAttempts = 50

// CreateStudentRequest describes student creation fields. The studentId
// is generated, never supplied.
type CreateStudentRequest struct {
	Username        string  `json:"username" validate:"required,min=6,username_chars"`
	FullName        string  `json:"fullName" validate:"required,person_name"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,strong_password"`
	HighSchoolScore float64 `json:"highSchoolScore" validate:"min=0,max=10"`
}

// UpdateStudentRequest describes student update fields. A changed
// studentId cascades to every dependent record; the password is replaced
// only when supplied.
type UpdateStudentRequest struct {
	StudentID       string  `json:"studentId" validate:"required,student_code"`
	FullName        string  `json:"fullName" validate:"required,person_name"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"omitempty,strong_password"`
	HighSchoolScore float64 `json:"highSchoolScore" validate:"min=0,max=10"`
}

// StudentService orchestrates the student lifecycle and keeps the users
// projection in sync for the authentication collaborator.
type StudentService struct {
	store     *repository.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(store *repository.Store, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{store: store, validator: validate, logger: logger}
}

// List returns every student with the derived eligibility flag.
func (s *StudentService) List(ctx context.Context) []models.StudentSummary {
	students := s.store.Students.All()
	summaries := make([]models.StudentSummary, 0, len(students))
	for _, st := range students {
		summaries = append(summaries, st.Summary())
	}
	return summaries
}

// Get resolves one student by id.
func (s *StudentService) Get(ctx context.Context, studentID string) (*models.StudentSummary, error) {
	st, ok := s.store.FindStudent(studentID)
	if !ok {
		return nil, studentNotFound(studentID)
	}
	summary := st.Summary()
	return &summary, nil
}

// Create validates the fields, generates a fresh SV-prefixed id, enforces
// uniqueness of id, username and email, hashes the credential and mirrors
// the record into the users projection.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.StudentSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err)
	}

	studentID, err := s.generateStudentID()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate student id")
	}
	if _, exists := s.store.Students.Find(func(st models.Student) bool { return st.Username == req.Username }); exists {
		return nil, duplicateKey("username", req.Username, "username already in use")
	}
	if _, exists := s.store.Students.Find(func(st models.Student) bool { return st.Email == req.Email }); exists {
		return nil, duplicateKey("email", req.Email, "email already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	student := models.Student{
		StudentID:       studentID,
		Username:        req.Username,
		FullName:        req.FullName,
		Email:           req.Email,
		Password:        string(hash),
		HighSchoolScore: models.RoundScore(req.HighSchoolScore),
		Role:            models.RoleStudent,
	}

	tx := s.store.Begin()
	s.store.Students.Insert(student)
	s.store.Users.Insert(models.UserFromStudent(student))
	if err := tx.Commit(ctx, repository.KeyStudents, repository.KeyUsers); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist student")
	}

	s.logger.Info("student created", zap.String("student_id", studentID))
	summary := student.Summary()
	return &summary, nil
}

// Update applies field changes to a student. When the studentId changes,
// every enrollment and pending request referencing the old id is
// rewritten and persisted first; the users projection entry is matched by
// the old id or the new email.
func (s *StudentService) Update(ctx context.Context, originalID string, req UpdateStudentRequest) (*models.StudentSummary, error) {
	idx := s.store.Students.FindIndex(func(st models.Student) bool { return st.StudentID == originalID })
	if idx < 0 {
		return nil, studentNotFound(originalID)
	}
	current := s.store.Students.Get(idx)

	if req.StudentID != originalID {
		if _, exists := s.store.FindStudent(req.StudentID); exists {
			return nil, duplicateKey("studentId", req.StudentID, "student id already exists")
		}
	}
	if req.Email != current.Email {
		if _, exists := s.store.Students.Find(func(st models.Student) bool { return st.Email == req.Email }); exists {
			return nil, duplicateKey("email", req.Email, "email already in use")
		}
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err)
	}

	tx := s.store.Begin()
	keys := []string{}

	if req.StudentID != originalID {
		s.store.Enrollments.Update(
			func(e models.Enrollment) bool { return e.StudentID == originalID },
			func(e *models.Enrollment) { e.StudentID = req.StudentID },
		)
		s.store.Requests.Update(
			func(r models.PendingRequest) bool { return r.StudentID == originalID },
			func(r *models.PendingRequest) { r.StudentID = req.StudentID },
		)
		keys = append(keys, repository.KeyEnrollments, repository.KeyRequests)
	}

	updated := current
	updated.StudentID = req.StudentID
	updated.FullName = req.FullName
	updated.Email = req.Email
	updated.HighSchoolScore = models.RoundScore(req.HighSchoolScore)
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			tx.Rollback()
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		updated.Password = string(hash)
	}
	s.store.Students.Set(idx, updated)
	keys = append(keys, repository.KeyStudents)

	s.store.Users.Update(
		func(u models.User) bool { return u.StudentID == originalID || u.Email == updated.Email },
		func(u *models.User) { *u = models.UserFromStudent(updated) },
	)
	keys = append(keys, repository.KeyUsers)

	if err := tx.Commit(ctx, keys...); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist student update")
	}

	s.logger.Info("student updated",
		zap.String("student_id", updated.StudentID),
		zap.Bool("renamed", updated.StudentID != originalID),
	)
	summary := updated.Summary()
	return &summary, nil
}

// Delete removes a student and cascades to enrollments, pending requests
// and the users projection.
func (s *StudentService) Delete(ctx context.Context, studentID string) (*models.CascadeResult, error) {
	if _, ok := s.store.FindStudent(studentID); !ok {
		return nil, studentNotFound(studentID)
	}

	tx := s.store.Begin()
	cascade := &models.CascadeResult{
		EnrollmentsRemoved: s.store.Enrollments.DeleteWhere(func(e models.Enrollment) bool { return e.StudentID == studentID }),
		RequestsRemoved:    s.store.Requests.DeleteWhere(func(r models.PendingRequest) bool { return r.StudentID == studentID }),
	}
	s.store.Students.DeleteWhere(func(st models.Student) bool { return st.StudentID == studentID })
	s.store.Users.DeleteWhere(func(u models.User) bool { return u.StudentID == studentID })

	if err := tx.Commit(ctx, repository.KeyEnrollments, repository.KeyRequests, repository.KeyStudents, repository.KeyUsers); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist student deletion")
	}

	s.logger.Info("student deleted", zap.String("student_id", studentID))
	return cascade, nil
}

// generateStudentID allocates an SV-prefixed 6-digit id, retrying on the
// rare collision with an existing record.
func (s *StudentService) generateStudentID() (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := fmt.Sprintf("SV%06d", rand.Intn(900000)+100000)
		if _, exists := s.store.FindStudent(id); !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("exhausted %d attempts allocating a student id", maxIDAttempts)
}

func studentNotFound(studentID string) *appErrors.Error {
	return appErrors.WithDetails(appErrors.Clone(appErrors.ErrNotFound, "student not found"),
		map[string]string{"entity": "student", "key": studentID})
}

func duplicateKey(field, value, message string) *appErrors.Error {
	return appErrors.WithDetails(appErrors.Clone(appErrors.ErrDuplicateKey, message),
		map[string]string{"field": field, "value": value})
}
