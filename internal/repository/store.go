package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/enroll-admin-api/internal/blob"
	"github.com/noah-isme/enroll-admin-api/internal/models"
)

// Blob document keys, one per collection.
const (
	KeyCourses     = "courses"
	KeyStudents    = "students"
	KeyEnrollments = "enrollments"
	KeyRequests    = "pendingRequests"
	KeyUsers       = "users"
)

// Store owns the five ordered collections and their persistence against
// the blob store. One Store instance serves one admin session; there is
// no package-level shared state.
type Store struct {
	blobs  blob.Store
	logger *zap.Logger

	// OnPersist, when set, observes the duration of each collection write.
	OnPersist func(key string, d time.Duration)

	Courses     *Collection[models.Course]
	Students    *Collection[models.Student]
	Enrollments *Collection[models.Enrollment]
	Requests    *Collection[models.PendingRequest]
	Users       *Collection[models.User]
}

// New constructs an empty Store bound to a blob backend.
func New(blobs blob.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		blobs:       blobs,
		logger:      logger,
		Courses:     newCollection[models.Course](KeyCourses),
		Students:    newCollection[models.Student](KeyStudents),
		Enrollments: newCollection[models.Enrollment](KeyEnrollments),
		Requests:    newCollection[models.PendingRequest](KeyRequests),
		Users:       newCollection[models.User](KeyUsers),
	}
}

// Load hydrates every collection. A missing courses document triggers the
// one-time bootstrap seeding the two default courses; every other absent
// document simply initializes empty.
func (s *Store) Load(ctx context.Context) error {
	found, err := s.Courses.load(ctx, s.blobs)
	if err != nil {
		return err
	}
	if !found {
		for _, course := range seedCourses() {
			s.Courses.Insert(course)
		}
		if err := s.persist(ctx, KeyCourses); err != nil {
			return err
		}
		s.logger.Info("seeded default courses", zap.Int("count", s.Courses.Len()))
	}

	if _, err := s.Students.load(ctx, s.blobs); err != nil {
		return err
	}
	if _, err := s.Enrollments.load(ctx, s.blobs); err != nil {
		return err
	}
	if _, err := s.Requests.load(ctx, s.blobs); err != nil {
		return err
	}
	if _, err := s.Users.load(ctx, s.blobs); err != nil {
		return err
	}

	s.logger.Info("store loaded",
		zap.Int("courses", s.Courses.Len()),
		zap.Int("students", s.Students.Len()),
		zap.Int("enrollments", s.Enrollments.Len()),
		zap.Int("pending_requests", s.Requests.Len()),
	)
	return nil
}

func seedCourses() []models.Course {
	return []models.Course{
		{
			ID:          uuid.NewString(),
			Code:        "ENG_TC_101",
			Name:        "Tiếng Anh Tăng Cường Cơ Bản",
			Instructor:  "Ms Johnson",
			Type:        models.CourseTypeRemedial,
			MaxStudents: 30,
		},
		{
			ID:          uuid.NewString(),
			Code:        "ENG_CT_A1",
			Name:        "Tiếng Anh Chính Thức A1",
			Instructor:  "Mr Smith",
			Type:        models.CourseTypeOfficial,
			MaxStudents: 35,
		},
	}
}

func (s *Store) persist(ctx context.Context, key string) error {
	start := time.Now()
	var err error
	switch key {
	case KeyCourses:
		err = s.Courses.persist(ctx, s.blobs)
	case KeyStudents:
		err = s.Students.persist(ctx, s.blobs)
	case KeyEnrollments:
		err = s.Enrollments.persist(ctx, s.blobs)
	case KeyRequests:
		err = s.Requests.persist(ctx, s.blobs)
	case KeyUsers:
		err = s.Users.persist(ctx, s.blobs)
	default:
		err = fmt.Errorf("unknown collection %q", key)
	}
	if err == nil && s.OnPersist != nil {
		s.OnPersist(key, time.Since(start))
	}
	return err
}

// FindCourseByID resolves a course by its opaque identifier.
func (s *Store) FindCourseByID(id string) (models.Course, bool) {
	return s.Courses.Find(func(c models.Course) bool { return c.ID == id })
}

// FindCourseByCode resolves a course by its unique code.
func (s *Store) FindCourseByCode(code string) (models.Course, bool) {
	return s.Courses.Find(func(c models.Course) bool { return c.Code == code })
}

// FindStudent resolves a student by its natural key.
func (s *Store) FindStudent(studentID string) (models.Student, bool) {
	return s.Students.Find(func(st models.Student) bool { return st.StudentID == studentID })
}

// FindEnrollment resolves an enrollment by id.
func (s *Store) FindEnrollment(id int64) (models.Enrollment, bool) {
	return s.Enrollments.Find(func(e models.Enrollment) bool { return e.ID == id })
}

// FindRequest resolves a pending request by id.
func (s *Store) FindRequest(id int64) (models.PendingRequest, bool) {
	return s.Requests.Find(func(r models.PendingRequest) bool { return r.ID == id })
}

// EnrollmentCount returns the confirmed seats held for a course code.
func (s *Store) EnrollmentCount(courseCode string) int {
	return s.Enrollments.Count(func(e models.Enrollment) bool { return e.CourseCode == courseCode })
}

// HasEnrollment reports whether the (student, course) pair already holds a seat.
func (s *Store) HasEnrollment(studentID, courseCode string) bool {
	_, ok := s.Enrollments.Find(func(e models.Enrollment) bool {
		return e.StudentID == studentID && e.CourseCode == courseCode
	})
	return ok
}

// HasPendingRequest reports whether the pair already has an unresolved request.
func (s *Store) HasPendingRequest(studentID, courseCode string) bool {
	_, ok := s.Requests.Find(func(r models.PendingRequest) bool {
		return r.StudentID == studentID && r.CourseCode == courseCode
	})
	return ok
}

// NextEnrollmentID returns a fresh creation-ordered identifier: the
// current unix-milli clock, bumped past the newest existing id so the
// ordering survives same-millisecond inserts.
func (s *Store) NextEnrollmentID() int64 {
	var last int64
	for _, e := range s.Enrollments.All() {
		if e.ID > last {
			last = e.ID
		}
	}
	return nextOrderedID(last)
}

// NextRequestID returns a fresh identifier for a pending request.
func (s *Store) NextRequestID() int64 {
	var last int64
	for _, r := range s.Requests.All() {
		if r.ID > last {
			last = r.ID
		}
	}
	return nextOrderedID(last)
}

func nextOrderedID(last int64) int64 {
	id := time.Now().UnixMilli()
	if id <= last {
		id = last + 1
	}
	return id
}

// MatchesStudentText implements the roster filter: case-insensitive
// substring match on student full name or id.
func MatchesStudentText(st models.Student, text string) bool {
	if text == "" {
		return true
	}
	needle := strings.ToLower(text)
	return strings.Contains(strings.ToLower(st.FullName), needle) ||
		strings.Contains(strings.ToLower(st.StudentID), needle)
}
