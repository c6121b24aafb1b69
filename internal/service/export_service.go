package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/enroll-admin-api/internal/models"
	"github.com/noah-isme/enroll-admin-api/internal/repository"
	"github.com/noah-isme/enroll-admin-api/pkg/export"
	appErrors "github.com/noah-isme/enroll-admin-api/pkg/errors"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type archiveStorage interface {
	Save(filename string, data []byte) (string, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type rosterSource interface {
	List(ctx context.Context, filter models.EnrollmentFilter) []models.EnrollmentDetail
}

// BackupDocument is the full-state export: every collection,
// field-for-field, so restore reproduces the exact store.
type BackupDocument struct {
	ExportedAt      time.Time               `json:"exportedAt"`
	Courses         []models.Course         `json:"courses"`
	Students        []models.Student        `json:"students"`
	Enrollments     []models.Enrollment     `json:"enrollments"`
	PendingRequests []models.PendingRequest `json:"pendingRequests"`
	Users           []models.User           `json:"users"`
}

// ExportService builds backups, CSV rosters and PDF rosters, and restores
// full-state backups through the store's persist path.
type ExportService struct {
	store      *repository.Store
	rosters    rosterSource
	csv        csvRenderer
	pdf        pdfRenderer
	archive    archiveStorage
	archiveTTL time.Duration
	logger     *zap.Logger
}

// NewExportService constructs an ExportService. The archive is optional;
// without it backups are returned but not kept on disk.
func NewExportService(store *repository.Store, rosters rosterSource, archive archiveStorage, archiveTTL time.Duration, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if archiveTTL <= 0 {
		archiveTTL = 24 * time.Hour
	}
	return &ExportService{
		store:      store,
		rosters:    rosters,
		csv:        csv,
		pdf:        pdf,
		archive:    archive,
		archiveTTL: archiveTTL,
		logger:     logger,
	}
}

// Backup snapshots every collection. A copy is archived on disk when an
// archive storage is configured.
func (s *ExportService) Backup(ctx context.Context) (*BackupDocument, error) {
	doc := &BackupDocument{
		ExportedAt:      time.Now().UTC(),
		Courses:         s.store.Courses.All(),
		Students:        s.store.Students.All(),
		Enrollments:     s.store.Enrollments.All(),
		PendingRequests: s.store.Requests.All(),
		Users:           s.store.Users.All(),
	}

	if s.archive != nil {
		payload, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode backup")
		}
		name := fmt.Sprintf("backup-%s.json", doc.ExportedAt.Format("20060102-150405"))
		if _, err := s.archive.Save(name, payload); err != nil {
			s.logger.Warn("failed to archive backup copy", zap.Error(err))
		}
	}

	return doc, nil
}

// Restore replaces every collection with the backup content and persists
// all five documents. This is a trusted bulk-load path: records bypass
// per-field validation, so backups must come from a Backup call.
func (s *ExportService) Restore(ctx context.Context, doc BackupDocument) error {
	tx := s.store.Begin()
	s.store.Courses.Replace(doc.Courses)
	s.store.Students.Replace(doc.Students)
	s.store.Enrollments.Replace(doc.Enrollments)
	s.store.Requests.Replace(doc.PendingRequests)
	s.store.Users.Replace(doc.Users)

	if err := tx.Commit(ctx,
		repository.KeyEnrollments,
		repository.KeyRequests,
		repository.KeyCourses,
		repository.KeyStudents,
		repository.KeyUsers,
	); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist restored state")
	}

	s.logger.Info("state restored from backup",
		zap.Int("courses", len(doc.Courses)),
		zap.Int("students", len(doc.Students)),
		zap.Int("enrollments", len(doc.Enrollments)),
	)
	return nil
}

// EnrollmentsCSV renders the filtered roster as CSV.
func (s *ExportService) EnrollmentsCSV(ctx context.Context, filter models.EnrollmentFilter) ([]byte, error) {
	details := s.rosters.List(ctx, filter)
	dataset := export.Dataset{
		Headers: []string{"enrollmentId", "studentId", "studentName", "courseCode", "courseName", "instructor", "enrollDate"},
	}
	for _, d := range details {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"enrollmentId": strconv.FormatInt(d.ID, 10),
			"studentId":    d.StudentID,
			"studentName":  d.StudentName,
			"courseCode":   d.CourseCode,
			"courseName":   d.CourseName,
			"instructor":   d.Instructor,
			"enrollDate":   d.EnrollDate.Format(time.RFC3339),
		})
	}
	return s.csv.Render(dataset)
}

// RosterPDF renders the roster of one course as a PDF titled after it.
func (s *ExportService) RosterPDF(ctx context.Context, courseID string) ([]byte, string, error) {
	course, ok := s.store.FindCourseByID(courseID)
	if !ok {
		return nil, "", appErrors.WithDetails(appErrors.Clone(appErrors.ErrNotFound, "course not found"),
			map[string]string{"entity": "course", "key": courseID})
	}
	details := s.rosters.List(ctx, models.EnrollmentFilter{CourseCode: course.Code})
	dataset := export.Dataset{
		Headers: []string{"studentId", "studentName", "enrollDate"},
	}
	for _, d := range details {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"studentId":   d.StudentID,
			"studentName": d.StudentName,
			"enrollDate":  d.EnrollDate.Format("2006-01-02"),
		})
	}
	payload, err := s.pdf.Render(dataset, course.Name)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	return payload, fmt.Sprintf("roster-%s.pdf", course.Code), nil
}

// CleanupArchives drops archived backup files older than the TTL.
func (s *ExportService) CleanupArchives() {
	if s.archive == nil {
		return
	}
	deleted, err := s.archive.CleanupOlderThan(s.archiveTTL)
	if err != nil {
		s.logger.Warn("archive cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("archived backups cleaned", zap.Int("deleted", len(deleted)))
	}
}
