package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/noah-isme/enroll-admin-api/internal/models"
	"github.com/noah-isme/enroll-admin-api/internal/repository"
	appErrors "github.com/noah-isme/enroll-admin-api/pkg/errors"
)

// StatsService is the read-only projection layer over the store.
type StatsService struct {
	store  *repository.Store
	logger *zap.Logger
}

// NewStatsService constructs StatsService.
func NewStatsService(store *repository.Store, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{store: store, logger: logger}
}

// Totals returns the dashboard counters.
func (s *StatsService) Totals(ctx context.Context) models.Totals {
	return models.Totals{
		Courses:         s.store.Courses.Len(),
		Students:        s.store.Students.Len(),
		Enrollments:     s.store.Enrollments.Len(),
		PendingRequests: s.store.Requests.Len(),
	}
}

// Occupancy aggregates seat usage, course-type counts and student
// qualification counts across the catalog.
func (s *StatsService) Occupancy(ctx context.Context) models.OccupancyStats {
	stats := models.OccupancyStats{}
	for _, course := range s.store.Courses.All() {
		stats.TotalSeats += course.MaxStudents
		if course.Type == models.CourseTypeRemedial {
			stats.RemedialCourses++
		} else {
			stats.OfficialCourses++
		}
	}
	stats.OccupiedSeats = s.store.Enrollments.Len()
	if stats.TotalSeats > 0 {
		rate := float64(stats.OccupiedSeats) / float64(stats.TotalSeats) * 100
		stats.OccupancyRate = math.Round(rate*100) / 100
	}
	for _, st := range s.store.Students.All() {
		if st.EligibleForOfficial() {
			stats.QualifiedStudents++
		} else {
			stats.UnqualifiedStudents++
		}
	}
	return stats
}

// EnrollmentCount returns the confirmed seats for a course code.
func (s *StatsService) EnrollmentCount(ctx context.Context, courseCode string) int {
	return s.store.EnrollmentCount(courseCode)
}

// AvailableStudents lists students holding no seat in the given course,
// each annotated with whether they can enroll: always for remedial
// courses, otherwise gated on the official score threshold.
func (s *StatsService) AvailableStudents(ctx context.Context, courseID string) ([]models.AvailableStudent, error) {
	course, ok := s.store.FindCourseByID(courseID)
	if !ok {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrNotFound, "course not found"),
			map[string]string{"entity": "course", "key": courseID})
	}

	available := []models.AvailableStudent{}
	for _, st := range s.store.Students.All() {
		if s.store.HasEnrollment(st.StudentID, course.Code) {
			continue
		}
		canEnroll := course.Type == models.CourseTypeRemedial || st.EligibleForOfficial()
		available = append(available, models.AvailableStudent{
			StudentSummary: st.Summary(),
			CanEnroll:      canEnroll,
		})
	}
	return available, nil
}
