package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enroll-admin-api/internal/models"
)

func TestBackupRestoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	enrollSvc := NewEnrollmentService(store, nil, nil)
	svc := NewExportService(store, enrollSvc, nil, 0, nil, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	addEnrollment(store, 1, "SV100001", "ENG_TC_101")
	addRequest(store, 2, "SV100001", "ENG_CT_A1")

	doc, err := svc.Backup(context.Background())
	require.NoError(t, err)
	assert.Len(t, doc.Courses, 2)
	assert.Len(t, doc.Students, 1)
	assert.Len(t, doc.Enrollments, 1)
	assert.Len(t, doc.PendingRequests, 1)

	// Wipe the live state, then restore the snapshot.
	fresh := newTestStore(t)
	freshEnroll := NewEnrollmentService(fresh, nil, nil)
	freshSvc := NewExportService(fresh, freshEnroll, nil, 0, nil, nil, nil)
	require.NoError(t, freshSvc.Restore(context.Background(), *doc))

	assert.Equal(t, 2, fresh.Courses.Len())
	assert.Equal(t, 1, fresh.Students.Len())
	assert.True(t, fresh.HasEnrollment("SV100001", "ENG_TC_101"))
	assert.True(t, fresh.HasPendingRequest("SV100001", "ENG_CT_A1"))
}

func TestBackupArchivesCopy(t *testing.T) {
	store := newTestStore(t)
	enrollSvc := NewEnrollmentService(store, nil, nil)
	archive := &stubArchive{}
	svc := NewExportService(store, enrollSvc, archive, time.Hour, nil, nil, nil)

	_, err := svc.Backup(context.Background())
	require.NoError(t, err)
	require.Len(t, archive.saved, 1)
	assert.True(t, strings.HasPrefix(archive.saved[0], "backup-"))
	assert.True(t, strings.HasSuffix(archive.saved[0], ".json"))
}

func TestEnrollmentsCSV(t *testing.T) {
	store := newTestStore(t)
	enrollSvc := NewEnrollmentService(store, nil, nil)
	svc := NewExportService(store, enrollSvc, nil, 0, nil, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	addEnrollment(store, 1, "SV100001", "ENG_TC_101")

	payload, err := svc.EnrollmentsCSV(context.Background(), models.EnrollmentFilter{})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "studentId")
	assert.Contains(t, lines[1], "SV100001")
	assert.Contains(t, lines[1], "ENG_TC_101")
}

func TestRosterPDF(t *testing.T) {
	store := newTestStore(t)
	enrollSvc := NewEnrollmentService(store, nil, nil)
	svc := NewExportService(store, enrollSvc, nil, 0, nil, nil, nil)

	addStudent(store, "SV100001", "Trần Thị Bình", 7.5)
	addEnrollment(store, 1, "SV100001", "ENG_TC_101")

	course, ok := store.FindCourseByCode("ENG_TC_101")
	require.True(t, ok)

	payload, filename, err := svc.RosterPDF(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, "roster-ENG_TC_101.pdf", filename)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

type stubArchive struct {
	saved []string
}

func (s *stubArchive) Save(filename string, data []byte) (string, error) {
	s.saved = append(s.saved, filename)
	return filename, nil
}

func (s *stubArchive) CleanupOlderThan(time.Duration) ([]string, error) {
	return nil, nil
}
