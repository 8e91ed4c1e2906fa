package cleanup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"real-estate-site/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRefs struct {
	referenced []string
	logged     []string
	failList   bool
}

func (m *memRefs) ReferencedImageFiles() ([]string, error) {
	if m.failList {
		return nil, errors.New("database unavailable")
	}
	return m.referenced, nil
}

func (m *memRefs) LogFileDeletion(fileName string) error {
	m.logged = append(m.logged, fileName)
	return nil
}

func (m *memRefs) RecentDeleteLogs(limit int) ([]models.DeleteLog, error) {
	logs := make([]models.DeleteLog, 0, len(m.logged))
	for _, name := range m.logged {
		logs = append(logs, models.DeleteLog{FileName: name, Reason: models.DeleteReasonOrphanSweep})
	}
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

// writeAgedFile creates a file whose mtime is set back by age.
func writeAgedFile(t *testing.T, dir, name string, age time.Duration) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, old, old))
}

func TestFindOrphanedFiles(t *testing.T) {
	dir := t.TempDir()
	writeAgedFile(t, dir, "referenced.jpg", 2*time.Hour)
	writeAgedFile(t, dir, "orphan.jpg", 2*time.Hour)
	writeAgedFile(t, dir, "fresh-orphan.jpg", time.Minute)

	refs := &memRefs{referenced: []string{"referenced.jpg"}}
	svc := NewService(refs, dir)

	orphans, err := svc.FindOrphanedFiles(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan.jpg"}, orphans,
		"referenced files and files inside the grace period must survive")
}

func TestFindOrphanedFilesMissingDirectory(t *testing.T) {
	refs := &memRefs{}
	svc := NewService(refs, filepath.Join(t.TempDir(), "does-not-exist"))

	orphans, err := svc.FindOrphanedFiles(time.Hour)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestSweepDeletesOrphansAndLogs(t *testing.T) {
	dir := t.TempDir()
	writeAgedFile(t, dir, "keep.jpg", 2*time.Hour)
	writeAgedFile(t, dir, "orphan1.jpg", 2*time.Hour)
	writeAgedFile(t, dir, "orphan2.jpg", 2*time.Hour)

	refs := &memRefs{referenced: []string{"keep.jpg"}}
	svc := NewService(refs, dir)

	result, err := svc.Sweep(DefaultSweepConfig())
	require.NoError(t, err)

	assert.Equal(t, 2, result.TargetCount)
	assert.Equal(t, 2, result.DeletedCount)
	assert.Zero(t, result.ErrorCount)
	assert.ElementsMatch(t, []string{"orphan1.jpg", "orphan2.jpg"}, result.DeletedFiles)
	assert.ElementsMatch(t, []string{"orphan1.jpg", "orphan2.jpg"}, refs.logged)

	_, err = os.Stat(filepath.Join(dir, "keep.jpg"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "orphan1.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestSweepDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	writeAgedFile(t, dir, "orphan.jpg", 2*time.Hour)

	refs := &memRefs{}
	svc := NewService(refs, dir)

	config := DefaultSweepConfig()
	config.DryRun = true
	result, err := svc.Sweep(config)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.DeletedCount, "dry-run reports what it would delete")
	assert.Empty(t, refs.logged)

	_, err = os.Stat(filepath.Join(dir, "orphan.jpg"))
	assert.NoError(t, err, "dry-run must not delete files")
}

func TestSweepSafetyLimit(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		writeAgedFile(t, dir, name, 2*time.Hour)
	}

	svc := NewService(&memRefs{}, dir)

	config := DefaultSweepConfig()
	config.MaxDeletionCount = 2
	_, err := svc.Sweep(config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "safety check failed")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "an aborted sweep must not delete anything")
}

func TestSweepEmptyDirectory(t *testing.T) {
	svc := NewService(&memRefs{}, t.TempDir())

	result, err := svc.Sweep(DefaultSweepConfig())
	require.NoError(t, err)
	assert.Zero(t, result.TargetCount)
	assert.Zero(t, result.DeletedCount)
}

func TestSweepFailsWhenReferencesUnavailable(t *testing.T) {
	dir := t.TempDir()
	writeAgedFile(t, dir, "orphan.jpg", 2*time.Hour)

	svc := NewService(&memRefs{failList: true}, dir)

	_, err := svc.Sweep(DefaultSweepConfig())
	require.Error(t, err, "without the reference set nothing may be deleted")

	_, err = os.Stat(filepath.Join(dir, "orphan.jpg"))
	assert.NoError(t, err)
}
