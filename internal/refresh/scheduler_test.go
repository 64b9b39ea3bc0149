package refresh

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artifactd/internal/services"
	"artifactd/internal/structures"
	"artifactd/internal/testutil"
)

func schedulerConfig(filePath string) *structures.Config {
	conf := &structures.Config{}
	conf.Snapshot.FilePath = filePath
	conf.Snapshot.SaveInterval = time.Second
	conf.Artifacts.TTL = time.Hour
	conf.Artifacts.AggregateTimeout = time.Second
	return conf
}

func newScheduler(t *testing.T, svc services.ArtifactServiceInterface, path string) *Scheduler {
	t.Helper()
	s := NewScheduler(schedulerConfig(path), &testutil.MockLogger{}, svc, newTestFileManager(t, svc))
	return s.(*Scheduler)
}

func TestScheduler_RestoreSeedsService(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.bin")

	source := &snapshotService{snap: testSnapshot()}
	require.NoError(t, newTestFileManager(t, source).SaveToFile(path))

	target := &snapshotService{}
	require.NoError(t, newScheduler(t, target, path).Restore())

	require.NotNil(t, target.restored)
	assert.Equal(t, testSnapshot().Timestamp, target.restored.Timestamp)
}

func TestScheduler_RestoreMissingFile(t *testing.T) {
	target := &snapshotService{}
	err := newScheduler(t, target, filepath.Join(t.TempDir(), "absent.bin")).Restore()
	assert.NoError(t, err)
	assert.Nil(t, target.restored)
}

func TestScheduler_RestoreCorruptedFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.bin")
	require.NoError(t, os.WriteFile(path, []byte("not a zstd frame"), 0o644))

	err := newScheduler(t, &snapshotService{}, path).Restore()
	assert.Error(t, err)
}

func TestScheduler_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.bin")

	svc := &snapshotService{snap: testSnapshot()}
	require.NoError(t, newScheduler(t, svc, path).Persist())

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestScheduler_StopNilCron(t *testing.T) {
	s := newScheduler(t, &snapshotService{}, "/tmp/unused.bin")
	// Stop before Init must not panic.
	s.Stop()
}

func TestScheduler_InitAndStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifecycle.bin")

	s := newScheduler(t, &snapshotService{snap: testSnapshot()}, path)
	s.Init()
	time.Sleep(50 * time.Millisecond)
	s.Stop()
}
