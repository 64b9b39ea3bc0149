package artifacts

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
)

func TestTimedCache_EmptyThenSet(t *testing.T) {
	mock := clock.NewMock()
	cache := NewTimedCache[string](time.Hour, mock)

	_, fresh, ok := cache.Get()
	assert.False(t, ok)
	assert.False(t, fresh)

	cache.Set("v1", `"etag-1"`)
	data, fresh, ok := cache.Get()
	assert.True(t, ok)
	assert.True(t, fresh)
	assert.Equal(t, "v1", data)
	assert.Equal(t, `"etag-1"`, cache.ETag())
}

func TestTimedCache_StaleEntryIsKept(t *testing.T) {
	mock := clock.NewMock()
	cache := NewTimedCache[string](time.Hour, mock)
	cache.Set("v1", "")

	mock.Add(59 * time.Minute)
	_, fresh, ok := cache.Get()
	assert.True(t, ok)
	assert.True(t, fresh)

	mock.Add(2 * time.Minute)
	data, fresh, ok := cache.Get()
	assert.True(t, ok, "stale entries stay readable")
	assert.False(t, fresh)
	assert.Equal(t, "v1", data)
}

func TestTimedCache_SetRestartsTTL(t *testing.T) {
	mock := clock.NewMock()
	cache := NewTimedCache[string](time.Hour, mock)
	cache.Set("v1", "")
	mock.Add(2 * time.Hour)

	cache.Set("v2", "")
	data, fresh, ok := cache.Get()
	assert.True(t, ok)
	assert.True(t, fresh)
	assert.Equal(t, "v2", data)
	assert.Equal(t, mock.Now(), cache.Timestamp())
}

func TestTimedCache_RestoreKeepsSnapshotAge(t *testing.T) {
	mock := clock.NewMock()
	mock.Add(100 * time.Hour)
	cache := NewTimedCache[string](time.Hour, mock)

	taken := mock.Now().Add(-3 * time.Hour)
	cache.Restore("snapshot", `"etag-s"`, taken)

	data, fresh, ok := cache.Get()
	assert.True(t, ok)
	assert.False(t, fresh, "old snapshot restores as stale")
	assert.Equal(t, "snapshot", data)
	assert.Equal(t, taken, cache.Timestamp())
}

func TestTimedCache_RestoreDoesNotClobberLiveData(t *testing.T) {
	mock := clock.NewMock()
	cache := NewTimedCache[string](time.Hour, mock)
	cache.Set("live", "")

	cache.Restore("snapshot", "", mock.Now().Add(-time.Minute))

	data, _, _ := cache.Get()
	assert.Equal(t, "live", data)
}

func TestTimedCache_RefreshIsSingleFlight(t *testing.T) {
	cache := NewTimedCache[string](time.Hour, clock.NewMock())

	var calls int
	started := make(chan struct{})
	release := make(chan struct{})
	fn := func() error {
		calls++
		close(started)
		<-release
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = cache.Refresh(fn)
	}()
	<-started

	wg.Add(4)
	for i := 0; i < 4; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, cache.Refresh(fn))
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, calls)
}

func TestTimedCache_RefreshPropagatesError(t *testing.T) {
	cache := NewTimedCache[string](time.Hour, clock.NewMock())
	wantErr := errors.New("upstream down")
	assert.ErrorIs(t, cache.Refresh(func() error { return wantErr }), wantErr)
}
