package artifacts

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRecommendedWindow = 6 * 7 * 24 * time.Hour
	testSupportWindow     = 2 * 7 * 24 * time.Hour
)

func testClassifier() *Classifier {
	return NewClassifier(testRecommendedWindow, testSupportWindow)
}

func recordAt(version string, published time.Time) *ArtifactRecord {
	return &ArtifactRecord{
		Version:       version,
		Platform:      PlatformWindows,
		PublishedAt:   published,
		SupportStatus: StatusUnknown,
	}
}

func TestClassify_Empty(t *testing.T) {
	records := map[string]*ArtifactRecord{}
	testClassifier().Classify(records, time.Now())
	assert.Empty(t, records)
}

func TestClassify_SingleVersionIsRecommended(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := map[string]*ArtifactRecord{
		"6683": recordAt("6683", now.Add(-24*time.Hour)),
	}

	testClassifier().Classify(records, now)

	assert.Equal(t, StatusRecommended, records["6683"].SupportStatus)
	assert.False(t, records["6683"].EOL)
	assert.Equal(t, now.Add(testRecommendedWindow), records["6683"].SupportEnds)
}

func TestClassify_NewestIsLatestSecondIsRecommended(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := map[string]*ArtifactRecord{
		"100": recordAt("100", now.Add(-72*time.Hour)),
		"200": recordAt("200", now.Add(-48*time.Hour)),
		"300": recordAt("300", now.Add(-24*time.Hour)),
	}

	testClassifier().Classify(records, now)

	assert.Equal(t, StatusLatest, records["300"].SupportStatus)
	assert.Equal(t, StatusRecommended, records["200"].SupportStatus)
	assert.Equal(t, StatusActive, records["100"].SupportStatus)
}

func TestClassify_SortIsNumericNotLexicographic(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	// Lexicographically "9" > "10000"; numerically it is far older.
	records := map[string]*ArtifactRecord{
		"9":     recordAt("9", now.Add(-96*time.Hour)),
		"10000": recordAt("10000", now.Add(-24*time.Hour)),
		"9999":  recordAt("9999", now.Add(-48*time.Hour)),
	}

	testClassifier().Classify(records, now)

	assert.Equal(t, StatusLatest, records["10000"].SupportStatus)
	assert.Equal(t, StatusRecommended, records["9999"].SupportStatus)
}

func TestClassify_ExactlyOneRecommended(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, count := range []int{1, 2, 5, 20} {
		records := make(map[string]*ArtifactRecord)
		for i := 0; i < count; i++ {
			version := strconv.Itoa(1000 + i)
			records[version] = recordAt(version, now.Add(-time.Duration(count-i)*time.Hour))
		}

		testClassifier().Classify(records, now)

		recommended := 0
		for _, rec := range records {
			if rec.SupportStatus == StatusRecommended {
				recommended++
			}
		}
		assert.Equal(t, 1, recommended, "count=%d", count)
	}
}

// Timeline from the support policy: builds at day 0, 10 and 20, evaluated
// on day 21 with a short window under 11 days.
func TestClassify_SupportWindows(t *testing.T) {
	day0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day10 := day0.Add(10 * 24 * time.Hour)
	day20 := day0.Add(20 * 24 * time.Hour)
	now := day0.Add(21 * 24 * time.Hour)

	shortWindow := 7 * 24 * time.Hour
	longWindow := 42 * 24 * time.Hour
	c := NewClassifier(longWindow, shortWindow)

	records := map[string]*ArtifactRecord{
		"100": recordAt("100", day0),
		"200": recordAt("200", day10),
		"300": recordAt("300", day20),
	}

	c.Classify(records, now)

	// Newest: latest, window anchored at now, not yet eol.
	require.Equal(t, StatusLatest, records["300"].SupportStatus)
	assert.Equal(t, now.Add(shortWindow), records["300"].SupportEnds)
	assert.False(t, records["300"].EOL)

	// Second-newest: recommended, long window from its successor's date.
	require.Equal(t, StatusRecommended, records["200"].SupportStatus)
	assert.Equal(t, day20.Add(longWindow), records["200"].SupportEnds)
	assert.False(t, records["200"].EOL)

	// Oldest: short window from day 10 elapsed on day 17, so eol.
	require.Equal(t, StatusEOL, records["100"].SupportStatus)
	assert.Equal(t, day10.Add(shortWindow), records["100"].SupportEnds)
	assert.True(t, records["100"].EOL)
}

func TestClassify_EOLOverridesRecommended(t *testing.T) {
	day0 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	// Both builds are ancient relative to now; even the recommended slot
	// ages out once its window elapses.
	now := day0.Add(365 * 24 * time.Hour)

	records := map[string]*ArtifactRecord{
		"100": recordAt("100", day0),
		"200": recordAt("200", day0.Add(24*time.Hour)),
	}

	testClassifier().Classify(records, now)

	assert.Equal(t, StatusEOL, records["100"].SupportStatus)
	assert.True(t, records["100"].EOL)
	// Latest anchors on now, so it survives; recommended anchors on the
	// year-old successor date and does not.
	assert.Equal(t, StatusLatest, records["200"].SupportStatus)
	assert.False(t, records["200"].EOL)
}

func TestClassify_EOLFlagMatchesStatus(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := map[string]*ArtifactRecord{
		"100": recordAt("100", now.Add(-400*24*time.Hour)),
		"200": recordAt("200", now.Add(-300*24*time.Hour)),
		"300": recordAt("300", now.Add(-time.Hour)),
	}

	testClassifier().Classify(records, now)

	for version, rec := range records {
		assert.Equal(t, rec.SupportStatus == StatusEOL, rec.EOL, "version %s", version)
		if rec.EOL {
			assert.True(t, rec.SupportEnds.Before(now), "version %s", version)
		} else {
			assert.False(t, rec.SupportEnds.Before(now), "version %s", version)
		}
	}
}

func TestClassify_IsDeterministic(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	build := func() map[string]*ArtifactRecord {
		return map[string]*ArtifactRecord{
			"100": recordAt("100", now.Add(-72*time.Hour)),
			"200": recordAt("200", now.Add(-48*time.Hour)),
			"300": recordAt("300", now.Add(-24*time.Hour)),
		}
	}

	first := build()
	second := build()
	testClassifier().Classify(first, now)
	testClassifier().Classify(second, now)

	for v := range first {
		assert.Equal(t, first[v].SupportStatus, second[v].SupportStatus)
		assert.Equal(t, first[v].SupportEnds, second[v].SupportEnds)
	}
}
