package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"calmme-backend-go/internal/models"
)

func newMoodServiceForTest(t *testing.T, now time.Time) (*moodService, *fakeMoodRepo) {
	t.Helper()
	repo := newFakeMoodRepo()
	svc := NewMoodService(repo, zap.NewNop()).(*moodService)
	svc.now = func() time.Time { return now }
	return svc, repo
}

func TestSaveMoodCreatesThenUpdatesSameDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	svc, repo := newMoodServiceForTest(t, now)
	ctx := context.Background()

	action, err := svc.SaveMood(ctx, "user-1", "happy", "Happy")
	require.NoError(t, err)
	assert.Equal(t, "created", action)

	// Later the same day: the entry is overwritten, not duplicated.
	svc.now = func() time.Time { return now.Add(8 * time.Hour) }
	action, err = svc.SaveMood(ctx, "user-1", "sad", "Sad")
	require.NoError(t, err)
	assert.Equal(t, "updated", action)

	require.Len(t, repo.entries, 1)
	assert.Equal(t, "sad", repo.entries[0].MoodID)
	assert.Equal(t, "Sad", repo.entries[0].MoodLabel)
}

func TestSaveMoodNewDayCreatesNewEntry(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 50, 0, 0, time.UTC)
	svc, repo := newMoodServiceForTest(t, now)
	ctx := context.Background()

	_, err := svc.SaveMood(ctx, "user-1", "calm", "Calm")
	require.NoError(t, err)

	// Ten minutes later it is a new UTC day.
	svc.now = func() time.Time { return now.Add(10 * time.Minute) }
	action, err := svc.SaveMood(ctx, "user-1", "worried", "Worried")
	require.NoError(t, err)
	assert.Equal(t, "created", action)
	assert.Len(t, repo.entries, 2)
}

func TestSaveMoodRejectsUnknownMood(t *testing.T) {
	svc, _ := newMoodServiceForTest(t, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	_, err := svc.SaveMood(context.Background(), "user-1", "ecstatic", "Ecstatic")
	assert.ErrorIs(t, err, ErrInvalidMood)
}

func TestGetLast7DaysMoodReturnsExactlySevenSlots(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, _ := newMoodServiceForTest(t, now)
	ctx := context.Background()

	// Entries today and three days ago.
	_, err := svc.SaveMood(ctx, "user-1", "happy", "Happy")
	require.NoError(t, err)
	svc.now = func() time.Time { return now.AddDate(0, 0, -3) }
	_, err = svc.SaveMood(ctx, "user-1", "bored", "Bored")
	require.NoError(t, err)
	svc.now = func() time.Time { return now }

	days, err := svc.GetLast7DaysMood(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, days, 7)

	// Oldest first, ending today.
	assert.Equal(t, now.AddDate(0, 0, -6).Day(), days[0].DayNumber)
	assert.Equal(t, now.Day(), days[6].DayNumber)

	require.NotNil(t, days[6].Mood)
	assert.Equal(t, "happy", days[6].Mood.MoodID)
	require.NotNil(t, days[3].Mood)
	assert.Equal(t, "bored", days[3].Mood.MoodID)
	assert.Nil(t, days[0].Mood)
	assert.Nil(t, days[5].Mood)
}

func TestCalculateStreak(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, _ := newMoodServiceForTest(t, now)
	ctx := context.Background()

	// Three consecutive days ending today, plus a detached entry further back.
	for _, daysAgo := range []int{0, 1, 2, 5} {
		svc.now = func() time.Time { return now.AddDate(0, 0, -daysAgo) }
		_, err := svc.SaveMood(ctx, "user-1", "calm", "Calm")
		require.NoError(t, err)
	}
	svc.now = func() time.Time { return now }

	streak, err := svc.CalculateStreak(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, streak)
}

func TestCalculateStreakZeroWhenTodayEmpty(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, _ := newMoodServiceForTest(t, now)
	ctx := context.Background()

	svc.now = func() time.Time { return now.AddDate(0, 0, -1) }
	_, err := svc.SaveMood(ctx, "user-1", "calm", "Calm")
	require.NoError(t, err)
	svc.now = func() time.Time { return now }

	streak, err := svc.CalculateStreak(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestGetMoodStatsOmitsZeroCountsAndRounds(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, _ := newMoodServiceForTest(t, now)
	ctx := context.Background()

	// Two happy days and one sad day inside the week window.
	moods := []struct {
		daysAgo int
		mood    string
	}{
		{0, "happy"},
		{1, "happy"},
		{2, "sad"},
	}
	for _, m := range moods {
		svc.now = func() time.Time { return now.AddDate(0, 0, -m.daysAgo) }
		_, err := svc.SaveMood(ctx, "user-1", m.mood, m.mood)
		require.NoError(t, err)
	}
	svc.now = func() time.Time { return now }

	stats, err := svc.GetMoodStats(ctx, "user-1", "week")
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byMood := make(map[string]models.MoodStat)
	for _, s := range stats {
		byMood[s.Mood] = s
	}
	// 2/3 rounds half up to 67, 1/3 to 33.
	assert.Equal(t, 2, byMood["happy"].Count)
	assert.Equal(t, 67, byMood["happy"].Percentage)
	assert.Equal(t, 1, byMood["sad"].Count)
	assert.Equal(t, 33, byMood["sad"].Percentage)
}

func TestGetMoodStatsYearWindowIncludesOldEntries(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, _ := newMoodServiceForTest(t, now)
	ctx := context.Background()

	// Outside the month window but inside the year window.
	svc.now = func() time.Time { return now.AddDate(0, 0, -200) }
	_, err := svc.SaveMood(ctx, "user-1", "calm", "Calm")
	require.NoError(t, err)
	svc.now = func() time.Time { return now }

	monthStats, err := svc.GetMoodStats(ctx, "user-1", "month")
	require.NoError(t, err)
	assert.Empty(t, monthStats)

	yearStats, err := svc.GetMoodStats(ctx, "user-1", "year")
	require.NoError(t, err)
	require.Len(t, yearStats, 1)
	assert.Equal(t, "calm", yearStats[0].Mood)
	assert.Equal(t, 100, yearStats[0].Percentage)
}

func TestGetMoodHistoryNewestFirst(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, _ := newMoodServiceForTest(t, now)
	ctx := context.Background()

	for _, daysAgo := range []int{2, 0, 1} {
		svc.now = func() time.Time { return now.AddDate(0, 0, -daysAgo) }
		_, err := svc.SaveMood(ctx, "user-1", "calm", "Calm")
		require.NoError(t, err)
	}
	svc.now = func() time.Time { return now }

	entries, err := svc.GetMoodHistory(ctx, "user-1", 30)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Date.After(entries[1].Date))
	assert.True(t, entries[1].Date.After(entries[2].Date))
}
