package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/examdesk/examdesk-api/internal/models"
)

func baseSession() models.ExamSession {
	track := "car"
	return models.ExamSession{
		ID:          "s1",
		Category:    models.CategoryPractical,
		Track:       &track,
		Date:        time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		StartTime:   "09:00",
		EndTime:     "11:00",
		Location:    "Hall 1",
		Capacity:    20,
		Activation:  models.ActivationActive,
		BookedCount: 4,
	}
}

func TestResolvePatchWins(t *testing.T) {
	resolver := OverrideResolver{}

	patch := models.SessionOverride{
		Location: models.SetString("Hall 2"),
		Capacity: models.SetInt(30),
	}
	eff := resolver.Resolve(baseSession(), patch)
	require.Equal(t, "Hall 2", eff.Location)
	require.Equal(t, 30, eff.Capacity)
	// untouched fields keep the source value
	require.Equal(t, "09:00", eff.StartTime)
	require.NotNil(t, eff.Track)
	require.Equal(t, "car", *eff.Track)
}

func TestResolveClearEmptiesField(t *testing.T) {
	resolver := OverrideResolver{}

	patch := models.SessionOverride{Track: models.ClearString()}
	eff := resolver.Resolve(baseSession(), patch)
	require.Nil(t, eff.Track)
}

func TestResolveCategoryWinsOverTrackPatch(t *testing.T) {
	resolver := OverrideResolver{}

	src := baseSession()
	src.Category = models.CategoryDebrief
	patch := models.SessionOverride{Track: models.SetString("motorcycle")}
	eff := resolver.Resolve(src, patch)
	require.Nil(t, eff.Track)
}

func TestResolveCloneResetsIdentity(t *testing.T) {
	resolver := OverrideResolver{}

	target := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	eff := resolver.ResolveClone(baseSession(), models.SessionOverride{}, target)
	require.Empty(t, eff.ID)
	require.Zero(t, eff.BookedCount)
	require.Equal(t, target, eff.Date)
}

func TestValidateCloneDateCollision(t *testing.T) {
	resolver := OverrideResolver{}

	sources := []models.ExamSession{baseSession()}
	err := resolver.ValidateCloneDate(sources, time.Date(2026, 9, 10, 12, 30, 0, 0, time.UTC))
	require.Error(t, err)

	err = resolver.ValidateCloneDate(sources, time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
}

func TestValidateTimeRange(t *testing.T) {
	resolver := OverrideResolver{}

	require.NoError(t, resolver.ValidateTimeRange("09:00", "11:00"))
	require.Error(t, resolver.ValidateTimeRange("11:00", "09:00"))
	require.Error(t, resolver.ValidateTimeRange("09:00", "09:00"))
	require.Error(t, resolver.ValidateTimeRange("9am", "11:00"))
	// a half-open range is not validated
	require.NoError(t, resolver.ValidateTimeRange("", "11:00"))
}
