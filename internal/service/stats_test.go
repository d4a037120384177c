package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-signage-cms/internal/domain"
)

func TestStatsOverview(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	a := mustCreateShow(t, e, asAlice, "stats-a")
	b := mustCreateShow(t, e, asAlice, "stats-b")
	inactive := domain.StatusInactive
	_, err := e.shows.Update(ctx, asAlice, b.ID, UpdateSlideshowInput{Status: &inactive})
	require.NoError(t, err)

	created, err := e.shows.AddSlides(ctx, asAlice, a.ID, AddSlidesInput{ImageURL: "https://example.com/1.png"})
	require.NoError(t, err)
	_, err = e.shows.AddSlides(ctx, asAlice, b.ID, AddSlidesInput{ImageURL: "https://example.com/2.png"})
	require.NoError(t, err)

	e.feed.RecordShowView(ctx, a.ID)
	e.feed.RecordShowView(ctx, a.ID)
	e.feed.RecordShowView(ctx, b.ID)
	e.feed.RecordSlideView(ctx, created[0].ID)
	e.feed.MarkSlideNotLoaded(ctx, created[0].ID)

	o, err := e.stats.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), o.TotalSlideshows)
	assert.Equal(t, int64(1), o.ActiveSlideshows)
	assert.Equal(t, int64(1), o.InactiveSlideshows)
	assert.Equal(t, int64(2), o.TotalSlides)
	assert.Equal(t, int64(3), o.TotalDisplays)
	assert.Equal(t, int64(1), o.TotalViews)
	assert.Equal(t, int64(1), o.NotLoadedCount)
	require.Len(t, o.NotLoadedSlides, 1)
	assert.Equal(t, created[0].ID, o.NotLoadedSlides[0].ID)

	require.Len(t, o.Slideshows, 2)
	// 按展示次数倒序
	assert.Equal(t, a.ID, o.Slideshows[0].ID)
	assert.Equal(t, int64(2), o.Slideshows[0].DisplayCount)
	assert.Equal(t, int64(1), o.Slideshows[0].SlideCount)
}

func TestStatsOverviewEmpty(t *testing.T) {
	e := newEnv(t)

	o, err := e.stats.Overview(context.Background())
	require.NoError(t, err)
	assert.Zero(t, o.TotalSlideshows)
	assert.Zero(t, o.TotalViews)
	assert.Zero(t, o.NotLoadedCount)
	assert.NotNil(t, o.Slideshows)
	assert.NotNil(t, o.NotLoadedSlides)
}
