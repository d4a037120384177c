package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-signage-cms/internal/domain"
)

func TestActiveFeedFiltersInactive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	active := mustCreateShow(t, e, asAlice, "visible")
	_, err := e.shows.AddSlides(ctx, asAlice, active.ID, AddSlidesInput{ImageURL: "https://example.com/on.png"})
	require.NoError(t, err)
	offSlides, err := e.shows.AddSlides(ctx, asAlice, active.ID, AddSlidesInput{ImageURL: "https://example.com/off.png"})
	require.NoError(t, err)
	off := false
	_, err = e.shows.UpdateSlide(ctx, asAlice, offSlides[0].ID, UpdateSlideInput{IsActive: &off})
	require.NoError(t, err)

	// 下线合集里的片子就算自己是 active 也不能出现
	hidden := mustCreateShow(t, e, asAlice, "hidden")
	_, err = e.shows.AddSlides(ctx, asAlice, hidden.ID, AddSlidesInput{ImageURL: "https://example.com/never.png"})
	require.NoError(t, err)
	inactive := domain.StatusInactive
	_, err = e.shows.Update(ctx, asAlice, hidden.ID, UpdateSlideshowInput{Status: &inactive})
	require.NoError(t, err)

	feed := e.feed.ActiveFeed(ctx)
	require.Len(t, feed.Slideshows, 1)
	assert.Equal(t, active.ID, feed.Slideshows[0].ID)
	require.Len(t, feed.Slides, 1)
	assert.Equal(t, "https://example.com/on.png", feed.Slides[0].ImageURL)
}

func TestActiveFeedOrdering(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	second := mustCreateShow(t, e, asAlice, "second")
	first := mustCreateShow(t, e, asAlice, "first")
	lower := 0
	higher := 5
	_, err := e.shows.Update(ctx, asAlice, second.ID, UpdateSlideshowInput{DisplayOrder: &higher})
	require.NoError(t, err)
	_, err = e.shows.Update(ctx, asAlice, first.ID, UpdateSlideshowInput{DisplayOrder: &lower})
	require.NoError(t, err)

	_, err = e.shows.AddSlides(ctx, asAlice, second.ID, AddSlidesInput{ImageURL: "https://example.com/b.png"})
	require.NoError(t, err)
	_, err = e.shows.AddSlides(ctx, asAlice, first.ID, AddSlidesInput{ImageURL: "https://example.com/a.png"})
	require.NoError(t, err)

	feed := e.feed.ActiveFeed(ctx)
	require.Len(t, feed.Slideshows, 2)
	assert.Equal(t, first.ID, feed.Slideshows[0].ID)
	require.Len(t, feed.Slides, 2)
	assert.Equal(t, first.ID, feed.Slides[0].SlideshowID)
	assert.Equal(t, second.ID, feed.Slides[1].SlideshowID)
}

func TestActiveFeedEmptyNotNil(t *testing.T) {
	e := newEnv(t)

	feed := e.feed.ActiveFeed(context.Background())
	require.NotNil(t, feed)
	assert.NotNil(t, feed.Slideshows)
	assert.NotNil(t, feed.Slides)
	assert.Empty(t, feed.Slideshows)
}

func TestRecordSlideViewConcurrent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	show := mustCreateShow(t, e, asAlice, "busy")
	created, err := e.shows.AddSlides(ctx, asAlice, show.ID, AddSlidesInput{ImageURL: "https://example.com/hot.png"})
	require.NoError(t, err)
	id := created[0].ID

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			e.feed.RecordSlideView(ctx, id)
		}()
	}
	wg.Wait()

	slide, err := e.slides.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(n), slide.ViewCount)
	assert.NotNil(t, slide.LastShownAt)
}

func TestRecordViewUnknownID(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// 未知 id 不报错不 panic，打点端永远拿 200
	e.feed.RecordSlideView(ctx, "ghost")
	e.feed.RecordShowView(ctx, "ghost")
}

func TestMarkSlideNotLoaded(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	show := mustCreateShow(t, e, asAlice, "broken")
	created, err := e.shows.AddSlides(ctx, asAlice, show.ID, AddSlidesInput{ImageURL: "https://example.com/404.png"})
	require.NoError(t, err)
	require.True(t, created[0].IsLoaded)

	e.feed.MarkSlideNotLoaded(ctx, created[0].ID)
	got, err := e.slides.FindByID(ctx, created[0].ID)
	require.NoError(t, err)
	assert.False(t, got.IsLoaded)

	// 编辑片子视为修好，标记复位
	title := "fixed"
	got, err = e.shows.UpdateSlide(ctx, asAlice, created[0].ID, UpdateSlideInput{Title: &title})
	require.NoError(t, err)
	assert.True(t, got.IsLoaded)

	// 未知 id 吞掉，不打断放映
	e.feed.MarkSlideNotLoaded(ctx, "ghost")
}

func TestRecordShowView(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	show := mustCreateShow(t, e, asAlice, "counted")
	e.feed.RecordShowView(ctx, show.ID)
	e.feed.RecordShowView(ctx, show.ID)

	got, err := e.showRepo.FindByID(ctx, show.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.DisplayCount)
}
