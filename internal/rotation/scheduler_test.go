package rotation

import (
	"fmt"
	"testing"
	"time"

	"noticeboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time { return t0.Add(d) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func images(n int) []model.Image {
	out := make([]model.Image, n)
	for i := range out {
		out[i] = model.Image{ID: int64(i + 1), Filename: fmt.Sprintf("img-%d.jpg", i+1), IsActive: true}
	}
	return out
}

func notices(n int) []model.Notice {
	out := make([]model.Notice, n)
	for i := range out {
		out[i] = model.Notice{ID: int64(i + 1), Title: fmt.Sprintf("notice %d", i+1), Priority: model.PriorityMedium, IsActive: true}
	}
	return out
}

func newsItems(source string, n int) []model.NewsItem {
	out := make([]model.NewsItem, n)
	for i := range out {
		out[i] = model.NewsItem{Title: fmt.Sprintf("%s headline %d", source, i+1), Link: fmt.Sprintf("https://%s.example/%d", source, i+1), Source: source}
	}
	return out
}

func TestImageRotationIsCyclic(t *testing.T) {
	for n := 0; n <= 5; n++ {
		t.Run(fmt.Sprintf("%d images", n), func(t *testing.T) {
			s := NewScheduler(Config{})
			s.SetImages(t0, images(n))
			s.Start(t0)

			start, _ := s.ImageIndex()
			for i := 1; i <= n; i++ {
				s.Advance(at(time.Duration(i) * DefaultSlideDuration))
				idx, ok := s.ImageIndex()
				require.True(t, ok)
				assert.Less(t, idx, n)
				assert.Equal(t, i%n, idx)
			}
			end, _ := s.ImageIndex()
			assert.Equal(t, start, end)
		})
	}
}

func TestNoImagesMeansNoCurrentImage(t *testing.T) {
	s := NewScheduler(Config{})
	s.Start(t0)

	for i := 1; i <= 20; i++ {
		s.Advance(at(time.Duration(i) * DefaultSlideDuration))
		_, ok := s.CurrentImage()
		assert.False(t, ok)
		_, ok = s.ImageIndex()
		assert.False(t, ok)
	}
}

func TestImageCountChangeRestartsTimer(t *testing.T) {
	s := NewScheduler(Config{})
	s.SetImages(t0, images(3))
	s.Start(t0)

	s.SetImages(at(3*time.Second), images(4))

	s.Advance(at(5 * time.Second))
	idx, _ := s.ImageIndex()
	assert.Equal(t, 0, idx, "the old period must not fire after a restart")

	s.Advance(at(8 * time.Second))
	idx, _ = s.ImageIndex()
	assert.Equal(t, 1, idx)
}

func TestSameCountRefreshKeepsImageTimer(t *testing.T) {
	s := NewScheduler(Config{})
	s.SetImages(t0, images(3))
	s.Start(t0)

	s.SetImages(at(3*time.Second), images(3))
	s.Advance(at(5 * time.Second))

	idx, _ := s.ImageIndex()
	assert.Equal(t, 1, idx)
}

func TestLateStyleRestartsImageTimerWithoutBackdating(t *testing.T) {
	s := NewScheduler(Config{})
	s.SetImages(t0, images(3))
	s.Start(t0)

	s.Advance(at(4 * time.Second))
	s.SetStyle(at(4*time.Second), model.StyleConfig{SlideDuration: 2000})
	assert.Equal(t, 2*time.Second, s.SlideDuration())

	s.Advance(at(5 * time.Second))
	idx, _ := s.ImageIndex()
	assert.Equal(t, 0, idx)

	s.Advance(at(6 * time.Second))
	idx, _ = s.ImageIndex()
	assert.Equal(t, 1, idx)

	s.Advance(at(8 * time.Second))
	idx, _ = s.ImageIndex()
	assert.Equal(t, 2, idx)

	// 相同时长不会重启计时器
	s.SetSlideDuration(at(9*time.Second), 2*time.Second)
	s.Advance(at(10 * time.Second))
	idx, _ = s.ImageIndex()
	assert.Equal(t, 0, idx)
}

func TestNonPositiveSlideFallsBackToDefault(t *testing.T) {
	s := NewScheduler(Config{})
	s.SetStyle(t0, model.StyleConfig{SlideDuration: 0})
	assert.Equal(t, DefaultSlideDuration, s.SlideDuration())

	s.SetSlideDuration(t0, -time.Second)
	assert.Equal(t, DefaultSlideDuration, s.SlideDuration())
}

func TestImageRefreshClampsIndex(t *testing.T) {
	s := NewScheduler(Config{})
	s.SetImages(t0, images(5))
	s.Start(t0)
	for i := 1; i <= 4; i++ {
		s.Advance(at(time.Duration(i) * DefaultSlideDuration))
	}
	idx, _ := s.ImageIndex()
	require.Equal(t, 4, idx)

	s.SetImages(at(21*time.Second), images(2))
	idx, ok := s.ImageIndex()
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	img, ok := s.CurrentImage()
	require.True(t, ok)
	assert.Equal(t, int64(2), img.ID)

	s.SetImages(at(22*time.Second), nil)
	_, ok = s.CurrentImage()
	assert.False(t, ok)
}

func TestNoticeTickFadesBeforeAdvancing(t *testing.T) {
	s := NewScheduler(Config{})
	s.SetNotices(notices(3))
	s.Start(t0)

	s.Advance(at(ms(3999)))
	assert.False(t, s.NoticeFading())

	s.Advance(at(ms(4000)))
	assert.True(t, s.NoticeFading())
	idx, _ := s.NoticeIndex()
	assert.Equal(t, 0, idx, "index must not move before the fade window ends")

	s.Advance(at(ms(4299)))
	assert.True(t, s.NoticeFading())
	idx, _ = s.NoticeIndex()
	assert.Equal(t, 0, idx)

	s.Advance(at(ms(4300)))
	assert.False(t, s.NoticeFading())
	idx, _ = s.NoticeIndex()
	assert.Equal(t, 1, idx)

	s.Advance(at(ms(8300)))
	idx, _ = s.NoticeIndex()
	assert.Equal(t, 2, idx)
	s.Advance(at(ms(12300)))
	idx, _ = s.NoticeIndex()
	assert.Equal(t, 0, idx)
	assert.False(t, s.NoticeFading())
}

func TestNoticeTickAndFadeInOneAdvance(t *testing.T) {
	s := NewScheduler(Config{})
	s.SetNotices(notices(2))
	s.Start(t0)

	events := s.Advance(at(ms(4300)))

	require.Len(t, events, 2)
	assert.Equal(t, CategoryNotice, events[0].Category)
	assert.Equal(t, CategoryNoticeFade, events[1].Category)
	assert.True(t, events[1].Advanced)
	assert.False(t, s.NoticeFading())
	n, ok := s.CurrentNotice()
	require.True(t, ok)
	assert.Equal(t, int64(2), n.ID)
}

func TestNoticeIndexChangesOncePerCompletedTick(t *testing.T) {
	s := NewScheduler(Config{})
	s.SetNotices(notices(7))
	s.Start(t0)

	changes := 0
	prev, _ := s.NoticeIndex()
	for step := 0; step <= 40000; step += 100 {
		s.Advance(at(ms(step)))
		idx, _ := s.NoticeIndex()
		if idx != prev {
			changes++
			prev = idx
		}
	}
	// 4s 到 40s 共 10 次触发，40s 的那次淡出尚未结束
	assert.Equal(t, 9, changes)
	assert.True(t, s.NoticeFading())
}

func TestPausedNoticeDoesNotAdvanceOrBurst(t *testing.T) {
	s := NewScheduler(Config{})
	s.SetNotices(notices(3))
	s.Start(t0)

	require.True(t, s.ToggleNoticePause())
	for i := 1; i <= 5; i++ {
		s.Advance(at(time.Duration(i)*DefaultNoticeInterval + DefaultFadeWindow))
		idx, _ := s.NoticeIndex()
		assert.Equal(t, 0, idx)
		assert.False(t, s.NoticeFading())
	}

	require.False(t, s.ToggleNoticePause())
	assert.Equal(t, 0, len(s.Advance(at(ms(21000)))))

	s.Advance(at(24 * time.Second))
	assert.True(t, s.NoticeFading())
	s.Advance(at(ms(24300)))
	idx, _ := s.NoticeIndex()
	assert.Equal(t, 1, idx, "resuming advances exactly once on the next tick")
}

func TestPauseDuringFadeCancelsTransition(t *testing.T) {
	s := NewScheduler(Config{})
	s.SetNotices(notices(3))
	s.Start(t0)

	s.Advance(at(4 * time.Second))
	require.True(t, s.NoticeFading())

	s.SetNoticePaused(true)
	assert.False(t, s.NoticeFading())

	s.Advance(at(ms(4300)))
	idx, _ := s.NoticeIndex()
	assert.Equal(t, 0, idx)
}

func TestStopClearsFadeAndDeadlines(t *testing.T) {
	s := NewScheduler(Config{})
	s.SetNotices(notices(3))
	s.SetImages(t0, images(2))
	s.Start(t0)

	s.Advance(at(4 * time.Second))
	require.True(t, s.NoticeFading())

	s.Stop()
	assert.False(t, s.NoticeFading())
	assert.False(t, s.Running())
	_, ok := s.NextDeadline()
	assert.False(t, ok)

	assert.Empty(t, s.Advance(at(time.Minute)))
	idx, _ := s.NoticeIndex()
	assert.Equal(t, 0, idx)
	idx, _ = s.ImageIndex()
	assert.Equal(t, 0, idx)
}

func TestNoticesEmptiedDuringFade(t *testing.T) {
	s := NewScheduler(Config{})
	s.SetNotices(notices(2))
	s.Start(t0)

	s.Advance(at(4 * time.Second))
	s.SetNotices(nil)
	s.Advance(at(ms(4300)))

	assert.False(t, s.NoticeFading())
	_, ok := s.CurrentNotice()
	assert.False(t, ok)
}

func TestNewsRotatesPerSource(t *testing.T) {
	s := NewScheduler(Config{Sources: []string{"A", "B", "C"}})
	s.SetNews(map[string][]model.NewsItem{
		"A": newsItems("A", 3),
		"B": nil,
		"C": newsItems("C", 1),
	})
	s.Start(t0)

	s.Advance(at(10 * time.Second))

	assert.Equal(t, 1, s.NewsIndex("A"))
	assert.Equal(t, 0, s.NewsIndex("B"))
	assert.Equal(t, 0, s.NewsIndex("C"))
	_, ok := s.CurrentNews("B")
	assert.False(t, ok, "a source without items shows no updates")

	// A 缩减为 1 条，不经过触发也要立即收紧
	s.SetNews(map[string][]model.NewsItem{
		"A": newsItems("A", 1),
		"C": newsItems("C", 1),
	})
	assert.Equal(t, 0, s.NewsIndex("A"))
	item, ok := s.CurrentNews("A")
	require.True(t, ok)
	assert.Equal(t, "A headline 1", item.Title)
}

func TestNewsSlotsFollowSourceOrder(t *testing.T) {
	s := NewScheduler(Config{Sources: []string{"ynet", "walla", "haaretz"}})
	s.SetNews(map[string][]model.NewsItem{
		"walla":   newsItems("walla", 2),
		"unknown": newsItems("unknown", 4),
	})

	slots := s.NewsSlots()
	require.Len(t, slots, 3)
	assert.Equal(t, "ynet", slots[0].Source)
	assert.Nil(t, slots[0].Item)
	assert.Equal(t, "walla", slots[1].Source)
	require.NotNil(t, slots[1].Item)
	assert.Equal(t, 2, slots[1].Count)
	assert.Nil(t, slots[2].Item)
}

func TestEmptySchedulerTicksSafely(t *testing.T) {
	s := NewScheduler(Config{Sources: []string{"A"}})
	s.Start(t0)

	events := s.Advance(at(time.Minute))
	require.NotEmpty(t, events)
	for _, ev := range events {
		assert.False(t, ev.Advanced)
	}

	// 数据随后到达时照常轮播
	s.SetNotices(notices(2))
	s.Advance(at(ms(64300)))
	idx, ok := s.NoticeIndex()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestNextDeadlineAndTieOrder(t *testing.T) {
	s := NewScheduler(Config{DefaultSlide: 4 * time.Second})
	_, ok := s.NextDeadline()
	assert.False(t, ok, "not running before Start")

	s.Start(t0)
	due, ok := s.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, at(4*time.Second), due)

	events := s.Advance(at(4 * time.Second))
	require.Len(t, events, 2)
	assert.Equal(t, CategoryImage, events[0].Category)
	assert.Equal(t, CategoryNotice, events[1].Category)
}

func TestGroupNews(t *testing.T) {
	items := append(newsItems("A", 2), newsItems("Z", 1)...)
	items = append(items, newsItems("B", 1)...)

	groups := GroupNews(items, []string{"A", "B", "C"})

	assert.Len(t, groups["A"], 2)
	assert.Equal(t, "A headline 1", groups["A"][0].Title)
	assert.Len(t, groups["B"], 1)
	assert.Empty(t, groups["C"])
	_, ok := groups["Z"]
	assert.False(t, ok)
}

func TestSnapshotPairsFadeWithOutgoingNotice(t *testing.T) {
	s := NewScheduler(Config{Sources: []string{"a", "b"}})
	s.SetImages(t0, images(2))
	s.SetNotices(notices(2))
	s.SetNews(map[string][]model.NewsItem{"a": newsItems("a", 2)})
	s.Start(t0)

	s.Advance(at(DefaultNoticeInterval))
	snap := s.Snapshot()
	assert.True(t, snap.NoticeFading)
	require.NotNil(t, snap.Notice)
	assert.Equal(t, int64(1), snap.Notice.ID)
	require.NotNil(t, snap.Image)
	require.Len(t, snap.News, 2)
	assert.Nil(t, snap.News[1].Item)

	s.Advance(at(DefaultNoticeInterval + DefaultFadeWindow))
	snap = s.Snapshot()
	assert.False(t, snap.NoticeFading)
	require.NotNil(t, snap.Notice)
	assert.Equal(t, int64(2), snap.Notice.ID)
	assert.False(t, snap.NoticePaused)
}

func TestSnapshotOfEmptyScheduler(t *testing.T) {
	snap := NewScheduler(Config{}).Snapshot()
	assert.Nil(t, snap.Image)
	assert.Nil(t, snap.Notice)
	assert.False(t, snap.NoticeFading)
	assert.Empty(t, snap.News)
}
