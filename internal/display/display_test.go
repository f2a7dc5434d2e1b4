package display

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"noticeboard/internal/model"
	"noticeboard/internal/rotation"
	"noticeboard/internal/service"
	"noticeboard/pkg/async"
	"noticeboard/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBundles struct {
	mu      sync.Mutex
	bundles map[string]*model.DisplayBundle
	loads   atomic.Int32
}

func (f *fakeBundles) set(slug string, b *model.DisplayBundle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b == nil {
		delete(f.bundles, slug)
		return
	}
	f.bundles[slug] = b
}

func (f *fakeBundles) Bundle(ctx context.Context, slug string) (*model.DisplayBundle, error) {
	f.loads.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bundles[slug]
	if !ok {
		return nil, service.ErrTenantNotFound
	}
	cp := *b
	return &cp, nil
}

type fakeNews struct {
	items []model.NewsItem
	err   error
	calls atomic.Int32
}

func (f *fakeNews) Items(ctx context.Context) ([]model.NewsItem, error) {
	f.calls.Add(1)
	return f.items, f.err
}

func (f *fakeNews) Sources() []string {
	return []string{"a", "b"}
}

type fakeWidgets struct {
	calls atomic.Int32
}

func (f *fakeWidgets) Weather(ctx context.Context, lat, lon float64) (*model.WeatherReport, error) {
	f.calls.Add(1)
	return &model.WeatherReport{Temperature: 21}, nil
}

func (f *fakeWidgets) Calendar(ctx context.Context, lat, lon float64) ([]model.CalendarEvent, error) {
	f.calls.Add(1)
	return []model.CalendarEvent{{Title: "Candle lighting", Category: "candles"}}, nil
}

func testBundle(slug string, images, notices int) *model.DisplayBundle {
	lat, lon := 32.08, 34.78
	b := &model.DisplayBundle{
		Tenant: model.TenantProfile{ID: 1, Name: "Oak", Slug: slug, Latitude: &lat, Longitude: &lon},
		Style:  model.DefaultStyle(1),
	}
	for i := 0; i < images; i++ {
		b.Images = append(b.Images, model.Image{ID: int64(i + 1), Filename: "img.jpg", IsActive: true})
	}
	for i := 0; i < notices; i++ {
		b.Notices = append(b.Notices, model.Notice{ID: int64(i + 1), Title: "n", Priority: model.PriorityLow, IsActive: true})
	}
	return b
}

type testDeps struct {
	bundles *fakeBundles
	news    *fakeNews
	widgets *fakeWidgets
	store   *MemoryOverrideStore
}

func newTestManager(t *testing.T, cfg Config) (*Manager, *testDeps) {
	t.Helper()
	worker := async.NewWorker(32, logger.NewNop())
	worker.Start(2)

	td := &testDeps{
		bundles: &fakeBundles{bundles: map[string]*model.DisplayBundle{"oak": testBundle("oak", 2, 2)}},
		news: &fakeNews{items: []model.NewsItem{
			{Title: "a1", Source: "a"}, {Title: "a2", Source: "a"}, {Title: "x", Source: "unknown"},
		}},
		widgets: &fakeWidgets{},
		store:   NewMemoryOverrideStore(),
	}
	m := NewManager(Deps{
		Bundles:   td.bundles,
		News:      td.news,
		Widgets:   td.widgets,
		Worker:    worker,
		Overrides: td.store,
		Logger:    logger.NewNop(),
	}, cfg)

	t.Cleanup(func() {
		m.CloseAll()
		worker.Stop()
		td.store.Close()
	})
	return m, td
}

func TestOpenUnknownTenant(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	_, err := m.Open(context.Background(), "missing")
	assert.ErrorIs(t, err, service.ErrTenantNotFound)
	assert.Equal(t, 0, m.Len())
}

func TestOpenReusesSession(t *testing.T) {
	m, td := newTestManager(t, Config{})
	first, err := m.Open(context.Background(), "oak")
	require.NoError(t, err)
	second, err := m.Open(context.Background(), "oak")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), td.bundles.loads.Load())
	assert.Equal(t, []string{"oak"}, m.Slugs())
}

func TestSessionViewAndRefreshes(t *testing.T) {
	m, td := newTestManager(t, Config{})
	s, err := m.Open(context.Background(), "oak")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		v := s.View(context.Background())
		return v.Weather != nil && len(v.Calendar) == 1 && v.News[0].Item != nil
	}, 2*time.Second, 10*time.Millisecond)

	v := s.View(context.Background())
	require.NotNil(t, v.Tenant)
	assert.Equal(t, "oak", v.Tenant.Slug)
	require.NotNil(t, v.Image)
	assert.Equal(t, int64(1), v.Image.ID)
	require.NotNil(t, v.Notice)
	require.Len(t, v.News, 2)
	assert.Equal(t, "a", v.News[0].Source)
	assert.Equal(t, 2, v.News[0].Count)
	assert.Nil(t, v.News[1].Item)
	assert.False(t, v.SkipAutoRedirect)
	assert.Equal(t, int32(1), td.news.calls.Load())
}

func TestSessionRotatesImages(t *testing.T) {
	m, td := newTestManager(t, Config{})
	b := testBundle("oak", 3, 0)
	b.Style.SlideDuration = 20
	td.bundles.set("oak", b)

	s, err := m.Open(context.Background(), "oak")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		v := s.View(context.Background())
		return v.Image != nil && v.Image.ID != 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSessionNewsFailureKeepsRotation(t *testing.T) {
	m, td := newTestManager(t, Config{})
	td.news.err = errors.New("feed down")
	td.news.items = nil

	s, err := m.Open(context.Background(), "oak")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return td.news.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	v := s.View(context.Background())
	assert.NotNil(t, v.Image)
	for _, slot := range v.News {
		assert.Nil(t, slot.Item)
	}
}

func TestSessionToggleNoticePause(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	s, err := m.Open(context.Background(), "oak")
	require.NoError(t, err)

	assert.True(t, s.ToggleNoticePause())
	assert.True(t, s.View(context.Background()).NoticePaused)
	assert.False(t, s.ToggleNoticePause())
}

func TestSessionTapGestureSetsOverride(t *testing.T) {
	m, _ := newTestManager(t, Config{TapThreshold: 3, OverrideTTL: 50 * time.Millisecond})
	s, err := m.Open(context.Background(), "oak")
	require.NoError(t, err)

	now := time.Now()
	for i := 1; i <= 2; i++ {
		count, triggered, err := s.Tap(context.Background(), now.Add(time.Duration(i)*100*time.Millisecond))
		require.NoError(t, err)
		assert.Equal(t, i, count)
		assert.False(t, triggered)
	}
	count, triggered, err := s.Tap(context.Background(), now.Add(300*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.True(t, triggered)
	assert.True(t, s.View(context.Background()).SkipAutoRedirect)

	assert.Eventually(t, func() bool { return !s.SkipAutoRedirect(context.Background()) }, time.Second, 5*time.Millisecond)
}

func TestReloadAppliesNewBundle(t *testing.T) {
	m, td := newTestManager(t, Config{})
	s, err := m.Open(context.Background(), "oak")
	require.NoError(t, err)

	td.bundles.set("oak", testBundle("oak", 0, 0))
	m.Reload("oak")

	assert.Eventually(t, func() bool {
		v := s.View(context.Background())
		return v.Image == nil && v.Notice == nil
	}, time.Second, 5*time.Millisecond)
}

func TestReloadRemovesGoneTenant(t *testing.T) {
	m, td := newTestManager(t, Config{})
	_, err := m.Open(context.Background(), "oak")
	require.NoError(t, err)

	td.bundles.set("oak", nil)
	m.Reload("oak")

	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSweepClosesIdleSessions(t *testing.T) {
	m, _ := newTestManager(t, Config{SessionTTL: time.Minute})
	s, err := m.Open(context.Background(), "oak")
	require.NoError(t, err)

	assert.Equal(t, 0, m.Sweep(time.Now()))
	assert.Equal(t, 1, m.Sweep(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, m.Len())
	assert.False(t, s.sched.Running())
}

func TestCloseAllStopsSchedulers(t *testing.T) {
	m, _ := newTestManager(t, Config{Rotation: rotation.Config{NoticeInterval: 10 * time.Millisecond}})
	s, err := m.Open(context.Background(), "oak")
	require.NoError(t, err)

	m.CloseAll()
	assert.False(t, s.sched.Running())
	assert.False(t, s.sched.NoticeFading())
	_, ok := s.sched.NextDeadline()
	assert.False(t, ok)

	_, err = m.Open(context.Background(), "oak")
	assert.ErrorIs(t, err, ErrManagerClosed)
}

func TestRedisOverrideStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	store := NewRedisOverrideStore(rdb)
	ctx := context.Background()
	key := overrideKey("oak", "session")

	require.NoError(t, store.Set(ctx, key, rotation.OverrideTTL))
	active, err := store.Active(ctx, key)
	require.NoError(t, err)
	assert.True(t, active)

	mr.FastForward(rotation.OverrideTTL + time.Second)
	active, err = store.Active(ctx, key)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestMemoryOverrideStoreResetExtendsExpiry(t *testing.T) {
	store := NewMemoryOverrideStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", 30*time.Millisecond))
	require.NoError(t, store.Set(ctx, "k", time.Hour))
	time.Sleep(60 * time.Millisecond)

	active, _ := store.Active(ctx, "k")
	assert.True(t, active)
	require.NoError(t, store.Clear(ctx, "k"))
	active, _ = store.Active(ctx, "k")
	assert.False(t, active)
}

func TestExpiringNoticeLeavesLiveSession(t *testing.T) {
	m, td := newTestManager(t, Config{})
	expires := time.Now().Add(150 * time.Millisecond)
	b := testBundle("oak", 1, 1)
	b.Notices[0].ExpiresAt = &expires
	td.bundles.set("oak", b)

	s, err := m.Open(context.Background(), "oak")
	require.NoError(t, err)
	require.NotNil(t, s.View(context.Background()).Notice)

	// 数据源不再返回该通知，且没有任何控制台写操作
	td.bundles.set("oak", testBundle("oak", 1, 0))

	assert.Eventually(t, func() bool {
		return s.View(context.Background()).Notice == nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return td.bundles.loads.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestExpiredNoticeDroppedWithoutReload(t *testing.T) {
	m, td := newTestManager(t, Config{})
	expires := time.Now().Add(100 * time.Millisecond)
	b := testBundle("oak", 0, 2)
	b.Notices[0].ExpiresAt = &expires
	td.bundles.set("oak", b)

	s, err := m.Open(context.Background(), "oak")
	require.NoError(t, err)

	// 数据源仍返回过期通知时也不会再出现在轮播中
	assert.Eventually(t, func() bool {
		v := s.View(context.Background())
		return v.Notice != nil && v.Notice.ID == 2
	}, 2*time.Second, 10*time.Millisecond)
	idx, ok := s.sched.NoticeIndex()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestAlreadyExpiredNoticeNeverShown(t *testing.T) {
	m, td := newTestManager(t, Config{})
	past := time.Now().Add(-time.Minute)
	b := testBundle("oak", 0, 1)
	b.Notices[0].ExpiresAt = &past
	td.bundles.set("oak", b)

	s, err := m.Open(context.Background(), "oak")
	require.NoError(t, err)
	assert.Nil(t, s.View(context.Background()).Notice)
}

func TestSessionReloadsOnBundleRefresh(t *testing.T) {
	m, td := newTestManager(t, Config{BundleRefresh: 30 * time.Millisecond})
	_, err := m.Open(context.Background(), "oak")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return td.bundles.loads.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
}

func TestReloadAllRefetchesEverySession(t *testing.T) {
	m, td := newTestManager(t, Config{})
	td.bundles.set("elm", testBundle("elm", 1, 1))
	_, err := m.Open(context.Background(), "oak")
	require.NoError(t, err)
	_, err = m.Open(context.Background(), "elm")
	require.NoError(t, err)
	require.Equal(t, int32(2), td.bundles.loads.Load())

	assert.Equal(t, 2, m.ReloadAll())
	assert.Eventually(t, func() bool { return td.bundles.loads.Load() == 4 }, time.Second, 5*time.Millisecond)
}
