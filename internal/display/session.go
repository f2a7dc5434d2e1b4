// Package display 管理在线的展示会话：每个楼宇展示页对应一个会话，
// 会话持有自己的轮播调度器、点击手势与外部数据刷新循环。
package display

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"noticeboard/internal/model"
	"noticeboard/internal/rotation"
	"noticeboard/internal/service"
	"noticeboard/pkg/async"
	"noticeboard/pkg/logger"
	"noticeboard/pkg/metrics"

	"github.com/google/uuid"
)

const (
	DefaultNewsRefresh     = 10 * time.Minute
	DefaultWeatherRefresh  = 30 * time.Minute
	DefaultCalendarRefresh = 60 * time.Minute
	DefaultFetchTimeout    = 30 * time.Second
	DefaultSessionTTL      = 5 * time.Minute

	// DefaultBundleRefresh 在线会话重新加载楼宇数据的最长间隔
	DefaultBundleRefresh = 5 * time.Minute
)

// BundleLoader 提供楼宇展示数据
type BundleLoader interface {
	Bundle(ctx context.Context, slug string) (*model.DisplayBundle, error)
}

// NewsFeed 提供聚合新闻
type NewsFeed interface {
	Items(ctx context.Context) ([]model.NewsItem, error)
	Sources() []string
}

// WidgetFeed 提供天气与日历
type WidgetFeed interface {
	Weather(ctx context.Context, lat, lon float64) (*model.WeatherReport, error)
	Calendar(ctx context.Context, lat, lon float64) ([]model.CalendarEvent, error)
}

// Deps 会话依赖，Widgets 可为空
type Deps struct {
	Bundles   BundleLoader
	News      NewsFeed
	Widgets   WidgetFeed
	Worker    *async.Worker
	Overrides OverrideStore
	Logger    *logger.Logger
}

// Config 会话参数，零值字段使用默认值
type Config struct {
	Rotation        rotation.Config
	NewsRefresh     time.Duration
	WeatherRefresh  time.Duration
	CalendarRefresh time.Duration
	FetchTimeout    time.Duration
	SessionTTL      time.Duration
	BundleRefresh   time.Duration
	TapWindow       time.Duration
	TapThreshold    int
	OverrideTTL     time.Duration
}

func (c Config) withDefaults() Config {
	if c.NewsRefresh <= 0 {
		c.NewsRefresh = DefaultNewsRefresh
	}
	if c.WeatherRefresh <= 0 {
		c.WeatherRefresh = DefaultWeatherRefresh
	}
	if c.CalendarRefresh <= 0 {
		c.CalendarRefresh = DefaultCalendarRefresh
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.BundleRefresh <= 0 {
		c.BundleRefresh = DefaultBundleRefresh
	}
	if c.OverrideTTL <= 0 {
		c.OverrideTTL = rotation.OverrideTTL
	}
	return c
}

// Session 一个在线的展示页
type Session struct {
	id      string
	slug    string
	cfg     Config
	deps    Deps
	sched   *rotation.Scheduler
	runner  *rotation.Runner
	gesture *rotation.TapGesture

	// applyMu 串行化楼宇数据的替换
	applyMu  sync.Mutex
	mu       sync.RWMutex
	bundle   *model.DisplayBundle
	weather  *model.WeatherReport
	calendar []model.CalendarEvent

	// bundleSet 楼宇数据被替换时通知过期检查重新计时
	bundleSet chan struct{}

	lastSeen atomic.Int64
	onGone   func(slug string)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed atomic.Bool
}

func newSession(slug string, bundle *model.DisplayBundle, deps Deps, cfg Config) *Session {
	rcfg := cfg.Rotation
	if deps.News != nil {
		rcfg.Sources = deps.News.Sources()
	}
	s := &Session{
		id:      uuid.NewString(),
		slug:    slug,
		cfg:     cfg,
		deps:    deps,
		sched:   rotation.NewScheduler(rcfg),
		gesture: rotation.NewTapGesture(cfg.TapWindow, cfg.TapThreshold),

		bundleSet: make(chan struct{}, 1),
	}
	s.runner = rotation.NewRunner(s.sched, s.recordTicks)
	s.Touch(time.Now())
	s.applyBundle(bundle)
	return s
}

// ID 会话标识
func (s *Session) ID() string {
	return s.id
}

// Slug 楼宇展示页标识
func (s *Session) Slug() string {
	return s.slug
}

// start 启动轮播与刷新循环
func (s *Session) start() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runner.Run(s.ctx)
	}()

	s.wg.Add(1)
	go s.watchBundle()

	if s.deps.News != nil {
		s.loop(s.cfg.NewsRefresh, s.refreshNews)
	}
	if s.deps.Widgets != nil {
		s.loop(s.cfg.WeatherRefresh, s.refreshWeather)
		s.loop(s.cfg.CalendarRefresh, s.refreshCalendar)
	}

	s.deps.Logger.Info("展示会话已启动", "slug", s.slug, "session_id", s.id)
}

// close 停止会话，返回前所有协程均已退出，调度器不再有待触发的计时
func (s *Session) close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.deps.Overrides.Clear(ctx, overrideKey(s.slug, s.id)); err != nil {
		s.deps.Logger.Warn("清除跳转标志失败", "slug", s.slug, "error", err)
	}
	s.deps.Logger.Info("展示会话已关闭", "slug", s.slug, "session_id", s.id)
}

// loop 立即执行一次 fn，之后每隔 interval 执行，会话关闭时退出
func (s *Session) loop(interval time.Duration, fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// submit 把拉取任务交给异步工作器，不阻塞轮播
func (s *Session) submit(name string, fn func(ctx context.Context) error) {
	err := s.deps.Worker.AddTask(name+"_"+s.slug, s.cfg.FetchTimeout, func(ctx context.Context) error {
		if s.closed.Load() {
			return nil
		}
		return fn(ctx)
	})
	if err != nil {
		s.deps.Logger.Warn("提交拉取任务失败", "slug", s.slug, "task", name, "error", err)
	}
}

func (s *Session) recordTicks(events []rotation.Event) {
	for _, ev := range events {
		metrics.RotationTicks.WithLabelValues(string(ev.Category), strconv.FormatBool(ev.Advanced)).Inc()
	}
}

// applyBundle 替换楼宇数据快照并通知调度器，已过期的通知不会进入轮播
func (s *Session) applyBundle(bundle *model.DisplayBundle) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	s.applyBundleLocked(bundle)
}

func (s *Session) applyBundleLocked(bundle *model.DisplayBundle) {
	now := time.Now()
	current := *bundle
	current.Notices = unexpiredNotices(bundle.Notices, now)

	s.mu.Lock()
	s.bundle = &current
	s.mu.Unlock()

	s.sched.SetImages(now, current.Images)
	s.sched.SetNotices(current.Notices)
	s.sched.SetStyle(now, current.Style)
	s.runner.Wake()

	select {
	case s.bundleSet <- struct{}{}:
	default:
	}
}

func unexpiredNotices(notices []model.Notice, now time.Time) []model.Notice {
	out := make([]model.Notice, 0, len(notices))
	for _, n := range notices {
		if n.ExpiresAt != nil && !n.ExpiresAt.After(now) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// nextBundleCheck 距下一次检查的时间：最早的通知过期时间，最长 BundleRefresh
func (s *Session) nextBundleCheck(now time.Time) time.Duration {
	wait := s.cfg.BundleRefresh
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bundle == nil {
		return wait
	}
	for _, n := range s.bundle.Notices {
		if n.ExpiresAt == nil {
			continue
		}
		if until := n.ExpiresAt.Sub(now); until < wait {
			wait = until
		}
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}

// dropExpired 用当前快照重新过滤已过期的通知
func (s *Session) dropExpired() {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.RLock()
	bundle := s.bundle
	s.mu.RUnlock()
	if bundle != nil {
		s.applyBundleLocked(bundle)
	}
}

// watchBundle 在最早的通知过期时移除它并重新加载楼宇数据；
// 没有会过期的通知时每隔 BundleRefresh 重新加载
func (s *Session) watchBundle() {
	defer s.wg.Done()

	for {
		timer := time.NewTimer(s.nextBundleCheck(time.Now()))
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-s.bundleSet:
			timer.Stop()
		case <-timer.C:
			s.dropExpired()
			s.Reload()
		}
	}
}

// Reload 重新拉取楼宇数据，相当于刷新展示页
func (s *Session) Reload() {
	s.submit("reload", func(ctx context.Context) error {
		bundle, err := s.deps.Bundles.Bundle(ctx, s.slug)
		if errors.Is(err, service.ErrTenantNotFound) {
			s.deps.Logger.Info("楼宇已不可用，关闭展示会话", "slug", s.slug)
			if s.onGone != nil {
				s.onGone(s.slug)
			}
			return nil
		}
		if err != nil {
			s.deps.Logger.Warn("刷新楼宇数据失败，继续使用旧数据", "slug", s.slug, "error", err)
			return nil
		}
		if !s.closed.Load() {
			s.applyBundle(bundle)
		}
		return nil
	})
}

func (s *Session) refreshNews() {
	s.submit("news", func(ctx context.Context) error {
		items, err := s.deps.News.Items(ctx)
		if err != nil {
			s.deps.Logger.Warn("拉取新闻失败，继续使用旧数据", "slug", s.slug, "error", err)
			return nil
		}
		s.sched.SetNews(rotation.GroupNews(items, s.sched.Sources()))
		s.runner.Wake()
		return nil
	})
}

func (s *Session) location() (float64, float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bundle == nil || !s.bundle.Tenant.HasLocation() {
		return 0, 0, false
	}
	return *s.bundle.Tenant.Latitude, *s.bundle.Tenant.Longitude, true
}

func (s *Session) refreshWeather() {
	lat, lon, ok := s.location()
	if !ok {
		return
	}
	s.submit("weather", func(ctx context.Context) error {
		report, err := s.deps.Widgets.Weather(ctx, lat, lon)
		if err != nil {
			s.deps.Logger.Warn("拉取天气失败", "slug", s.slug, "error", err)
			return nil
		}
		s.mu.Lock()
		s.weather = report
		s.mu.Unlock()
		return nil
	})
}

func (s *Session) refreshCalendar() {
	lat, lon, ok := s.location()
	if !ok {
		return
	}
	s.submit("calendar", func(ctx context.Context) error {
		events, err := s.deps.Widgets.Calendar(ctx, lat, lon)
		if err != nil {
			s.deps.Logger.Warn("拉取日历失败", "slug", s.slug, "error", err)
			return nil
		}
		s.mu.Lock()
		s.calendar = events
		s.mu.Unlock()
		return nil
	})
}

// ToggleNoticePause 切换通知轮播的暂停状态，返回切换后的状态
func (s *Session) ToggleNoticePause() bool {
	paused := s.sched.ToggleNoticePause()
	s.runner.Wake()
	return paused
}

// Tap 记录一次隐藏手势点击，达到阈值时设置跳过自动跳转标志
func (s *Session) Tap(ctx context.Context, now time.Time) (int, bool, error) {
	count, triggered := s.gesture.Tap(now)
	if !triggered {
		return count, false, nil
	}
	if err := s.deps.Overrides.Set(ctx, overrideKey(s.slug, s.id), s.cfg.OverrideTTL); err != nil {
		return count, true, err
	}
	s.deps.Logger.Info("已设置跳过自动跳转标志", "slug", s.slug, "session_id", s.id)
	return count, true, nil
}

// SkipAutoRedirect 跳过自动跳转标志是否有效
func (s *Session) SkipAutoRedirect(ctx context.Context) bool {
	active, err := s.deps.Overrides.Active(ctx, overrideKey(s.slug, s.id))
	if err != nil {
		s.deps.Logger.Warn("读取跳转标志失败", "slug", s.slug, "error", err)
		return false
	}
	return active
}

// Touch 记录最近一次访问时间
func (s *Session) Touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// LastSeen 最近一次访问时间
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// View 渲染层读取的当前状态
func (s *Session) View(ctx context.Context) model.DisplayView {
	s.mu.RLock()
	bundle := s.bundle
	weather := s.weather
	calendar := s.calendar
	s.mu.RUnlock()

	snap := s.sched.Snapshot()
	view := model.DisplayView{
		Image:            snap.Image,
		Notice:           snap.Notice,
		NoticePaused:     snap.NoticePaused,
		NoticeFading:     snap.NoticeFading,
		News:             snap.News,
		Weather:          weather,
		Calendar:         calendar,
		SkipAutoRedirect: s.SkipAutoRedirect(ctx),
	}
	if bundle != nil {
		profile := bundle.Tenant
		view.Tenant = &profile
		view.Style = bundle.Style
	} else {
		view.Style = model.DefaultStyle(0)
	}
	if view.Calendar == nil {
		view.Calendar = []model.CalendarEvent{}
	}
	return view
}
