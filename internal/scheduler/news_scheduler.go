package scheduler

import (
	"context"
	"sync"
	"time"

	"noticeboard/internal/model"
	"noticeboard/pkg/logger"
)

// NewsRefresher 刷新新闻缓存
type NewsRefresher interface {
	Refresh(ctx context.Context) ([]model.NewsItem, error)
}

// CacheFlusher 清空展示缓存
type CacheFlusher interface {
	InvalidateAll(ctx context.Context) error
}

// SessionReloader 重新加载在线展示会话
type SessionReloader interface {
	ReloadAll() int
}

// NewsScheduler 定期预热新闻缓存，并在每天凌晨清空展示缓存
type NewsScheduler struct {
	news     NewsRefresher
	displays CacheFlusher
	sessions SessionReloader
	interval time.Duration
	flushAt  int // 每天清空缓存的小时
	logger   *logger.Logger
	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewNewsScheduler 创建新闻调度器实例，sessions 可为空
func NewNewsScheduler(news NewsRefresher, displays CacheFlusher, sessions SessionReloader, interval time.Duration, logger *logger.Logger) *NewsScheduler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &NewsScheduler{
		news:     news,
		displays: displays,
		sessions: sessions,
		interval: interval,
		flushAt:  3,
		logger:   logger,
		quit:     make(chan struct{}),
	}
}

// Start 启动新闻调度器
func (s *NewsScheduler) Start() {
	s.wg.Add(2)
	// 启动时立即预热一次新闻缓存
	go s.refreshScheduler()
	go s.flushScheduler()

	s.logger.Info("新闻调度器启动", "interval", s.interval)
}

// Stop 停止新闻调度器
func (s *NewsScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		s.wg.Wait()
		s.logger.Info("新闻调度器停止")
	})
}

// refreshScheduler 新闻预热定时器
func (s *NewsScheduler) refreshScheduler() {
	defer s.wg.Done()
	s.refreshNews()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refreshNews()
		case <-s.quit:
			return
		}
	}
}

// nextFlush 计算下一次清空缓存的时间
func nextFlush(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !now.Before(next) {
		// 已经过了今天的时间点，改为明天
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// flushScheduler 每日缓存清空定时器
func (s *NewsScheduler) flushScheduler() {
	defer s.wg.Done()

	for {
		next := nextFlush(time.Now(), s.flushAt)
		s.logger.Debug("展示缓存清空计划", "next_run", next.Format("2006-01-02 15:04:05"))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
			s.flushDisplays()
		case <-s.quit:
			timer.Stop()
			return
		}
	}
}

// refreshNews 预热新闻的具体实现
func (s *NewsScheduler) refreshNews() {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	items, err := s.news.Refresh(ctx)
	if err != nil {
		s.logger.Error("新闻预热失败", "error", err)
		return
	}
	s.logger.Info("新闻预热完成", "items", len(items))
}

// flushDisplays 清空展示缓存并让在线展示页重新加载
func (s *NewsScheduler) flushDisplays() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := s.displays.InvalidateAll(ctx); err != nil {
		s.logger.Error("清空展示缓存失败", "error", err)
		return
	}

	reloaded := 0
	if s.sessions != nil {
		reloaded = s.sessions.ReloadAll()
	}
	s.logger.Info("展示缓存已清空", "reloaded_sessions", reloaded)
}
