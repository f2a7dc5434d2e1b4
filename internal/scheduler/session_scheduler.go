package scheduler

import (
	"sync"
	"time"

	"noticeboard/pkg/logger"
)

// SessionSweeper 可清理空闲会话的对象
type SessionSweeper interface {
	Sweep(now time.Time) int
}

// LimiterSweeper 可清理空闲限流记录的对象
type LimiterSweeper interface {
	Sweep() int
}

// SessionScheduler 定期清理空闲展示会话与限流记录
type SessionScheduler struct {
	sessions SessionSweeper
	limiter  LimiterSweeper
	interval time.Duration
	logger   *logger.Logger
	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSessionScheduler 创建会话清理调度器，limiter 可为空
func NewSessionScheduler(sessions SessionSweeper, limiter LimiterSweeper, interval time.Duration, logger *logger.Logger) *SessionScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionScheduler{
		sessions: sessions,
		limiter:  limiter,
		interval: interval,
		logger:   logger,
		quit:     make(chan struct{}),
	}
}

// Start 启动会话清理调度器
func (s *SessionScheduler) Start() {
	s.wg.Add(1)
	go s.sweepScheduler()

	s.logger.Info("会话清理调度器启动", "interval", s.interval)
}

// Stop 停止会话清理调度器并等待退出
func (s *SessionScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		s.wg.Wait()
		s.logger.Info("会话清理调度器停止")
	})
}

// sweepScheduler 空闲清理定时器
func (s *SessionScheduler) sweepScheduler() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.quit:
			return
		}
	}
}

// sweep 清理的具体实现
func (s *SessionScheduler) sweep() {
	closed := s.sessions.Sweep(time.Now())
	forgotten := 0
	if s.limiter != nil {
		forgotten = s.limiter.Sweep()
	}
	if closed > 0 || forgotten > 0 {
		s.logger.Debug("空闲清理完成", "sessions", closed, "limiter_keys", forgotten)
	}
}
