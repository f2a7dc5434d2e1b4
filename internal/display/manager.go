package display

import (
	"context"
	"sort"
	"sync"
	"time"

	"noticeboard/pkg/logger"
	"noticeboard/pkg/metrics"
)

// Manager 按楼宇标识管理展示会话
type Manager struct {
	deps   Deps
	cfg    Config
	logger *logger.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewManager 创建会话管理器
func NewManager(deps Deps, cfg Config) *Manager {
	return &Manager{
		deps:     deps,
		cfg:      cfg.withDefaults(),
		logger:   deps.Logger,
		sessions: make(map[string]*Session),
	}
}

// Open 获取楼宇的展示会话，不存在时加载楼宇数据并创建。
// 楼宇不存在或已停用时返回 service.ErrTenantNotFound
func (m *Manager) Open(ctx context.Context, slug string) (*Session, error) {
	if s, ok := m.Lookup(slug); ok {
		s.Touch(time.Now())
		return s, nil
	}

	// 在锁外加载，避免慢查询阻塞其他楼宇
	bundle, err := m.deps.Bundles.Bundle(ctx, slug)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrManagerClosed
	}
	if s, ok := m.sessions[slug]; ok {
		s.Touch(time.Now())
		return s, nil
	}

	s := newSession(slug, bundle, m.deps, m.cfg)
	s.onGone = m.remove
	s.start()
	m.sessions[slug] = s
	metrics.DisplaySessionsActive.Inc()
	return s, nil
}

// Lookup 获取已存在的会话
func (m *Manager) Lookup(slug string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[slug]
	return s, ok
}

// Reload 若楼宇有在线会话则重新加载其数据
func (m *Manager) Reload(slug string) {
	if s, ok := m.Lookup(slug); ok {
		s.Reload()
	}
}

// remove 关闭并移除会话
func (m *Manager) remove(slug string) {
	m.mu.Lock()
	s, ok := m.sessions[slug]
	if ok {
		delete(m.sessions, slug)
	}
	m.mu.Unlock()

	if ok {
		metrics.DisplaySessionsActive.Dec()
		// 可能在会话自己的任务中被调用，异步等待其协程退出
		go s.close()
	}
}

// Sweep 关闭超过 TTL 未访问的会话，返回关闭数量
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	var idle []*Session
	for slug, s := range m.sessions {
		if now.Sub(s.LastSeen()) > m.cfg.SessionTTL {
			idle = append(idle, s)
			delete(m.sessions, slug)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		metrics.DisplaySessionsActive.Dec()
		s.close()
	}
	if len(idle) > 0 {
		m.logger.Info("已清理空闲展示会话", "count", len(idle))
	}
	return len(idle)
}

// Len 在线会话数
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Slugs 在线会话的楼宇标识，按字母排序
func (m *Manager) Slugs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	slugs := make([]string, 0, len(m.sessions))
	for slug := range m.sessions {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// ReloadAll 重新加载全部在线会话的楼宇数据，返回会话数量
func (m *Manager) ReloadAll() int {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Reload()
	}
	return len(sessions)
}

// CloseAll 关闭全部会话，之后不再创建新会话
func (m *Manager) CloseAll() {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range sessions {
		metrics.DisplaySessionsActive.Dec()
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.close()
		}(s)
	}
	wg.Wait()
	m.logger.Info("展示会话已全部关闭", "count", len(sessions))
}
