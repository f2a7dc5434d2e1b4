package rotation

import (
	"sync"
	"time"
)

const (
	DefaultTapWindow    = 1000 * time.Millisecond
	DefaultTapThreshold = 10
	// OverrideTTL “跳过自动跳转”标志的有效期
	OverrideTTL = 600000 * time.Millisecond
)

// TapGesture 隐藏的连续点击手势：相邻两次点击间隔不超过窗口时计数加一，
// 否则本次点击重新计为 1；计数恰好达到阈值时触发一次
type TapGesture struct {
	mu        sync.Mutex
	window    time.Duration
	threshold int
	count     int
	last      time.Time
}

// NewTapGesture 创建点击手势检测器，非正参数使用默认值
func NewTapGesture(window time.Duration, threshold int) *TapGesture {
	if window <= 0 {
		window = DefaultTapWindow
	}
	if threshold <= 0 {
		threshold = DefaultTapThreshold
	}
	return &TapGesture{window: window, threshold: threshold}
}

// Tap 记录一次点击，返回当前计数以及本次是否触发
func (g *TapGesture) Tap(now time.Time) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.count > 0 && now.Sub(g.last) <= g.window {
		g.count++
	} else {
		g.count = 1
	}
	g.last = now
	return g.count, g.count == g.threshold
}

// Count 当前计数
func (g *TapGesture) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count
}
