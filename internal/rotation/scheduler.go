// Package rotation 实现展示页的轮播调度：背景图片、委员会通知、分源新闻
// 三个互相独立的轮播游标，以及通知的暂停与淡出窗口。
//
// Scheduler 本身不启动任何计时器，它把每个类别的下一次触发时间保存在状态里，
// 由 Advance(now) 按时间先后依次处理到期的触发。Runner 负责在真实时间上驱动它。
// 每次触发都读取触发时刻的集合与标志，而不是计时器创建时的值。
package rotation

import (
	"sync"
	"time"

	"noticeboard/internal/model"
)

const (
	DefaultNoticeInterval = 4000 * time.Millisecond
	DefaultFadeWindow     = 300 * time.Millisecond
	DefaultNewsInterval   = 10000 * time.Millisecond
	DefaultSlideDuration  = time.Duration(model.DefaultSlideDuration) * time.Millisecond
)

// Category 轮播类别
type Category string

const (
	CategoryImage      Category = "image"
	CategoryNotice     Category = "notice"
	CategoryNoticeFade Category = "notice_fade"
	CategoryNews       Category = "news"
)

// Config 轮播参数，零值字段使用默认值
type Config struct {
	NoticeInterval time.Duration
	FadeWindow     time.Duration
	NewsInterval   time.Duration
	DefaultSlide   time.Duration
	// Sources 固定顺序的新闻源标签
	Sources []string
}

func (c Config) withDefaults() Config {
	if c.NoticeInterval <= 0 {
		c.NoticeInterval = DefaultNoticeInterval
	}
	if c.FadeWindow <= 0 {
		c.FadeWindow = DefaultFadeWindow
	}
	if c.NewsInterval <= 0 {
		c.NewsInterval = DefaultNewsInterval
	}
	if c.DefaultSlide <= 0 {
		c.DefaultSlide = DefaultSlideDuration
	}
	c.Sources = append([]string(nil), c.Sources...)
	return c
}

// Event 一次已处理的触发
type Event struct {
	Category Category
	At       time.Time
	// Advanced 本次触发是否改变了游标（或对通知而言，是否开始了淡出）
	Advanced bool
}

// Scheduler 轮播状态机，游标与标志只由它自己修改
type Scheduler struct {
	mu  sync.RWMutex
	cfg Config

	images  []model.Image
	notices []model.Notice
	news    map[string][]model.NewsItem
	slide   time.Duration

	imageIndex   int
	noticeIndex  int
	noticePaused bool
	noticeFading bool
	newsIndex    map[string]int

	running   bool
	imageDue  time.Time
	noticeDue time.Time
	fadeDue   time.Time
	newsDue   time.Time
}

// NewScheduler 创建轮播状态机，初始为空集合、未启动
func NewScheduler(cfg Config) *Scheduler {
	cfg = cfg.withDefaults()
	s := &Scheduler{
		cfg:       cfg,
		news:      make(map[string][]model.NewsItem, len(cfg.Sources)),
		newsIndex: make(map[string]int, len(cfg.Sources)),
		slide:     cfg.DefaultSlide,
	}
	for _, src := range cfg.Sources {
		s.newsIndex[src] = 0
	}
	return s
}

// Sources 固定的新闻源顺序
func (s *Scheduler) Sources() []string {
	return append([]string(nil), s.cfg.Sources...)
}

// Start 从 now 开始调度三个类别的计时器
func (s *Scheduler) Start(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = true
	s.imageDue = now.Add(s.slide)
	s.noticeDue = now.Add(s.cfg.NoticeInterval)
	s.newsDue = now.Add(s.cfg.NewsInterval)
	s.fadeDue = time.Time{}
}

// Stop 取消所有计时器；淡出标志一并清除，避免复用的状态停留在淡出中
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.imageDue = time.Time{}
	s.noticeDue = time.Time{}
	s.fadeDue = time.Time{}
	s.newsDue = time.Time{}
	s.noticeFading = false
}

// Running 是否处于调度中
func (s *Scheduler) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// SetImages 替换图片集合。数量变化时图片计时器以当前时长从 now 重新开始
func (s *Scheduler) SetImages(now time.Time, images []model.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	countChanged := len(images) != len(s.images)
	s.images = append([]model.Image(nil), images...)
	s.imageIndex = clamp(s.imageIndex, len(s.images))
	if countChanged && s.running {
		s.imageDue = now.Add(s.slide)
	}
}

// SetNotices 替换通知集合并收紧游标
func (s *Scheduler) SetNotices(notices []model.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notices = append([]model.Notice(nil), notices...)
	s.noticeIndex = clamp(s.noticeIndex, len(s.notices))
}

// SetNews 替换分组新闻，只保留固定新闻源，各源游标各自收紧
func (s *Scheduler) SetNews(groups map[string][]model.NewsItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.news = make(map[string][]model.NewsItem, len(s.cfg.Sources))
	for _, src := range s.cfg.Sources {
		items := append([]model.NewsItem(nil), groups[src]...)
		s.news[src] = items
		s.newsIndex[src] = clamp(s.newsIndex[src], len(items))
	}
}

// SetSlideDuration 修改图片轮播时长；时长变化时计时器从 now 按新时长重新开始，
// 已经流逝的时间不追溯调整。非正值回退到默认时长
func (s *Scheduler) SetSlideDuration(now time.Time, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d <= 0 {
		d = s.cfg.DefaultSlide
	}
	if d == s.slide {
		return
	}
	s.slide = d
	if s.running {
		s.imageDue = now.Add(d)
	}
}

// SetStyle 按样式配置设置图片轮播时长
func (s *Scheduler) SetStyle(now time.Time, style model.StyleConfig) {
	s.SetSlideDuration(now, time.Duration(style.SlideDuration)*time.Millisecond)
}

// SlideDuration 当前图片轮播时长
func (s *Scheduler) SlideDuration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slide
}

// ToggleNoticePause 切换通知暂停状态，返回切换后的状态。
// 暂停时取消尚未完成的淡出，游标保持不变
func (s *Scheduler) ToggleNoticePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setNoticePausedLocked(!s.noticePaused)
	return s.noticePaused
}

// SetNoticePaused 设置通知暂停状态
func (s *Scheduler) SetNoticePaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setNoticePausedLocked(paused)
}

func (s *Scheduler) setNoticePausedLocked(paused bool) {
	s.noticePaused = paused
	if paused && !s.fadeDue.IsZero() {
		s.fadeDue = time.Time{}
		s.noticeFading = false
	}
}

// NextDeadline 最近一次待处理触发的时间
func (s *Scheduler) NextDeadline() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, due, ok := s.nextLocked()
	return due, ok
}

// Advance 按时间顺序处理所有不晚于 now 的触发
func (s *Scheduler) Advance(now time.Time) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []Event
	for {
		cat, due, ok := s.nextLocked()
		if !ok || due.After(now) {
			return events
		}
		events = append(events, s.fireLocked(cat, due))
	}
}

// nextLocked 返回最早到期的类别；同一时刻按 淡出、图片、通知、新闻 的顺序
func (s *Scheduler) nextLocked() (Category, time.Time, bool) {
	if !s.running {
		return "", time.Time{}, false
	}

	candidates := []struct {
		cat Category
		due time.Time
	}{
		{CategoryNoticeFade, s.fadeDue},
		{CategoryImage, s.imageDue},
		{CategoryNotice, s.noticeDue},
		{CategoryNews, s.newsDue},
	}

	var (
		best    Category
		bestDue time.Time
		found   bool
	)
	for _, c := range candidates {
		if c.due.IsZero() {
			continue
		}
		if !found || c.due.Before(bestDue) {
			best, bestDue, found = c.cat, c.due, true
		}
	}
	return best, bestDue, found
}

func (s *Scheduler) fireLocked(cat Category, due time.Time) Event {
	ev := Event{Category: cat, At: due}

	switch cat {
	case CategoryImage:
		s.imageDue = due.Add(s.slide)
		if n := len(s.images); n > 0 {
			s.imageIndex = (s.imageIndex + 1) % n
			ev.Advanced = true
		}

	case CategoryNotice:
		s.noticeDue = due.Add(s.cfg.NoticeInterval)
		// 先升起淡出标志，窗口结束后才切换游标
		if !s.noticePaused && len(s.notices) > 0 && s.fadeDue.IsZero() {
			s.noticeFading = true
			s.fadeDue = due.Add(s.cfg.FadeWindow)
			ev.Advanced = true
		}

	case CategoryNoticeFade:
		s.fadeDue = time.Time{}
		if n := len(s.notices); n > 0 {
			s.noticeIndex = (s.noticeIndex + 1) % n
			ev.Advanced = true
		}
		s.noticeFading = false

	case CategoryNews:
		s.newsDue = due.Add(s.cfg.NewsInterval)
		for _, src := range s.cfg.Sources {
			if n := len(s.news[src]); n > 0 {
				s.newsIndex[src] = (s.newsIndex[src] + 1) % n
				ev.Advanced = true
			}
		}
	}

	return ev
}

// ImageIndex 当前图片游标；没有图片时第二个返回值为 false
func (s *Scheduler) ImageIndex() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.images) == 0 {
		return 0, false
	}
	return s.imageIndex, true
}

// CurrentImage 当前应显示的图片
func (s *Scheduler) CurrentImage() (model.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.images) == 0 {
		return model.Image{}, false
	}
	return s.images[s.imageIndex], true
}

// NoticeIndex 当前通知游标；没有通知时第二个返回值为 false
func (s *Scheduler) NoticeIndex() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.notices) == 0 {
		return 0, false
	}
	return s.noticeIndex, true
}

// CurrentNotice 当前应显示的通知
func (s *Scheduler) CurrentNotice() (model.Notice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.notices) == 0 {
		return model.Notice{}, false
	}
	return s.notices[s.noticeIndex], true
}

// NoticePaused 通知是否暂停
func (s *Scheduler) NoticePaused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.noticePaused
}

// NoticeFading 通知是否处于淡出窗口
func (s *Scheduler) NoticeFading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.noticeFading
}

// NewsIndex 指定新闻源的游标，未知或空的新闻源为 0
func (s *Scheduler) NewsIndex(source string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newsIndex[source]
}

// CurrentNews 指定新闻源当前条目；没有条目时显示“暂无更新”
func (s *Scheduler) CurrentNews(source string) (model.NewsItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.news[source]
	if len(items) == 0 {
		return model.NewsItem{}, false
	}
	return items[s.newsIndex[source]], true
}

// NewsSlots 按固定顺序返回每个新闻源的当前条目
func (s *Scheduler) NewsSlots() []model.NewsSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newsSlotsLocked()
}

// Snapshot 渲染层读取的一致状态，所有游标与标志来自同一时刻
type Snapshot struct {
	Image        *model.Image
	Notice       *model.Notice
	NoticePaused bool
	NoticeFading bool
	News         []model.NewsSlot
}

// Snapshot 在同一把读锁下读取全部当前条目与标志
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		NoticePaused: s.noticePaused,
		NoticeFading: s.noticeFading,
		News:         s.newsSlotsLocked(),
	}
	if len(s.images) > 0 {
		img := s.images[s.imageIndex]
		snap.Image = &img
	}
	if len(s.notices) > 0 {
		notice := s.notices[s.noticeIndex]
		snap.Notice = &notice
	}
	return snap
}

func (s *Scheduler) newsSlotsLocked() []model.NewsSlot {
	slots := make([]model.NewsSlot, 0, len(s.cfg.Sources))
	for _, src := range s.cfg.Sources {
		items := s.news[src]
		slot := model.NewsSlot{Source: src, Count: len(items), Index: s.newsIndex[src]}
		if len(items) > 0 {
			item := items[slot.Index]
			slot.Item = &item
		}
		slots = append(slots, slot)
	}
	return slots
}

func clamp(idx, n int) int {
	switch {
	case n == 0 || idx < 0:
		return 0
	case idx >= n:
		return n - 1
	default:
		return idx
	}
}
