package model

import "time"

// NewsItem 聚合后的新闻标题
type NewsItem struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// NewsSource 新闻源
type NewsSource struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}
