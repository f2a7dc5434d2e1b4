package rotation

import "noticeboard/internal/model"

// GroupNews 按新闻源分组，保持每组内的原始顺序；不在 sources 中的条目被丢弃
func GroupNews(items []model.NewsItem, sources []string) map[string][]model.NewsItem {
	groups := make(map[string][]model.NewsItem, len(sources))
	known := make(map[string]bool, len(sources))
	for _, src := range sources {
		known[src] = true
		groups[src] = nil
	}
	for _, item := range items {
		if known[item.Source] {
			groups[item.Source] = append(groups[item.Source], item)
		}
	}
	return groups
}
