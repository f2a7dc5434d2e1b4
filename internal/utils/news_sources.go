package utils

import (
	"fmt"
	"net/url"
	"strings"

	"noticeboard/internal/model"
)

// ParseNewsSources 解析 label=url,label=url 格式的新闻源配置，保持原有顺序
func ParseNewsSources(raw string) ([]model.NewsSource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []model.NewsSource{}, nil
	}

	seen := make(map[string]bool)
	var sources []model.NewsSource
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		label, rawURL, ok := strings.Cut(part, "=")
		label = strings.TrimSpace(label)
		rawURL = strings.TrimSpace(rawURL)
		if !ok || label == "" || rawURL == "" {
			return nil, fmt.Errorf("新闻源格式错误: %q", part)
		}
		u, err := url.Parse(rawURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("新闻源地址无效: %q", rawURL)
		}
		if seen[label] {
			return nil, fmt.Errorf("新闻源重复: %q", label)
		}
		seen[label] = true
		sources = append(sources, model.NewsSource{Label: label, URL: rawURL})
	}
	return sources, nil
}

// SourceLabels 提取新闻源标签列表
func SourceLabels(sources []model.NewsSource) []string {
	labels := make([]string, len(sources))
	for i, s := range sources {
		labels[i] = s.Label
	}
	return labels
}
