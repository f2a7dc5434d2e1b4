package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"noticeboard/internal/model"
	"noticeboard/internal/utils"
	"noticeboard/pkg/logger"
	"noticeboard/pkg/metrics"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/redis/go-redis/v9"
)

const (
	newsCacheKey = "news:items"
	newsCacheTTL = 10 * time.Minute
	feedAccept   = "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8"
)

// NewsService 新闻聚合服务：按固定顺序拉取各新闻源并去重
type NewsService struct {
	sources     []model.NewsSource
	perSource   int
	fetcher     *fetcher
	redisClient *redis.Client
	logger      *logger.Logger
}

// NewNewsService 创建新闻聚合服务实例
func NewNewsService(sources []model.NewsSource, perSource int, client *http.Client, redisClient *redis.Client, logger *logger.Logger) *NewsService {
	if perSource <= 0 {
		perSource = 10
	}
	return &NewsService{
		sources:     sources,
		perSource:   perSource,
		fetcher:     newFetcher(client, logger),
		redisClient: redisClient,
		logger:      logger,
	}
}

// Sources 新闻源标签，顺序即展示顺序
func (s *NewsService) Sources() []string {
	return utils.SourceLabels(s.sources)
}

// Items 获取聚合新闻，优先读取缓存
func (s *NewsService) Items(ctx context.Context) ([]model.NewsItem, error) {
	var cached []model.NewsItem
	if getCached(ctx, s.redisClient, newsCacheKey, &cached) {
		return cached, nil
	}
	return s.Refresh(ctx)
}

// Refresh 重新拉取所有新闻源并写入缓存；部分新闻源失败时返回其余结果
func (s *NewsService) Refresh(ctx context.Context) ([]model.NewsItem, error) {
	results := make([][]model.NewsItem, len(s.sources))
	errs := make([]error, len(s.sources))

	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src model.NewsSource) {
			defer wg.Done()
			results[i], errs[i] = s.fetchSource(ctx, src)
		}(i, src)
	}
	wg.Wait()

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			s.logger.Warn("拉取新闻源失败", "source", s.sources[i].Label, "error", err)
		}
	}
	if len(s.sources) > 0 && failed == len(s.sources) {
		return nil, fmt.Errorf("all news sources failed: %w", errors.Join(errs...))
	}

	var all []model.NewsItem
	for _, items := range results {
		all = append(all, items...)
	}
	items := dedupeNews(all)

	setCached(ctx, s.redisClient, s.logger, newsCacheKey, items, newsCacheTTL)
	s.logger.Debug("新闻聚合完成", "items", len(items), "failed_sources", failed)
	return items, nil
}

func (s *NewsService) fetchSource(ctx context.Context, src model.NewsSource) ([]model.NewsItem, error) {
	body, err := s.fetcher.get(ctx, "news", src.URL, feedAccept)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.Label, err)
	}

	items := make([]model.NewsItem, 0, s.perSource)
	for _, it := range feed.Items {
		if len(items) == s.perSource {
			break
		}
		title := stripMarkup(it.Title)
		if title == "" {
			continue
		}
		items = append(items, model.NewsItem{
			Title:       title,
			Link:        strings.TrimSpace(it.Link),
			Source:      src.Label,
			PublishedAt: it.PublishedParsed,
		})
	}

	metrics.NewsItemsFetched.WithLabelValues(src.Label).Add(float64(len(items)))
	return items, nil
}

// stripMarkup 去掉标题中的 HTML 标记并压缩空白
func stripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// dedupeNews 按链接去重，无链接时按标题去重，保留首次出现的条目
func dedupeNews(items []model.NewsItem) []model.NewsItem {
	seenLinks := make(map[string]bool, len(items))
	seenTitles := make(map[string]bool, len(items))
	out := make([]model.NewsItem, 0, len(items))
	for _, it := range items {
		if it.Link != "" {
			if seenLinks[it.Link] {
				continue
			}
			seenLinks[it.Link] = true
		} else {
			if seenTitles[it.Title] {
				continue
			}
			seenTitles[it.Title] = true
		}
		out = append(out, it)
	}
	return out
}
