package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"noticeboard/internal/model"
	"noticeboard/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	weatherCacheTTL  = 15 * time.Minute
	calendarCacheTTL = time.Hour
	jsonAccept       = "application/json"
)

// WidgetService 天气与日历外部接口代理
type WidgetService struct {
	weatherURL  string
	calendarURL string
	tzid        string
	fetcher     *fetcher
	redisClient *redis.Client
	logger      *logger.Logger
}

// NewWidgetService 创建小组件服务实例
func NewWidgetService(weatherURL, calendarURL, tzid string, client *http.Client, redisClient *redis.Client, logger *logger.Logger) *WidgetService {
	return &WidgetService{
		weatherURL:  weatherURL,
		calendarURL: calendarURL,
		tzid:        tzid,
		fetcher:     newFetcher(client, logger),
		redisClient: redisClient,
		logger:      logger,
	}
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// openMeteoResponse Open-Meteo 当前天气响应
type openMeteoResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
		Time        string  `json:"time"`
	} `json:"current_weather"`
}

// Weather 获取经纬度处的当前天气
func (s *WidgetService) Weather(ctx context.Context, lat, lon float64) (*model.WeatherReport, error) {
	cacheKey := fmt.Sprintf("widget:weather:%.2f:%.2f", lat, lon)
	var cached model.WeatherReport
	if getCached(ctx, s.redisClient, cacheKey, &cached) {
		return &cached, nil
	}

	q := url.Values{}
	q.Set("latitude", coord(lat))
	q.Set("longitude", coord(lon))
	q.Set("current_weather", "true")
	q.Set("timezone", "UTC")

	body, err := s.fetcher.get(ctx, "weather", s.weatherURL+"?"+q.Encode(), jsonAccept)
	if err != nil {
		return nil, err
	}

	var resp openMeteoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode weather: %v", ErrUpstream, err)
	}

	report := &model.WeatherReport{
		Temperature: resp.CurrentWeather.Temperature,
		WindSpeed:   resp.CurrentWeather.WindSpeed,
		WeatherCode: resp.CurrentWeather.WeatherCode,
	}
	if t, err := time.Parse("2006-01-02T15:04", resp.CurrentWeather.Time); err == nil {
		report.ObservedAt = t
	}

	setCached(ctx, s.redisClient, s.logger, cacheKey, report, weatherCacheTTL)
	return report, nil
}

// hebcalResponse Hebcal 日历响应
type hebcalResponse struct {
	Items []struct {
		Title    string `json:"title"`
		Category string `json:"category"`
		Date     string `json:"date"`
	} `json:"items"`
}

// Calendar 获取经纬度处本周的日历条目
func (s *WidgetService) Calendar(ctx context.Context, lat, lon float64) ([]model.CalendarEvent, error) {
	cacheKey := fmt.Sprintf("widget:calendar:%.2f:%.2f", lat, lon)
	var cached []model.CalendarEvent
	if getCached(ctx, s.redisClient, cacheKey, &cached) {
		return cached, nil
	}

	q := url.Values{}
	q.Set("cfg", "json")
	q.Set("latitude", coord(lat))
	q.Set("longitude", coord(lon))
	q.Set("tzid", s.tzid)
	q.Set("M", "on")

	body, err := s.fetcher.get(ctx, "calendar", s.calendarURL+"?"+q.Encode(), jsonAccept)
	if err != nil {
		return nil, err
	}

	var resp hebcalResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode calendar: %v", ErrUpstream, err)
	}

	events := make([]model.CalendarEvent, 0, len(resp.Items))
	for _, it := range resp.Items {
		events = append(events, model.CalendarEvent{Title: it.Title, Category: it.Category, Date: it.Date})
	}

	setCached(ctx, s.redisClient, s.logger, cacheKey, events, calendarCacheTTL)
	return events, nil
}
