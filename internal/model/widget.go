package model

import "time"

// WeatherReport 当前天气
type WeatherReport struct {
	Temperature float64   `json:"temperature"`
	WindSpeed   float64   `json:"wind_speed"`
	WeatherCode int       `json:"weather_code"`
	ObservedAt  time.Time `json:"observed_at"`
}

// CalendarEvent 日历条目（节日、蜡烛点燃时间等）
type CalendarEvent struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Date     string `json:"date"`
}
