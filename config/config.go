package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用程序配置
type Config struct {
	APIPort  int
	LogLevel string
	LogFile  LogFileConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Email    EmailConfig
	Upload   UploadConfig
	News     NewsConfig
	Widgets  WidgetConfig
	Display  DisplayConfig
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Enabled    bool
	Path       string
	MaxSize    int // 单个文件最大大小，单位MB
	MaxBackups int
	MaxAge     int // 天
	Compress   bool
}

// DatabaseConfig MySQL数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

// EmailConfig 邮件配置
type EmailConfig struct {
	Host     string // SMTP服务器地址
	Port     int    // SMTP服务器端口
	Username string // 邮箱账号
	Password string // 邮箱密码
	From     string // 发件人
	FromName string // 发件人名称
}

// UploadConfig 图片上传配置
type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

// NewsConfig 新闻聚合配置
type NewsConfig struct {
	// Sources 原始格式为 label=url,label=url，顺序即显示顺序
	Sources        string
	ItemsPerSource int
}

// WidgetConfig 天气、日历外部接口配置
type WidgetConfig struct {
	WeatherAPIURL  string
	CalendarAPIURL string
	CalendarTZID   string
	RateLimitRPS   float64
	RateLimitBurst int
}

// DisplayConfig 展示会话配置
type DisplayConfig struct {
	SessionTTL time.Duration
	// OverrideStore 跳过自动跳转标志的存储，redis 或 memory
	OverrideStore string
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 加载.env文件
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	return &Config{
		APIPort:  getInt("API_PORT", 8080),
		LogLevel: os.Getenv("LOG_LEVEL"),
		LogFile: LogFileConfig{
			Enabled:    getBool("LOG_FILE_ENABLED", false),
			Path:       getString("LOG_FILE_PATH", "logs/noticeboard.log"),
			MaxSize:    getInt("LOG_FILE_MAX_SIZE", 100),
			MaxBackups: getInt("LOG_FILE_MAX_BACKUPS", 7),
			MaxAge:     getInt("LOG_FILE_MAX_AGE", 30),
			Compress:   getBool("LOG_FILE_COMPRESS", true),
		},
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     getInt("DB_PORT", 3306),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getInt("REDIS_PORT", 6379),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Email: EmailConfig{
			Host:     os.Getenv("EMAIL_HOST"),
			Port:     getInt("EMAIL_PORT", 587),
			Username: os.Getenv("EMAIL_USERNAME"),
			Password: os.Getenv("EMAIL_PASSWORD"),
			From:     os.Getenv("EMAIL_FROM"),
			FromName: os.Getenv("EMAIL_FROM_NAME"),
		},
		Upload: UploadConfig{
			Dir:      getString("UPLOAD_DIR", "uploads"),
			MaxBytes: int64(getInt("UPLOAD_MAX_BYTES", 10<<20)),
		},
		News: NewsConfig{
			Sources:        os.Getenv("NEWS_SOURCES"),
			ItemsPerSource: getInt("NEWS_ITEMS_PER_SOURCE", 10),
		},
		Widgets: WidgetConfig{
			WeatherAPIURL:  getString("WEATHER_API_URL", "https://api.open-meteo.com/v1/forecast"),
			CalendarAPIURL: getString("CALENDAR_API_URL", "https://www.hebcal.com/shabbat"),
			CalendarTZID:   getString("CALENDAR_TZID", "Asia/Jerusalem"),
			RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 1),
			RateLimitBurst: getInt("RATE_LIMIT_BURST", 5),
		},
		Display: DisplayConfig{
			SessionTTL:    getDuration("DISPLAY_SESSION_TTL", 30*time.Minute),
			OverrideStore: strings.ToLower(getString("DISPLAY_OVERRIDE_STORE", "redis")),
		},
	}, nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
