package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	File     FileConfig     `yaml:"file"`
	Track    TrackConfig    `yaml:"track"`
	Mail     MailConfig     `yaml:"mail"`
	Frontend FrontendConfig `yaml:"frontend"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours"`
}

type FileConfig struct {
	UploadPath    string `yaml:"upload_path"`
	MaxResumeSize int64  `yaml:"max_resume_size"`
}

// TrackConfig 追踪管线配置。限流、地理解析、邮件通知三项能力相互独立，
// 可分别关闭（零值均为开启）。
type TrackConfig struct {
	DisableRateLimit     bool   `yaml:"disable_rate_limit"`
	RateLimitWindow      int    `yaml:"rate_limit_window_seconds"`
	RateLimitMaxHits     int    `yaml:"rate_limit_max_hits"`
	SweepInterval        int    `yaml:"sweep_interval_seconds"`
	DisableGeo           bool   `yaml:"disable_geo"`
	GeoEndpoint          string `yaml:"geo_endpoint"`
	GeoTimeoutSeconds    int    `yaml:"geo_timeout_seconds"`
	DisableNotifications bool   `yaml:"disable_notifications"`
}

type MailConfig struct {
	APIKey string `yaml:"api_key"`
	From   string `yaml:"from"`
}

type FrontendConfig struct {
	BaseURL string `yaml:"base_url"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxAge     int    `yaml:"max_age"`
	MaxBackups int    `yaml:"max_backups"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	// 首先尝试从 YAML 文件加载
	if data, err := os.ReadFile("configs/config.yaml"); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// 然后从环境变量覆盖
	cfg.overrideFromEnv()

	// 设置默认值
	cfg.setDefaults()

	return cfg, nil
}

func (c *Config) overrideFromEnv() {
	// Database
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.Database.URL = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Database.Port = port
		}
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.DBName = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Server.Port = port
		}
	}
	if val := os.Getenv("GIN_MODE"); val != "" {
		c.Server.Mode = val
	}

	// File
	if val := os.Getenv("UPLOAD_PATH"); val != "" {
		c.File.UploadPath = val
	}

	// Track
	if val := os.Getenv("TRACK_DISABLE_RATE_LIMIT"); val != "" {
		c.Track.DisableRateLimit = val == "true" || val == "1"
	}
	if val := os.Getenv("TRACK_DISABLE_GEO"); val != "" {
		c.Track.DisableGeo = val == "true" || val == "1"
	}
	if val := os.Getenv("TRACK_DISABLE_NOTIFICATIONS"); val != "" {
		c.Track.DisableNotifications = val == "true" || val == "1"
	}
	if val := os.Getenv("GEO_ENDPOINT"); val != "" {
		c.Track.GeoEndpoint = val
	}

	// Mail
	if val := os.Getenv("RESEND_API_KEY"); val != "" {
		c.Mail.APIKey = val
	}
	if val := os.Getenv("RESEND_FROM_EMAIL"); val != "" {
		c.Mail.From = val
	}

	// Frontend
	if val := os.Getenv("FRONTEND_BASE_URL"); val != "" {
		c.Frontend.BaseURL = val
	}
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}

	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.JWT.ExpireHours == 0 {
		c.JWT.ExpireHours = 24
	}

	if c.File.UploadPath == "" {
		c.File.UploadPath = "./uploads"
	}
	if c.File.MaxResumeSize == 0 {
		c.File.MaxResumeSize = 10485760 // 10MB
	}

	if c.Track.RateLimitWindow == 0 {
		c.Track.RateLimitWindow = 60
	}
	if c.Track.RateLimitMaxHits == 0 {
		c.Track.RateLimitMaxHits = 6
	}
	if c.Track.SweepInterval == 0 {
		c.Track.SweepInterval = 120
	}
	if c.Track.GeoEndpoint == "" {
		c.Track.GeoEndpoint = "http://ip-api.com/json"
	}
	if c.Track.GeoTimeoutSeconds == 0 {
		c.Track.GeoTimeoutSeconds = 3
	}

	if c.Mail.From == "" {
		c.Mail.From = "Sentinel <onboarding@resend.dev>"
	}

	if c.Frontend.BaseURL == "" {
		c.Frontend.BaseURL = "http://localhost:3000"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = "./logs/app.log"
	}
}

func (c *Config) GetDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.DBName, c.Database.SSLMode)
}
