package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration (file + env overrides)
type Config struct {
	Server struct {
		Addr     string `mapstructure:"addr"`
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"server"`

	Backend struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"backend"`

	UI struct {
		DefaultRegion string        `mapstructure:"default_region"`
		HistoryDepth  int           `mapstructure:"history_depth"`
		RenderWait    time.Duration `mapstructure:"render_wait"`
	} `mapstructure:"ui"`

	Session struct {
		CookieName string        `mapstructure:"cookie_name"`
		IdleTTL    time.Duration `mapstructure:"idle_ttl"`
	} `mapstructure:"session"`

	Storage struct {
		Driver  string `mapstructure:"driver"` // memory | file | redis | postgres
		FileDir string `mapstructure:"file_dir"`
	} `mapstructure:"storage"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Postgres struct {
		Host         string `mapstructure:"host"`
		Port         int    `mapstructure:"port"`
		User         string `mapstructure:"user"`
		Password     string `mapstructure:"password"`
		DBName       string `mapstructure:"db_name"`
		SSLMode      string `mapstructure:"ssl_mode"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
		MaxIdleConns int    `mapstructure:"max_idle_conns"`
	} `mapstructure:"postgres"`
}

// keys are bound explicitly so APP_* variables work without a config file.
var keys = []string{
	"server.addr", "server.log_level",
	"backend.base_url", "backend.timeout",
	"ui.default_region", "ui.history_depth", "ui.render_wait",
	"session.cookie_name", "session.idle_ttl",
	"storage.driver", "storage.file_dir",
	"redis.addr", "redis.password", "redis.db",
	"postgres.host", "postgres.port", "postgres.user", "postgres.password",
	"postgres.db_name", "postgres.ssl_mode", "postgres.max_open_conns", "postgres.max_idle_conns",
}

func Load() Config {
	cfg, err := LoadFrom("configs")
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadFrom reads application.yaml from dir (optional) and applies APP_ env overrides.
func LoadFrom(dir string) (Config, error) {
	v := viper.New()
	v.SetConfigName("application")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	_ = v.ReadInConfig() // optional; env can fully configure

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	validate(&cfg)
	return cfg, nil
}

func validate(c *Config) {
	if c.Server.Addr == "" { c.Server.Addr = ":8080" }
	if c.Server.LogLevel == "" { c.Server.LogLevel = "info" }
	if c.Backend.BaseURL == "" { c.Backend.BaseURL = "http://localhost:8000" }
	if c.Backend.Timeout <= 0 { c.Backend.Timeout = 10 * time.Second }
	if c.UI.DefaultRegion == "" { c.UI.DefaultRegion = "eu" }
	c.UI.DefaultRegion = strings.ToLower(c.UI.DefaultRegion)
	if c.UI.HistoryDepth <= 0 { c.UI.HistoryDepth = 3 }
	if c.UI.RenderWait < 0 { c.UI.RenderWait = 0 }
	if c.Session.CookieName == "" { c.Session.CookieName = "wowtoc_session" }
	if c.Session.IdleTTL <= 0 { c.Session.IdleTTL = 30 * time.Minute }
	if c.Storage.Driver == "" { c.Storage.Driver = "file" }
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	if c.Storage.FileDir == "" { c.Storage.FileDir = "./data" }
	if c.Redis.Addr == "" { c.Redis.Addr = "localhost:6379" }
	if c.Postgres.Port == 0 { c.Postgres.Port = 5432 }
	if c.Postgres.SSLMode == "" { c.Postgres.SSLMode = "disable" }
	if c.Postgres.MaxOpenConns == 0 { c.Postgres.MaxOpenConns = 10 }
	if c.Postgres.MaxIdleConns == 0 { c.Postgres.MaxIdleConns = 2 }
}

func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Password,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.DBName,
		c.Postgres.SSLMode,
	)
}
