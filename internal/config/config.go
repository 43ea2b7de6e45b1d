package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Cron       CronConfig       `mapstructure:"cron"`
	GitHub     GitHubConfig     `mapstructure:"github"`
	Statuspage StatuspageConfig `mapstructure:"statuspage"`
	Feed       FeedConfig       `mapstructure:"feed"`
	Sync       SyncConfig       `mapstructure:"sync"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type AdminConfig struct {
	Secret string `mapstructure:"secret"`
}

type CronConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	SourceSync string `mapstructure:"source_sync"`
}

type GitHubConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	RawBaseURL string        `mapstructure:"raw_base_url"`
	Token      string        `mapstructure:"token"`
	Timeout    time.Duration `mapstructure:"timeout"`
	PerPage    int           `mapstructure:"per_page"`
}

type StatuspageConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type FeedConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type SyncConfig struct {
	SampleCap        int `mapstructure:"sample_cap"`
	FetchConcurrency int `mapstructure:"fetch_concurrency"`
	FetchBatchSize   int `mapstructure:"fetch_batch_size"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CONTINUUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8000")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("admin.secret", "change-me")
	v.SetDefault("cron.enabled", false)
	v.SetDefault("cron.source_sync", "@every 6h")
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("github.raw_base_url", "https://raw.githubusercontent.com")
	v.SetDefault("github.token", "")
	v.SetDefault("github.timeout", "15s")
	v.SetDefault("github.per_page", 100)
	v.SetDefault("statuspage.timeout", "15s")
	v.SetDefault("feed.timeout", "30s")
	v.SetDefault("sync.sample_cap", 500)
	v.SetDefault("sync.fetch_concurrency", 5)
	v.SetDefault("sync.fetch_batch_size", 25)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
