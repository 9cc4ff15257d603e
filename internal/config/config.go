// Package config loads the engine's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/runlock"
	"jobboard-engine/internal/store"
)

type Config struct {
	App          App          `yaml:"app"`
	Polling      Polling      `yaml:"polling"`
	Placeholders Placeholders `yaml:"placeholders"`
	Store        Store        `yaml:"store"`
	Lock         Lock         `yaml:"lock"`
	RateLimit    RateLimit    `yaml:"rate_limit"`
	Sources      Sources      `yaml:"sources"`
}

type App struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	DataDir string `yaml:"data_dir"`
}

type Polling struct {
	IntervalMinutes       int  `yaml:"interval_minutes"`
	FetchTimeoutSeconds   int  `yaml:"fetch_timeout_seconds"`
	ProcessTimeoutSeconds int  `yaml:"process_timeout_seconds"`
	Concurrent            bool `yaml:"concurrent"`
}

// Placeholders are the company and creator ids stamped on external jobs.
// Blank values fall back to stable name-based ids.
type Placeholders struct {
	CompanyID string `yaml:"company_id"`
	CreatedBy string `yaml:"created_by"`
}

type Store struct {
	Driver string `yaml:"driver"` // sqlite | postgres
	Path   string `yaml:"path"`   // relative to data_dir
	DSN    string `yaml:"dsn"`
}

type Lock struct {
	Kind       string `yaml:"kind"` // none | file | redis
	Path       string `yaml:"path"`
	RedisAddr  string `yaml:"redis_addr"`
	Key        string `yaml:"key"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type Sources struct {
	Adzuna     Adzuna `yaml:"adzuna"`
	Jooble     Jooble `yaml:"jooble"`
	Lever      Board  `yaml:"lever"`
	Greenhouse Board  `yaml:"greenhouse"`
	Alerts     Alerts `yaml:"alerts"`
}

// Credentials are not stored here; see package secrets.
type Adzuna struct {
	Enabled        bool   `yaml:"enabled"`
	BaseURL        string `yaml:"base_url"`
	Country        string `yaml:"country"`
	What           string `yaml:"what"`
	SortBy         string `yaml:"sort_by"`
	MaxDaysOld     int    `yaml:"max_days_old"`
	ResultsPerPage int    `yaml:"results_per_page"`
	Page           int    `yaml:"page"`
}

type Jooble struct {
	Enabled  bool   `yaml:"enabled"`
	BaseURL  string `yaml:"base_url"`
	Keywords string `yaml:"keywords"`
	Location string `yaml:"location"`
	Page     int    `yaml:"page"`
}

// Board configures a credential-free ATS source (Lever, Greenhouse) that
// reads one public job board per company.
type Board struct {
	Enabled   bool           `yaml:"enabled"`
	BaseURL   string         `yaml:"base_url"`
	Companies []BoardCompany `yaml:"companies"`
}

type BoardCompany struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
}

type Alerts struct {
	Enabled     bool   `yaml:"enabled"`
	IMAPHost    string `yaml:"imap_host"`
	IMAPPort    int    `yaml:"imap_port"`
	Username    string `yaml:"username"`
	Folder      string `yaml:"folder"`
	SinceDays   int    `yaml:"since_days"`
	MaxMessages int    `yaml:"max_messages"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides deployment-specific settings from the environment.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.App.DataDir, "JOBBOARD_DATA_DIR")
	set(&cfg.App.Host, "JOBBOARD_HOST")
	set(&cfg.Store.Driver, "JOBBOARD_STORE_DRIVER")
	set(&cfg.Store.DSN, "JOBBOARD_STORE_DSN")
	set(&cfg.Lock.Kind, "JOBBOARD_LOCK_KIND")
	set(&cfg.Lock.RedisAddr, "JOBBOARD_LOCK_REDIS_ADDR")
	set(&cfg.Sources.Alerts.Username, "ALERTS_IMAP_USERNAME")

	if v := strings.TrimSpace(getenv("JOBBOARD_PORT")); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = p
		}
	}
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Polling.IntervalMinutes) * time.Minute
}

func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Polling.FetchTimeoutSeconds) * time.Second
}

func (c Config) ProcessTimeout() time.Duration {
	return time.Duration(c.Polling.ProcessTimeoutSeconds) * time.Second
}

// PlaceholderIDs parses the configured ids, defaulting blanks.
func (c Config) PlaceholderIDs() (domain.Placeholders, error) {
	ph := domain.DefaultPlaceholders()
	if s := strings.TrimSpace(c.Placeholders.CompanyID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return ph, fmt.Errorf("placeholders.company_id: %w", err)
		}
		ph.CompanyID = id
	}
	if s := strings.TrimSpace(c.Placeholders.CreatedBy); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return ph, fmt.Errorf("placeholders.created_by: %w", err)
		}
		ph.CreatedBy = id
	}
	return ph, nil
}

func (c Config) StoreOptions() store.Options {
	return store.Options{
		Driver: c.Store.Driver,
		Path:   c.dataPath(c.Store.Path),
		DSN:    c.Store.DSN,
	}
}

func (c Config) LockOptions() runlock.Options {
	return runlock.Options{
		Kind:      c.Lock.Kind,
		Path:      c.dataPath(c.Lock.Path),
		RedisAddr: c.Lock.RedisAddr,
		Key:       c.Lock.Key,
		TTL:       time.Duration(c.Lock.TTLSeconds) * time.Second,
	}
}

func (c Config) IMAPAddr() string {
	return fmt.Sprintf("%s:%d", c.Sources.Alerts.IMAPHost, c.Sources.Alerts.IMAPPort)
}

func (c Config) dataPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.App.DataDir, p)
}
