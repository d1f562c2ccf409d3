package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

var (
	errJWTSecretRequired = errors.New("auth.jwt_secret is required outside dev")
	errInvalidBaseURL    = errors.New("base_url must be an absolute http(s) url")
)

type Config struct {
	Env             string `yaml:"env"`
	BaseURL         string `yaml:"base_url"`
	ShortCodeLength int    `yaml:"short_code_length"`
	LogLevel        string `yaml:"log_level"`
	HTTPServer      `yaml:"http_server"`
	Postgres        `yaml:"postgres"`
	Redis           `yaml:"redis"`
	Auth            `yaml:"auth"`
	RateLimit       `yaml:"rate_limit"`
	Analytics       `yaml:"analytics"`
}

type HTTPServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	MigrationsPath  string        `yaml:"migrations_path"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	MigrationsPath:  "file://migrations",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(p.User), url.QueryEscape(p.Password), p.Host, p.Port, p.DB, p.SSLMode)
}

// Redis configures the short link cache. An empty Addr disables caching.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

var defaultRedis = Redis{
	TTL: time.Hour,
}

type Auth struct {
	GoogleClientID     string        `yaml:"google_client_id"`
	GoogleClientSecret string        `yaml:"google_client_secret"`
	GoogleRedirectURL  string        `yaml:"google_redirect_url"`
	JWTSecret          string        `yaml:"jwt_secret"`
	SessionTTL         time.Duration `yaml:"session_ttl"`
	SuccessRedirectURL string        `yaml:"success_redirect_url"`
}

var defaultAuth = Auth{
	GoogleRedirectURL:  "http://localhost:8080/auth/google/callback",
	SessionTTL:         24 * time.Hour,
	SuccessRedirectURL: "/auth/success",
}

type RateLimit struct {
	Disabled bool          `yaml:"disabled"`
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

var defaultRateLimit = RateLimit{
	Requests: 100,
	Window:   15 * time.Minute,
}

type Analytics struct {
	// Timezone names the location whose calendar days bucket visits.
	Timezone  string `yaml:"timezone"`
	MaxVisits int    `yaml:"max_visits"`
}

var defaultAnalytics = Analytics{
	Timezone:  "Local",
	MaxVisits: 100_000,
}

// Location resolves Timezone.
func (a *Analytics) Location() (*time.Location, error) {
	return time.LoadLocation(a.Timezone)
}

// Load reads the YAML config at path over the defaults. Values from a .env file in
// the working directory and from the process environment override secrets.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
	}
	defer f.Close()

	var cfg Config
	setDefaults(&cfg)

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: failed to load .env file: %w", op, err)
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.BaseURL = "http://localhost:8080"
	cfg.ShortCodeLength = 8
	cfg.LogLevel = "info"
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = defaultPostgres
	cfg.Redis = defaultRedis
	cfg.Auth = defaultAuth
	cfg.RateLimit = defaultRateLimit
	cfg.Analytics = defaultAnalytics
}

func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"POSTGRES_PASSWORD":    &cfg.Postgres.Password,
		"REDIS_PASSWORD":       &cfg.Redis.Password,
		"GOOGLE_CLIENT_ID":     &cfg.Auth.GoogleClientID,
		"GOOGLE_CLIENT_SECRET": &cfg.Auth.GoogleClientSecret,
		"JWT_SECRET":           &cfg.Auth.JWTSecret,
	}

	for key, dst := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
}

func (cfg *Config) validate() error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errInvalidBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Env != EnvDev && cfg.Auth.JWTSecret == "" {
		return errJWTSecretRequired
	}

	if _, err := cfg.Analytics.Location(); err != nil {
		return fmt.Errorf("invalid analytics.timezone: %w", err)
	}

	return nil
}
