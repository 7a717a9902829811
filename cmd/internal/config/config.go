package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultCRMBaseURL     = "https://crm.rdstation.com/api/v1"
	DefaultReceitaBaseURL = "https://minhareceita.org/"

	// DefaultScanLimit is the page size used by the CNPJ lookups. The CRM caps a
	// page at 200 records and only one page is ever read.
	DefaultScanLimit = 200
)

var ErrMissingVar = errors.New("missing required environment variable")

type CRMConfig struct {
	BaseURL string
	Token   string

	ContactCNPJFieldID string
	CompanyCNPJFieldID string
	// DealCNPJFieldID is kept for deal sync; the form flow never reads it.
	DealCNPJFieldID string

	ScanLimit      int
	RelinkContacts bool
}

type ReceitaConfig struct {
	Enabled bool
	BaseURL string
}

type RateLimitConfig struct {
	Enabled      bool
	RPS          float64
	Burst        int
	IdleTTL      time.Duration
	CleanupEvery time.Duration
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	StatsPrefix string
}

// Config is built once at startup and handed to every constructor that needs it.
type Config struct {
	Host     string
	Port     string
	LogLevel string
	NodeID   int64

	StrictCNPJ bool
	// TrustProxyHeaders takes the client IP from X-Forwarded-For. Only enable it
	// behind a proxy that overwrites the header.
	TrustProxyHeaders bool

	CRM       CRMConfig
	Receita   ReceitaConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	r := &reader{}

	cfg := &Config{
		Host:       r.str("HOST", "0.0.0.0"),
		Port:       r.str("PORT", "5000"),
		LogLevel:   strings.ToLower(r.str("LOG_LEVEL", "info")),
		NodeID:     int64(r.int("NODE_ID", 1)),
		StrictCNPJ: r.bool("STRICT_CNPJ", false),

		TrustProxyHeaders: r.bool("TRUST_PROXY_HEADERS", false),
		CRM: CRMConfig{
			BaseURL:            strings.TrimRight(r.str("CRM_API_BASE_URL", DefaultCRMBaseURL), "/"),
			Token:              r.required("CRM_API_TOKEN"),
			ContactCNPJFieldID: r.required("CRM_CONTACT_CNPJ_FIELD_ID"),
			CompanyCNPJFieldID: r.required("CRM_COMPANY_CNPJ_FIELD_ID"),
			DealCNPJFieldID:    r.str("CRM_DEAL_CNPJ_FIELD_ID", ""),
			ScanLimit:          r.int("CRM_SCAN_LIMIT", DefaultScanLimit),
			RelinkContacts:     r.bool("CRM_RELINK_CONTACTS", false),
		},
		Receita: ReceitaConfig{
			Enabled: r.bool("RECEITA_LOOKUP_ENABLED", false),
			BaseURL: r.str("RECEITA_BASE_URL", DefaultReceitaBaseURL),
		},
		RateLimit: RateLimitConfig{
			Enabled:      r.bool("RATE_LIMIT_ENABLED", true),
			RPS:          r.float("RATE_LIMIT_RPS", 1),
			Burst:        r.int("RATE_LIMIT_BURST", 5),
			IdleTTL:      r.duration("RATE_LIMIT_IDLE_TTL", 15*time.Minute),
			CleanupEvery: r.duration("RATE_LIMIT_CLEANUP_EVERY", 2*time.Minute),
		},
		Redis: RedisConfig{
			Addr:        r.str("REDIS_ADDR", ""),
			Password:    r.str("REDIS_PASSWORD", ""),
			DB:          r.int("REDIS_DB", 0),
			StatsPrefix: r.str("RATE_STATS_PREFIX", "crmsync:ratelimit"),
		},
	}

	if r.err != nil {
		return nil, r.err
	}

	if cfg.CRM.ScanLimit <= 0 {
		return nil, fmt.Errorf("CRM_SCAN_LIMIT must be positive, got %d", cfg.CRM.ScanLimit)
	}
	return cfg, nil
}

// reader keeps the first error so Load can read every variable in one pass.
type reader struct {
	err error
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) str(key, def string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return def
	}

	val = strings.TrimSpace(val)
	if val == "" {
		return def
	}
	return val
}

func (r *reader) required(key string) string {
	val := r.str(key, "")
	if val == "" {
		r.fail(fmt.Errorf("%w: %s", ErrMissingVar, key))
	}
	return val
}

func (r *reader) int(key string, def int) int {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		r.fail(fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return val
}

func (r *reader) float(key string, def float64) float64 {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}

	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.fail(fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return val
}

func (r *reader) bool(key string, def bool) bool {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		r.fail(fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return val
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		r.fail(fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return val
}
