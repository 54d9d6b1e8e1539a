package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the API process reads from its environment.
// No package below cmd/ reads environment variables directly.
type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	Auth   AuthConfig
	NATS   NATSConfig
	Phones PhonesConfig
}

type AppConfig struct {
	Env      string
	Port     int
	LogLevel string
}

// DBConfig is optional outside production; an empty Host selects the
// in-memory call store.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

// RedisConfig is optional; an empty Host disables the parcel cache.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	CacheTTL time.Duration
}

type AuthConfig struct {
	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	AccessTokenTTL time.Duration
}

// NATSConfig is optional; an empty URL disables record publishing.
type NATSConfig struct {
	URL  string
	Name string
}

// PhonesConfig describes the SIM slots and which subscription lives in each.
type PhonesConfig struct {
	DefaultSlot int
	// Slots maps slot index to a display name.
	Slots map[int]string
	// Subscriptions maps subscription id to slot index.
	Subscriptions map[int]int
}

// LoadFile reads KEY=VALUE pairs from path into the environment (without
// overriding variables that are already set) and then calls Load.
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		return Config{}, fmt.Errorf("env file %s: %w", path, err)
	}
	return Load()
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	c.App.Port, parseErrs = intVar(parseErrs, "APP_PORT", 0, true)
	c.App.LogLevel = strings.TrimSpace(os.Getenv("LOG_LEVEL"))

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	c.DB.Port, parseErrs = intVar(parseErrs, "DB_PORT", 5432, false)
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	c.Redis.Port, parseErrs = intVar(parseErrs, "REDIS_PORT", 6379, false)
	c.Redis.Password = os.Getenv("REDIS_PASSWORD")
	c.Redis.DB, parseErrs = intVar(parseErrs, "REDIS_DB", 0, false)
	c.Redis.CacheTTL = durationVar("CALL_CACHE_TTL")

	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.JWTAudience = strings.TrimSpace(os.Getenv("JWT_AUDIENCE"))
	c.Auth.AccessTokenTTL = durationVar("JWT_ACCESS_TTL")

	c.NATS.URL = strings.TrimSpace(os.Getenv("NATS_URL"))
	c.NATS.Name = strings.TrimSpace(os.Getenv("NATS_NAME"))

	c.Phones.DefaultSlot, parseErrs = intVar(parseErrs, "PHONE_DEFAULT_SLOT", 0, false)
	{
		slots, err := ParseSlots(os.Getenv("PHONE_SLOTS"))
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.Phones.Slots = slots
		subs, err := ParseSubscriptions(os.Getenv("PHONE_SUBSCRIPTIONS"))
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.Phones.Subscriptions = subs
	}

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the config and fills in defaults. It must be called on an
// addressable Config for the defaults to stick.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_HOST is required in production"))
		}
	} else {
		if c.DB.Port <= 0 || c.DB.Port > 65535 {
			errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
		}
		if c.DB.User == "" {
			errs = append(errs, errors.New("DB_USER is required"))
		}
		if c.DB.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required"))
		}
		if c.DB.SSLMode == "" {
			if c.IsProduction() {
				errs = append(errs, errors.New("DB_SSLMODE is required in production"))
			} else {
				c.DB.SSLMode = "disable"
			}
		}
		if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
			errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
		}
	}

	if c.Redis.Host != "" && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}
	if c.Redis.CacheTTL <= 0 {
		c.Redis.CacheTTL = 10 * time.Minute
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Auth.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
		if c.Auth.JWTAudience == "" {
			errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
		}
	}
	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}

	if c.NATS.Name == "" {
		c.NATS.Name = "telephony-common"
	}

	if len(c.Phones.Slots) == 0 {
		c.Phones.Slots = map[int]string{c.Phones.DefaultSlot: "default"}
	}
	if _, ok := c.Phones.Slots[c.Phones.DefaultSlot]; !ok {
		errs = append(errs, fmt.Errorf("PHONE_DEFAULT_SLOT %d is not listed in PHONE_SLOTS", c.Phones.DefaultSlot))
	}
	for sub, slot := range c.Phones.Subscriptions {
		if _, ok := c.Phones.Slots[slot]; !ok {
			errs = append(errs, fmt.Errorf("PHONE_SUBSCRIPTIONS binds subscription %d to unknown slot %d", sub, slot))
		}
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// PostgresDSN contains secrets; never log it.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// ParseSlots parses "0:Work SIM,1:Personal" into slot names.
func ParseSlots(v string) (map[int]string, error) {
	out := map[int]string{}
	for _, part := range splitList(v) {
		k, name, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("PHONE_SLOTS entry %q must be slot:name", part)
		}
		slot, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || slot < 0 {
			return nil, fmt.Errorf("PHONE_SLOTS slot %q must be a non-negative integer", k)
		}
		out[slot] = strings.TrimSpace(name)
	}
	return out, nil
}

// ParseSubscriptions parses "3=0,4=1" into subscription id to slot.
func ParseSubscriptions(v string) (map[int]int, error) {
	out := map[int]int{}
	for _, part := range splitList(v) {
		k, s, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("PHONE_SUBSCRIPTIONS entry %q must be sub=slot", part)
		}
		sub, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || sub == -1 {
			return nil, fmt.Errorf("PHONE_SUBSCRIPTIONS subscription %q must be an integer other than -1", k)
		}
		slot, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("PHONE_SUBSCRIPTIONS slot %q must be an integer", s)
		}
		out[sub] = slot
	}
	return out, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intVar(errs []error, key string, def int, required bool) (int, []error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		if required {
			return 0, append(errs, fmt.Errorf("%s is required", key))
		}
		return def, errs
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, append(errs, fmt.Errorf("%s must be an integer, got %q", key, v))
	}
	return n, errs
}

func durationVar(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
