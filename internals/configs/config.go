package configs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// Config holds every process-level setting. It is built once in main and
// handed to the components that need it.
type Config struct {
	Env  string
	Port string

	DatabaseURL string
	DBLogLevel  string

	ClientURLs []string
	TrustProxy bool

	JWTSecret         string
	JWTTTL            time.Duration
	AdminEmail        string
	AdminPasswordHash string

	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	SMTPFrom         string
	AdminNotifyEmail string

	OSSEndpoint   string
	OSSAccessKey  string
	OSSSecretKey  string
	OSSBucket     string
	OSSPublicBase string

	UploadDir   string
	MaxFileSize int64
	MaxFiles    int

	ContactRateLimitMax    int
	ContactRateLimitWindow time.Duration
	GlobalRateLimitMax     int
	RateLimitRedisURL      string

	DispatchWorkers int
	DispatchQueue   int
	JanitorSchedule string

	// SeedDir holds demo content loaded at start; empty disables seeding.
	SeedDir string
}

// =======================
// ENV LOADER
// =======================

// LoadEnv reads .env when present. Variables already set in the process
// environment are never overridden.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] no .env file found, using system environment")
		return
	}
	log.Println("[INFO] .env file loaded")
}

// Load builds a Config from the environment.
func Load() *Config {
	LoadEnv()

	cfg := &Config{
		Env:  GetEnv("APP_ENV", "development"),
		Port: GetEnv("PORT", "5000"),

		DatabaseURL: databaseURL(),
		DBLogLevel:  GetEnv("DB_LOG_LEVEL", "warn"),

		ClientURLs: splitList(GetEnv("CLIENT_URL", "http://localhost:3000")),
		TrustProxy: envBool("TRUST_PROXY", false),

		JWTSecret:         GetEnv("JWT_SECRET"),
		JWTTTL:            envDuration("JWT_TTL", 24*time.Hour),
		AdminEmail:        GetEnv("ADMIN_EMAIL"),
		AdminPasswordHash: GetEnv("ADMIN_PASSWORD_HASH"),

		SMTPHost:         GetEnv("SMTP_HOST"),
		SMTPPort:         envInt("SMTP_PORT", 587),
		SMTPUser:         GetEnv("SMTP_USER"),
		SMTPPassword:     GetEnv("SMTP_PASSWORD"),
		SMTPFrom:         GetEnv("SMTP_FROM"),
		AdminNotifyEmail: GetEnv("ADMIN_NOTIFY_EMAIL"),

		OSSEndpoint:   GetEnv("ALI_OSS_ENDPOINT"),
		OSSAccessKey:  GetEnv("ALI_OSS_ACCESS_KEY"),
		OSSSecretKey:  GetEnv("ALI_OSS_SECRET_KEY"),
		OSSBucket:     GetEnv("ALI_OSS_BUCKET"),
		OSSPublicBase: GetEnv("ALI_OSS_PUBLIC_BASE"),

		UploadDir:   GetEnv("UPLOAD_DIR", "uploads"),
		MaxFileSize: int64(envInt("MAX_FILE_SIZE", 5*1024*1024)),
		MaxFiles:    envInt("MAX_FILES", 10),

		ContactRateLimitMax:    envInt("CONTACT_RATE_LIMIT_MAX", 3),
		ContactRateLimitWindow: envDuration("CONTACT_RATE_LIMIT_WINDOW", 15*time.Minute),
		GlobalRateLimitMax:     envInt("GLOBAL_RATE_LIMIT_MAX", 100),
		RateLimitRedisURL:      GetEnv("RATE_LIMIT_REDIS_URL"),

		DispatchWorkers: envInt("DISPATCH_WORKERS", 2),
		DispatchQueue:   envInt("DISPATCH_QUEUE", 64),
		JanitorSchedule: GetEnv("JANITOR_SCHEDULE", "@every 10m"),

		SeedDir: GetEnv("SEED_DIR"),
	}

	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUser
	}
	if cfg.AdminNotifyEmail == "" {
		cfg.AdminNotifyEmail = cfg.AdminEmail
	}
	return cfg
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL (or DB_HOST/DB_NAME) is not set"))
	}
	if c.JWTSecret == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET is not set"))
		} else {
			log.Println("[WARN] JWT_SECRET is not set, admin routes will reject every token")
		}
	}
	if c.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", c.MaxFileSize))
	}
	if c.ContactRateLimitMax <= 0 || c.ContactRateLimitWindow <= 0 {
		errs = append(errs, errors.New("contact rate limit must have a positive max and window"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool { return strings.EqualFold(c.Env, "production") }

// SMTPEnabled is true when outbound mail can actually be delivered.
func (c *Config) SMTPEnabled() bool { return c.SMTPHost != "" && c.SMTPFrom != "" }

// OSSEnabled is true when every media-host credential is present.
func (c *Config) OSSEnabled() bool {
	return c.OSSEndpoint != "" && c.OSSAccessKey != "" && c.OSSSecretKey != "" && c.OSSBucket != ""
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return strings.TrimSpace(value)
}

func databaseURL() string {
	if url := GetEnv("DATABASE_URL"); url != "" {
		return url
	}
	host := GetEnv("DB_HOST")
	name := GetEnv("DB_NAME")
	if host == "" || name == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=portfolio",
		GetEnv("DB_USER"),
		GetEnv("DB_PASSWORD"),
		host,
		GetEnv("DB_PORT", "5432"),
		name,
		GetEnv("DB_SSLMODE", "disable"),
	)
}

func envInt(key string, def int) int {
	if v := GetEnv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		log.Printf("[WARN] %s=%q is not a valid integer, using %d", key, v, def)
	}
	return def
}

func envBool(key string, def bool) bool {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[WARN] %s=%q is not a valid duration, using %s", key, v, def)
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// =======================
// GORM LOGGER CUSTOM
// =======================

type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger(level string) gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      parseLogLevel(level),
	}
}

func parseLogLevel(level string) gormLogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormLogger.Silent
	case "error":
		return gormLogger.Error
	case "info":
		return gormLogger.Info
	default:
		return gormLogger.Warn
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	file := utils.FileWithLineNum()

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error && !errors.Is(err, gormLogger.ErrRecordNotFound):
		sql, rows := fc()
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		sql, rows := fc()
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		sql, rows := fc()
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
