package configs

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("CONTACT_RATE_LIMIT_MAX", "")
	t.Setenv("SMTP_FROM", "")
	t.Setenv("SMTP_USER", "mailer@example.com")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_NOTIFY_EMAIL", "")
	t.Setenv("CLIENT_URL", "http://a.test, http://b.test ,")

	cfg := Load()
	if cfg.ContactRateLimitMax != 3 || cfg.ContactRateLimitWindow != 15*time.Minute {
		t.Fatalf("contact limit = %d/%s", cfg.ContactRateLimitMax, cfg.ContactRateLimitWindow)
	}
	if cfg.MaxFileSize != 5*1024*1024 || cfg.MaxFiles != 10 {
		t.Fatalf("upload limits = %d/%d", cfg.MaxFileSize, cfg.MaxFiles)
	}
	if cfg.SMTPFrom != "mailer@example.com" || cfg.AdminNotifyEmail != "admin@example.com" {
		t.Fatalf("fallbacks: from=%q notify=%q", cfg.SMTPFrom, cfg.AdminNotifyEmail)
	}
	if len(cfg.ClientURLs) != 2 || cfg.ClientURLs[1] != "http://b.test" {
		t.Fatalf("client urls = %q", cfg.ClientURLs)
	}
}

func TestLoadBuildsDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "portfolio")
	t.Setenv("DB_USER", "me")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_PORT", "")

	cfg := Load()
	if !strings.HasPrefix(cfg.DatabaseURL, "postgres://me:pw@db:5432/portfolio?") {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_FILES", "lots")
	t.Setenv("JWT_TTL", "-1h")
	cfg := Load()
	if cfg.MaxFiles != 10 || cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("MaxFiles=%d JWTTTL=%s", cfg.MaxFiles, cfg.JWTTTL)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{Env: "production", MaxFileSize: 1, ContactRateLimitMax: 1, ContactRateLimitWindow: time.Minute}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("Validate = %v", err)
	}

	cfg.DatabaseURL = "postgres://x"
	cfg.JWTSecret = "s"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate = %v", err)
	}
}

func TestEnabledSwitches(t *testing.T) {
	cfg := &Config{SMTPHost: "smtp.test"}
	if cfg.SMTPEnabled() {
		t.Fatalf("SMTP enabled without a sender")
	}
	cfg.SMTPFrom = "me@test"
	if !cfg.SMTPEnabled() {
		t.Fatalf("SMTP disabled with host and sender")
	}
	if cfg.OSSEnabled() {
		t.Fatalf("OSS enabled without credentials")
	}
}
