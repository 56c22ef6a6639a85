package app

import (
	"testing"
	"time"

	"github.com/MPfria02/Library-Management-System-sub001/models"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// 清掉宿主环境可能带着的值
	for _, k := range []string{
		"REDIS_ADDR", "WEB_ORIGIN", "CORS_ORIGINS", "RP_ID", "RP_ORIGINS",
		"SESSION_BACKEND", "SESSION_TTL_SECONDS", "WEBAUTHN_TTL_SECONDS",
		"LOAN_PERIOD_DAYS", "ADMIN_EMAILS",
	} {
		t.Setenv(k, "")
	}

	cfg := loadConfig()

	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.Equal(t, "http://localhost:5173", cfg.WebOrigin)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, "localhost", cfg.RPID)
	assert.Equal(t, "redis", cfg.SessionBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.CeremonyTTL)
	assert.Equal(t, models.DefaultLoanPeriodDays, cfg.LoanDays)
	assert.Empty(t, cfg.AdminEmails)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SESSION_TTL_SECONDS", "3600")
	t.Setenv("SESSION_BACKEND", "jwt")
	t.Setenv("LOAN_PERIOD_DAYS", "14")
	t.Setenv("ADMIN_EMAILS", " Root@Example.com , ops@example.com ")
	t.Setenv("CORS_ORIGINS", "https://lib.example.com,https://staff.example.com")

	cfg := loadConfig()

	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, "jwt", cfg.SessionBackend)
	assert.Equal(t, 14, cfg.LoanDays)
	assert.Equal(t, []string{"root@example.com", "ops@example.com"}, cfg.AdminEmails)
	assert.Equal(t, []string{"https://lib.example.com", "https://staff.example.com"}, cfg.CORSOrigins)
}

func TestLoadConfig_BadLoanPeriodFallsBack(t *testing.T) {
	t.Setenv("LOAN_PERIOD_DAYS", "-3")
	assert.Equal(t, models.DefaultLoanPeriodDays, loadConfig().LoanDays)

	t.Setenv("LOAN_PERIOD_DAYS", "not-a-number")
	assert.Equal(t, models.DefaultLoanPeriodDays, loadConfig().LoanDays)
}
