package app

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MPfria02/Library-Management-System-sub001/db"
	"github.com/MPfria02/Library-Management-System-sub001/models"
	"github.com/MPfria02/Library-Management-System-sub001/session"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	WA     *webauthn.WebAuthn
	Config Config

	Store db.Store
	Sess  session.Sessions
}

// Config 从环境变量读取
type Config struct {
	RedisAddr string
	RedisPwd  string

	WebOrigin   string
	CORSOrigins []string
	RPID        string
	RPOrigins   []string

	SessionBackend string // "redis" / "jwt"
	JWTSecret      string
	SessionTTL     time.Duration
	CeremonyTTL    time.Duration

	LoanDays       int
	AdminEmails    []string
	BootstrapEmail string

	AppName  string
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

func MustNew() *App {
	cfg := loadConfig()

	// --- DB: Postgres（DEV_NO_DB=1 时跳过，纯内存跑）---
	var (
		dbConn *gorm.DB
		store  db.Store
	)
	if os.Getenv("DEV_NO_DB") == "1" {
		log.Println("DEV_NO_DB=1, running on in-memory store")
		store = db.NewMemoryStore()
	} else {
		dbConn = db.ConnectDB()
		store = db.NewRepo(dbConn)
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	// --- WebAuthn RP ---
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: "Library Passkeys",
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		log.Fatalf("webauthn: %v", err)
	}

	// --- 登录会话后端 ---
	var sess session.Sessions
	switch cfg.SessionBackend {
	case "jwt":
		sess = session.NewJWTSessionStore([]byte(cfg.JWTSecret), cfg.SessionTTL)
	default:
		sess = session.NewAppSessionStore(rdb, cfg.SessionTTL)
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.CORSOrigins)
	return &App{
		Router: r, DB: dbConn, RDB: rdb, WA: wa, Config: cfg,
		Store: store, Sess: sess,
	}
}

func (a *App) Close() { _ = a.RDB.Close() }

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}
	getInt := func(k string, def int) int {
		if n, err := strconv.Atoi(os.Getenv(k)); err == nil && n > 0 {
			return n
		}
		return def
	}
	csv := func(raw string) []string {
		var out []string
		for _, s := range strings.Split(raw, ",") {
			if t := strings.TrimSpace(s); t != "" {
				out = append(out, t)
			}
		}
		return out
	}

	ttl := time.Duration(getInt("SESSION_TTL_SECONDS", 86400)) * time.Second
	ceremony := time.Duration(getInt("WEBAUTHN_TTL_SECONDS", 300)) * time.Second

	webOrigin := get("WEB_ORIGIN", "http://localhost:5173")
	corsOrigins := csv(get("CORS_ORIGINS", webOrigin))
	rpOrigins := csv(get("RP_ORIGINS", webOrigin))

	var admins []string
	for _, s := range csv(os.Getenv("ADMIN_EMAILS")) { // 例如: "admin@ex.com,ops@ex.com"
		admins = append(admins, strings.ToLower(s))
	}

	return Config{
		RedisAddr: get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:  os.Getenv("REDIS_PASSWORD"),

		WebOrigin:   webOrigin,
		CORSOrigins: corsOrigins,
		RPID:        get("RP_ID", "localhost"),
		RPOrigins:   rpOrigins,

		SessionBackend: get("SESSION_BACKEND", "redis"),
		JWTSecret:      get("JWT_SECRET", "dev-secret-change-me"),
		SessionTTL:     ttl,
		CeremonyTTL:    ceremony,

		LoanDays:       getInt("LOAN_PERIOD_DAYS", models.DefaultLoanPeriodDays),
		AdminEmails:    admins,
		BootstrapEmail: strings.ToLower(os.Getenv("BOOTSTRAP_ADMIN_EMAIL")),

		AppName:  get("APP_NAME", "Library"),
		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: get("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USERNAME"),
		SMTPPass: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom: os.Getenv("SMTP_FROM"),
	}
}

// 帮助函数：新用户 ID（UUID 字符串 → []byte 作为 userHandle）
func NewUserID() []byte { id := uuid.New(); return id[:] }
