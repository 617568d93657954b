package app

import (
	"asset_borrow_ledger/db"
	"asset_borrow_ledger/mailer"
	"asset_borrow_ledger/session"
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
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
	Mailer mailer.Mailer
	Log    *zap.Logger
	Config Config

	appSess *session.AppSessionStore
}

// Config 从环境变量读取
type Config struct {
	RedisAddr    string
	RedisPwd     string
	WebOrigin    string
	SessionTTL   time.Duration
	MagicLinkTTL time.Duration
	FromEmail    string
	StaffEmails  []string // 引导用：启动时建档并升为 staff
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

func MustNew() *App {
	cfg := loadConfig()

	dbConn := db.ConnectDB()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("zap: %v", err)
	}

	// --- Gin ---
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))
	useCORS(r, cfg.WebOrigin)

	a := &App{
		Router: r,
		DB:     dbConn,
		RDB:    rdb,
		Mailer: mailer.NewFromEnv(cfg.FromEmail),
		Log:    logger,
		Config: cfg,
		appSess: session.NewAppSessionStore(rdb, cfg.SessionTTL),
	}
	return a
}

func (a *App) Close() {
	_ = a.RDB.Close()
	_ = a.Log.Sync()
}

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}

	ttl := 24 * time.Hour
	if d, err := time.ParseDuration(get("SESSION_TTL_SECONDS", "86400") + "s"); err == nil {
		ttl = d
	}
	linkTTL := 15 * time.Minute
	if d, err := time.ParseDuration(get("MAGIC_LINK_TTL_SECONDS", "900") + "s"); err == nil {
		linkTTL = d
	}

	staffCSV := os.Getenv("STAFF_EMAILS") // 例如: "it1@ex.com,it2@ex.com"
	var staff []string
	for _, s := range strings.Split(staffCSV, ",") {
		if t := strings.TrimSpace(s); t != "" {
			staff = append(staff, strings.ToLower(t))
		}
	}

	return Config{
		RedisAddr:    get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:     os.Getenv("REDIS_PASSWORD"),
		WebOrigin:    get("WEB_ORIGIN", "http://localhost:5173"),
		SessionTTL:   ttl,
		MagicLinkTTL: linkTTL,
		FromEmail:    get("SMTP_FROM", "itdept@ydc.com.ph"),
		StaffEmails:  staff,
	}
}
