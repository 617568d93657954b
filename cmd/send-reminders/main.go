// 到期/逾期提醒的定时入口，crontab 每天拉一次。
// 退出码：0 = 成功（包括没有到期项直接退出），1 = 拉取/配置失败。
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"asset_borrow_ledger/config"
	"asset_borrow_ledger/db"
	"asset_borrow_ledger/jobs"
	"asset_borrow_ledger/mailer"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Reminder job failed:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "itdept@ydc.com.ph"
	}

	dbConn := db.ConnectDB()
	runner := &jobs.Runner{
		Store:    db.NewRepo(dbConn),
		Mailer:   mailer.NewFromEnv(from),
		Log:      logger,
		From:     from,
		TestMode: os.Getenv("REMINDERS_TEST_MODE") == "true",
	}

	// 配了 Redis 就顺手拿个防重叠锁，没配也照常跑
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		runner.Lock = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := runner.Run(ctx, time.Now().UTC()); err != nil {
		fmt.Fprintln(os.Stderr, "Reminder job failed:", err)
		os.Exit(1)
	}
}
