package db

import (
	"asset_borrow_ledger/models"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(conn); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return conn
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Profile{}, &models.BorrowRequest{}, &models.ActivityEntry{}); err != nil {
		return err
	}

	// 未归还的单子查得最多（面板 + 提醒任务），部分索引
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_due_at
	  ON %s (due_at)
	  WHERE returned_at IS NULL;
	`, models.RequestTable, models.RequestTable)).Error; err != nil {
		return err
	}

	// 活动日志按单子倒序翻
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_request_created_desc
	  ON %s (borrow_request_id, created_at DESC);
	`, models.ActivityTable, models.ActivityTable)).Error; err != nil {
		return err
	}

	return nil
}
