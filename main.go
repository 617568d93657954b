package main

import (
	"asset_borrow_ledger/app"
	"asset_borrow_ledger/config"
	"asset_borrow_ledger/db"
	"asset_borrow_ledger/routes"
	"context"
	"log"
	"os"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	// 员工档案引导，保证提醒汇总有人收
	app.BootstrapStaff(context.Background(), application.Config, db.NewRepo(application.DB))

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
