package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/MPfria02/Library-Management-System-sub001/app"
	"github.com/MPfria02/Library-Management-System-sub001/config"
	"github.com/MPfria02/Library-Management-System-sub001/routes"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })

	// 首个管理员的开机引导（已有管理员时什么都不做）
	app.BootstrapFirstAdmin(context.Background(), application.Config, application.Store)

	routes.RegisterRoutes(r, application)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
