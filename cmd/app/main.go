package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/avdeenkov/partybook/api"
	"github.com/avdeenkov/partybook/config"
	"github.com/avdeenkov/partybook/internal/backend"
	"github.com/avdeenkov/partybook/internal/bootstrap"
	"github.com/avdeenkov/partybook/internal/queries"
	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := backend.NewHTTPClient(cfg.Backend.BaseURL, cfg.Backend.Timeout())
	store := queries.NewStore(client, cfg.Cache.PackagesTTL())

	router := gin.Default()
	router.SetFuncMap(api.TemplateFuncs())
	router.LoadHTMLGlob(filepath.Join(cfg.HTTP.TemplatesDir, "*.tmpl"))

	api.NewPageHandler(store).Register(router.Group("/"))
	api.NewAdminHandler(store).Register(router.Group("/admin"))

	log.Printf("partybook listening on %s (backend %s)", cfg.HTTP.Address, cfg.Backend.BaseURL)
	if err := bootstrap.Run(ctx, cfg.HTTP.Address, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
