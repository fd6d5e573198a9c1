// Command devserver runs an in-memory stand-in for the remote booking
// service, so the app can be developed and demoed without the real
// backend. It serves the same REST surface the HTTP client consumes.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/avdeenkov/partybook/internal/backend"
	"github.com/avdeenkov/partybook/internal/bootstrap"
	"github.com/gin-gonic/gin"
)

func main() {
	addr := flag.String("addr", ":8090", "listen address")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service := backend.NewMemory(backend.DefaultPackages())

	router := gin.Default()
	backend.NewHandler(service).Register(router.Group("/api"))

	log.Printf("booking dev service listening on %s", *addr)
	if err := bootstrap.Run(ctx, *addr, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
