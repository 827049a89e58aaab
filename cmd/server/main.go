package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"evalboard/internal/config"
	"evalboard/internal/scheduler"
	"evalboard/internal/server"
	"evalboard/internal/storage"
	"evalboard/internal/storage/providers"
	httptransport "evalboard/internal/transport/http"
)

func main() {
	cfg := config.MustLoad()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := storage.InitDB(cfg.DatabaseUrl)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	allProviders := providers.New(db)
	scheduler.NewAssignmentScheduler(allProviders.AssignmentProvider, time.Minute).Start(ctx)

	router := httptransport.Router(db, cfg)

	addr := ":" + cfg.Server.Port
	log.Printf("listening on %s", addr)
	if err := server.Start(ctx, addr, cfg.Server.AllowedOrigins, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
