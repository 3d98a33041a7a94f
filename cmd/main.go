package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/compsocial/compsocial-server/internal/bootstrap"
	"github.com/compsocial/compsocial-server/internal/server"
)

func main() {
	appCtx, cleanup, err := bootstrap.Init("internal/config/config.yaml")
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	sugar := appCtx.Sugar

	app := server.New(appCtx.Config, appCtx.Handler, appCtx.Tokens, sugar)

	go func() {
		listenAddr := fmt.Sprintf(":%d", appCtx.Config.App.Port)
		sugar.Infof("Server listening on %s", listenAddr)
		if err := app.Listen(listenAddr); err != nil {
			sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := app.ShutdownWithContext(ctxShut); err != nil {
		sugar.Errorf("Server shutdown error: %v", err)
	}
	cleanup(ctxShut)

	sugar.Info("Graceful shutdown complete")
}
