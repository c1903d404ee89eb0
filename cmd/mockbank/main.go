// Command mockbank serves an in-memory Apna Bank API for local development
// and demos of the bankfront client.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/bankfront/internal/logging"
	"github.com/dmitrijs2005/bankfront/internal/mockbank"
	"github.com/dmitrijs2005/bankfront/internal/mockbank/config"
	"github.com/gin-gonic/gin"
)

func initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func main() {
	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()
	initSignalHandler(cancelFunc)

	cfg := config.LoadConfig(os.Args[1:])
	logger := logging.NewTextLogger(os.Stdout, cfg.LogLevel)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := mockbank.New(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
