package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/cart-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}

	a.Start(ctx)
	code := 0
	if err := a.Run(ctx); err != nil {
		a.Log.Error("server stopped", "error", err)
		code = 1
	} else {
		a.Log.Info("server stopped")
	}
	a.Close()
	if code != 0 {
		os.Exit(code)
	}
}
