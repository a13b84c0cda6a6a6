package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/supabase/auth-siwe/cmd"
	"github.com/supabase/auth-siwe/internal/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cmd.RootCommand().ExecuteContext(ctx)

	// stop exporters and give them a moment to flush
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	observability.WaitForCleanup(shutdownCtx)
	shutdownCancel()

	if err != nil {
		logrus.Fatal(err)
	}
}
