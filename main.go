package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shandysiswandi/goflightmesh/internal/app"
)

func main() {
	application := app.New()    // Initialize the application
	wait := application.Start() // Start the application and wait for the termination signal
	<-wait                      // Wait for the application to receive a termination signal

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Stop(ctx); err != nil {
		slog.Error("shutdown finished with errors", "error", err)
		os.Exit(1)
	}
}
