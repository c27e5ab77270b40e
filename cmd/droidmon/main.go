package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/droidmon/internal/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	go handleSignals(cancel)

	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		if cfg == nil {
			fmt.Fprintf(os.Stderr, "droidmon: %v\n", err)
		} else {
			logger.Error().Err(err).Msg("Command failed")
		}
		os.Exit(1)
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
