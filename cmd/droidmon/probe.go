package main

import (
	"fmt"

	"codeberg.org/mutker/droidmon/internal/errors"
	"codeberg.org/mutker/droidmon/internal/logger"
	"codeberg.org/mutker/droidmon/internal/parsers"
	"codeberg.org/mutker/droidmon/internal/session"
	"codeberg.org/mutker/droidmon/internal/sink"
	"codeberg.org/mutker/droidmon/internal/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Read every metric once and print a table",
	Long: `Check the connection and, when a device is attached, run every metric
once concurrently. The command exits non-zero when no device is attached.

Examples:
  droidmon probe
  droidmon probe --workers 4 --timeout 2s`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func runProbe(cmd *cobra.Command, _ []string) error {
	id := uuid.NewString()
	log := logger.Default()

	st, err := store.NewService(cfg.Store, id, log.WithComponent("store"))
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close store")
		}
	}()

	latest := sink.NewLatest()
	s := session.New(executor(), sink.Multi{latest, st}, cfg.Session(),
		session.WithID(id),
		session.WithLogger(log),
	)

	runErr := s.RunOnce(cmd.Context())

	console := sink.NewConsole(cmd.OutOrStdout(),
		session.DisconnectedText, session.FailedText, parsers.Unknown, parsers.Unavailable)
	fmt.Fprintln(cmd.OutOrStdout(), console.Table(latest.Names(), latest.Snapshot()))

	if errors.HasCode(runErr, session.ErrNotConnected) {
		return errors.New().WithMessage(session.ErrNotConnected, "no device attached")
	}
	return runErr
}
