package main

import (
	"codeberg.org/mutker/droidmon/internal/logger"
	"codeberg.org/mutker/droidmon/internal/parsers"
	"codeberg.org/mutker/droidmon/internal/pid"
	"codeberg.org/mutker/droidmon/internal/session"
	"codeberg.org/mutker/droidmon/internal/sink"
	"codeberg.org/mutker/droidmon/internal/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var monitorPIDDir string

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Poll every metric until interrupted",
	Long: `Start a monitoring session. The connection is checked every
connection interval and each metric is polled on its own schedule. Values
are printed as they arrive until SIGINT or SIGTERM.

Examples:
  droidmon monitor
  droidmon monitor --store --store-path ./latest.db
  droidmon monitor --connection-interval 500ms --workers 4`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().StringVar(&monitorPIDDir, "pid-dir", "", "Directory for the PID file (default: system temp dir)")
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	pidFile := pid.New(monitorPIDDir)
	if err := pidFile.Write(); err != nil {
		return err
	}
	defer func() {
		if err := pidFile.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	id := uuid.NewString()
	log := logger.Default()

	st, err := store.NewService(cfg.Store, id, log.WithComponent("store"))
	if err != nil {
		return err
	}

	dispatcher := sink.NewSerialDispatcher(sink.WithDispatcherLogger(log.WithComponent("dispatcher")))
	out := sink.Multi{
		sink.NewConsole(cmd.OutOrStdout(),
			session.DisconnectedText, session.FailedText, parsers.Unknown, parsers.Unavailable),
		sink.NewLog(log.WithComponent("sink")),
		st,
	}

	s := session.New(executor(), out, cfg.Session(),
		session.WithID(id),
		session.WithDispatch(dispatcher.Dispatch),
		session.WithLogger(log),
	)
	if err := s.Start(); err != nil {
		dispatcher.Close()
		_ = st.Close()
		return err
	}
	logger.Info().Str("session", s.ID()).Msg("Monitoring. Press Ctrl+C to stop.")

	<-cmd.Context().Done()

	cleanup(s, dispatcher, st)
	return nil
}

// cleanup stops polling first so nothing is delivered after the
// dispatcher and store are closed.
func cleanup(s *session.Session, dispatcher *sink.SerialDispatcher, st store.Store) {
	if !s.Stop() {
		logger.Warn().Msg("Some commands were still running at shutdown")
	}
	dispatcher.Close()
	if err := st.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close store")
	}
	logger.Info().Msg("Exiting...")
}
