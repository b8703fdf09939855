package cli

import (
	"flag"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/dnetmap/pkg/config"
	"github.com/platinummonkey/dnetmap/pkg/dnet"
	"github.com/platinummonkey/dnetmap/pkg/observability"
	"github.com/platinummonkey/dnetmap/pkg/workspace"
)

// commonFlags are accepted by every command that opens a workspace
type commonFlags struct {
	proto  *string
	config *string
}

func (app *App) newFlagSet(name string) (*flag.FlagSet, *commonFlags) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(app.Err)
	common := &commonFlags{
		proto:  flags.String("proto", "", "Protocol definition directory (overrides configuration)"),
		config: flags.String("config", "", "Mapping document directory (overrides configuration)"),
	}
	return flags, common
}

// session is one opened workspace plus the process services around it
type session struct {
	cfg      *config.Config
	log      *logrus.Logger
	ws       *workspace.Workspace
	registry *prometheus.Registry
	metrics  *observability.Metrics
}

// open loads configuration, applies flag overrides and scans the protocol tree
func (app *App) open(common *commonFlags) (*session, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	if *common.proto != "" {
		cfg.ProtoDir = *common.proto
	}
	if *common.config != "" {
		cfg.Storage.Dir = *common.config
	}

	s := &session{cfg: cfg, log: cfg.NewLogger()}
	s.log.SetOutput(app.Err)
	if cfg.Observability.MetricsFile != "" {
		s.registry = prometheus.NewRegistry()
		s.metrics = observability.NewMetrics(s.registry)
	}

	s.ws, err = workspace.New(cfg.WorkspaceOptions(s.log, s.metrics))
	if err != nil {
		return nil, err
	}
	if _, err := s.ws.Scan(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", cfg.ProtoDir, err)
	}
	return s, nil
}

// close writes the metrics dump when one is configured
func (s *session) close() {
	if s.registry == nil {
		return
	}
	if err := prometheus.WriteToTextfile(s.cfg.Observability.MetricsFile, s.registry); err != nil {
		s.log.WithError(err).Warn("Failed to write metrics file")
	}
}

// file resolves a -file flag value against the current registry
func (s *session) file(rel string) (*dnet.File, error) {
	if rel == "" {
		return nil, fmt.Errorf("-file is required")
	}
	return s.ws.File(rel)
}

// withSession parses flags, opens a session and runs fn with it
func (app *App) withSession(flags *flag.FlagSet, common *commonFlags, args []string, fn func(s *session) error) error {
	if err := flags.Parse(args); err != nil {
		return err
	}
	s, err := app.open(common)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s)
}
