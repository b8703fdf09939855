package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/platinummonkey/dnetmap/pkg/registry"
	"github.com/platinummonkey/dnetmap/pkg/storage"
	"github.com/platinummonkey/dnetmap/pkg/validation"
)

// ErrWarnings is returned by validate when any warning was reported
var ErrWarnings = errors.New("validation reported warnings")

func newValidateCommand(app *App) *Command {
	flags, common := app.newFlagSet("validate")
	rel := flags.String("file", "", "Validate only this protocol file's mapping")

	return &Command{
		Name:        "validate",
		Description: "Check stored mappings against the protocol files",
		Flags:       flags,
		Run: func(args []string) error {
			return app.withSession(flags, common, args, func(s *session) error {
				if *rel == "" {
					return reportAll(app, s.ws.ValidateAll())
				}

				file, err := s.file(*rel)
				if err != nil {
					return err
				}
				doc, err := s.ws.Load(file.RelativePath)
				if errors.Is(err, storage.ErrNotFound) {
					fmt.Fprintf(app.Out, "%s has no stored mapping\n", file.RelativePath)
					return nil
				}
				if err != nil {
					return err
				}
				warnings := s.ws.Validate(doc, file)
				printWarnings(app, warnings)
				if len(warnings) > 0 {
					return fmt.Errorf("%w: %d in %s", ErrWarnings, len(warnings), file.RelativePath)
				}
				fmt.Fprintf(app.Out, "%s is valid\n", file.RelativePath)
				return nil
			})
		},
	}
}

func reportAll(app *App, warnings []validation.FileWarning) error {
	for _, w := range warnings {
		fmt.Fprintf(app.Out, "warning: %s\n", w)
	}
	if len(warnings) > 0 {
		return fmt.Errorf("%w: %d", ErrWarnings, len(warnings))
	}
	fmt.Fprintln(app.Out, "All stored mappings are valid")
	return nil
}

func newWatchCommand(app *App) *Command {
	flags, common := app.newFlagSet("watch")

	return &Command{
		Name:        "watch",
		Description: "Rescan and validate whenever protocol files change",
		Flags:       flags,
		Run: func(args []string) error {
			return app.withSession(flags, common, args, func(s *session) error {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				report := func(reg *registry.Registry) {
					fmt.Fprintf(app.Out, "Scanned %d files\n", reg.Len())
					// warnings are printed; watching continues regardless
					_ = reportAll(app, s.ws.ValidateAll())
				}
				report(s.ws.Registry())
				fmt.Fprintf(app.Out, "Watching %s (Ctrl-C to stop)\n", s.cfg.ProtoDir)
				return s.ws.Watch(ctx, report)
			})
		},
	}
}
