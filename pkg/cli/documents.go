package cli

import (
	"errors"
	"fmt"

	"github.com/platinummonkey/dnetmap/pkg/codec"
	"github.com/platinummonkey/dnetmap/pkg/storage"
	"github.com/platinummonkey/dnetmap/pkg/validation"
	"github.com/platinummonkey/dnetmap/pkg/workspace"
)

func newInitCommand(app *App) *Command {
	flags, common := app.newFlagSet("init")
	rel := flags.String("file", "", "Protocol file, relative to the proto directory")
	out := flags.String("out", "", "Write the template here instead of stdout (.json or .yaml)")

	return &Command{
		Name:        "init",
		Description: "Write an empty mapping template for a protocol file",
		Flags:       flags,
		Run: func(args []string) error {
			return app.withSession(flags, common, args, func(s *session) error {
				file, err := s.file(*rel)
				if err != nil {
					return err
				}
				if s.ws.Store().Exists(file.RelativePath) {
					return fmt.Errorf("%s is already configured; use export to get a copy", file.RelativePath)
				}
				doc := s.ws.CreateEmpty(file)

				if *out == "" {
					data, err := codec.NewJSON(codec.Options{LegacyLabels: s.cfg.Storage.LegacyLabels}).Marshal(doc)
					if err != nil {
						return err
					}
					_, err = app.Out.Write(data)
					return err
				}
				if err := s.ws.Export(doc, *out); err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Wrote template for %d client messages to %s\n", len(doc.Mappings), *out)
				fmt.Fprintf(app.Out, "Add responses, then run: import -in %s -file %s\n", *out, file.RelativePath)
				return nil
			})
		},
	}
}

func newExportCommand(app *App) *Command {
	flags, common := app.newFlagSet("export")
	rel := flags.String("file", "", "Protocol file, relative to the proto directory")
	out := flags.String("out", "", "Destination path (.json or .yaml)")

	return &Command{
		Name:        "export",
		Description: "Copy a stored mapping document to another path",
		Flags:       flags,
		Run: func(args []string) error {
			return app.withSession(flags, common, args, func(s *session) error {
				if *out == "" {
					return fmt.Errorf("-out is required")
				}
				file, err := s.file(*rel)
				if err != nil {
					return err
				}
				doc, err := s.ws.Load(file.RelativePath)
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("%s has no stored mapping", file.RelativePath)
				}
				if err != nil {
					return err
				}
				if err := s.ws.Export(doc, *out); err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Exported %s to %s\n", file.RelativePath, *out)
				return nil
			})
		},
	}
}

func newImportCommand(app *App) *Command {
	flags, common := app.newFlagSet("import")
	in := flags.String("in", "", "Source path (.json or .yaml)")
	rel := flags.String("file", "", "Protocol file the document belongs to")
	force := flags.Bool("force", false, "Store the document even when validation reports warnings")

	return &Command{
		Name:        "import",
		Description: "Validate and store a mapping document from another path",
		Flags:       flags,
		Run: func(args []string) error {
			return app.withSession(flags, common, args, func(s *session) error {
				if *in == "" {
					return fmt.Errorf("-in is required")
				}
				file, err := s.file(*rel)
				if err != nil {
					return err
				}
				doc, err := s.ws.Import(*in)
				if err != nil {
					return err
				}
				doc.SourceFile = file.RelativePath

				warnings, err := s.ws.Save(file.RelativePath, doc, *force)
				printWarnings(app, warnings)
				var werr *workspace.WarningsError
				if errors.As(err, &werr) {
					return fmt.Errorf("not imported: %d warning(s); rerun with -force to store anyway", len(werr.Warnings))
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Imported %s as %s\n", *in, s.ws.Store().PathFor(file.RelativePath))
				return nil
			})
		},
	}
}

func printWarnings(app *App, warnings []validation.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(app.Out, "warning: %s\n", w)
	}
}
