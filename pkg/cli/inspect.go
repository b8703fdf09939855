package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/platinummonkey/dnetmap/pkg/dnet"
	"github.com/platinummonkey/dnetmap/pkg/mapping"
	"github.com/platinummonkey/dnetmap/pkg/storage"
)

func newScanCommand(app *App) *Command {
	flags, common := app.newFlagSet("scan")
	filter := flags.String("filter", "", "Only list files whose path contains this text")

	return &Command{
		Name:        "scan",
		Description: "List protocol files and their mapping status",
		Flags:       flags,
		Run: func(args []string) error {
			return app.withSession(flags, common, args, func(s *session) error {
				reg := s.ws.Registry()
				files := reg.Filter(*filter)

				w := tabwriter.NewWriter(app.Out, 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "FILE\tDIALECT\tC2S\tS2C\tCONFIGURED")
				for _, f := range files {
					configured := "-"
					if s.ws.Store().Exists(f.RelativePath) {
						configured = "yes"
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
						f.RelativePath, f.Dialect, len(f.ClientMessages), len(f.ServerMessages), configured)
				}
				if err := w.Flush(); err != nil {
					return err
				}

				client, server := reg.MessageCounts()
				fmt.Fprintf(app.Out, "\nTotal: %d files, %d client messages, %d server messages\n", len(files), client, server)
				return nil
			})
		},
	}
}

func newShowCommand(app *App) *Command {
	flags, common := app.newFlagSet("show")
	rel := flags.String("file", "", "Protocol file, relative to the proto directory")

	return &Command{
		Name:        "show",
		Description: "Print a protocol file and its response mapping",
		Flags:       flags,
		Run: func(args []string) error {
			return app.withSession(flags, common, args, func(s *session) error {
				file, err := s.file(*rel)
				if err != nil {
					return err
				}
				doc, err := s.ws.Load(file.RelativePath)
				if errors.Is(err, storage.ErrNotFound) {
					doc = s.ws.CreateEmpty(file)
				} else if err != nil {
					return err
				}
				printFile(app.Out, file, doc)
				return nil
			})
		},
	}
}

func newConfigCommand(app *App) *Command {
	flags, common := app.newFlagSet("config")

	return &Command{
		Name:        "config",
		Description: "Print the effective configuration",
		Flags:       flags,
		Run: func(args []string) error {
			if err := flags.Parse(args); err != nil {
				return err
			}
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			if *common.proto != "" {
				cfg.ProtoDir = *common.proto
			}
			if *common.config != "" {
				cfg.Storage.Dir = *common.config
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = app.Out.Write(data)
			return err
		},
	}
}

func printFile(out io.Writer, file *dnet.File, doc *mapping.Document) {
	fmt.Fprintf(out, "File: %s\n", file.RelativePath)
	if file.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", file.Description)
	}
	if file.ClientModule != "" || file.ServerModule != "" {
		fmt.Fprintf(out, "Modules: client=%s server=%s\n", file.ClientModule, file.ServerModule)
	}
	if file.Version != "" {
		fmt.Fprintf(out, "Version: %s\n", file.Version)
	}

	fmt.Fprintf(out, "\nClient messages (%d):\n", len(file.ClientMessages))
	for _, msg := range file.ClientMessages {
		fmt.Fprintf(out, "  %s  %s\n", msg.Name, msg.Description)
		m, ok := doc.Mapping(msg.Name)
		if !ok || m.Len() == 0 {
			fmt.Fprintf(out, "    (no responses)\n")
			continue
		}
		printMapping(out, m)
	}

	fmt.Fprintf(out, "\nServer messages (%d):\n", len(file.ServerMessages))
	for _, msg := range file.ServerMessages {
		fmt.Fprintf(out, "  %s  %s\n", msg.Name, msg.Description)
		for _, t := range doc.Triggers[msg.Name] {
			fmt.Fprintf(out, "    trigger: %s [%s, %s]%s\n", t.Name, t.KindLabel(), t.RepetitionLabel(), suffix(t.Condition))
		}
	}

	stats := doc.Stats()
	fmt.Fprintf(out, "\nConfigured: %d client messages, %d responses, %d triggers\n",
		stats.ConfiguredMessages, stats.Responses, stats.Triggers)
}

// printMapping lists responses by stage; consecutive members of one order
// group share a stage and arrive in any order
func printMapping(out io.Writer, m *mapping.Mapping) {
	for _, stage := range m.Stages() {
		for _, i := range stage {
			r := m.Responses[i]
			fmt.Fprintf(out, "    %-6s %s [%s, %s]%s\n", r.Label(), r.Protocol, r.KindLabel(), r.RepetitionLabel(), suffix(r.Condition))
		}
	}
	for _, g := range m.Groups {
		if g.Description != "" {
			fmt.Fprintf(out, "    group %s: %s\n", g.Name, g.Description)
		}
	}
}

func suffix(condition string) string {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return ""
	}
	return " when " + condition
}
