package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/platinummonkey/dnetmap/pkg/config"
	"github.com/platinummonkey/dnetmap/pkg/observability"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// App carries what commands need from the process
type App struct {
	Out        io.Writer
	Err        io.Writer
	LoadConfig func() (*config.Config, error)
}

// NewRootCommand creates the root command wired to the process
func NewRootCommand() *Command {
	return newRootCommand(&App{
		Out:        os.Stdout,
		Err:        os.Stderr,
		LoadConfig: config.LoadConfig,
	})
}

func newRootCommand(app *App) *Command {
	root := &Command{
		Name:        "dnetmap",
		Description: "dnetmap - protocol response mapping tool",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("dnetmap", flag.ContinueOnError),
	}
	root.Flags.SetOutput(app.Out)

	for _, cmd := range []*Command{
		newScanCommand(app),
		newShowCommand(app),
		newConfigCommand(app),
		newInitCommand(app),
		newExportCommand(app),
		newImportCommand(app),
		newAddCommand(app),
		newRemoveCommand(app),
		newMoveCommand(app),
		newGroupCommand(app),
		newTriggerCommand(app),
		newValidateCommand(app),
		newWatchCommand(app),
	} {
		root.Subcommands[cmd.Name] = cmd
	}

	return root
}

// Execute runs the command with the process arguments
func (c *Command) Execute() error {
	return c.ExecuteArgs(os.Args[1:])
}

// ExecuteArgs runs the subcommand named by args[0]. A panicking command is
// reported as an error.
func (c *Command) ExecuteArgs(args []string) (err error) {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		return c.usage()
	}

	subcmd, ok := c.Subcommands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s", args[0])
	}
	defer func() {
		if perr := observability.PanicError(recover()); perr != nil {
			err = fmt.Errorf("%s: %w", subcmd.Name, perr)
		}
	}()
	err = subcmd.Run(args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

// usage prints the command usage
func (c *Command) usage() error {
	out := io.Writer(os.Stdout)
	if c.Flags != nil {
		out = c.Flags.Output()
	}
	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(out, "Usage: %s <command> [args]\n\n", c.Name)
	fmt.Fprintf(out, "Commands:\n")
	for _, name := range names {
		fmt.Fprintf(out, "  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}
