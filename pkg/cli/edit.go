package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/platinummonkey/dnetmap/pkg/mapping"
	"github.com/platinummonkey/dnetmap/pkg/workspace"
)

// editFlags are shared by the commands that change one document
type editFlags struct {
	rel   *string
	force *bool
}

func addEditFlags(flags *flag.FlagSet) *editFlags {
	return &editFlags{
		rel:   flags.String("file", "", "Protocol file, relative to the proto directory"),
		force: flags.Bool("force", false, "Save even when validation reports warnings"),
	}
}

// editDocument loads the document for the file (or seeds one), applies fn
// and saves the result. An edit that leaves the document empty deletes the
// stored copy.
func (app *App) editDocument(s *session, ef *editFlags, fn func(doc *mapping.Document) error) error {
	file, err := s.file(*ef.rel)
	if err != nil {
		return err
	}
	doc, err := s.ws.LoadOrEmpty(file.RelativePath)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}

	if doc.IsEmpty() {
		if !s.ws.Store().Exists(file.RelativePath) {
			return nil
		}
		if err := s.ws.Delete(file.RelativePath); err != nil {
			return err
		}
		fmt.Fprintf(app.Out, "%s: nothing left to store, removed %s\n", file.RelativePath, s.ws.Store().PathFor(file.RelativePath))
		return nil
	}

	warnings, err := s.ws.Save(file.RelativePath, doc, *ef.force)
	printWarnings(app, warnings)
	var werr *workspace.WarningsError
	if errors.As(err, &werr) {
		return fmt.Errorf("not saved: %d warning(s); rerun with -force to save anyway", len(werr.Warnings))
	}
	return err
}

// clientMapping returns the mapping for c2s, creating it only for client
// messages the file declares
func clientMapping(s *session, doc *mapping.Document, rel, c2s string) (*mapping.Mapping, error) {
	if c2s == "" {
		return nil, fmt.Errorf("-c2s is required")
	}
	if m, ok := doc.Mapping(c2s); ok {
		return m, nil
	}
	file, err := s.file(rel)
	if err != nil {
		return nil, err
	}
	msg, ok := file.ClientMessage(c2s)
	if !ok {
		return nil, fmt.Errorf("client message %s is not declared in %s", c2s, file.RelativePath)
	}
	return doc.EnsureMapping(c2s, msg.Description), nil
}

func newAddCommand(app *App) *Command {
	flags, common := app.newFlagSet("add")
	ef := addEditFlags(flags)
	c2s := flags.String("c2s", "", "Client message the response belongs to")
	s2c := flags.String("s2c", "", "Server message sent in response")
	conditional := flags.Bool("conditional", false, "The response is only sent under a condition")
	condition := flags.String("condition", "", "Free-text condition or remark")
	many := flags.Bool("many", false, "The response may be sent more than once")
	unordered := flags.Bool("unordered", false, "Exclude the response from numbering")
	group := flags.String("group", "", "Order group; responses in one group arrive in any order")
	at := flags.Int("at", -1, "Insert at this position instead of appending")

	return &Command{
		Name:        "add",
		Description: "Add a response to a client message",
		Flags:       flags,
		Run: func(args []string) error {
			return app.withSession(flags, common, args, func(s *session) error {
				if *s2c == "" {
					return fmt.Errorf("-s2c is required")
				}
				return app.editDocument(s, ef, func(doc *mapping.Document) error {
					m, err := clientMapping(s, doc, *ef.rel, *c2s)
					if err != nil {
						return err
					}
					r := mapping.NewResponse(*s2c)
					if *conditional {
						r.Kind = mapping.Conditional
					}
					r.Condition = *condition
					if *many {
						r.Repetition = mapping.Many
					}
					r.Ordered = !*unordered
					r.Group = strings.TrimSpace(*group)
					if owner, _, ok := s.ws.Registry().LookupServerMessage(*s2c); ok {
						r.Module = owner.ClientModule
					}

					i := *at
					if i < 0 {
						i = m.Append(r)
					} else if err := m.Insert(i, r); err != nil {
						return err
					}
					fmt.Fprintf(app.Out, "%s: added %s as %s\n", *c2s, *s2c, m.Responses[i].Label())
					return nil
				})
			})
		},
	}
}

func newRemoveCommand(app *App) *Command {
	flags, common := app.newFlagSet("remove")
	ef := addEditFlags(flags)
	c2s := flags.String("c2s", "", "Client message")
	index := flags.Int("index", -1, "Position of the response to remove")

	return &Command{
		Name:        "remove",
		Description: "Remove a response from a client message",
		Flags:       flags,
		Run: func(args []string) error {
			return app.withSession(flags, common, args, func(s *session) error {
				return app.editDocument(s, ef, func(doc *mapping.Document) error {
					m, err := clientMapping(s, doc, *ef.rel, *c2s)
					if err != nil {
						return err
					}
					removed, err := m.Remove(*index)
					if err != nil {
						return err
					}
					fmt.Fprintf(app.Out, "%s: removed %s\n", *c2s, removed.Protocol)
					return nil
				})
			})
		},
	}
}

func newMoveCommand(app *App) *Command {
	flags, common := app.newFlagSet("move")
	ef := addEditFlags(flags)
	c2s := flags.String("c2s", "", "Client message")
	from := flags.Int("from", -1, "Current position of the response")
	to := flags.Int("to", -1, "New position of the response")
	ordered := flags.String("ordered", "", "Also set whether the response is numbered (true or false)")

	return &Command{
		Name:        "move",
		Description: "Reorder a response of a client message",
		Flags:       flags,
		Run: func(args []string) error {
			return app.withSession(flags, common, args, func(s *session) error {
				return app.editDocument(s, ef, func(doc *mapping.Document) error {
					m, err := clientMapping(s, doc, *ef.rel, *c2s)
					if err != nil {
						return err
					}
					if err := m.Move(*from, *to); err != nil {
						return err
					}
					switch *ordered {
					case "":
					case "true", "false":
						if err := m.SetOrdered(*to, *ordered == "true"); err != nil {
							return err
						}
					default:
						return fmt.Errorf("-ordered must be true or false")
					}
					printMapping(app.Out, m)
					return nil
				})
			})
		},
	}
}

func newGroupCommand(app *App) *Command {
	flags, common := app.newFlagSet("group")
	ef := addEditFlags(flags)
	c2s := flags.String("c2s", "", "Client message")
	index := flags.Int("index", -1, "Response to (re)assign; omit to only describe the group")
	name := flags.String("name", "", "Group name; empty with -index removes the response from its group")
	describe := flags.String("describe", "", "Set the group description")
	prune := flags.Bool("prune", false, "Drop groups no response belongs to")

	return &Command{
		Name:        "group",
		Description: "Manage order groups of a client message",
		Flags:       flags,
		Run: func(args []string) error {
			return app.withSession(flags, common, args, func(s *session) error {
				return app.editDocument(s, ef, func(doc *mapping.Document) error {
					m, err := clientMapping(s, doc, *ef.rel, *c2s)
					if err != nil {
						return err
					}
					if *index >= 0 {
						if err := m.AssignGroup(*index, strings.TrimSpace(*name)); err != nil {
							return err
						}
					}
					if *describe != "" {
						if err := m.SetGroupDescription(strings.TrimSpace(*name), *describe); err != nil {
							return err
						}
					}
					if *prune {
						for _, g := range m.PruneGroups() {
							fmt.Fprintf(app.Out, "%s: dropped unused group %s\n", *c2s, g)
						}
					}
					printMapping(app.Out, m)
					return nil
				})
			})
		},
	}
}

func newTriggerCommand(app *App) *Command {
	flags, common := app.newFlagSet("trigger")
	ef := addEditFlags(flags)
	s2c := flags.String("s2c", "", "Server message the trigger belongs to")
	name := flags.String("name", "", "Trigger name, e.g. what causes the server to send it")
	conditional := flags.Bool("conditional", false, "The message is only sent under a condition")
	condition := flags.String("condition", "", "Free-text condition or remark")
	many := flags.Bool("many", false, "The message may be sent more than once")
	unordered := flags.Bool("unordered", false, "The trigger has no fixed position")
	remove := flags.Int("remove", -1, "Remove the trigger at this position instead of adding one")

	return &Command{
		Name:        "trigger",
		Description: "Add or remove a custom trigger of a server message",
		Flags:       flags,
		Run: func(args []string) error {
			return app.withSession(flags, common, args, func(s *session) error {
				if *s2c == "" {
					return fmt.Errorf("-s2c is required")
				}
				return app.editDocument(s, ef, func(doc *mapping.Document) error {
					if *remove >= 0 {
						return doc.RemoveTrigger(*s2c, *remove)
					}
					if strings.TrimSpace(*name) == "" {
						return fmt.Errorf("-name is required")
					}
					t := mapping.NewTrigger(*name)
					if *conditional {
						t.Kind = mapping.Conditional
					}
					t.Condition = *condition
					if *many {
						t.Repetition = mapping.Many
					}
					t.Ordered = !*unordered
					doc.AddTrigger(*s2c, t)
					fmt.Fprintf(app.Out, "%s: %d trigger(s)\n", *s2c, len(doc.Triggers[*s2c]))
					return nil
				})
			})
		},
	}
}
