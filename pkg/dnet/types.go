package dnet

import "strings"

// Direction is the section a message belongs to
type Direction int

const (
	DirectionNone Direction = iota
	DirectionClientToServer
	DirectionServerToClient
)

func (d Direction) String() string {
	switch d {
	case DirectionClientToServer:
		return "C2S"
	case DirectionServerToClient:
		return "S2C"
	default:
		return "NONE"
	}
}

// Dialect is a bit set of file grammars
type Dialect uint8

const (
	DialectUnknown Dialect = 0
	DialectLegacy  Dialect = 1
	DialectCurrent Dialect = 2

	// DialectAll enables every known grammar
	DialectAll = DialectLegacy | DialectCurrent
)

func (d Dialect) String() string {
	var parts []string
	if d&DialectLegacy != 0 {
		parts = append(parts, "legacy")
	}
	if d&DialectCurrent != 0 {
		parts = append(parts, "current")
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, "+")
}

// ParseDialect maps a configuration token to a dialect
func ParseDialect(s string) (Dialect, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legacy", "a":
		return DialectLegacy, true
	case "current", "b":
		return DialectCurrent, true
	case "all", "both":
		return DialectAll, true
	default:
		return DialectUnknown, false
	}
}

// Field is one field of a message
type Field struct {
	Name        string
	TypeInfo    string
	Description string
}

// Message is a single protocol message definition
type Message struct {
	Name        string
	Description string
	Fields      []Field
}

// File is a parsed protocol definition file
type File struct {
	Path         string
	FileName     string
	RelativePath string // slash separated, unique within a registry
	Description  string
	ClientModule string
	ServerModule string
	Version      string
	Dialect      Dialect

	ClientMessages []*Message
	ServerMessages []*Message
}

// Clone returns a deep copy of f
func (f *File) Clone() *File {
	if f == nil {
		return nil
	}
	c := *f
	c.ClientMessages = cloneMessages(f.ClientMessages)
	c.ServerMessages = cloneMessages(f.ServerMessages)
	return &c
}

func cloneMessages(list []*Message) []*Message {
	if list == nil {
		return nil
	}
	out := make([]*Message, len(list))
	for i, m := range list {
		if m == nil {
			continue
		}
		c := *m
		c.Fields = append([]Field(nil), m.Fields...)
		out[i] = &c
	}
	return out
}

// HasClientMessages reports whether the file defines any C2S message
func (f *File) HasClientMessages() bool {
	return len(f.ClientMessages) > 0
}

// HasServerMessages reports whether the file defines any S2C message
func (f *File) HasServerMessages() bool {
	return len(f.ServerMessages) > 0
}

// ClientMessage returns the first client message with the given name
func (f *File) ClientMessage(name string) (*Message, bool) {
	return findMessage(f.ClientMessages, name)
}

// ServerMessage returns the first server message with the given name
func (f *File) ServerMessage(name string) (*Message, bool) {
	return findMessage(f.ServerMessages, name)
}

// Messages returns the message list for a direction
func (f *File) Messages(dir Direction) []*Message {
	switch dir {
	case DirectionClientToServer:
		return f.ClientMessages
	case DirectionServerToClient:
		return f.ServerMessages
	default:
		return nil
	}
}

func findMessage(list []*Message, name string) (*Message, bool) {
	for _, m := range list {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}
