package validation

import (
	"errors"
	"fmt"

	"github.com/platinummonkey/dnetmap/pkg/dnet"
	"github.com/platinummonkey/dnetmap/pkg/mapping"
	"github.com/platinummonkey/dnetmap/pkg/registry"
	"github.com/platinummonkey/dnetmap/pkg/storage"
)

// Kind classifies a warning
type Kind string

const (
	KindMissingClientMessage Kind = "missing_client_message"
	KindUnknownServerMessage Kind = "unknown_server_message"
	KindUnusedGroup          Kind = "unused_group"
	KindBrokenSequence       Kind = "broken_sequence"
	KindUnreadable           Kind = "unreadable_document"
)

// Warning is one integrity problem found in a document
type Warning struct {
	Kind          Kind
	ClientMessage string
	ServerMessage string
	File          string
	Detail        string
}

func (w Warning) String() string {
	switch w.Kind {
	case KindMissingClientMessage:
		return fmt.Sprintf("client message '%s' not present in %s", w.ClientMessage, w.File)
	case KindUnknownServerMessage:
		return fmt.Sprintf("client message '%s' references unknown server message '%s'", w.ClientMessage, w.ServerMessage)
	case KindUnusedGroup:
		return fmt.Sprintf("client message '%s' declares unused order group '%s'", w.ClientMessage, w.Detail)
	case KindBrokenSequence:
		return fmt.Sprintf("client message '%s' has inconsistent response order: %s", w.ClientMessage, w.Detail)
	case KindUnreadable:
		return fmt.Sprintf("configuration for %s could not be read: %s", w.File, w.Detail)
	default:
		return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
	}
}

// Strings renders warnings as plain messages
func Strings(warnings []Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.String()
	}
	return out
}

// Config selects the optional checks
type Config struct {
	// ReportUnusedGroups warns about order groups no response belongs to
	ReportUnusedGroups bool
	// CheckSequence warns when stored numbering is not dense
	CheckSequence bool
}

// DefaultConfig runs only the referential checks
func DefaultConfig() *Config {
	return &Config{}
}

// Validator checks documents against a registry
type Validator struct {
	config *Config
}

// NewValidator creates a validator; a nil config means DefaultConfig
func NewValidator(config *Config) *Validator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Validator{config: config}
}

// Validate checks doc, owned by file, against every server message in reg.
// Mappings are visited by sorted name and responses in storage order. It
// never modifies its arguments.
func (v *Validator) Validate(doc *mapping.Document, file *dnet.File, reg *registry.Registry) []Warning {
	if doc == nil {
		return nil
	}
	fileName := ""
	if file != nil {
		fileName = file.FileName
	}

	var warnings []Warning
	for _, name := range doc.MappingNames() {
		m := doc.Mappings[name]
		if !declares(file, name) {
			warnings = append(warnings, Warning{
				Kind:          KindMissingClientMessage,
				ClientMessage: name,
				File:          fileName,
			})
		}
		if m == nil {
			continue
		}
		for _, r := range m.Responses {
			if reg == nil || !reg.HasServerMessage(r.Protocol) {
				warnings = append(warnings, Warning{
					Kind:          KindUnknownServerMessage,
					ClientMessage: name,
					ServerMessage: r.Protocol,
					File:          fileName,
				})
			}
		}
		if v.config.ReportUnusedGroups {
			for _, g := range m.UnusedGroups() {
				warnings = append(warnings, Warning{
					Kind:          KindUnusedGroup,
					ClientMessage: name,
					File:          fileName,
					Detail:        g,
				})
			}
		}
		if v.config.CheckSequence {
			if err := m.CheckSequence(); err != nil {
				warnings = append(warnings, Warning{
					Kind:          KindBrokenSequence,
					ClientMessage: name,
					File:          fileName,
					Detail:        err.Error(),
				})
			}
		}
	}
	return warnings
}

func declares(file *dnet.File, name string) bool {
	if file == nil {
		return false
	}
	_, ok := file.ClientMessage(name)
	return ok
}

// Validate runs the default checks
func Validate(doc *mapping.Document, file *dnet.File, reg *registry.Registry) []Warning {
	return NewValidator(nil).Validate(doc, file, reg)
}

// Loader reads the stored document for a protocol file
type Loader interface {
	Load(rel string) (*mapping.Document, error)
}

// FileWarning is a warning attributed to one protocol file
type FileWarning struct {
	RelativePath string
	Warning
}

func (fw FileWarning) String() string {
	return fw.RelativePath + ": " + fw.Warning.String()
}

// ValidateAll validates the stored document of every file in reg, in
// relative path order. Files without a document are skipped; documents that
// cannot be read are reported as KindUnreadable.
func (v *Validator) ValidateAll(loader Loader, reg *registry.Registry) []FileWarning {
	if reg == nil {
		return nil
	}
	var out []FileWarning
	for _, file := range reg.Files() {
		doc, err := loader.Load(file.RelativePath)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			out = append(out, FileWarning{
				RelativePath: file.RelativePath,
				Warning:      Warning{Kind: KindUnreadable, File: file.RelativePath, Detail: err.Error()},
			})
			continue
		}
		for _, w := range v.Validate(doc, file, reg) {
			out = append(out, FileWarning{RelativePath: file.RelativePath, Warning: w})
		}
	}
	return out
}

// ValidateAll runs the default checks over every stored document
func ValidateAll(loader Loader, reg *registry.Registry) []FileWarning {
	return NewValidator(nil).ValidateAll(loader, reg)
}
