package mapping

import (
	"fmt"
	"sort"

	"github.com/platinummonkey/dnetmap/pkg/dnet"
)

// ResponseKind says whether a response always follows its request
type ResponseKind int

const (
	Unconditional ResponseKind = iota
	Conditional
)

func (k ResponseKind) String() string {
	if k == Conditional {
		return "conditional"
	}
	return "unconditional"
}

// Repetition says how many times a response may be sent
type Repetition int

const (
	Once Repetition = iota
	Many
)

func (r Repetition) String() string {
	if r == Many {
		return "many"
	}
	return "once"
}

// Response is one configured S2C response to a C2S request
type Response struct {
	Protocol   string
	Sequence   int // 0 when unordered
	Kind       ResponseKind
	Condition  string
	Repetition Repetition
	Group      string
	Ordered    bool
	Module     string // owning module of the S2C message, informational

	// RawKind and RawRepetition hold stored labels that were not recognized.
	// Kind and Repetition keep their defaults and the labels are written
	// back unchanged.
	RawKind       string
	RawRepetition string
}

// NewResponse returns an ordered, unconditional, once-only response
func NewResponse(protocol string) Response {
	return Response{
		Protocol:   protocol,
		Kind:       Unconditional,
		Repetition: Once,
		Ordered:    true,
	}
}

// Label renders the sequence column: "3", "x", "3[A]" or "x[A]"
func (r Response) Label() string {
	label := "x"
	if r.Ordered {
		label = fmt.Sprintf("%d", r.Sequence)
	}
	if r.Group != "" {
		label += "[" + r.Group + "]"
	}
	return label
}

// KindLabel is the response type for display
func (r Response) KindLabel() string {
	return displayLabel(r.RawKind, r.Kind.String())
}

// RepetitionLabel is the response count for display
func (r Response) RepetitionLabel() string {
	return displayLabel(r.RawRepetition, r.Repetition.String())
}

func displayLabel(raw, known string) string {
	if raw != "" {
		return raw
	}
	return known
}

// OrderGroup names a set of responses with indeterminate relative order
type OrderGroup struct {
	Name        string
	Description string
}

// Trigger is a custom condition under which an S2C message is sent, kept
// independently of any C2S mapping
type Trigger struct {
	Name       string
	Kind       ResponseKind
	Condition  string
	Repetition Repetition
	Ordered    bool

	RawKind       string
	RawRepetition string
}

// KindLabel is the trigger type for display
func (t Trigger) KindLabel() string {
	return displayLabel(t.RawKind, t.Kind.String())
}

// RepetitionLabel is the trigger count for display
func (t Trigger) RepetitionLabel() string {
	return displayLabel(t.RawRepetition, t.Repetition.String())
}

// HasRawLabels reports whether any response or trigger carries a stored
// label that was not recognized
func (d *Document) HasRawLabels() bool {
	for _, m := range d.Mappings {
		for _, r := range m.Responses {
			if r.RawKind != "" || r.RawRepetition != "" {
				return true
			}
		}
	}
	for _, list := range d.Triggers {
		for _, t := range list {
			if t.RawKind != "" || t.RawRepetition != "" {
				return true
			}
		}
	}
	return false
}

// NewTrigger returns an ordered, unconditional, once-only trigger
func NewTrigger(name string) Trigger {
	return Trigger{Name: name, Ordered: true}
}

// Mapping is the response policy for one client message
type Mapping struct {
	Description string
	Responses   []Response
	Groups      []OrderGroup
}

// Document is the response mapping for one protocol file
type Document struct {
	SourceFile  string
	Description string
	Mappings    map[string]*Mapping
	Triggers    map[string][]Trigger
}

// NewDocument returns an empty document
func NewDocument(sourceFile, description string) *Document {
	return &Document{
		SourceFile:  sourceFile,
		Description: description,
		Mappings:    make(map[string]*Mapping),
	}
}

// NewDocumentFor seeds one empty mapping per client message of f
func NewDocumentFor(f *dnet.File) *Document {
	doc := NewDocument(f.RelativePath, f.Description)
	for _, msg := range f.ClientMessages {
		doc.EnsureMapping(msg.Name, msg.Description)
	}
	return doc
}

// Mapping returns the mapping for a client message
func (d *Document) Mapping(name string) (*Mapping, bool) {
	m, ok := d.Mappings[name]
	return m, ok
}

// EnsureMapping returns the mapping for name, creating it with description
// when absent
func (d *Document) EnsureMapping(name, description string) *Mapping {
	if d.Mappings == nil {
		d.Mappings = make(map[string]*Mapping)
	}
	if m, ok := d.Mappings[name]; ok {
		return m
	}
	m := &Mapping{Description: description}
	d.Mappings[name] = m
	return m
}

// RemoveMapping deletes the mapping for name
func (d *Document) RemoveMapping(name string) {
	delete(d.Mappings, name)
}

// MappingNames returns the mapped client message names, sorted
func (d *Document) MappingNames() []string {
	names := make([]string, 0, len(d.Mappings))
	for name := range d.Mappings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConfiguredClientMessages returns the sorted names whose mapping has responses
func (d *Document) ConfiguredClientMessages() []string {
	var names []string
	for _, name := range d.MappingNames() {
		if len(d.Mappings[name].Responses) > 0 {
			names = append(names, name)
		}
	}
	return names
}

// HasResponses reports whether any mapping has at least one response
func (d *Document) HasResponses() bool {
	for _, m := range d.Mappings {
		if len(m.Responses) > 0 {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the document configures nothing: no responses and
// no custom triggers. Empty documents are not persisted.
func (d *Document) IsEmpty() bool {
	return !d.HasResponses() && len(d.TriggerNames()) == 0
}

// Stats summarizes a document
type Stats struct {
	ConfiguredMessages int
	Responses          int
	Triggers           int
}

// Stats counts configured client messages, responses and custom triggers
func (d *Document) Stats() Stats {
	var s Stats
	for _, m := range d.Mappings {
		if len(m.Responses) > 0 {
			s.ConfiguredMessages++
		}
		s.Responses += len(m.Responses)
	}
	for _, list := range d.Triggers {
		s.Triggers += len(list)
	}
	return s
}

// AddTrigger appends a custom trigger for an S2C message
func (d *Document) AddTrigger(serverMessage string, t Trigger) {
	if d.Triggers == nil {
		d.Triggers = make(map[string][]Trigger)
	}
	d.Triggers[serverMessage] = append(d.Triggers[serverMessage], t)
}

// RemoveTrigger removes the i-th trigger of an S2C message; the entry is
// dropped once its list is empty
func (d *Document) RemoveTrigger(serverMessage string, i int) error {
	list := d.Triggers[serverMessage]
	if i < 0 || i >= len(list) {
		return fmt.Errorf("%w: trigger %d of %s", ErrIndexOutOfRange, i, serverMessage)
	}
	list = append(list[:i:i], list[i+1:]...)
	if len(list) == 0 {
		delete(d.Triggers, serverMessage)
		return nil
	}
	d.Triggers[serverMessage] = list
	return nil
}

// TriggerNames returns the S2C names with custom triggers, sorted
func (d *Document) TriggerNames() []string {
	names := make([]string, 0, len(d.Triggers))
	for name, list := range d.Triggers {
		if len(list) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
