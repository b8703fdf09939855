package codec

import (
	"fmt"

	"github.com/platinummonkey/dnetmap/pkg/mapping"
)

type wireDocument struct {
	DnetFile    string                  `json:"dnet_file" yaml:"dnet_file"`
	Description string                  `json:"description" yaml:"description"`
	Mappings    map[string]wireMapping  `json:"c2s_mappings" yaml:"c2s_mappings"`
	Triggers    map[string]wireTriggers `json:"s2c_triggers,omitempty" yaml:"s2c_triggers,omitempty"`
}

type wireMapping struct {
	Description string         `json:"description" yaml:"description"`
	OrderGroups []wireGroup    `json:"order_groups" yaml:"order_groups"`
	Responses   []wireResponse `json:"responses" yaml:"responses"`
}

type wireGroup struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

type wireResponse struct {
	Protocol   string `json:"protocol" yaml:"protocol"`
	Order      int    `json:"order" yaml:"order"`
	Type       string `json:"type" yaml:"type"`
	Condition  string `json:"condition" yaml:"condition"`
	Count      string `json:"count" yaml:"count"`
	OrderGroup any    `json:"order_group" yaml:"order_group"`
	Ordered    *bool  `json:"ordered" yaml:"ordered"`
	CModule    string `json:"cmodule" yaml:"cmodule"`
}

type wireTriggers struct {
	CustomTriggers []wireTrigger `json:"custom_triggers" yaml:"custom_triggers"`
}

type wireTrigger struct {
	Name      string `json:"name" yaml:"name"`
	Type      string `json:"type" yaml:"type"`
	Condition string `json:"condition" yaml:"condition"`
	Count     string `json:"count" yaml:"count"`
	Ordered   *bool  `json:"ordered" yaml:"ordered"`
}

func toWire(doc *mapping.Document, opts Options) *wireDocument {
	w := &wireDocument{
		DnetFile:    doc.SourceFile,
		Description: doc.Description,
		Mappings:    make(map[string]wireMapping, len(doc.Mappings)),
	}
	for name, m := range doc.Mappings {
		if m == nil {
			continue
		}
		wm := wireMapping{
			Description: m.Description,
			OrderGroups: make([]wireGroup, 0, len(m.Groups)),
			Responses:   make([]wireResponse, 0, len(m.Responses)),
		}
		for _, g := range m.Groups {
			wm.OrderGroups = append(wm.OrderGroups, wireGroup{Name: g.Name, Description: g.Description})
		}
		for _, r := range m.Responses {
			ordered := r.Ordered
			wm.Responses = append(wm.Responses, wireResponse{
				Protocol:   r.Protocol,
				Order:      r.Sequence,
				Type:       storedLabel(r.RawKind, kindLabel(r.Kind, opts.LegacyLabels)),
				Condition:  r.Condition,
				Count:      storedLabel(r.RawRepetition, repetitionLabel(r.Repetition, opts.LegacyLabels)),
				OrderGroup: r.Group,
				Ordered:    &ordered,
				CModule:    r.Module,
			})
		}
		w.Mappings[name] = wm
	}
	for name, list := range doc.Triggers {
		if len(list) == 0 {
			continue
		}
		if w.Triggers == nil {
			w.Triggers = make(map[string]wireTriggers)
		}
		wt := wireTriggers{CustomTriggers: make([]wireTrigger, 0, len(list))}
		for _, t := range list {
			ordered := t.Ordered
			wt.CustomTriggers = append(wt.CustomTriggers, wireTrigger{
				Name:      t.Name,
				Type:      storedLabel(t.RawKind, kindLabel(t.Kind, opts.LegacyLabels)),
				Condition: t.Condition,
				Count:     storedLabel(t.RawRepetition, repetitionLabel(t.Repetition, opts.LegacyLabels)),
				Ordered:   &ordered,
			})
		}
		w.Triggers[name] = wt
	}
	return w
}

func fromWire(w *wireDocument) (*mapping.Document, error) {
	doc := mapping.NewDocument(w.DnetFile, w.Description)
	for name, wm := range w.Mappings {
		m := &mapping.Mapping{Description: wm.Description}
		for _, g := range wm.OrderGroups {
			m.Groups = append(m.Groups, mapping.OrderGroup{Name: g.Name, Description: g.Description})
		}
		for i, wr := range wm.Responses {
			field := fmt.Sprintf("c2s_mappings.%s.responses[%d]", name, i)
			r, err := responseFromWire(wr)
			if err != nil {
				return nil, &DecodeError{Field: field, Err: err}
			}
			m.Responses = append(m.Responses, r)
			m.EnsureGroup(r.Group)
		}
		m.Renumber()
		doc.Mappings[name] = m
	}
	for name, wt := range w.Triggers {
		for _, t := range wt.CustomTriggers {
			doc.AddTrigger(name, triggerFromWire(t))
		}
	}
	return doc, nil
}

func responseFromWire(wr wireResponse) (mapping.Response, error) {
	group, err := coerceOrderGroup(wr.OrderGroup)
	if err != nil {
		return mapping.Response{}, err
	}
	r := mapping.Response{
		Protocol:  wr.Protocol,
		Condition: wr.Condition,
		Group:     group,
		Ordered:   orderedOrDefault(wr.Ordered),
		Module:    wr.CModule,
	}
	r.Kind, r.RawKind = kindFromWire(wr.Type)
	r.Repetition, r.RawRepetition = repetitionFromWire(wr.Count)
	if r.Ordered {
		r.Sequence = wr.Order
	}
	return r, nil
}

func triggerFromWire(t wireTrigger) mapping.Trigger {
	trigger := mapping.Trigger{
		Name:      t.Name,
		Condition: t.Condition,
		Ordered:   orderedOrDefault(t.Ordered),
	}
	trigger.Kind, trigger.RawKind = kindFromWire(t.Type)
	trigger.Repetition, trigger.RawRepetition = repetitionFromWire(t.Count)
	return trigger
}

func kindFromWire(label string) (mapping.ResponseKind, string) {
	kind, ok := parseKind(label)
	if ok {
		return kind, ""
	}
	return kind, label
}

func repetitionFromWire(label string) (mapping.Repetition, string) {
	rep, ok := parseRepetition(label)
	if ok {
		return rep, ""
	}
	return rep, label
}
