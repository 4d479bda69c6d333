package editor

import (
	"strings"

	"github.com/conneroisu/templgrid/internal/widgets"
)

// Descriptor configures the cell editor of one column.
type Descriptor struct {
	// Module selects the editor kind.
	Module Kind `yaml:"module" json:"module" mapstructure:"module"`
	// Properties maps a module property to the key it is read from in the
	// row's cell options. Unmapped properties are read under their own name.
	Properties map[string]string `yaml:"properties,omitempty" json:"properties,omitempty" mapstructure:"properties"`
	// Forced values win over anything the row supplies.
	Forced map[string]interface{} `yaml:"forced,omitempty" json:"forced,omitempty" mapstructure:"forced"`
	// Presets apply when neither a forced value nor a row value exists.
	Presets map[string]interface{} `yaml:"presets,omitempty" json:"presets,omitempty" mapstructure:"presets"`
}

// cellOptions splits a cell value into per-row options and the value to
// display. A map value carries options and its "value" entry; anything else
// is the value itself.
func cellOptions(cellValue interface{}) (map[string]interface{}, interface{}) {
	if opts, ok := cellValue.(map[string]interface{}); ok {
		return opts, opts["value"]
	}
	return nil, cellValue
}

// resolveArgs builds module arguments with precedence forced, row option,
// preset, nil.
func (d Descriptor) resolveArgs(rowOpts map[string]interface{}) widgets.Args {
	table := moduleTables[d.Module]
	args := make(widgets.Args, len(table.props))

	for _, prop := range table.props {
		if v, ok := d.Forced[prop]; ok {
			args[prop] = v
			continue
		}
		key := prop
		if mapped, ok := d.Properties[prop]; ok && mapped != "" {
			key = mapped
		}
		if v, ok := rowOpts[key]; ok {
			args[prop] = v
			continue
		}
		if v, ok := d.Presets[prop]; ok {
			args[prop] = v
			continue
		}
		args[prop] = nil
	}

	if table.finalize != nil {
		table.finalize(args)
	}
	return args
}

// Normalize returns a copy of d whose property keys are spelled the way the
// module's property table spells them. Config loaders that lowercase keys
// ("maxlength") are matched case-insensitively.
func (d Descriptor) Normalize() Descriptor {
	var props []string
	canonical := func(key string) string {
		for _, p := range props {
			if strings.EqualFold(p, key) {
				return p
			}
		}
		return key
	}

	out := Descriptor{Module: Kind(strings.ToLower(strings.TrimSpace(string(d.Module))))}
	props = moduleTables[out.Module].props
	if d.Properties != nil {
		out.Properties = make(map[string]string, len(d.Properties))
		for k, v := range d.Properties {
			out.Properties[canonical(k)] = v
		}
	}
	if d.Forced != nil {
		out.Forced = make(map[string]interface{}, len(d.Forced))
		for k, v := range d.Forced {
			out.Forced[canonical(k)] = v
		}
	}
	if d.Presets != nil {
		out.Presets = make(map[string]interface{}, len(d.Presets))
		for k, v := range d.Presets {
			out.Presets[canonical(k)] = v
		}
	}
	return out
}
