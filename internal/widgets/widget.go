// Package widgets implements the interactive modules a grid cell can host:
// toggles, text editors, action menus, checkboxes, buttons and dropdowns.
// Each module renders into a single html node built through a dom.Renderer.
package widgets

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/net/html"
)

// Module is one instantiated cell editor.
type Module interface {
	// Node returns the module's root view node.
	Node() *html.Node
}

// ValueSetter is implemented by modules that display a cell value.
type ValueSetter interface {
	SetValue(v interface{})
}

// Valuer is implemented by modules that can report their current value.
type Valuer interface {
	Value() interface{}
}

// Args holds the resolved constructor properties of a module.
type Args map[string]interface{}

// Bool reads key as a boolean. Strings such as "true" are accepted.
func (a Args) Bool(key string) bool {
	return truthy(a[key])
}

// String reads key as a string. Missing keys yield "".
func (a Args) String(key string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int reads key as an integer. ok is false when the key is absent; err is
// set when the value is present but not numeric.
func (a Args) Int(key string) (n int, ok bool, err error) {
	v, present := a[key]
	if !present || v == nil {
		return 0, false, nil
	}
	if str, isString := v.(string); isString {
		v = strings.TrimSpace(str)
	}
	if _, isBool := v.(bool); isBool {
		return 0, true, fmt.Errorf("%s: bool is not a number", key)
	}
	n, err = cast.ToIntE(v)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %v is not a number", key, a[key])
	}
	return n, true, nil
}

// Items reads key as a list of menu entries. Each entry is either a string
// or a map with "name" and optional "label".
func (a Args) Items(key string) ([]Item, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, nil
	}

	var raw []interface{}
	switch t := v.(type) {
	case []interface{}:
		raw = t
	case []string:
		for _, s := range t {
			raw = append(raw, s)
		}
	case []Item:
		return t, nil
	default:
		return nil, fmt.Errorf("%s: expected a list, got %T", key, v)
	}

	items := make([]Item, 0, len(raw))
	for i, entry := range raw {
		switch e := entry.(type) {
		case string:
			items = append(items, Item{Name: e, Label: e})
		case map[string]interface{}:
			name, _ := e["name"].(string)
			if name == "" {
				return nil, fmt.Errorf("%s[%d]: missing name", key, i)
			}
			label, _ := e["label"].(string)
			if label == "" {
				label = name
			}
			items = append(items, Item{Name: name, Label: label})
		default:
			return nil, fmt.Errorf("%s[%d]: unsupported entry %T", key, i, entry)
		}
	}
	return items, nil
}

// Item is one entry of an action menu or dropdown.
type Item struct {
	Name  string
	Label string
}

func truthy(v interface{}) bool {
	if str, ok := v.(string); ok {
		v = strings.TrimSpace(str)
	}
	b, err := cast.ToBoolE(v)
	return err == nil && b
}

func display(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
