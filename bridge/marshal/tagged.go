package marshal

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Marker tokens pushed into every guest as constants. A guest value shaped as a single-key
// object keyed by one of these tokens is a wrapped function or wrapped markup, not data.
const (
	WrappedFnKey   = "__wrappedFn__"
	WrappedHTMLKey = "__wrappedHTML__"
)

// Kind tags a value returned from a guest.
type Kind int

const (
	KindValue Kind = iota
	KindFunction
	KindHTML
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindFunction:
		return "function"
	case KindHTML:
		return "html"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// WrappedFunction is a client-side callback handed back by a guest script. Only its source
// text travels; the function is executed later by the renderer, never by the host.
type WrappedFunction struct {
	Source string
	Args   []any
	Libs   []string
}

// Tagged is the explicit variant form of a guest value.
type Tagged struct {
	Kind     Kind
	Value    any
	Function WrappedFunction
	HTML     string
}

// Classify inspects a decoded guest value and returns its tagged form. Values that only
// look similar to a marker (extra keys, wrong payload types) are plain values.
func Classify(v any) Tagged {
	obj, ok := v.(map[string]any)
	if !ok || len(obj) != 1 {
		return Tagged{Kind: KindValue, Value: v}
	}

	if raw, ok := obj[WrappedHTMLKey]; ok {
		if html, ok := raw.(string); ok {
			return Tagged{Kind: KindHTML, HTML: html}
		}
		return Tagged{Kind: KindValue, Value: v}
	}

	if raw, ok := obj[WrappedFnKey]; ok {
		if fn, ok := parseWrappedFunction(raw); ok {
			return Tagged{Kind: KindFunction, Function: fn}
		}
	}
	return Tagged{Kind: KindValue, Value: v}
}

func parseWrappedFunction(raw any) (WrappedFunction, bool) {
	body, ok := raw.(map[string]any)
	if !ok {
		return WrappedFunction{}, false
	}
	src, ok := body["fn"].(string)
	if !ok {
		return WrappedFunction{}, false
	}

	fn := WrappedFunction{Source: src}
	if args, ok := body["args"].([]any); ok {
		fn.Args = args
	}
	if libs, ok := body["libs"].([]any); ok {
		for _, lib := range libs {
			if s, ok := lib.(string); ok {
				fn.Libs = append(fn.Libs, s)
			}
		}
	}
	return fn, true
}

// Wire returns the wire representation of t, the inverse of Classify.
func (t Tagged) Wire() any {
	switch t.Kind {
	case KindFunction:
		body := map[string]any{"fn": t.Function.Source}
		if t.Function.Args != nil {
			body["args"] = t.Function.Args
		}
		if t.Function.Libs != nil {
			libs := make([]any, len(t.Function.Libs))
			for i, lib := range t.Function.Libs {
				libs[i] = lib
			}
			body["libs"] = libs
		}
		return map[string]any{WrappedFnKey: body}
	case KindHTML:
		return map[string]any{WrappedHTMLKey: t.HTML}
	default:
		return t.Value
	}
}

// Found is a tagged value located inside a larger guest result.
type Found struct {
	// Path is a slash separated pointer from the root, e.g. "/series/0/formatter".
	Path   string
	Tagged Tagged
}

// FindWrapped walks a decoded guest value and returns every wrapped function or markup in
// deterministic (sorted key, ascending index) order. Wrapped values are not descended into.
func FindWrapped(v any) []Found {
	var out []Found
	findWrapped("", v, &out)
	return out
}

func findWrapped(path string, v any, out *[]Found) {
	if t := Classify(v); t.Kind != KindValue {
		p := path
		if p == "" {
			p = "/"
		}
		*out = append(*out, Found{Path: p, Tagged: t})
		return
	}

	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			findWrapped(path+"/"+escapePointer(k), val[k], out)
		}
	case []any:
		for i, item := range val {
			findWrapped(path+"/"+strconv.Itoa(i), item, out)
		}
	}
}

func escapePointer(s string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}
