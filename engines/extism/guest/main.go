// Command guest is an example chart module for the JavaScript role. Build it with
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o chart.wasm .
//
// and compile it with compiler.WithWASI(true).
package main

import (
	"encoding/json"
	"fmt"

	"github.com/extism/go-pdk"
)

const prefix = "_ChartEditor_"

//go:wasmimport extism:host/user _ChartEditor_getTranslation
func hostGetTranslation(keyset, key, params uint64) uint64

//go:wasmimport extism:host/user _ChartEditor_getLoadedData
func hostGetLoadedData() uint64

//go:wasmimport extism:host/user _ChartEditor_updateConfig
func hostUpdateConfig(fragment uint64)

//go:wasmimport extism:host/user _ChartEditor_setSideMarkdown
func hostSetSideMarkdown(markdown uint64)

//go:wasmimport extism:host/user _ChartEditor_setExtra
func hostSetExtra(key, value uint64)

// input is the ctx object the host passes to run.
type input struct {
	Title  string `json:"title"`
	Region string `json:"region"`
}

type series struct {
	Name  string    `json:"name"`
	Data  []float64 `json:"data"`
	Total float64   `json:"total"`
}

// put copies s into guest memory. The empty string is still a value; absent is offset 0.
func put(s string) uint64 {
	mem := pdk.AllocateString(s)
	return mem.Offset()
}

func putJSON(v any) (uint64, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return put(string(b)), nil
}

func get(offset uint64) (string, bool) {
	if offset == 0 {
		return "", false
	}
	mem := pdk.FindMemory(offset)
	return string(mem.ReadBytes()), true
}

func config(name string) string {
	v, _ := pdk.GetConfig(prefix + name)
	return v
}

func loadedData() ([]series, error) {
	raw, ok := get(hostGetLoadedData())
	if !ok {
		return nil, nil
	}
	var out []series
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("loaded data: %w", err)
	}
	for i := range out {
		for _, v := range out[i].Data {
			out[i].Total += v
		}
	}
	return out, nil
}

func translate(key string, params map[string]any) (string, error) {
	p, err := putJSON(params)
	if err != nil {
		return "", err
	}
	text, _ := get(hostGetTranslation(put("chart"), put(key), p))
	return text, nil
}

func build() error {
	// the host sends no input when ctx is empty
	var in input
	if raw := pdk.Input(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &in); err != nil {
			return fmt.Errorf("input: %w", err)
		}
	}

	data, err := loadedData()
	if err != nil {
		return err
	}
	title, err := translate("title", map[string]any{"region": in.Region, "login": config("userLogin")})
	if err != nil {
		return err
	}
	if in.Title != "" {
		title = in.Title
	}

	fragment, err := putJSON(map[string]any{
		"title":  map[string]any{"text": title},
		"series": data,
	})
	if err != nil {
		return err
	}
	hostUpdateConfig(fragment)
	hostSetSideMarkdown(put(fmt.Sprintf("**%d** series, language `%s`", len(data), config("userLang"))))

	null, err := putJSON(nil)
	if err != nil {
		return err
	}
	hostSetExtra(put("legend"), null)

	// The result is a wrapped tooltip formatter, tagged with the marker key the host handed us.
	return pdk.OutputJSON(map[string]any{
		config("wrapFn_WRAPPED_FN_KEY"): map[string]any{
			"fn":   "function () { return this.series.name + ': ' + this.y; }",
			"args": []any{},
		},
	})
}

//go:wasmexport run
func run() int32 {
	if err := build(); err != nil {
		pdk.SetError(err)
		return 1
	}
	return 0
}

func main() {}
