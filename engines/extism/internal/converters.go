// Package internal holds the Extism side of the bridge: JSON input conversion, the config
// map handed to guests and the host function table.
package internal

import (
	"github.com/robbyt/go-chartbridge/bridge/marshal"
)

// ConvertToExtismFormat converts the script input into the JSON document passed to the entry
// point. Empty input produces no bytes.
func ConvertToExtismFormat(inputData map[string]any) ([]byte, error) {
	if len(inputData) == 0 {
		return nil, nil
	}
	p, err := marshal.Encode(inputData)
	if err != nil {
		return nil, err
	}
	return []byte(p.String()), nil
}

// ConvertFromExtismOutput decodes the entry point output. Output that is not JSON is
// returned as a string; empty output is nil.
func ConvertFromExtismOutput(output []byte) any {
	if len(output) == 0 {
		return nil
	}
	v, _, err := marshal.Decode(marshal.Raw(string(output)))
	if err != nil {
		return string(output)
	}
	return v
}
