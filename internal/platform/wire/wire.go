// Package wire holds decoding helpers for the loosely typed JSON the clinic
// API returns: form values are posted as strings but may come back as numbers.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ScalarString decodes a JSON string, number or null into its text form.
// Numbers keep their literal spelling ("72", "180.5"); null becomes "".
func ScalarString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", err
		}
		return n.String(), nil
	default:
		return "", fmt.Errorf("expected string or number, got %s", raw)
	}
}
