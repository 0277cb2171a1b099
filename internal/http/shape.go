package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Input validation is declarative: each procedure states the primitive
// shape its payload must carry and validation runs before any store access.
// A failure names the expected shape, e.g. "expected { id: number }".

type fieldKind int

const (
	kindNumber fieldKind = iota
	kindString
)

type shape map[string]fieldKind

func (k fieldKind) matches(raw json.RawMessage) bool {
	value := bytes.TrimSpace(raw)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return false
	}
	switch k {
	case kindNumber:
		return value[0] == '-' || (value[0] >= '0' && value[0] <= '9')
	case kindString:
		return value[0] == '"'
	}
	return false
}

// validateInput reads the request body and checks it is a non-null JSON
// object carrying every required field with the required primitive type.
// The validated fields and the raw body are both returned so handlers can
// decode their typed payload from the already-validated bytes.
func validateInput(r *http.Request, s shape, expected string) (map[string]json.RawMessage, []byte, error) {
	invalid := fmt.Errorf("invalid input: expected %s", expected)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, nil, invalid
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return nil, nil, invalid
	}
	for field, kind := range s {
		raw, ok := payload[field]
		if !ok || !kind.matches(raw) {
			return nil, nil, invalid
		}
	}
	return payload, body, nil
}

// numberInput is the common single-field case ({ id: number } and friends).
func numberInput(r *http.Request, field string) (int64, error) {
	expected := fmt.Sprintf("{ %s: number }", field)
	payload, _, err := validateInput(r, shape{field: kindNumber}, expected)
	if err != nil {
		return 0, err
	}
	var value int64
	if err := json.Unmarshal(payload[field], &value); err != nil {
		return 0, fmt.Errorf("invalid input: expected %s", expected)
	}
	return value, nil
}
