package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// CustomizationKind discriminates the customization union.
type CustomizationKind string

const (
	CustomizationNone       CustomizationKind = "none"
	CustomizationText       CustomizationKind = "text"
	CustomizationStructured CustomizationKind = "structured"
)

// Customization is the free-form personalization payload a client attaches to
// a cart line (engraving message, gift note, colour choice). Clients send
// either nothing, a bare string, or an arbitrary JSON object, so it is modeled
// as a tagged union with one equality rule per variant instead of cascading
// runtime type checks.
type Customization struct {
	kind CustomizationKind
	text string
	// raw holds the canonically serialized form of a structured payload.
	// Unmarshaling into a map and re-marshaling sorts object keys, so two
	// structurally equal payloads share one canonical form.
	raw json.RawMessage
}

// NoCustomization is the zero value, present for readability at call sites.
var NoCustomization = Customization{}

// TextCustomization builds the text variant. An empty string collapses to None.
func TextCustomization(text string) Customization {
	if text == "" {
		return Customization{}
	}
	return Customization{kind: CustomizationText, text: text}
}

// StructuredCustomization canonicalizes an arbitrary JSON object payload.
func StructuredCustomization(raw json.RawMessage) (Customization, error) {
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Customization{}, fmt.Errorf("customization: invalid object payload: %w", err)
	}
	if len(decoded) == 0 {
		return Customization{}, nil
	}
	canonical, err := json.Marshal(decoded)
	if err != nil {
		return Customization{}, fmt.Errorf("customization: canonicalize: %w", err)
	}
	c := Customization{kind: CustomizationStructured, raw: canonical}
	if text, ok := decoded["text"].(string); ok {
		c.text = text
	}
	return c, nil
}

// Kind returns the active variant.
func (c Customization) Kind() CustomizationKind {
	if c.kind == "" {
		return CustomizationNone
	}
	return c.kind
}

// IsZero reports whether no customization is present.
func (c Customization) IsZero() bool {
	return c.Kind() == CustomizationNone
}

// Text returns the text value for the text variant, or the embedded "text"
// field of a structured payload when one exists.
func (c Customization) Text() string {
	return c.text
}

// Equal applies the per-variant equality policy: both absent is equal, a kind
// mismatch is unequal, text compares exactly, and structured payloads carrying
// a "text" field compare by that field before falling back to the canonical
// serialization.
func (c Customization) Equal(other Customization) bool {
	if c.Kind() != other.Kind() {
		return false
	}
	switch c.Kind() {
	case CustomizationNone:
		return true
	case CustomizationText:
		return c.text == other.text
	case CustomizationStructured:
		if c.text != "" && other.text != "" {
			return c.text == other.text
		}
		return bytes.Equal(c.raw, other.raw)
	}
	return false
}

// MarshalJSON emits null, a string, or the canonical object.
func (c Customization) MarshalJSON() ([]byte, error) {
	switch c.Kind() {
	case CustomizationText:
		return json.Marshal(c.text)
	case CustomizationStructured:
		return append(json.RawMessage(nil), c.raw...), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, "", a string, or a JSON object.
func (c *Customization) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*c = Customization{}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*c = TextCustomization(text)
		return nil
	case '{':
		parsed, err := StructuredCustomization(json.RawMessage(data))
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	return fmt.Errorf("customization: expected null, string, or object, got %s", trimmed[:1])
}

// Value stores the customization as its JSON form (NULL when absent).
func (c Customization) Value() (driver.Value, error) {
	if c.IsZero() {
		return nil, nil
	}
	encoded, err := c.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

// Scan restores a customization from its stored JSON form.
func (c *Customization) Scan(value interface{}) error {
	if value == nil {
		*c = Customization{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return c.UnmarshalJSON(v)
	case string:
		return c.UnmarshalJSON([]byte(v))
	}
	return fmt.Errorf("customization: unsupported scan type %T", value)
}
