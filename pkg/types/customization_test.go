package types

import (
	"encoding/json"
	"testing"
)

func mustStructured(t *testing.T, raw string) Customization {
	t.Helper()
	c, err := StructuredCustomization(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("StructuredCustomization(%s): %v", raw, err)
	}
	return c
}

func TestCustomizationEquality(t *testing.T) {
	cases := []struct {
		name string
		a, b Customization
		want bool
	}{
		{"both absent", NoCustomization, NoCustomization, true},
		{"absent vs text", NoCustomization, TextCustomization("hi"), false},
		{"equal text", TextCustomization("engrave me"), TextCustomization("engrave me"), true},
		{"different text", TextCustomization("a"), TextCustomization("b"), false},
		{"text vs structured with same text", TextCustomization("hi"), mustStructured(t, `{"text":"hi"}`), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Fatalf("Equal = %v, want %v", got, tc.want)
			}
			if got := tc.b.Equal(tc.a); got != tc.want {
				t.Fatalf("Equal (reversed) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStructuredEqualityUsesTextField(t *testing.T) {
	a := mustStructured(t, `{"text":"happy birthday","font":"serif"}`)
	b := mustStructured(t, `{"text":"happy birthday","font":"script"}`)
	if !a.Equal(b) {
		t.Fatal("structured payloads with the same text field should match")
	}

	c := mustStructured(t, `{"text":"congrats"}`)
	if a.Equal(c) {
		t.Fatal("different text fields should not match")
	}
}

func TestStructuredEqualityFallsBackToCanonicalJSON(t *testing.T) {
	// Same content, different key order.
	a := mustStructured(t, `{"color":"red","size":"L"}`)
	b := mustStructured(t, `{"size":"L","color":"red"}`)
	if !a.Equal(b) {
		t.Fatal("key order should not affect structural equality")
	}

	c := mustStructured(t, `{"color":"blue","size":"L"}`)
	if a.Equal(c) {
		t.Fatal("different structured payloads should not match")
	}
}

func TestCustomizationUnmarshal(t *testing.T) {
	var c Customization
	if err := json.Unmarshal([]byte(`null`), &c); err != nil {
		t.Fatal(err)
	}
	if !c.IsZero() {
		t.Fatal("null should decode to the none variant")
	}

	if err := json.Unmarshal([]byte(`""`), &c); err != nil {
		t.Fatal(err)
	}
	if !c.IsZero() {
		t.Fatal("empty string should collapse to the none variant")
	}

	if err := json.Unmarshal([]byte(`"engraved"`), &c); err != nil {
		t.Fatal(err)
	}
	if c.Kind() != CustomizationText || c.Text() != "engraved" {
		t.Fatalf("got kind=%s text=%q", c.Kind(), c.Text())
	}

	if err := json.Unmarshal([]byte(`{"text":"hi"}`), &c); err != nil {
		t.Fatal(err)
	}
	if c.Kind() != CustomizationStructured || c.Text() != "hi" {
		t.Fatalf("got kind=%s text=%q", c.Kind(), c.Text())
	}

	if err := json.Unmarshal([]byte(`{}`), &c); err != nil {
		t.Fatal(err)
	}
	if !c.IsZero() {
		t.Fatal("empty object should collapse to the none variant")
	}

	if err := json.Unmarshal([]byte(`42`), &c); err == nil {
		t.Fatal("numbers should be rejected")
	}
}

func TestCustomizationRoundTrip(t *testing.T) {
	orig := mustStructured(t, `{"text":"hi","font":"serif"}`)
	encoded, err := json.Marshal(orig)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Customization
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatal(err)
	}
	if !orig.Equal(decoded) {
		t.Fatal("round trip should preserve equality")
	}
}
