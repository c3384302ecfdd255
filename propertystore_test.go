package lnk

import (
	"bytes"
	"testing"

	"github.com/strayge/go-lnk/types"
)

func TestTypedPropertyValueStringRoundTrip(t *testing.T) {
	v := NewStringPropertyValue("Contoso Document")
	b := v.Bytes() // type(2) + reserved(2) + value

	r, err := parseTypedPropertyValue(b)
	if err != nil {
		t.Fatalf("parseTypedPropertyValue: %v", err)
	}
	if r.Type != VTLPWSTR {
		t.Fatalf("Type = %#x, want VTLPWSTR", r.Type)
	}
	if got := decodeLPWSTR(r.Value[4:]); got != "Contoso Document" {
		t.Fatalf("decodeLPWSTR = %q, want %q", got, "Contoso Document")
	}
}

func TestPropertyStoreStringKeyedRoundTrip(t *testing.T) {
	ps := &PropertyStore{
		FormatID:  stringPropertyGUID,
		IsStrings: true,
		StringEntries: []PropertyStoreStringEntry{
			{Name: "System.Title", Value: NewStringPropertyValue("My Document")},
		},
	}
	b := ps.Bytes()
	r := bytes.NewReader(b)
	back, end, err := parsePropertyStore(r)
	if err != nil {
		t.Fatalf("parsePropertyStore: %v", err)
	}
	if end {
		t.Fatal("unexpected terminal store")
	}
	if !back.IsStrings {
		t.Fatal("expected IsStrings = true")
	}
	if len(back.StringEntries) != 1 {
		t.Fatalf("StringEntries = %d, want 1", len(back.StringEntries))
	}
	if back.StringEntries[0].Name != "System.Title" {
		t.Fatalf("Name = %q, want System.Title", back.StringEntries[0].Name)
	}
}

func TestPropertyStoreTerminator(t *testing.T) {
	r := bytes.NewReader([]byte{0, 0, 0, 0})
	ps, end, err := parsePropertyStore(r)
	if err != nil {
		t.Fatalf("parsePropertyStore: %v", err)
	}
	if !end || ps != nil {
		t.Fatalf("expected terminal (nil, true), got (%v, %v)", ps, end)
	}
}

func TestStringPropertyGUIDIsStringsMarker(t *testing.T) {
	guidBytes := stringPropertyGUID.Bytes()
	if len(guidBytes) != 16 {
		t.Fatalf("guid bytes len = %d, want 16", len(guidBytes))
	}
	round, err := types.GUIDFromBytes(guidBytes)
	if err != nil {
		t.Fatalf("GUIDFromBytes: %v", err)
	}
	if round != stringPropertyGUID {
		t.Fatal("stringPropertyGUID did not round trip through Bytes/GUIDFromBytes")
	}
}
