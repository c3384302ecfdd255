package types

import (
	"bytes"
	"testing"
	"time"
)

func TestU32RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteU32(&buf, 0xDEADBEEF); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	got, err := ReadU32(&buf)
	if err != nil {
		t.Fatalf("ReadU32: %v", err)
	}
	if got != 0xDEADBEEF {
		t.Fatalf("got %#x, want %#x", got, 0xDEADBEEF)
	}
}

func TestDOSDateTimeRoundTrip(t *testing.T) {
	in := time.Date(2012, time.October, 12, 23, 28, 42, 0, time.UTC)
	var buf bytes.Buffer
	if err := WriteDOSDateTime(&buf, in); err != nil {
		t.Fatalf("WriteDOSDateTime: %v", err)
	}
	out, err := ReadDOSDateTime(&buf)
	if err != nil {
		t.Fatalf("ReadDOSDateTime: %v", err)
	}
	if !out.Equal(in) {
		t.Fatalf("round trip = %v, want %v", out, in)
	}
}

func TestFileTimeRoundTrip(t *testing.T) {
	in := time.Date(2020, time.March, 1, 12, 0, 0, 0, time.UTC)
	ft := TimeToFileTime(in)
	out := FileTimeToTime(ft)
	if !out.Equal(in) {
		t.Fatalf("round trip = %v, want %v", out, in)
	}
}

func TestSizedStringRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		s       string
		unicode bool
	}{
		{name: "ASCII", s: "hello world", unicode: false},
		{name: "Unicode", s: "hello world", unicode: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteSizedString(&buf, tc.s, tc.unicode, DefaultCodepage); err != nil {
				t.Fatalf("WriteSizedString: %v", err)
			}
			got, err := ReadSizedString(&buf, tc.unicode, DefaultCodepage)
			if err != nil {
				t.Fatalf("ReadSizedString: %v", err)
			}
			if got != tc.s {
				t.Fatalf("got %q, want %q", got, tc.s)
			}
		})
	}
}

func TestCStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCString(&buf, DefaultCodepage, "C:\\Windows", false); err != nil {
		t.Fatalf("WriteCString: %v", err)
	}
	got, err := ReadCString(&buf, DefaultCodepage, false)
	if err != nil {
		t.Fatalf("ReadCString: %v", err)
	}
	if got != "C:\\Windows" {
		t.Fatalf("got %q, want %q", got, "C:\\Windows")
	}
}
