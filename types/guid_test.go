package types

import "testing"

func TestGUIDRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{name: "MyComputer", text: "{20D04FE0-3AEA-1069-A2D8-08002B30309D}"},
		{name: "UserProfile", text: "{59031A47-3F72-44A7-89C5-5595FE6B30EE}"},
		{name: "Lowercase", text: "{20d04fe0-3aea-1069-a2d8-08002b30309d}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := ParseGUID(tc.text)
			if err != nil {
				t.Fatalf("ParseGUID(%q): %v", tc.text, err)
			}
			back := g.String()
			if back != upperBrace(tc.text) {
				t.Fatalf("String() = %q, want %q", back, upperBrace(tc.text))
			}
			g2, err := GUIDFromBytes(g.Bytes())
			if err != nil {
				t.Fatalf("GUIDFromBytes: %v", err)
			}
			if g2 != g {
				t.Fatalf("GUIDFromBytes(g.Bytes()) = %v, want %v", g2, g)
			}
		})
	}
}

func upperBrace(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'a' && c <= 'f' {
			out[i] = c - ('a' - 'A')
		}
	}
	return string(out)
}

func TestGUIDFromBytesRejectsWrongLength(t *testing.T) {
	if _, err := GUIDFromBytes(make([]byte, 10)); err == nil {
		t.Fatal("expected error for short byte slice")
	}
}
