package lnk

import "testing"

func TestRootEntryRoundTrip(t *testing.T) {
	re, err := NewRootEntry(RootMyComputer)
	if err != nil {
		t.Fatalf("NewRootEntry: %v", err)
	}
	b, err := re.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if b[0] != 0x1F || b[1] != 0x00 {
		t.Fatalf("unexpected header bytes: %x", b[:2])
	}
	back, err := parseRootEntry(b)
	if err != nil {
		t.Fatalf("parseRootEntry: %v", err)
	}
	if back.Root != RootMyComputer {
		t.Fatalf("Root = %q, want %q", back.Root, RootMyComputer)
	}
}

func TestRootEntryUnknownGUID(t *testing.T) {
	unknown, err := NewRootEntry(RootMyComputer)
	if err != nil {
		t.Fatal(err)
	}
	unknown.GUID[0] ^= 0xFF
	b, err := unknown.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	back, err := parseRootEntry(b)
	if err != nil {
		t.Fatalf("parseRootEntry: %v", err)
	}
	if back.Root == RootMyComputer {
		t.Fatal("expected a mangled GUID to no longer resolve to MY_COMPUTER")
	}
}

func TestDriveEntryRoundTrip(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "c", want: "C:"},
		{in: "C:", want: "C:"},
		{in: "D:\\", want: "D:"},
	}
	for _, tc := range cases {
		de, err := NewDriveEntry(tc.in)
		if err != nil {
			t.Fatalf("NewDriveEntry(%q): %v", tc.in, err)
		}
		if de.Drive != tc.want {
			t.Fatalf("Drive = %q, want %q", de.Drive, tc.want)
		}
		b, err := de.Bytes()
		if err != nil {
			t.Fatalf("Bytes: %v", err)
		}
		if len(b) != 23 {
			t.Fatalf("encoded length = %d, want 23", len(b))
		}
		back, err := parseDriveEntry(b)
		if err != nil {
			t.Fatalf("parseDriveEntry: %v", err)
		}
		if back.Drive != tc.want {
			t.Fatalf("parsed Drive = %q, want %q", back.Drive, tc.want)
		}
	}
}

func TestNewDriveEntryRejectsGarbage(t *testing.T) {
	if _, err := NewDriveEntry("not-a-drive"); err == nil {
		t.Fatal("expected error for invalid drive string")
	}
}
