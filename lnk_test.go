package lnk

import (
	"errors"
	"testing"
	"time"

	"github.com/strayge/go-lnk/types"
)

func newLocalLnk(t *testing.T) *Lnk {
	t.Helper()
	root, err := NewRootEntry(RootMyComputer)
	if err != nil {
		t.Fatal(err)
	}
	drive, err := NewDriveEntry("C:")
	if err != nil {
		t.Fatal(err)
	}
	folder := &PathSegmentEntry{Kind: FileOrFolder, IsDirectory: true, ShortName: "FOLDER", FullName: "folder"}
	file := &PathSegmentEntry{Kind: FileOrFolder, IsFile: true, ShortName: "FILE.TXT", FullName: "file.txt", FileSize: 42}

	l := New()
	l.LinkFlags.SetIsUnicode(true)
	l.SetShellItemIDList(&LinkTargetIDList{Items: []ShellItem{root, drive, folder, file}})
	l.SetDescription("a shortcut")
	l.SetArguments("--flag value")
	l.SetWorkingDir("C:\\folder")
	return l
}

func TestLnkRoundTrip(t *testing.T) {
	l := newLocalLnk(t)
	l.FileSize = 42
	l.IconIndex = 3
	if err := l.SetWindowMode(WindowMaximized); err != nil {
		t.Fatal(err)
	}
	l.HotKey = "CONTROL+A"

	b, err := l.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	back, err := Parse(b)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if back.LinkFlags != l.LinkFlags {
		t.Fatalf("LinkFlags = %v, want %v", back.LinkFlags, l.LinkFlags)
	}
	if back.Description() != l.Description() {
		t.Fatalf("Description() = %q, want %q", back.Description(), l.Description())
	}
	if back.Arguments() != l.Arguments() {
		t.Fatalf("Arguments() = %q, want %q", back.Arguments(), l.Arguments())
	}
	if back.WorkingDir() != l.WorkingDir() {
		t.Fatalf("WorkingDir() = %q, want %q", back.WorkingDir(), l.WorkingDir())
	}
	if back.WindowMode() != WindowMaximized {
		t.Fatalf("WindowMode() = %q, want %q", back.WindowMode(), WindowMaximized)
	}
	if back.HotKey != l.HotKey {
		t.Fatalf("HotKey = %q, want %q", back.HotKey, l.HotKey)
	}
	if back.FileSize != l.FileSize {
		t.Fatalf("FileSize = %d, want %d", back.FileSize, l.FileSize)
	}
	wantPath := "C:\\folder\\file.txt"
	if back.Path() != wantPath {
		t.Fatalf("Path() = %q, want %q", back.Path(), wantPath)
	}
}

// TestKnownFolderPathResolution mirrors the Recent-folder shortcuts whose
// target lives under a known-folder GUID rather than a drive: the resolved
// path keeps the ::{GUID} prefix after the %USERPROFILE% root is stripped.
func TestKnownFolderPathResolution(t *testing.T) {
	root, err := NewRootEntry(RootUserProfile)
	if err != nil {
		t.Fatal(err)
	}
	guid, err := types.ParseGUID("{374DE290-123F-4565-9164-39C4925E467B}")
	if err != nil {
		t.Fatal(err)
	}
	folder := &PathSegmentEntry{Kind: RootKnownFolder, GUID: guid, FullName: "::" + guid.String()}
	file := &PathSegmentEntry{Kind: FileOrFolder, IsFile: true, ShortName: "2020M0~1.PDF", FullName: "2020M09_01_contract.pdf"}

	l := New()
	l.LinkFlags.SetIsUnicode(true)
	l.SetShellItemIDList(&LinkTargetIDList{Items: []ShellItem{root, folder, file}})

	want := "::{374DE290-123F-4565-9164-39C4925E467B}\\2020M09_01_contract.pdf"
	if l.Path() != want {
		t.Fatalf("Path() = %q, want %q", l.Path(), want)
	}

	b, err := l.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	back, err := Parse(b)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if back.Path() != want {
		t.Fatalf("round-tripped Path() = %q, want %q", back.Path(), want)
	}
}

func TestWriteHotKeyRejectsUnknownModifier(t *testing.T) {
	l := newLocalLnk(t)
	l.HotKey = "SUPER+A"
	if _, err := l.Bytes(); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Bytes() error = %v, want ErrInvalidKey", err)
	}
	l.HotKey = "CONTROL+NOSUCHKEY"
	if _, err := l.Bytes(); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Bytes() error = %v, want ErrInvalidKey", err)
	}
}

func TestParseRejectsBadSignature(t *testing.T) {
	b := make([]byte, 20)
	if _, err := Parse(b); err == nil {
		t.Fatal("expected error for bad signature")
	}
}

func TestParseRejectsShortInput(t *testing.T) {
	if _, err := Parse([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for too-short input")
	}
}

func TestLnkStringFieldFlagCoupling(t *testing.T) {
	l := New()
	if l.LinkFlags.HasName() {
		t.Fatal("HasName should start false")
	}
	l.SetDescription("hello")
	if !l.LinkFlags.HasName() {
		t.Fatal("SetDescription should set HasName")
	}
	l.SetDescription("")
	if l.LinkFlags.HasName() {
		t.Fatal("clearing description should clear HasName")
	}
}

func TestLnkInfoFlagCoupling(t *testing.T) {
	l := New()
	l.SpecifyLocalLocation("C:\\a\\b.txt", DriveFixed, 1, "OSDisk")
	if !l.LinkFlags.HasLinkInfo() || l.LinkFlags.ForceNoLinkInfo() {
		t.Fatalf("HasLinkInfo/ForceNoLinkInfo = %v/%v, want true/false", l.LinkFlags.HasLinkInfo(), l.LinkFlags.ForceNoLinkInfo())
	}
	l.SetInfo(nil)
	if l.LinkFlags.HasLinkInfo() || !l.LinkFlags.ForceNoLinkInfo() {
		t.Fatalf("HasLinkInfo/ForceNoLinkInfo = %v/%v, want false/true", l.LinkFlags.HasLinkInfo(), l.LinkFlags.ForceNoLinkInfo())
	}
}

func TestHotKeyRoundTripNoModifier(t *testing.T) {
	l := newLocalLnk(t)
	l.HotKey = "F5"
	b, err := l.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	back, err := Parse(b)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if back.HotKey != "F5" {
		t.Fatalf("HotKey = %q, want F5", back.HotKey)
	}
}

func TestTimestampsRoundTrip(t *testing.T) {
	l := newLocalLnk(t)
	when := time.Date(2018, time.January, 2, 3, 4, 5, 0, time.UTC)
	l.CreationTime = when
	l.AccessTime = when
	l.ModificationTime = when
	b, err := l.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	back, err := Parse(b)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !back.CreationTime.Equal(when) {
		t.Fatalf("CreationTime = %v, want %v", back.CreationTime, when)
	}
}
