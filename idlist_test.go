package lnk

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestLinkTargetIDListLocalRoundTrip(t *testing.T) {
	root, err := NewRootEntry(RootMyComputer)
	if err != nil {
		t.Fatal(err)
	}
	drive, err := NewDriveEntry("C:")
	if err != nil {
		t.Fatal(err)
	}
	folder := &PathSegmentEntry{Kind: FileOrFolder, IsDirectory: true, ShortName: "DIR", FullName: "folder"}
	file := &PathSegmentEntry{Kind: FileOrFolder, IsFile: true, ShortName: "FILE.TXT", FullName: "file.txt"}

	list := &LinkTargetIDList{Items: []ShellItem{root, drive, folder, file}}
	b, err := list.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	back, err := ParseLinkTargetIDList(b)
	if err != nil {
		t.Fatalf("ParseLinkTargetIDList: %v", err)
	}
	if len(back.Items) != 4 {
		t.Fatalf("Items = %d, want 4", len(back.Items))
	}
	wantPath := "%MY_COMPUTER%\\C:\\folder\\file.txt"
	if back.Path() != wantPath {
		t.Fatalf("Path() = %q, want %q", back.Path(), wantPath)
	}
}

// TestLinkTargetIDListRoundTripDeepEqual checks that every field of every
// item survives a Bytes/Parse round trip, not just the derived Path(). A
// diff here names the exact struct field that drifted instead of just
// reporting a boolean mismatch.
func TestLinkTargetIDListRoundTripDeepEqual(t *testing.T) {
	root, err := NewRootEntry(RootMyComputer)
	if err != nil {
		t.Fatal(err)
	}
	drive, err := NewDriveEntry("C:")
	if err != nil {
		t.Fatal(err)
	}
	folder := &PathSegmentEntry{Kind: FileOrFolder, IsDirectory: true, ShortName: "DIR", FullName: "folder"}
	file := &PathSegmentEntry{Kind: FileOrFolder, IsFile: true, ShortName: "FILE.TXT", FullName: "file.txt", FileSize: 7}

	list := &LinkTargetIDList{Items: []ShellItem{root, drive, folder, file}}
	b, err := list.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	back, err := ParseLinkTargetIDList(b)
	if err != nil {
		t.Fatalf("ParseLinkTargetIDList: %v", err)
	}

	opts := cmp.Options{
		cmpopts.IgnoreFields(PathSegmentEntry{}, "Modified", "Created", "Accessed"),
	}
	if diff := cmp.Diff(list.Items, back.Items, opts); diff != "" {
		t.Fatalf("round-tripped items differ (-want +got):\n%s", diff)
	}
}

func TestLinkTargetIDListRejectsMissingDrive(t *testing.T) {
	root, err := NewRootEntry(RootMyComputer)
	if err != nil {
		t.Fatal(err)
	}
	list := &LinkTargetIDList{Items: []ShellItem{root}}
	if _, err := list.Bytes(); err == nil {
		t.Fatal("expected validation error for MY_COMPUTER root without a drive")
	}
}

func TestLinkTargetIDListEmpty(t *testing.T) {
	back, err := ParseLinkTargetIDList([]byte{0x00, 0x00})
	if err != nil {
		t.Fatalf("ParseLinkTargetIDList(terminator only): %v", err)
	}
	if len(back.Items) != 0 {
		t.Fatalf("Items = %d, want 0", len(back.Items))
	}
	b, err := back.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if len(b) != 2 {
		t.Fatalf("encoded length = %d, want 2 (terminator only)", len(b))
	}
}
