package lnk

import (
	"testing"
	"time"
)

func TestFileOrFolderSegmentRoundTrip(t *testing.T) {
	now := time.Date(2021, time.June, 15, 10, 30, 0, 0, time.UTC)
	e := &PathSegmentEntry{
		Kind:      FileOrFolder,
		IsFile:    true,
		ShortName: "FILE.TXT",
		FullName:  "a rather long file name.txt",
		Modified:  now,
		Created:   now,
		Accessed:  now,
		FileSize:  1024,
	}
	b, err := e.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	back, err := parsePathSegmentEntry(b)
	if err != nil {
		t.Fatalf("parsePathSegmentEntry: %v", err)
	}
	if back.FullName != e.FullName {
		t.Fatalf("FullName = %q, want %q", back.FullName, e.FullName)
	}
	if back.FileSize != e.FileSize {
		t.Fatalf("FileSize = %d, want %d", back.FileSize, e.FileSize)
	}
	if !back.IsFile || back.IsDirectory {
		t.Fatalf("IsFile/IsDirectory = %v/%v, want true/false", back.IsFile, back.IsDirectory)
	}
	if !back.Modified.Equal(e.Modified) {
		t.Fatalf("Modified = %v, want %v", back.Modified, e.Modified)
	}
}

func TestFolderSegmentRoundTrip(t *testing.T) {
	e := &PathSegmentEntry{
		Kind:        FileOrFolder,
		IsDirectory: true,
		ShortName:   "DIR",
		FullName:    "a directory",
	}
	b, err := e.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	back, err := parsePathSegmentEntry(b)
	if err != nil {
		t.Fatalf("parsePathSegmentEntry: %v", err)
	}
	if !back.IsDirectory || back.IsFile {
		t.Fatalf("IsDirectory/IsFile = %v/%v, want true/false", back.IsDirectory, back.IsFile)
	}
	if back.FullName != e.FullName {
		t.Fatalf("FullName = %q, want %q", back.FullName, e.FullName)
	}
}

func TestKnownFolderSegmentRoundTrip(t *testing.T) {
	guid, err := newTestGUID()
	if err != nil {
		t.Fatal(err)
	}
	e := &PathSegmentEntry{Kind: KnownFolder, GUID: guid}
	b, err := e.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	back, err := parsePathSegmentEntry(b)
	if err != nil {
		t.Fatalf("parsePathSegmentEntry: %v", err)
	}
	if back.Kind != KnownFolder {
		t.Fatalf("Kind = %v, want KnownFolder", back.Kind)
	}
	if back.GUID != guid {
		t.Fatalf("GUID = %v, want %v", back.GUID, guid)
	}
}

func TestRootKnownFolderSegmentRoundTrip(t *testing.T) {
	guid, err := newTestGUID()
	if err != nil {
		t.Fatal(err)
	}
	e := &PathSegmentEntry{Kind: RootKnownFolder, GUID: guid}
	b, err := e.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	back, err := parsePathSegmentEntry(b)
	if err != nil {
		t.Fatalf("parsePathSegmentEntry: %v", err)
	}
	if back.Kind != RootKnownFolder {
		t.Fatalf("Kind = %v, want RootKnownFolder", back.Kind)
	}
	if back.GUID != guid {
		t.Fatalf("GUID = %v, want %v", back.GUID, guid)
	}
}
