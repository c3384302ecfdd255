package lnk

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/strayge/go-lnk/types"
)

// PathSegmentKind distinguishes the three on-disk layouts a
// PathSegmentEntry can take.
type PathSegmentKind int

const (
	FileOrFolder PathSegmentKind = iota
	KnownFolder
	RootKnownFolder
)

const beef0004Signature = 0xBEEF0004
const beef0026Signature = 0xBEEF0026

// PathSegmentEntry is one path component of a Target ID List: a file, a
// folder, or a known-folder GUID reference ([MS-SHLLINK] 2.2.2 CFileEntry /
// CFolderEntry).
type PathSegmentEntry struct {
	Kind PathSegmentKind

	IsDirectory bool
	IsFile      bool

	FileSize      uint32
	Modified      time.Time
	Created       time.Time
	Accessed      time.Time
	ShortName     string
	FullName      string
	LocalizedName string

	// GUID is populated for KnownFolder and RootKnownFolder kinds.
	GUID types.GUID
}

func (*PathSegmentEntry) shellItem() {}

// parsePathSegmentEntry dispatches on the leading type word: 0x2E 0x80
// marks ROOT_KNOWN_FOLDER, 0x00 0x00 marks KNOWN_FOLDER, everything else
// is the common FILE_OR_FOLDER layout.
func parsePathSegmentEntry(raw []byte) (*PathSegmentEntry, error) {
	if len(raw) >= 2 && raw[0] == 0x2E && raw[1] == 0x80 {
		return parseRootKnownFolderSegment(raw)
	}
	if len(raw) >= 2 && raw[0] == 0x00 && raw[1] == 0x00 {
		return parseKnownFolderSegment(raw)
	}
	return parseFileOrFolderSegment(raw)
}

// parseKnownFolderSegment decodes the type-0x0000 layout: type word, extra
// block size, a 0x23FEBBEE extra signature, then the 16-byte known-folder
// GUID. An unrecognized extra signature leaves the entry nameless.
func parseKnownFolderSegment(raw []byte) (*PathSegmentEntry, error) {
	e := &PathSegmentEntry{Kind: KnownFolder}
	if len(raw) < 28 {
		return nil, formatErrorf(0, nil, "known folder segment too short: %d bytes", len(raw))
	}
	sig := uint32(raw[4]) | uint32(raw[5])<<8 | uint32(raw[6])<<16 | uint32(raw[7])<<24
	if sig != 0x23FEBBEE {
		return e, nil
	}
	guid, err := types.GUIDFromBytes(raw[12:28])
	if err != nil {
		return nil, err
	}
	e.GUID = guid
	e.FullName = "::" + guid.String()
	return e, nil
}

// parseRootKnownFolderSegment decodes the type-0x802E layout: type word,
// 16-byte GUID, then a BEEF0026-tagged extra carrying three zeroed
// timestamps the codec never exposes.
func parseRootKnownFolderSegment(raw []byte) (*PathSegmentEntry, error) {
	if len(raw) < 18 {
		return nil, formatErrorf(0, nil, "root known folder segment too short: %d bytes", len(raw))
	}
	guid, err := types.GUIDFromBytes(raw[2:18])
	if err != nil {
		return nil, err
	}
	return &PathSegmentEntry{Kind: RootKnownFolder, GUID: guid, FullName: "::" + guid.String()}, nil
}

func parseFileOrFolderSegment(raw []byte) (*PathSegmentEntry, error) {
	if len(raw) < 14 {
		return nil, formatErrorf(0, nil, "path segment too short: %d bytes", len(raw))
	}
	flagsByte := raw[0]
	e := &PathSegmentEntry{
		Kind:        FileOrFolder,
		IsDirectory: flagsByte&0x01 != 0,
		IsFile:      flagsByte&0x02 != 0,
	}
	isUnicode := flagsByte&0x04 != 0

	r := bytes.NewReader(raw[2:])
	size, err := types.ReadU32(r)
	if err != nil {
		return nil, fmt.Errorf("lnk: path segment file size: %w", err)
	}
	e.FileSize = size
	modified, err := types.ReadDOSDateTime(r)
	if err != nil {
		return nil, fmt.Errorf("lnk: path segment modified time: %w", err)
	}
	e.Modified = modified
	if _, err := types.ReadU16(r); err != nil { // reserved (attribute bits, unused here)
		return nil, fmt.Errorf("lnk: path segment reserved word: %w", err)
	}

	var shortName string
	if isUnicode {
		shortName, err = types.ReadCUnicode(r)
	} else {
		shortName, err = types.ReadCString(r, types.DefaultCodepage, true)
	}
	if err != nil {
		return nil, fmt.Errorf("lnk: path segment short name: %w", err)
	}
	e.ShortName = shortName

	if err := parseBeef0004(r, e); err != nil {
		return nil, err
	}
	return e, nil
}

// parseBeef0004 reads the BEEF0004 extension trailing a FILE_OR_FOLDER
// segment and fills in full/localized names and timestamps. Fields are
// read sequentially; the size word is not trusted because some producers
// record a value unrelated to the real extension length. An extension
// with a different signature leaves the entry nameless.
func parseBeef0004(r *bytes.Reader, e *PathSegmentEntry) error {
	if r.Len() == 0 {
		return nil
	}
	if _, err := types.ReadU16(r); err != nil { // size, unreliable
		return fmt.Errorf("lnk: beef0004 size: %w", err)
	}
	version, err := types.ReadU16(r)
	if err != nil {
		return fmt.Errorf("lnk: beef0004 version: %w", err)
	}
	sig, err := types.ReadU32(r)
	if err != nil {
		return fmt.Errorf("lnk: beef0004 signature: %w", err)
	}
	if sig != beef0004Signature {
		return nil
	}
	created, err := types.ReadDOSDateTime(r)
	if err != nil {
		return fmt.Errorf("lnk: beef0004 created: %w", err)
	}
	e.Created = created
	accessed, err := types.ReadDOSDateTime(r)
	if err != nil {
		return fmt.Errorf("lnk: beef0004 accessed: %w", err)
	}
	e.Accessed = accessed

	if _, err := types.ReadU16(r); err != nil { // offset_unicode, fixed layout
		return fmt.Errorf("lnk: beef0004 unicode offset: %w", err)
	}
	if version >= 7 {
		if _, err := types.ReadU16(r); err != nil { // offset_ansi, unused
			return err
		}
		if _, err := types.ReadU64(r); err != nil { // file_reference, unused
			return err
		}
		if _, err := types.ReadU64(r); err != nil { // unknown
			return err
		}
	}
	var longStringSize uint16
	if version >= 3 {
		if longStringSize, err = types.ReadU16(r); err != nil {
			return err
		}
	}
	if version >= 9 {
		if _, err := types.ReadU32(r); err != nil {
			return err
		}
	}
	if version >= 8 {
		if _, err := types.ReadU32(r); err != nil {
			return err
		}
	}
	if version >= 3 {
		full, err := types.ReadCUnicode(r)
		if err != nil {
			return fmt.Errorf("lnk: beef0004 full name: %w", err)
		}
		e.FullName = full
		if longStringSize > 0 {
			var localized string
			if version >= 7 {
				localized, err = types.ReadCUnicode(r)
			} else {
				localized, err = types.ReadCString(r, types.DefaultCodepage, false)
			}
			if err != nil {
				return fmt.Errorf("lnk: beef0004 localized name: %w", err)
			}
			e.LocalizedName = localized
		}
		// trailing version offset word ignored
	}
	return nil
}

// Bytes serializes the entry. FILE_OR_FOLDER entries always write a
// version-3 BEEF0004 extension with offset_unicode fixed at 0x14, discarding
// any higher-version fields a parsed entry may have carried.
func (e *PathSegmentEntry) Bytes() ([]byte, error) {
	switch e.Kind {
	case KnownFolder, RootKnownFolder:
		return e.knownFolderBytes()
	default:
		return e.fileOrFolderBytes()
	}
}

// segmentGUID resolves the GUID to serialize for a known-folder entry,
// deriving it from a "::{...}" full name when the GUID field itself was
// never populated.
func (e *PathSegmentEntry) segmentGUID() (types.GUID, error) {
	if e.GUID != (types.GUID{}) {
		return e.GUID, nil
	}
	if strings.HasPrefix(e.FullName, "::") {
		return types.ParseGUID(strings.Trim(e.FullName, ":"))
	}
	return types.GUID{}, fmt.Errorf("%w: known folder entry has no GUID", ErrMissingInformation)
}

// knownFolderBytes writes either the KNOWN_FOLDER layout (type word, extra
// size, 0x23FEBBEE extra, 16-byte GUID) or the ROOT_KNOWN_FOLDER layout
// (type word 0x802E, 16-byte GUID, BEEF0026 extra with three zeroed 8-byte
// timestamps this codec never exposes).
func (e *PathSegmentEntry) knownFolderBytes() ([]byte, error) {
	guid, err := e.segmentGUID()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if e.Kind == RootKnownFolder {
		if err := types.WriteU16(&buf, 0x802E); err != nil {
			return nil, err
		}
		buf.Write(guid.Bytes())
		if err := types.WriteU16(&buf, 0x26); err != nil {
			return nil, err
		}
		if err := types.WriteU16(&buf, 1); err != nil { // version
			return nil, err
		}
		if err := types.WriteU32(&buf, beef0026Signature); err != nil {
			return nil, err
		}
		if err := types.WriteU32(&buf, 0x11); err != nil { // datetime-present flag
			return nil, err
		}
		buf.Write(make([]byte, 24)) // created, modified, accessed: zeroed
		if err := types.WriteU16(&buf, 0x14); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	if err := types.WriteU16(&buf, 0x0000); err != nil {
		return nil, err
	}
	if err := types.WriteU16(&buf, 0x1A); err != nil { // extra block size
		return nil, err
	}
	if err := types.WriteU32(&buf, 0x23FEBBEE); err != nil {
		return nil, err
	}
	if err := types.WriteU16(&buf, 0); err != nil { // unknown
		return nil, err
	}
	if err := types.WriteU16(&buf, 0x10); err != nil { // guid size
		return nil, err
	}
	buf.Write(guid.Bytes())
	return buf.Bytes(), nil
}

func (e *PathSegmentEntry) fileOrFolderBytes() ([]byte, error) {
	if e.FullName == "" {
		return nil, fmt.Errorf("%w: path segment has no full name", ErrMissingInformation)
	}
	shortName := e.ShortName
	if shortName == "" {
		shortName = e.FullName
	}
	isUnicode := !isASCII(shortName)
	shortNameLen := len([]rune(shortName)) + 1
	if isUnicode {
		shortNameLen *= 2
	} else {
		shortNameLen += shortNameLen % 2 // padding
	}

	var flagsByte byte = 0x30
	if e.IsDirectory {
		flagsByte |= 0x01
	}
	if e.IsFile {
		flagsByte |= 0x02
	}
	if isUnicode {
		flagsByte |= 0x04
	}

	var buf bytes.Buffer
	buf.WriteByte(flagsByte)
	buf.WriteByte(0x00)
	if err := types.WriteU32(&buf, e.FileSize); err != nil {
		return nil, err
	}
	if err := types.WriteDOSDateTime(&buf, orNow(e.Modified)); err != nil {
		return nil, err
	}
	if err := types.WriteU16(&buf, 0x10); err != nil {
		return nil, err
	}
	if isUnicode {
		if err := types.WriteCUnicode(&buf, shortName); err != nil {
			return nil, err
		}
	} else {
		if err := types.WriteCString(&buf, types.DefaultCodepage, shortName, true); err != nil {
			return nil, err
		}
	}

	ext, err := e.beef0004Bytes(shortName, shortNameLen)
	if err != nil {
		return nil, err
	}
	buf.Write(ext)
	return buf.Bytes(), nil
}

// beef0004Bytes always writes a version-3 extension with offset_unicode
// fixed at 0x14, discarding any higher-version fields and localized name a
// parsed entry may have carried. The size word records 24 plus twice the
// short-name length, not the real extension length; readers must not
// trust it, and parseBeef0004 does not.
func (e *PathSegmentEntry) beef0004Bytes(shortName string, shortNameLen int) ([]byte, error) {
	var buf bytes.Buffer
	if err := types.WriteU16(&buf, uint16(24+2*len([]rune(shortName)))); err != nil { // size
		return nil, err
	}
	if err := types.WriteU16(&buf, 3); err != nil { // version
		return nil, err
	}
	if err := types.WriteU32(&buf, beef0004Signature); err != nil {
		return nil, err
	}
	if err := types.WriteDOSDateTime(&buf, orNow(e.Created)); err != nil {
		return nil, err
	}
	if err := types.WriteDOSDateTime(&buf, orNow(e.Accessed)); err != nil {
		return nil, err
	}
	if err := types.WriteU16(&buf, 0x14); err != nil { // offset_unicode, fixed layout
		return nil, err
	}
	if err := types.WriteU16(&buf, 0); err != nil { // long_string_size
		return nil, err
	}
	if err := types.WriteCUnicode(&buf, e.FullName); err != nil {
		return nil, err
	}
	if err := types.WriteU16(&buf, uint16(0x0E+shortNameLen)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// orNow substitutes the current time for an unset timestamp before an
// entry is serialized.
func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return false
		}
	}
	return true
}

func (e *PathSegmentEntry) String() string {
	return fmt.Sprintf("<PathSegmentEntry: %s>", strings.TrimRight(e.FullName, "\x00"))
}
