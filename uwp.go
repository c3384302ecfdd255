package lnk

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf16"

	"github.com/strayge/go-lnk/types"
)

// Known UwpSubBlock type tags (the UWP Apps extension is not formally
// documented by MS-SHLLINK but stable across Windows releases). Two tags,
// 0x0a and 0x0b, both surface as DisplayName.
const (
	uwpBlockPackageFamilyName = 0x11
	uwpBlockPackageFullName   = 0x15
	uwpBlockTarget            = 0x05
	uwpBlockLocation          = 0x0f
	uwpBlockRandomGUID        = 0x20
	uwpBlockSquare150x150Logo = 0x0c
	uwpBlockSquare44x44Logo   = 0x02
	uwpBlockWide310x150Logo   = 0x0d
	uwpBlockSquare310x310Logo = 0x13
	uwpBlockDisplayNameB      = 0x0b
	uwpBlockSquare71x71Logo   = 0x14
	uwpBlockRandomByte        = 0x64
	uwpBlockDisplayNameA      = 0x0a
)

var uwpBlockNames = map[byte]string{
	uwpBlockPackageFamilyName: "PackageFamilyName",
	uwpBlockPackageFullName:   "PackageFullName",
	uwpBlockTarget:            "Target",
	uwpBlockLocation:          "Location",
	uwpBlockRandomGUID:        "RandomGuid",
	uwpBlockSquare150x150Logo: "Square150x150Logo",
	uwpBlockSquare44x44Logo:   "Square44x44Logo",
	uwpBlockWide310x150Logo:   "Wide310x150Logo",
	uwpBlockSquare310x310Logo: "Square310x310Logo",
	uwpBlockDisplayNameB:      "DisplayName",
	uwpBlockSquare71x71Logo:   "Square71x71Logo",
	uwpBlockRandomByte:        "RandomByte",
	uwpBlockDisplayNameA:      "DisplayName",
}

var uwpStringBlockTypes = map[byte]bool{
	uwpBlockPackageFamilyName: true,
	uwpBlockPackageFullName:   true,
	uwpBlockTarget:            true,
	uwpBlockLocation:          true,
	uwpBlockSquare150x150Logo: true,
	uwpBlockSquare44x44Logo:   true,
	uwpBlockWide310x150Logo:   true,
	uwpBlockSquare310x310Logo: true,
	uwpBlockDisplayNameB:      true,
	uwpBlockSquare71x71Logo:   true,
	uwpBlockDisplayNameA:      true,
}

// UwpSubBlock is one named field of a UwpMainBlock: a string value (the
// common case: package names, target, icon locations) or an opaque byte
// value for the few binary-typed tags (e.g. RandomByte).
type UwpSubBlock struct {
	Type        byte
	StringValue string
	RawValue    []byte
}

// Name returns the symbolic tag name, or "UNKNOWN" if Type isn't one of
// the known tags.
func (b *UwpSubBlock) Name() string {
	if n, ok := uwpBlockNames[b.Type]; ok {
		return n
	}
	return "UNKNOWN"
}

func (b *UwpSubBlock) isString() bool { return uwpStringBlockTypes[b.Type] }

func parseUwpSubBlock(raw []byte) (*UwpSubBlock, error) {
	if len(raw) == 0 {
		return nil, formatErrorf(0, nil, "empty uwp sub block")
	}
	b := &UwpSubBlock{Type: raw[0]}
	rest := raw[1:]
	if b.isString() {
		r := bytes.NewReader(rest)
		if _, err := types.ReadU32(r); err != nil { // unknown
			return nil, fmt.Errorf("lnk: uwp sub block unknown field: %w", err)
		}
		probablyType, err := types.ReadU32(r)
		if err != nil {
			return nil, fmt.Errorf("lnk: uwp sub block type tag: %w", err)
		}
		if probablyType == 0x1f {
			if _, err := types.ReadU32(r); err != nil { // string_len
				return nil, fmt.Errorf("lnk: uwp sub block string length: %w", err)
			}
			s, err := types.ReadCUnicode(r)
			if err != nil {
				return nil, fmt.Errorf("lnk: uwp sub block value: %w", err)
			}
			b.StringValue = s
			return b, nil
		}
	}
	b.RawValue = append([]byte(nil), rest...)
	return b, nil
}

// Bytes emits the sub-block's payload (including its leading type byte);
// an empty value (no string, no raw bytes) serializes to nothing.
func (b *UwpSubBlock) Bytes() ([]byte, error) {
	if b.StringValue == "" && len(b.RawValue) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	if b.StringValue != "" {
		units := utf16.Encode([]rune(b.StringValue))
		stringLen := uint32(len(units) + 1)
		buf.WriteByte(b.Type)
		if err := types.WriteU32(&buf, 0); err != nil {
			return nil, err
		}
		if err := types.WriteU32(&buf, 0x1f); err != nil {
			return nil, err
		}
		if err := types.WriteU32(&buf, stringLen); err != nil {
			return nil, err
		}
		for _, u := range units {
			if err := types.WriteU16(&buf, u); err != nil {
				return nil, err
			}
		}
		if err := types.WriteU16(&buf, 0); err != nil {
			return nil, err
		}
		if stringLen%2 == 1 {
			if err := types.WriteU16(&buf, 0); err != nil {
				return nil, err
			}
		}
		return buf.Bytes(), nil
	}
	buf.WriteByte(b.Type)
	buf.Write(b.RawValue)
	return buf.Bytes(), nil
}

func (b *UwpSubBlock) String() string {
	if b.StringValue != "" {
		return fmt.Sprintf("UwpSubBlock %s (%#x): %q", b.Name(), b.Type, b.StringValue)
	}
	return fmt.Sprintf("UwpSubBlock %s (%#x): %v", b.Name(), b.Type, b.RawValue)
}

// uwpMainBlockMagic is the 4-byte tag at the start of every UwpMainBlock,
// the ASCII bytes "1SPS".
var uwpMainBlockMagic = [4]byte{0x31, 0x53, 0x50, 0x53}

// UwpMainBlock groups a package-identifying GUID with its named sub-blocks.
type UwpMainBlock struct {
	GUID      types.GUID
	SubBlocks []*UwpSubBlock
}

func parseUwpMainBlock(raw []byte) (*UwpMainBlock, error) {
	if len(raw) < 20 {
		return nil, formatErrorf(0, nil, "uwp main block too short: %d bytes", len(raw))
	}
	r := bytes.NewReader(raw[4:])
	var guidBytes [16]byte
	if _, err := io.ReadFull(r, guidBytes[:]); err != nil {
		return nil, fmt.Errorf("lnk: uwp main block guid: %w", err)
	}
	guid, err := types.GUIDFromBytes(guidBytes[:])
	if err != nil {
		return nil, err
	}
	mb := &UwpMainBlock{GUID: guid}
	for {
		size, err := types.ReadU32(r)
		if err != nil {
			return nil, fmt.Errorf("lnk: uwp main block sub-block size: %w", err)
		}
		if size == 0 {
			break
		}
		data := make([]byte, int(size)-4)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("lnk: uwp main block sub-block data: %w", err)
		}
		sb, err := parseUwpSubBlock(data)
		if err != nil {
			return nil, err
		}
		mb.SubBlocks = append(mb.SubBlocks, sb)
	}
	return mb, nil
}

func (mb *UwpMainBlock) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(uwpMainBlockMagic[:])
	buf.Write(mb.GUID.Bytes())
	for _, sb := range mb.SubBlocks {
		b, err := sb.Bytes()
		if err != nil {
			return nil, err
		}
		if err := types.WriteU32(&buf, uint32(len(b)+4)); err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	if err := types.WriteU32(&buf, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Value looks up a sub-block by symbolic name and returns its string value.
func (mb *UwpMainBlock) Value(name string) (string, bool) {
	for _, sb := range mb.SubBlocks {
		if sb.Name() == name {
			return sb.StringValue, true
		}
	}
	return "", false
}

// uwpFixedHeader is the 10-byte constant trailing the "APPS" magic and
// blocks-size field in a UwpSegmentEntry.
var uwpFixedHeader = [10]byte{0x08, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// UwpSegmentEntry is the Target ID List item identifying a UWP (Store) app
// target ([MS-SHLLINK] 2.2.2, "APPS" item).
type UwpSegmentEntry struct {
	MainBlocks []*UwpMainBlock
}

func (*UwpSegmentEntry) shellItem() {}

func parseUwpSegmentEntry(raw []byte) (*UwpSegmentEntry, error) {
	if len(raw) < 18 {
		return nil, formatErrorf(0, nil, "uwp segment too short: %d bytes", len(raw))
	}
	r := bytes.NewReader(raw)
	if _, err := types.ReadU16(r); err != nil { // unknown
		return nil, err
	}
	if _, err := types.ReadU16(r); err != nil { // size
		return nil, err
	}
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, err
	}
	if _, err := types.ReadU16(r); err != nil { // blocks_size
		return nil, err
	}
	header := make([]byte, 10)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	e := &UwpSegmentEntry{}
	for {
		size, err := types.ReadU32(r)
		if err != nil {
			return nil, fmt.Errorf("lnk: uwp segment main block size: %w", err)
		}
		if size == 0 {
			break
		}
		data := make([]byte, int(size)-4)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("lnk: uwp segment main block data: %w", err)
		}
		mb, err := parseUwpMainBlock(data)
		if err != nil {
			return nil, err
		}
		e.MainBlocks = append(e.MainBlocks, mb)
	}
	return e, nil
}

func (e *UwpSegmentEntry) Bytes() ([]byte, error) {
	var blockBytes [][]byte
	for _, mb := range e.MainBlocks {
		b, err := mb.Bytes()
		if err != nil {
			return nil, err
		}
		blockBytes = append(blockBytes, b)
	}
	blocksSize := 4 // terminator
	for _, b := range blockBytes {
		blocksSize += len(b) + 4
	}
	size := 2 + 4 + 2 + len(uwpFixedHeader) + blocksSize

	var buf bytes.Buffer
	if err := types.WriteU16(&buf, 0); err != nil {
		return nil, err
	}
	if err := types.WriteU16(&buf, uint16(size)); err != nil {
		return nil, err
	}
	buf.WriteString("APPS")
	if err := types.WriteU16(&buf, uint16(blocksSize)); err != nil {
		return nil, err
	}
	buf.Write(uwpFixedHeader[:])
	for _, b := range blockBytes {
		if err := types.WriteU32(&buf, uint32(len(b)+4)); err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	if err := types.WriteU32(&buf, 0); err != nil {
		return nil, err
	}
	if err := types.WriteU16(&buf, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *UwpSegmentEntry) String() string {
	s := "<UwpSegmentEntry>"
	for _, mb := range e.MainBlocks {
		s += fmt.Sprintf("\n    %s", mb.GUID.String())
	}
	return s
}

// BuildUWPLink assembles the Root(APPS) + UwpSegmentEntry target ID list
// for a UWP application shortcut.
func BuildUWPLink(packageFamilyName, target, location, logo44x44 string) (*LinkTargetIDList, error) {
	root, err := NewRootEntry(RootUWPApps)
	if err != nil {
		return nil, err
	}

	blocks := []*UwpSubBlock{
		{Type: uwpBlockPackageFamilyName, StringValue: packageFamilyName},
		{Type: 0x0e, RawValue: []byte{0x00, 0x00, 0x00, 0x00, 0x13, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00}},
		{Type: uwpBlockTarget, StringValue: target},
	}
	if location != "" {
		blocks = append(blocks, &UwpSubBlock{Type: uwpBlockLocation, StringValue: location})
	}
	appGUID, err := types.ParseGUID("{9F4C2855-9F79-4B39-A8D0-E1D42DE1D5F3}")
	if err != nil {
		return nil, err
	}
	segment := &UwpSegmentEntry{
		MainBlocks: []*UwpMainBlock{{GUID: appGUID, SubBlocks: blocks}},
	}

	if logo44x44 != "" {
		logoGUID, err := types.ParseGUID("{86D40B4D-9069-443C-819A-2A54090DCCEC}")
		if err != nil {
			return nil, err
		}
		segment.MainBlocks = append(segment.MainBlocks, &UwpMainBlock{
			GUID:      logoGUID,
			SubBlocks: []*UwpSubBlock{{Type: uwpBlockSquare44x44Logo, StringValue: logo44x44}},
		})
	}

	return &LinkTargetIDList{Items: []ShellItem{root, segment}}, nil
}
