package lnk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf16"

	"github.com/strayge/go-lnk/types"
)

// Typed property value type codes this codec decodes ([MS-OLEPS] 2.15).
const (
	VTUI4      = 0x13 // u32
	VTI8       = 0x14 // i64
	VTUI8      = 0x15 // u64
	VTI4       = 0x16 // i32
	VTUI4Alt   = 0x17 // u32
	VTLPWSTR   = 0x1F // counted UTF-16LE string
	VTFileTime = 0x40 // FILETIME
	VTCLSID    = 0x48 // GUID
)

// TypedPropertyValue is a PropertyStore entry's value: a 2-byte type code,
// 2 reserved bytes, then the type's raw payload ([MS-OLEPS] 2.15).
type TypedPropertyValue struct {
	Type  uint16
	Value []byte
}

func parseTypedPropertyValue(raw []byte) (*TypedPropertyValue, error) {
	if len(raw) < 4 {
		return nil, formatErrorf(0, nil, "typed property value too short: %d bytes", len(raw))
	}
	return &TypedPropertyValue{
		Type:  binary.LittleEndian.Uint16(raw[0:2]),
		Value: append([]byte(nil), raw[4:]...),
	}, nil
}

// NewStringPropertyValue builds a VT_LPWSTR value: a u32 size (character
// count + 2, covering the terminator), the UTF-16LE text, a NUL16
// terminator, and one extra padding NUL16 for odd-length text.
func NewStringPropertyValue(s string) *TypedPropertyValue {
	var buf bytes.Buffer
	units := utf16.Encode([]rune(s))
	_ = types.WriteU32(&buf, uint32(len(units)+2))
	for _, u := range units {
		_ = types.WriteU16(&buf, u)
	}
	_ = types.WriteU16(&buf, 0)
	if len(units)%2 == 1 {
		_ = types.WriteU16(&buf, 0)
	}
	return &TypedPropertyValue{Type: VTLPWSTR, Value: buf.Bytes()}
}

func (v *TypedPropertyValue) Bytes() []byte {
	var buf bytes.Buffer
	_ = types.WriteU16(&buf, v.Type)
	_ = types.WriteU16(&buf, 0)
	buf.Write(v.Value)
	return buf.Bytes()
}

// String decodes the value according to its type code, falling back to a
// raw byte dump for unrecognized types.
func (v *TypedPropertyValue) String() string {
	switch v.Type {
	case VTLPWSTR:
		if len(v.Value) < 4 {
			return fmt.Sprintf("%#x: <truncated>", v.Type)
		}
		return fmt.Sprintf("%#x: %s", v.Type, decodeLPWSTR(v.Value[4:]))
	case VTUI8:
		if len(v.Value) >= 8 {
			return fmt.Sprintf("%#x: %d", v.Type, binary.LittleEndian.Uint64(v.Value))
		}
	case VTUI4, VTUI4Alt:
		if len(v.Value) >= 4 {
			return fmt.Sprintf("%#x: %d", v.Type, binary.LittleEndian.Uint32(v.Value))
		}
	case VTI8:
		if len(v.Value) >= 8 {
			return fmt.Sprintf("%#x: %d", v.Type, int64(binary.LittleEndian.Uint64(v.Value)))
		}
	case VTI4:
		if len(v.Value) >= 4 {
			return fmt.Sprintf("%#x: %d", v.Type, int32(binary.LittleEndian.Uint32(v.Value)))
		}
	case VTCLSID:
		if len(v.Value) == 16 {
			guid, err := types.GUIDFromBytes(v.Value)
			if err == nil {
				return fmt.Sprintf("%#x: %s", v.Type, guid.String())
			}
		}
	case VTFileTime:
		if len(v.Value) >= 8 {
			ft := binary.LittleEndian.Uint64(v.Value)
			return fmt.Sprintf("%#x: %s", v.Type, types.FileTimeToTime(ft))
		}
	}
	return fmt.Sprintf("%#x: %v", v.Type, v.Value)
}

func decodeLPWSTR(b []byte) string {
	var units []uint16
	for i := 0; i+1 < len(b); i += 2 {
		u := binary.LittleEndian.Uint16(b[i : i+2])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units))
}

// stringPropertyGUID is the well-known format ID marking a string-keyed
// ([MS-PROPSTORE] 2.2) rather than integer-keyed property store.
var stringPropertyGUID = types.GUID{0x05, 0xD5, 0xCD, 0xD5, 0x9C, 0x2E, 0x1B, 0x10, 0x93, 0x97, 0x08, 0x00, 0x2B, 0x2C, 0xF9, 0xAE}

// PropertyStore is one [MS-PROPSTORE] serialized property storage: a
// format ID and a list of named-or-numbered typed values.
type PropertyStore struct {
	FormatID      types.GUID
	IsStrings     bool
	StringEntries []PropertyStoreStringEntry
	NumberEntries []PropertyStoreNumberEntry
}

type PropertyStoreStringEntry struct {
	Name  string
	Value *TypedPropertyValue
}

type PropertyStoreNumberEntry struct {
	ID    uint32
	Value *TypedPropertyValue
}

// parsePropertyStore reads one store from r, returning (nil, true, nil) on
// a zero-size terminator.
func parsePropertyStore(r *bytes.Reader) (*PropertyStore, bool, error) {
	size, err := types.ReadU32(r)
	if err != nil {
		return nil, false, fmt.Errorf("lnk: property store size: %w", err)
	}
	if size == 0 {
		return nil, true, nil
	}
	version, err := types.ReadU32(r)
	if err != nil {
		return nil, false, fmt.Errorf("lnk: property store version: %w", err)
	}
	if version != 0x53505331 {
		return nil, false, formatErrorf(0, version, "property store: unexpected version signature")
	}
	var formatBytes [16]byte
	if _, err := io.ReadFull(r, formatBytes[:]); err != nil {
		return nil, false, fmt.Errorf("lnk: property store format id: %w", err)
	}
	formatID, err := types.GUIDFromBytes(formatBytes[:])
	if err != nil {
		return nil, false, err
	}
	ps := &PropertyStore{FormatID: formatID, IsStrings: formatBytes == [16]byte(stringPropertyGUID)}

	for {
		valueSize, err := types.ReadU32(r)
		if err != nil {
			return nil, false, fmt.Errorf("lnk: property store entry size: %w", err)
		}
		if valueSize == 0 {
			break
		}
		if ps.IsStrings {
			nameSize, err := types.ReadU32(r)
			if err != nil {
				return nil, false, err
			}
			if _, err := types.ReadU8(r); err != nil { // reserved
				return nil, false, err
			}
			nameBytes := make([]byte, nameSize)
			if _, err := io.ReadFull(r, nameBytes); err != nil {
				return nil, false, err
			}
			name := decodeLPWSTR(nameBytes)
			valueBytes := make([]byte, int(valueSize)-9)
			if _, err := io.ReadFull(r, valueBytes); err != nil {
				return nil, false, err
			}
			value, err := parseTypedPropertyValue(valueBytes)
			if err != nil {
				return nil, false, err
			}
			ps.StringEntries = append(ps.StringEntries, PropertyStoreStringEntry{Name: name, Value: value})
		} else {
			id, err := types.ReadU32(r)
			if err != nil {
				return nil, false, err
			}
			if _, err := types.ReadU8(r); err != nil { // reserved
				return nil, false, err
			}
			valueBytes := make([]byte, int(valueSize)-9)
			if _, err := io.ReadFull(r, valueBytes); err != nil {
				return nil, false, err
			}
			value, err := parseTypedPropertyValue(valueBytes)
			if err != nil {
				return nil, false, err
			}
			ps.NumberEntries = append(ps.NumberEntries, PropertyStoreNumberEntry{ID: id, Value: value})
		}
	}
	return ps, false, nil
}

func (ps *PropertyStore) Bytes() []byte {
	var entries bytes.Buffer
	if ps.IsStrings {
		for _, e := range ps.StringEntries {
			nameUnits := utf16.Encode([]rune(e.Name))
			nameBytes := make([]byte, len(nameUnits)*2)
			for i, u := range nameUnits {
				binary.LittleEndian.PutUint16(nameBytes[i*2:], u)
			}
			valueBytes := e.Value.Bytes()
			valueSize := 9 + len(valueBytes)
			_ = types.WriteU32(&entries, uint32(valueSize))
			_ = types.WriteU32(&entries, uint32(len(nameBytes)))
			_ = types.WriteU8(&entries, 0)
			entries.Write(nameBytes)
			entries.Write(valueBytes)
		}
	} else {
		for _, e := range ps.NumberEntries {
			valueBytes := e.Value.Bytes()
			valueSize := 9 + len(valueBytes)
			_ = types.WriteU32(&entries, uint32(valueSize))
			_ = types.WriteU32(&entries, e.ID)
			_ = types.WriteU8(&entries, 0)
			entries.Write(valueBytes)
		}
	}
	_ = types.WriteU32(&entries, 0)

	size := 8 + 16 + entries.Len()
	var buf bytes.Buffer
	_ = types.WriteU32(&buf, uint32(size))
	_ = types.WriteU32(&buf, 0x53505331)
	buf.Write(ps.FormatID.Bytes())
	buf.Write(entries.Bytes())
	return buf.Bytes()
}

func (ps *PropertyStore) String() string {
	s := fmt.Sprintf(" PropertyStore\n  FormatID: %s", ps.FormatID.String())
	for _, e := range ps.StringEntries {
		s += fmt.Sprintf("\n  %3s = %s", e.Name, e.Value.String())
	}
	for _, e := range ps.NumberEntries {
		s += fmt.Sprintf("\n  %3d = %s", e.ID, e.Value.String())
	}
	return s
}
