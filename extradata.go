package lnk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf16"

	"github.com/strayge/go-lnk/types"
)

// ExtraData block signatures this codec decodes ([MS-SHLLINK] 2.5).
const (
	SigEnvironmentVariableDataBlock = 0xA0000001
	SigIconEnvironmentDataBlock     = 0xA0000007
	SigPropertyStoreDataBlock       = 0xA0000009
)

// ExtraDataBlock is one member of an ExtraData stream.
type ExtraDataBlock interface {
	Signature() uint32
	Bytes() []byte
	String() string
}

// EnvironmentVariableDataBlock carries a target path expressed with
// environment-variable references, in both ANSI and Unicode form, each
// NUL-padded to a fixed width ([MS-SHLLINK] 2.5.3).
type EnvironmentVariableDataBlock struct {
	TargetAnsi    string
	TargetUnicode string
}

func (*EnvironmentVariableDataBlock) Signature() uint32 { return SigEnvironmentVariableDataBlock }

func parseEnvironmentVariableDataBlock(payload []byte) (*EnvironmentVariableDataBlock, error) {
	ansi, unicode, err := parseFixedAnsiUnicode(payload)
	if err != nil {
		return nil, err
	}
	return &EnvironmentVariableDataBlock{TargetAnsi: ansi, TargetUnicode: unicode}, nil
}

func (b *EnvironmentVariableDataBlock) Bytes() []byte {
	return fixedAnsiUnicodeBytes(b.TargetAnsi, b.TargetUnicode)
}

func (b *EnvironmentVariableDataBlock) String() string {
	return fmt.Sprintf("EnvironmentVariableDataBlock\n TargetAnsi: %s\n TargetUnicode: %s",
		types.TrimNUL(b.TargetAnsi), types.TrimNUL(b.TargetUnicode))
}

// IconEnvironmentDataBlock has the identical wire layout to
// EnvironmentVariableDataBlock but names the icon source instead of the
// link target ([MS-SHLLINK] 2.5.5).
type IconEnvironmentDataBlock struct {
	TargetAnsi    string
	TargetUnicode string
}

func (*IconEnvironmentDataBlock) Signature() uint32 { return SigIconEnvironmentDataBlock }

func parseIconEnvironmentDataBlock(payload []byte) (*IconEnvironmentDataBlock, error) {
	ansi, unicode, err := parseFixedAnsiUnicode(payload)
	if err != nil {
		return nil, err
	}
	return &IconEnvironmentDataBlock{TargetAnsi: ansi, TargetUnicode: unicode}, nil
}

func (b *IconEnvironmentDataBlock) Bytes() []byte {
	return fixedAnsiUnicodeBytes(b.TargetAnsi, b.TargetUnicode)
}

func (b *IconEnvironmentDataBlock) String() string {
	return fmt.Sprintf("IconEnvironmentDataBlock\n TargetAnsi: %s\n TargetUnicode: %s",
		types.TrimNUL(b.TargetAnsi), types.TrimNUL(b.TargetUnicode))
}

func parseFixedAnsiUnicode(payload []byte) (ansi, unicode string, err error) {
	if len(payload) < 780 {
		return "", "", formatErrorf(0, nil, "environment data block payload too short: %d bytes", len(payload))
	}
	ansiBytes := payload[:260]
	decodedAnsi, err := types.DefaultCodepage.Decode(ansiBytes)
	if err != nil {
		return "", "", err
	}
	unicodeBytes := payload[260:780]
	var units []uint16
	for i := 0; i+1 < len(unicodeBytes); i += 2 {
		units = append(units, uint16(unicodeBytes[i])|uint16(unicodeBytes[i+1])<<8)
	}
	decodedUnicode := string(utf16.Decode(units))
	return decodedAnsi, decodedUnicode, nil
}

// fixedAnsiUnicodeBytes writes the 780-byte pair (260 ANSI + 520 Unicode)
// shared by EnvironmentVariableDataBlock and IconEnvironmentDataBlock; with
// the 8-byte size/signature header the whole block is 0x314 bytes.
func fixedAnsiUnicodeBytes(ansi, unicode string) []byte {
	ansiEnc, err := types.DefaultCodepage.Encode(ansi)
	if err != nil {
		ansiEnc = []byte(ansi)
	}
	var unicodeBuf bytes.Buffer
	for _, u := range utf16.Encode([]rune(unicode)) {
		_ = types.WriteU16(&unicodeBuf, u)
	}

	var buf bytes.Buffer
	buf.Write(types.PadTo(ansiEnc, 260))
	buf.Write(types.PadTo(unicodeBuf.Bytes(), 520))
	return buf.Bytes()
}

// PropertyStoreDataBlock wraps zero or more [MS-PROPSTORE] PropertyStore
// structures ([MS-SHLLINK] 2.5.7).
type PropertyStoreDataBlock struct {
	Stores []*PropertyStore
}

func (*PropertyStoreDataBlock) Signature() uint32 { return SigPropertyStoreDataBlock }

func parsePropertyStoreDataBlock(payload []byte) (*PropertyStoreDataBlock, error) {
	r := bytes.NewReader(payload)
	b := &PropertyStoreDataBlock{}
	for {
		ps, end, err := parsePropertyStore(r)
		if err != nil {
			return nil, err
		}
		if end {
			break
		}
		b.Stores = append(b.Stores, ps)
	}
	return b, nil
}

func (b *PropertyStoreDataBlock) Bytes() []byte {
	var buf bytes.Buffer
	for _, ps := range b.Stores {
		buf.Write(ps.Bytes())
	}
	_ = types.WriteU32(&buf, 0)
	return buf.Bytes()
}

func (b *PropertyStoreDataBlock) String() string {
	s := "PropertyStoreDataBlock"
	for _, ps := range b.Stores {
		s += "\n " + ps.String()
	}
	return s
}

// UnparsedDataBlock preserves an ExtraData block whose signature this
// codec does not interpret, so it round-trips verbatim.
type UnparsedDataBlock struct {
	Sig     uint32
	Payload []byte
}

func (u *UnparsedDataBlock) Signature() uint32 { return u.Sig }
func (u *UnparsedDataBlock) Bytes() []byte     { return append([]byte(nil), u.Payload...) }
func (u *UnparsedDataBlock) String() string {
	return fmt.Sprintf("ExtraDataBlock\n signature %#x\n data: %v", u.Sig, u.Payload)
}

// ExtraData is the ordered list of link-target metadata blocks trailing a
// .lnk file's core structures, terminated by a size field below 4
// ([MS-SHLLINK] 2.5).
type ExtraData struct {
	Blocks []ExtraDataBlock
}

// ParseExtraData reads successive (size, signature, payload) blocks from
// raw until a terminal block (size < 4) is reached. A stream that simply
// ends at a block boundary is treated the same as a terminal block.
func ParseExtraData(raw []byte) (*ExtraData, error) {
	r := bytes.NewReader(raw)
	ed := &ExtraData{}
	for {
		size, err := types.ReadU32(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("lnk: extra data block size: %w", err)
		}
		if size < 4 {
			break
		}
		sig, err := types.ReadU32(r)
		if err != nil {
			return nil, fmt.Errorf("lnk: extra data block signature: %w", err)
		}
		payload := make([]byte, int(size)-8)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("lnk: extra data block payload: %w", err)
		}

		var block ExtraDataBlock
		switch sig {
		case SigEnvironmentVariableDataBlock:
			block, err = parseEnvironmentVariableDataBlock(payload)
		case SigIconEnvironmentDataBlock:
			block, err = parseIconEnvironmentDataBlock(payload)
		case SigPropertyStoreDataBlock:
			block, err = parsePropertyStoreDataBlock(payload)
		default:
			block = &UnparsedDataBlock{Sig: sig, Payload: payload}
		}
		if err != nil {
			return nil, err
		}
		ed.Blocks = append(ed.Blocks, block)
	}
	return ed, nil
}

// Bytes serializes every block with a recomputed (size, signature) header
// and appends the 4-byte zero terminal block.
func (ed *ExtraData) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	for _, block := range ed.Blocks {
		payload := block.Bytes()
		if err := types.WriteU32(&buf, uint32(len(payload)+8)); err != nil {
			return nil, err
		}
		if err := types.WriteU32(&buf, block.Signature()); err != nil {
			return nil, err
		}
		buf.Write(payload)
	}
	if err := types.WriteU32(&buf, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (ed *ExtraData) String() string {
	var s string
	for _, block := range ed.Blocks {
		s += "\n" + block.String()
	}
	return s
}

// EnvironmentVariableBlock returns the first EnvironmentVariableDataBlock
// present, if any — used by Lnk.Path's rule 4.
func (ed *ExtraData) EnvironmentVariableBlock() *EnvironmentVariableDataBlock {
	for _, b := range ed.Blocks {
		if evb, ok := b.(*EnvironmentVariableDataBlock); ok {
			return evb
		}
	}
	return nil
}
