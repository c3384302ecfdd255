package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"time"
	"unicode/utf16"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Codepage selects the single-byte character set used for non-Unicode
// STRING_DATA fields and CSTRINGs. The string primitives below take it as
// a parameter; the lnk package's Parse and Bytes always pass
// DefaultCodepage and offer no option to select another.
type Codepage struct {
	enc encoding.Encoding
}

// DefaultCodepage is the character set assumed when none is given.
var DefaultCodepage = Codepage{enc: charmap.Windows1251}

// NewCodepage wraps an arbitrary single-byte x/text encoding.
func NewCodepage(enc encoding.Encoding) Codepage { return Codepage{enc: enc} }

func (c Codepage) encoding() encoding.Encoding {
	if c.enc == nil {
		return charmap.Windows1251
	}
	return c.enc
}

func (c Codepage) Decode(b []byte) (string, error) {
	out, err := c.encoding().NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("lnk: decode codepage string: %w", err)
	}
	return string(out), nil
}

func (c Codepage) Encode(s string) ([]byte, error) {
	out, err := c.encoding().NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("lnk: encode codepage string %q: %w", s, err)
	}
	return out, nil
}

// ReadU8, ReadU16, ReadU32, ReadU64 read little-endian integers, the wire
// byte order for every numeric field in [MS-SHLLINK].
func ReadU8(r io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func ReadU16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func ReadU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func ReadU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func WriteU8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

func WriteU16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func WriteU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func WriteU64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// ReadCString reads a NUL-terminated codepage string. When padded is true,
// one extra byte is consumed whenever payload+terminator would otherwise
// leave the stream at an odd offset, restoring even alignment.
func ReadCString(r io.Reader, cp Codepage, padded bool) (string, error) {
	var buf bytes.Buffer
	for {
		b, err := ReadU8(r)
		if err != nil {
			return "", fmt.Errorf("lnk: read cstring: %w", err)
		}
		if b == 0 {
			break
		}
		buf.WriteByte(b)
	}
	if padded && buf.Len()%2 == 0 {
		if _, err := ReadU8(r); err != nil {
			return "", fmt.Errorf("lnk: read cstring padding: %w", err)
		}
	}
	return cp.Decode(buf.Bytes())
}

// WriteCString mirrors ReadCString's padding rule on write.
func WriteCString(w io.Writer, cp Codepage, s string, padded bool) error {
	enc, err := cp.Encode(s)
	if err != nil {
		return err
	}
	if _, err := w.Write(enc); err != nil {
		return err
	}
	if err := WriteU8(w, 0); err != nil {
		return err
	}
	if padded && len(enc)%2 == 0 {
		if err := WriteU8(w, 0); err != nil {
			return err
		}
	}
	return nil
}

// ReadCUnicode reads pairs of bytes until a 0x0000 terminator and decodes
// them as UTF-16LE.
func ReadCUnicode(r io.Reader) (string, error) {
	var units []uint16
	for {
		u, err := ReadU16(r)
		if err != nil {
			return "", fmt.Errorf("lnk: read cunicode: %w", err)
		}
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), nil
}

// WriteCUnicode writes s as UTF-16LE followed by a 0x0000 terminator.
func WriteCUnicode(w io.Writer, s string) error {
	for _, u := range utf16.Encode([]rune(s)) {
		if err := WriteU16(w, u); err != nil {
			return err
		}
	}
	return WriteU16(w, 0)
}

// ReadSizedString reads a u16 character count followed by either 2*N bytes
// of UTF-16LE or N bytes of the given single-byte codepage.
func ReadSizedString(r io.Reader, unicode bool, cp Codepage) (string, error) {
	n, err := ReadU16(r)
	if err != nil {
		return "", fmt.Errorf("lnk: read sized string length: %w", err)
	}
	if unicode {
		units := make([]uint16, n)
		for i := range units {
			u, err := ReadU16(r)
			if err != nil {
				return "", fmt.Errorf("lnk: read sized string: %w", err)
			}
			units[i] = u
		}
		return string(utf16.Decode(units)), nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("lnk: read sized string: %w", err)
	}
	return cp.Decode(buf)
}

// WriteSizedString mirrors ReadSizedString. The length prefix is the
// character count, not the byte count.
func WriteSizedString(w io.Writer, s string, unicode bool, cp Codepage) error {
	if unicode {
		units := utf16.Encode([]rune(s))
		if err := WriteU16(w, uint16(len(units))); err != nil {
			return err
		}
		for _, u := range units {
			if err := WriteU16(w, u); err != nil {
				return err
			}
		}
		return nil
	}
	enc, err := cp.Encode(s)
	if err != nil {
		return err
	}
	if err := WriteU16(w, uint16(len(enc))); err != nil {
		return err
	}
	_, err = w.Write(enc)
	return err
}

func getBits(value uint16, start, count uint) uint16 {
	mask := uint16(1<<count) - 1
	shift := 16 - start - count
	return value >> shift & mask
}

func putBits(bits uint16, target uint16, start, count uint) uint16 {
	return target | bits<<(16-start-count)
}

// ReadDOSDateTime decodes a packed 32-bit MS-DOS date/time pair into a
// civil UTC time, biasing the year by +1980 and normalizing a zero
// month/day to 1.
func ReadDOSDateTime(r io.Reader) (time.Time, error) {
	date, err := ReadU16(r)
	if err != nil {
		return time.Time{}, fmt.Errorf("lnk: read dos date: %w", err)
	}
	tod, err := ReadU16(r)
	if err != nil {
		return time.Time{}, fmt.Errorf("lnk: read dos time: %w", err)
	}
	year := int(getBits(date, 0, 7)) + 1980
	month := int(getBits(date, 7, 4))
	day := int(getBits(date, 11, 5))
	hour := int(getBits(tod, 0, 5))
	minute := int(getBits(tod, 5, 6))
	second := int(getBits(tod, 11, 5))
	if month < 1 {
		month = 1
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

// WriteDOSDateTime is the inverse of ReadDOSDateTime. Seconds are stored
// as-is in the 5-bit field, so only seconds 0–31 survive a round trip.
func WriteDOSDateTime(w io.Writer, t time.Time) error {
	t = t.UTC()
	var date, tod uint16
	date = putBits(uint16(t.Year()-1980), date, 0, 7)
	date = putBits(uint16(t.Month()), date, 7, 4)
	date = putBits(uint16(t.Day()), date, 11, 5)
	tod = putBits(uint16(t.Hour()), tod, 0, 5)
	tod = putBits(uint16(t.Minute()), tod, 5, 6)
	tod = putBits(uint16(t.Second()), tod, 11, 5)
	if err := WriteU16(w, date); err != nil {
		return err
	}
	return WriteU16(w, tod)
}

const fileTimeEpochDelta = 11644473600 // seconds between 1601-01-01 and 1970-01-01

// FileTimeToTime converts a Windows FILETIME (100ns ticks since
// 1601-01-01 UTC) to a civil UTC time. Out-of-range values fall back to
// the current time instead of failing the whole parse.
func FileTimeToTime(ft uint64) time.Time {
	seconds := int64(ft/1e7) - fileTimeEpochDelta
	nanos := int64(ft%1e7) * 100
	t := time.Unix(seconds, nanos).UTC()
	if t.Year() < 1 || t.Year() > 9999 {
		log.Printf("lnk: FILETIME %d out of range, substituting current time", ft)
		return time.Now().UTC()
	}
	return t
}

// TimeToFileTime is the inverse of FileTimeToTime.
func TimeToFileTime(t time.Time) uint64 {
	seconds := t.UTC().Unix() + fileTimeEpochDelta
	if seconds < 0 {
		log.Printf("lnk: time %s predates the FILETIME epoch, substituting current time", t)
		t = time.Now().UTC()
		seconds = t.Unix() + fileTimeEpochDelta
	}
	nanos := int64(t.Nanosecond()) / 100
	return uint64(seconds)*1e7 + uint64(nanos)
}
