package types

import (
	"fmt"

	"github.com/google/uuid"
)

// GUID is a 16-byte Microsoft GUID in its on-disk ([MS-DTYP] 2.3.4.1) byte
// order: the first three fields (Data1 u32, Data2 u16, Data3 u16) are
// little-endian, the last two (an 8-byte opaque array) are taken verbatim.
// That is exactly the byte-swap away from RFC 4122 field order, so encoding
// and text parsing are delegated to google/uuid once the swap is applied.
type GUID [16]byte

// toRFC4122 reorders a wire-order GUID into the big-endian field order
// uuid.UUID expects.
func toRFC4122(g GUID) uuid.UUID {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = g[3], g[2], g[1], g[0]
	u[4], u[5] = g[5], g[4]
	u[6], u[7] = g[7], g[6]
	copy(u[8:], g[8:16])
	return u
}

// fromRFC4122 is the inverse of toRFC4122.
func fromRFC4122(u uuid.UUID) GUID {
	var g GUID
	g[0], g[1], g[2], g[3] = u[3], u[2], u[1], u[0]
	g[4], g[5] = u[5], u[4]
	g[6], g[7] = u[7], u[6]
	copy(g[8:16], u[8:])
	return g
}

// GUIDFromBytes reads a 16-byte wire-order GUID.
func GUIDFromBytes(b []byte) (GUID, error) {
	if len(b) != 16 {
		return GUID{}, fmt.Errorf("lnk: invalid GUID: want 16 bytes, got %d", len(b))
	}
	var g GUID
	copy(g[:], b)
	return g, nil
}

// Bytes returns the 16-byte wire-order encoding.
func (g GUID) Bytes() []byte {
	out := make([]byte, 16)
	copy(out, g[:])
	return out
}

// String renders the canonical brace-wrapped, uppercase-hex form used
// throughout [MS-SHLLINK], e.g. "{20D04FE0-3AEA-1069-A2D8-08002B30309D}".
func (g GUID) String() string {
	s := toRFC4122(g).String()
	return "{" + upperHex(s) + "}"
}

func upperHex(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'f' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// ParseGUID parses the canonical brace-wrapped text form back into its
// wire-order bytes.
func ParseGUID(s string) (GUID, error) {
	trimmed := s
	if len(trimmed) >= 2 && trimmed[0] == '{' && trimmed[len(trimmed)-1] == '}' {
		trimmed = trimmed[1 : len(trimmed)-1]
	}
	u, err := uuid.Parse(trimmed)
	if err != nil {
		return GUID{}, fmt.Errorf("lnk: invalid GUID %q: %w", s, err)
	}
	return fromRFC4122(u), nil
}
