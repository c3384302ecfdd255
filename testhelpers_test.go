package lnk

import "github.com/strayge/go-lnk/types"

// newTestGUID returns a fixed, valid GUID for tests that don't care about
// its specific value.
func newTestGUID() (types.GUID, error) {
	return types.ParseGUID("{20D04FE0-3AEA-1069-A2D8-08002B30309D}")
}
