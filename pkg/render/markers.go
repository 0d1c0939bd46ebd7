package render

import (
	"strconv"
	"strings"
)

// Marker kinds embedded in boundary comments. When hydration support is
// requested, the server brackets every component, suspense, and raw
// boundary with open/close comment markers so the client can recover
// fragment cursors:
//
//	<!--<[c 3]>--> ... <!--</[c]>-->
const (
	MarkerComponent = "c"
	MarkerSuspense  = "s"
	MarkerRaw       = "r"
)

// StateBlockType is the script type of the trailing embedded data block
// carrying serialized component state for hydration.
const StateBlockType = "application/loom-state"

// OpenMarker returns the comment body opening a boundary.
func OpenMarker(kind string, id uint64) string {
	return "<[" + kind + " " + strconv.FormatUint(id, 10) + "]>"
}

// CloseMarker returns the comment body closing a boundary.
func CloseMarker(kind string) string {
	return "</[" + kind + "]>"
}

// ParseOpenMarker reports whether a comment body opens a boundary of
// the given kind, and if so returns its id.
func ParseOpenMarker(data, kind string) (uint64, bool) {
	prefix := "<[" + kind + " "
	if !strings.HasPrefix(data, prefix) || !strings.HasSuffix(data, "]>") {
		return 0, false
	}
	id, err := strconv.ParseUint(data[len(prefix):len(data)-2], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// IsOpenMarker reports whether a comment body opens a boundary of the
// given kind.
func IsOpenMarker(data, kind string) bool {
	_, ok := ParseOpenMarker(data, kind)
	return ok
}

// IsCloseMarker reports whether a comment body closes a boundary of the
// given kind.
func IsCloseMarker(data, kind string) bool {
	return data == CloseMarker(kind)
}
