package jsop

import (
	"bytes"
	"fmt"
	"strings"
)

// separator is the reserved byte joining address components in the
// encoded store key. 0xFF cannot occur in well-formed UTF-8, so it is
// safe to forbid in user-supplied key text and use as a delimiter.
//
// This is a compatibility commitment: databases are not portable across
// implementations that chose a different separator. New writers must
// use 0xFF; see the "Open Questions resolved" note in DESIGN.md about 0x00.
const separator = 0xFF

// Reserved address-component alphabet. These never collide with
// user-supplied key text because Put/Append coerce keys through
// strconv/string conversion, not through these constants.
const (
	compPrev  = "p" // tail pointer (map root) / prev pointer (entry)
	compNext  = "n" // head pointer (map root) / next pointer (entry)
	compSize  = "s" // entry count (map root)
	compKey   = "k" // "entries live under k/<key>/..."
	compValue = "v" // child value address
	compMeta  = "m" // format metadata
)

// Address is an ordered sequence of text components identifying one
// record, or the root of a container, in the store. The root value
// lives at the empty Address.
type Address []string

// Child returns a new Address with parts appended. The receiver is
// never mutated.
func (a Address) Child(parts ...string) Address {
	out := make(Address, 0, len(a)+len(parts))
	out = append(out, a...)
	out = append(out, parts...)
	return out
}

func (a Address) String() string {
	return strings.Join([]string(a), "/")
}

// encode renders the address as the byte-KV store's key: components
// joined by the separator byte. Returns ErrInvalidAddress if any
// component contains the separator.
func (a Address) encode() ([]byte, error) {
	total := len(a)
	for _, c := range a {
		total += len(c)
	}
	buf := make([]byte, 0, total)
	for i, c := range a {
		if i > 0 {
			buf = append(buf, separator)
		}
		if bytes.IndexByte([]byte(c), separator) >= 0 {
			return nil, fmt.Errorf("%w: component %q contains the reserved separator byte", ErrInvalidAddress, c)
		}
		buf = append(buf, c...)
	}
	return buf, nil
}
