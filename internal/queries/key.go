package queries

import (
	"strconv"
	"strings"
)

// Key addresses one cached result as a structured tuple of operation name
// and parameters, e.g. K("bookings", "email", addr). Keys are compared
// segment-wise; parameter values never collide with segment boundaries.
type Key []string

func K(parts ...string) Key {
	return Key(parts)
}

// id renders the key as a collision-free map id. Each segment is quoted
// so separator characters inside parameters cannot alias another key.
func (k Key) id() string {
	var b strings.Builder
	for i, part := range k {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(strconv.Quote(part))
	}
	return b.String()
}

// HasPrefix reports whether k starts with every segment of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, part := range prefix {
		if k[i] != part {
			return false
		}
	}
	return true
}

func (k Key) String() string {
	return strings.Join(k, "/")
}
