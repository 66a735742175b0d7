package query

import (
	"strings"

	"github.com/pkg/errors"
)

// Ordering is the direction records are returned in, by id.
type Ordering uint

const (
	Ascending Ordering = iota
	Descending
)

// ToOrdering parses "asc" or "desc", ignoring case. The long forms are
// accepted too.
func ToOrdering(val string) (Ordering, error) {
	switch strings.ToLower(val) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return 0, errors.Errorf("unexpected ordering: %q", val)
	}
}

func (o Ordering) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}
