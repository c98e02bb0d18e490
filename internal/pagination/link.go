// Package pagination builds RFC 5988 Link headers for walking records by
// their sequence number.
package pagination

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Links computes first/prev/next/last navigation links for a record
// resource. Current is the sequence just served; Bound is the exclusive
// upper limit on valid sequences (the store's total record count).
type Links struct {
	Current uint64
	Bound   uint64
}

// relations in emission order.
var relations = []string{"next", "prev", "last", "first"}

// target returns the sequence a relation points at, or false when the
// relation does not apply.
func (l Links) target(rel string) (uint64, bool) {
	switch rel {
	case "prev":
		if l.Current == 0 {
			return 0, false
		}
		return l.Current - 1, true
	case "next":
		if l.Current+1 >= l.Bound {
			return 0, false
		}
		return l.Current + 1, true
	case "last":
		// Kept pointing one past the highest valid sequence for wire
		// compatibility with existing consumers.
		return l.Bound, true
	case "first":
		return 0, true
	}
	return 0, false
}

// Header renders the comma-separated Link header value for the request URL.
// Each applicable relation copies the URL, rewrites its index query
// parameter to the target sequence and keeps the remaining parameters. A
// relation whose URI cannot be rebuilt is omitted rather than failing the
// whole header; the result is empty only if every relation fails.
func (l Links) Header(u *url.URL) string {
	segments := make([]string, 0, len(relations))
	for _, rel := range relations {
		seq, ok := l.target(rel)
		if !ok {
			continue
		}
		ref, err := rewriteIndex(u, seq)
		if err != nil {
			continue
		}
		segments = append(segments, fmt.Sprintf("<%s>; rel=%q", ref, rel))
	}
	return strings.Join(segments, ", ")
}

// rewriteIndex copies u with its index query parameter replaced by seq.
func rewriteIndex(u *url.URL, seq uint64) (string, error) {
	query, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return "", err
	}
	query.Set("index", strconv.FormatUint(seq, 10))

	out := *u
	out.RawQuery = query.Encode()
	return out.String(), nil
}
