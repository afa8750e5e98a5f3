// Package selection resolves user typed index selections such as "0,2-4"
// against a freshly listed set of backend items.
package selection

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

var (
	// ErrMalformed marks a token that is not an index or an N-M range.
	ErrMalformed = errors.New("malformed selection")
	// ErrOutOfRange marks a range whose boundary lies beyond the list.
	ErrOutOfRange = errors.New("interval boundaries out of range")
)

// Item is one listed entry: the backend identifier and what the user sees.
type Item struct {
	ID    string
	Label string
}

// RangeError reports the token that aborted a selection.
type RangeError struct {
	Token string
	Err   error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("selection %q: %v", e.Token, e.Err)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

// Select maps input onto identifiers of items. Tokens are handled in the
// order they appear and ranges expand in ascending order, so duplicates are
// preserved. A single index past the end of items is skipped, while a range
// boundary past the end fails the whole selection.
func Select(input string, items []Item) ([]string, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, input)

	var ids []string
	for _, token := range strings.Split(compact, ",") {
		lo, hi, isRange, err := parseToken(token)
		if err != nil {
			return nil, err
		}

		if !isRange {
			if lo < uint64(len(items)) {
				ids = append(ids, items[lo].ID)
			}
			continue
		}

		if lo >= uint64(len(items)) || hi >= uint64(len(items)) {
			return nil, &RangeError{Token: token, Err: ErrOutOfRange}
		}
		for i := lo; i <= hi; i++ {
			ids = append(ids, items[i].ID)
		}
	}
	return ids, nil
}

// parseToken returns the ascending bounds of token. Indices too large for
// uint64 are clamped so they fall out of bounds instead of being malformed.
func parseToken(token string) (lo, hi uint64, isRange bool, err error) {
	parts := strings.Split(token, "-")
	switch len(parts) {
	case 1:
		idx, err := parseIndex(parts[0])
		if err != nil {
			return 0, 0, false, &RangeError{Token: token, Err: err}
		}
		return idx, idx, false, nil
	case 2:
		a, err := parseIndex(parts[0])
		if err != nil {
			return 0, 0, true, &RangeError{Token: token, Err: err}
		}
		b, err := parseIndex(parts[1])
		if err != nil {
			return 0, 0, true, &RangeError{Token: token, Err: err}
		}
		if a > b {
			a, b = b, a
		}
		return a, b, true, nil
	default:
		return 0, 0, false, &RangeError{Token: token, Err: ErrMalformed}
	}
}

func parseIndex(raw string) (uint64, error) {
	idx, err := strconv.ParseUint(raw, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return ^uint64(0), nil
	}
	if err != nil {
		return 0, ErrMalformed
	}
	return idx, nil
}

// Render writes items with the positional index the user types in a
// selection.
func Render(w io.Writer, items []Item) error {
	for i, item := range items {
		if _, err := fmt.Fprintf(w, "[%d]    %s\n", i, item.Label); err != nil {
			return err
		}
	}
	return nil
}
