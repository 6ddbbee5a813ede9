// Package util contains small generic helpers used by the other esox
// packages. Nothing in here is parsing-specific.
package util

import (
	"fmt"
	"sort"
	"strings"
)

// OrderedKeys returns the keys of m, ordered a particular way. The order is
// guaranteed to be the same on every run.
//
// As of this writing, the order is alphabetical, but this function does not
// guarantee this will always be the case.
func OrderedKeys[V any](m map[string]V) []string {
	var keys []string
	var idx int

	keys = make([]string, len(m))
	idx = 0

	for k := range m {
		keys[idx] = k
		idx++
	}

	sort.Strings(keys)

	return keys
}

// CustomComparable is an interface for items that may be checked against
// arbitrary other objects. In practice most will attempt to typecast to their
// own type and immediately return false if the argument is not the same, but in
// theory this allows for comparison to multiple types of things.
type CustomComparable interface {
	Equal(other any) bool
}

// EqualSlices checks that the two slices contain the same items in the same
// order. Equality of items is checked by calling Equal on each element of sl1
// with the corresponding element of sl2 passed in as the argument.
func EqualSlices[T CustomComparable](sl1 []T, sl2 []T) bool {
	if len(sl1) != len(sl2) {
		return false
	}

	for i := range sl1 {
		if !sl1[i].Equal(sl2[i]) {
			return false
		}
	}

	return true
}

// MakeTextList gives a nice oxford-comma'd list of the given items, quoting
// each one. Used to build "expected one of ..." style messages.
func MakeTextList(items []string) string {
	if len(items) < 1 {
		return ""
	}

	quoted := make([]string, len(items))
	for i := range items {
		quoted[i] = fmt.Sprintf("%q", items[i])
	}

	if len(quoted) == 1 {
		return quoted[0]
	} else if len(quoted) == 2 {
		return quoted[0] + " or " + quoted[1]
	}

	quoted[len(quoted)-1] = "or " + quoted[len(quoted)-1]
	return strings.Join(quoted, ", ")
}
