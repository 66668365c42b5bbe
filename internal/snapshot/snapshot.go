// Package snapshot compares successive keyed snapshots of remote state.
package snapshot

import (
	"cmp"
	"slices"
)

type Kind string

const (
	Added   Kind = "added"
	Changed Kind = "changed"
	Removed Kind = "removed"
)

// Change describes how one key moved between two snapshots. Previous is
// the zero value for Added, Current is the zero value for Removed.
type Change[K cmp.Ordered, V comparable] struct {
	ID       K
	Kind     Kind
	Previous V
	Current  V
}

// Diff reports every key whose value differs between prev and cur,
// ordered by key. Either map may be nil.
func Diff[K cmp.Ordered, V comparable](prev, cur map[K]V) []Change[K, V] {
	var out []Change[K, V]
	for id, c := range cur {
		p, ok := prev[id]
		switch {
		case !ok:
			out = append(out, Change[K, V]{ID: id, Kind: Added, Current: c})
		case p != c:
			out = append(out, Change[K, V]{ID: id, Kind: Changed, Previous: p, Current: c})
		}
	}
	for id, p := range prev {
		if _, ok := cur[id]; !ok {
			out = append(out, Change[K, V]{ID: id, Kind: Removed, Previous: p})
		}
	}
	slices.SortFunc(out, func(a, b Change[K, V]) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
