package catalog

import (
	"slices"

	"wowtoc/internal/backend"
)

// DefaultHistoryDepth counts the current build plus two history slots.
const DefaultHistoryDepth = 3

// ResolveRegion picks the region to show for a product. The global region
// wins unless the product has regions and none of them is the global one,
// in which case the first available region is used and fallback is true.
func ResolveRegion(available []string, global string) (display string, fallback bool) {
	if len(available) > 0 && !slices.Contains(available, global) {
		return available[0], true
	}
	return global, false
}

// Slot is one history position: a build, or a placeholder awaiting one.
type Slot struct {
	Build    *backend.BuildRecord
	Position int
}

// Awaiting reports whether no build has been observed for this position yet.
func (s Slot) Awaiting() bool { return s.Build == nil }

// Slots splits a newest-first history into the current build and exactly
// depth-1 history slots. An empty history yields no current build.
func Slots(history []backend.BuildRecord, depth int) (*backend.BuildRecord, []Slot) {
	if len(history) == 0 {
		return nil, nil
	}
	if depth < 1 {
		depth = 1
	}
	current := history[0]
	rest := make([]Slot, 0, depth-1)
	for i := 1; i < depth; i++ {
		slot := Slot{Position: i}
		if i < len(history) {
			b := history[i]
			slot.Build = &b
		}
		rest = append(rest, slot)
	}
	return &current, rest
}
