// Package scoring implements the pure ranking and standings computations:
// class resolution, point scale lookup, ranking point multipliers,
// best-N series aggregation and club point redistribution.
package scoring

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// RankKey is the ordering key shared by every ranked table in the engine.
// Only Total decides the position label; Count and ID only decide the
// iteration order among equal totals.
type RankKey struct {
	Total decimal.Decimal
	Count int
	ID    int64
}

// compareRankKeys orders by total desc, count desc, id asc.
func compareRankKeys(a, b RankKey) int {
	if c := b.Total.Cmp(a.Total); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Count, a.Count); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// AssignPositions labels an already ordered list of n items.
// tied(i) reports whether item i has the same total as item i-1.
//
// The counter advances on every item; a tied item copies the previous
// label, so a tie of size m is followed by a gap of m-1 labels (1, 2, 2, 4).
func AssignPositions(n int, tied func(i int) bool) []int {
	positions := make([]int, n)
	for i := 0; i < n; i++ {
		if i > 0 && tied(i) {
			positions[i] = positions[i-1]
			continue
		}
		positions[i] = i + 1
	}
	return positions
}

// RankByTotal sorts items in place by their RankKey and returns the
// position label of each item in the new order.
func RankByTotal[T any](items []T, key func(T) RankKey) []int {
	slices.SortStableFunc(items, func(a, b T) int {
		return compareRankKeys(key(a), key(b))
	})
	return AssignPositions(len(items), func(i int) bool {
		return key(items[i]).Total.Equal(key(items[i-1]).Total)
	})
}
