package orderv1

import "sort"

// HasPriority reports whether a should match before b. Both orders rest on
// the same side: bids rank by higher price, asks by lower price, then
// earlier CreatedAt, then lower Sequence.
func HasPriority(a, b *Order) bool {
	if cmp := a.Price.Cmp(b.Price); cmp != 0 {
		if a.IsBid() {
			return cmp > 0
		}
		return cmp < 0
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.Sequence < b.Sequence
}

// Orders is a slice of Order pointers that sorts by price-time priority.
type Orders []*Order

func (o Orders) Len() int           { return len(o) }
func (o Orders) Swap(i, j int)      { o[i], o[j] = o[j], o[i] }
func (o Orders) Less(i, j int) bool { return HasPriority(o[i], o[j]) }

// SortByPriority orders same-side orders best first, in place.
func SortByPriority(orders []*Order) {
	sort.Stable(Orders(orders))
}
