package input

// PreviousMatching returns the element before the first one matching pred,
// or the first element when it is the match itself. With no match it returns
// the first element. ok is false only for an empty slice.
func PreviousMatching[T any](items []T, pred func(T) bool) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	for i, it := range items {
		if pred(it) {
			return items[max(i-1, 0)], true
		}
	}
	return items[0], true
}

// NextMatching returns the element after the first one matching pred,
// saturating at the last element. With no match it returns the last element.
// ok is false only for an empty slice.
func NextMatching[T any](items []T, pred func(T) bool) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	for i, it := range items {
		if pred(it) {
			return items[min(i+1, len(items)-1)], true
		}
	}
	return items[len(items)-1], true
}
