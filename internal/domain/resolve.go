package domain

// PickPreferred returns the item whose id equals ref, falling back to the
// first item when ref is empty or matches nothing. ok is false only when
// items is empty.
func PickPreferred[T any](items []T, ref string, idOf func(T) string) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	if ref != "" {
		for _, item := range items {
			if idOf(item) == ref {
				return item, true
			}
		}
	}
	return items[0], true
}
