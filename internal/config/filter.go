package config

// FilterMode selects which order numbers this consumer prints.
type FilterMode string

// Recognized filter modes.
const (
	FilterAll  FilterMode = "all"
	FilterEven FilterMode = "even"
	FilterOdd  FilterMode = "odd"
)

// Valid reports whether m is a recognized filter mode.
func (m FilterMode) Valid() bool {
	switch m {
	case FilterAll, FilterEven, FilterOdd:
		return true
	}
	return false
}

// Accepts reports whether an order number passes the filter.
// Parity is mathematical, so negative odd numbers count as odd.
func (m FilterMode) Accepts(order int) bool {
	switch m {
	case FilterEven:
		return order%2 == 0
	case FilterOdd:
		return order%2 != 0
	default:
		return true
	}
}
