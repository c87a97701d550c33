package repository

// Lookback windows (days) offered for price history.
const (
	Lookback30d = 30
	MaxLookback = 365
)

// IsValidLookback returns true if days is a supported lookback window.
func IsValidLookback(days int) bool {
	return days >= 1 && days <= MaxLookback
}

// DefaultLookback returns the detail chart window.
func DefaultLookback() int { return Lookback30d }

// NormalizeLookback converts a raw window to a valid one (or default).
func NormalizeLookback(days int) int {
	if IsValidLookback(days) {
		return days
	}
	return DefaultLookback()
}
