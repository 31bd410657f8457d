package model

import "time"

// CompareNullsLast orders dates ascending with a missing date greater than
// any known one.
func CompareNullsLast(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}
