package model

import "fmt"

// Quadrant is an Eisenhower matrix bucket.
type Quadrant int

const (
	QuadrantUrgentImportant Quadrant = iota + 1
	QuadrantImportant
	QuadrantUrgent
	QuadrantNeither
)

// Quadrants lists all buckets in display order.
var Quadrants = []Quadrant{QuadrantUrgentImportant, QuadrantImportant, QuadrantUrgent, QuadrantNeither}

func QuadrantOf(urgent, high bool) Quadrant {
	switch {
	case urgent && high:
		return QuadrantUrgentImportant
	case high:
		return QuadrantImportant
	case urgent:
		return QuadrantUrgent
	default:
		return QuadrantNeither
	}
}

func (q Quadrant) Valid() bool {
	return q >= QuadrantUrgentImportant && q <= QuadrantNeither
}

// Attributes returns the fixed (priority, urgent) pair of the bucket.
func (q Quadrant) Attributes() (Priority, bool) {
	switch q {
	case QuadrantUrgentImportant:
		return PriorityHigh, true
	case QuadrantImportant:
		return PriorityHigh, false
	case QuadrantUrgent:
		return PriorityNormal, true
	default:
		return PriorityNormal, false
	}
}

func (q Quadrant) Title() string {
	switch q {
	case QuadrantUrgentImportant:
		return "Urgent & Important"
	case QuadrantImportant:
		return "Important, Not Urgent"
	case QuadrantUrgent:
		return "Urgent, Not Important"
	case QuadrantNeither:
		return "Not Urgent & Not Important"
	}
	return fmt.Sprintf("Quadrant %d", int(q))
}
