package domain

import "time"

// Status is the invoice state machine: Unpaid → Overdue → Paid, with
// Unpaid → Paid also direct. Paid is terminal for the overdue sweep; a manual
// reopen (MarkUnpaid) is the only way back out.
type Status string

const (
	StatusUnpaid  Status = "Unpaid"
	StatusPaid    Status = "Paid"
	StatusOverdue Status = "Overdue"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUnpaid, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// IsOverdue is the pure overdue predicate: an Unpaid invoice whose due date
// is strictly before now. A persisted Overdue label already counts.
func IsOverdue(status Status, dueDate, now time.Time) bool {
	return status == StatusUnpaid && dueDate.Before(now)
}

// EffectiveStatus resolves the logical status at a point in time without
// requiring the overdue sweep to have run. Read paths that report "overdue"
// must use this, not the persisted label alone.
func EffectiveStatus(status Status, dueDate, now time.Time) Status {
	if IsOverdue(status, dueDate, now) {
		return StatusOverdue
	}
	return status
}

// CanTransition gates persisted status changes.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	switch to {
	case StatusPaid:
		return true
	case StatusOverdue:
		return from == StatusUnpaid
	case StatusUnpaid:
		// Manual reopen.
		return true
	}
	return false
}
