package domain

import "fmt"

// transitions lists the statuses reachable from each status. Staying in the
// same status is always allowed and is not listed.
var transitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:     {InvoiceStatusComputed},
	InvoiceStatusComputed:  {InvoiceStatusDraft, InvoiceStatusError, InvoiceStatusPublished},
	InvoiceStatusError:     {InvoiceStatusDraft, InvoiceStatusComputed},
	InvoiceStatusPublished: {InvoiceStatusPaid},
	InvoiceStatusPaid:      {},
}

// CanTransition reports whether an invoice may move from one status to another.
func CanTransition(from, to InvoiceStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s in one step.
func NextStatuses(s InvoiceStatus) []InvoiceStatus {
	next := transitions[s]
	out := make([]InvoiceStatus, len(next))
	copy(out, next)
	return out
}

// Terminal reports whether no further transition is possible.
func (s InvoiceStatus) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// AmountFrozen reports whether the amount is fixed in this status.
func (s InvoiceStatus) AmountFrozen() bool {
	return s == InvoiceStatusPublished || s == InvoiceStatusPaid
}

// ValidateTransition checks a status write. amountChanged is true when the
// same write also sets a new amount.
func ValidateTransition(from, to InvoiceStatus, amountChanged bool) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(to))
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, from, to)
	}
	if amountChanged && (from.AmountFrozen() || to.AmountFrozen()) {
		return fmt.Errorf("%w: %s -> %s", ErrAmountFrozen, from, to)
	}
	return nil
}
