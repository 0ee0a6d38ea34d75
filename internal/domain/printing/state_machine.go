package printing

import "github.com/printshop/backend/internal/domain/shared"

// TransitionTable maps a state to the set of states it may move to.
// A state with an empty (or missing) entry is terminal.
type TransitionTable[S ~string] map[S][]S

// PaymentTransitions is the payment state table
var PaymentTransitions = TransitionTable[PaymentStatus]{
	PaymentStatusPendingPayment: {PaymentStatusPaid, PaymentStatusCancelled},
	PaymentStatusPaid:           {},
	PaymentStatusFailed:         {},
	PaymentStatusCancelled:      {},
}

// PrintTransitions is the print status table
var PrintTransitions = TransitionTable[JobStatus]{
	JobStatusCreated:           {JobStatusPendingPayment},
	JobStatusPendingPayment:    {JobStatusQueued, JobStatusProcessingPayment},
	JobStatusProcessingPayment: {JobStatusQueued},
	JobStatusQueued:            {JobStatusPrinting, JobStatusCancelled},
	JobStatusPrinting:          {JobStatusCompleted},
	JobStatusCompleted:         {},
	JobStatusCancelled:         {},
}

// IsValidTransition reports whether next is reachable from current in one step.
// States missing from the table are rejected.
func IsValidTransition[S ~string](current, next S, table TransitionTable[S]) bool {
	allowed, ok := table[current]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == next {
			return true
		}
	}
	return false
}

// CheckPaymentTransition returns an InvalidTransitionError when the payment table rejects the move
func CheckPaymentTransition(current, next PaymentStatus) error {
	if !IsValidTransition(current, next, PaymentTransitions) {
		return shared.NewInvalidTransitionError("payment", string(current), string(next))
	}
	return nil
}

// CheckPrintTransition returns an InvalidTransitionError when the print table rejects the move
func CheckPrintTransition(current, next JobStatus) error {
	if !IsValidTransition(current, next, PrintTransitions) {
		return shared.NewInvalidTransitionError("print status", string(current), string(next))
	}
	return nil
}
