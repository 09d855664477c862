package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrEventPublish marks a completed order whose OrderCreated event did
	// not reach the bus. The order stays completed; only the notification
	// may not fire.
	ErrEventPublish = errors.New("order created event publish failed")

	ErrInvalidTransition = errors.New("invalid order status transition")
)

// NetworkError wraps an unreachable or timed-out catalog call. Terminal for
// this saga; the caller may retry the whole order submission.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("catalog service unreachable during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// CompensationOutcome records one rollback attempt during an aborted saga.
type CompensationOutcome struct {
	ProductID int64
	Quantity  int
	Err       error
}

// ReservationError is what an aborted reservation stage surfaces: the
// triggering cause plus the per-item compensation outcomes, so operators and
// tests can tell which rollbacks succeeded. errors.Is/As resolve against the
// cause, not the compensation results.
type ReservationError struct {
	ProductID     int64
	Cause         error
	Compensations []CompensationOutcome
}

func (e *ReservationError) Error() string {
	return fmt.Sprintf("stock reservation failed for product %d: %v", e.ProductID, e.Cause)
}

func (e *ReservationError) Unwrap() error { return e.Cause }

// CompensationFailed reports whether any rollback attempt itself failed,
// leaving a detected stock inconsistency.
func (e *ReservationError) CompensationFailed() bool {
	for _, c := range e.Compensations {
		if c.Err != nil {
			return true
		}
	}
	return false
}
