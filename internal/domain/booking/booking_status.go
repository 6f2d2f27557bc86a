package booking

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
// The string values are a stable wire contract; reports and UI clients
// match on them verbatim.
type BookingStatus string

const (
	StatusPending         BookingStatus = "Pending"
	StatusConfirmed       BookingStatus = "Confirmed"
	StatusCheckedIn       BookingStatus = "CheckedIn"
	StatusCheckout        BookingStatus = "Checkout"
	StatusCompleted       BookingStatus = "Completed"
	StatusOverduePending  BookingStatus = "OverduePending"
	StatusOverdueCheckin  BookingStatus = "OverdueCheckin"
	StatusOverdueCheckout BookingStatus = "OverdueCheckout"
	StatusNoShow          BookingStatus = "NoShow"
	StatusCancelled       BookingStatus = "Cancelled"
	StatusAbandoned       BookingStatus = "Abandoned"
	StatusExternal        BookingStatus = "External"
	StatusConflict        BookingStatus = "Conflict"
)

// ActiveStatuses are the non-terminal statuses. A booking in one of
// these states still occupies, or may come to occupy, its window.
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCheckedIn,
	StatusCheckout,
	StatusOverduePending,
	StatusOverdueCheckin,
	StatusOverdueCheckout,
	StatusConflict,
}

// terminalStatuses admit no further transitions. External marks a
// booking imported from an outside calendar; this service never
// produces or advances it.
var terminalStatuses = map[BookingStatus]bool{
	StatusCompleted: true,
	StatusCancelled: true,
	StatusNoShow:    true,
	StatusAbandoned: true,
	StatusExternal:  true,
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	if terminalStatuses[s] {
		return true
	}
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsActive returns true if the booking is in a non-terminal state.
func (s BookingStatus) IsActive() bool {
	return s.IsValid() && !terminalStatuses[s]
}

// IsOverdue returns true for the clock-promoted statuses.
func (s BookingStatus) IsOverdue() bool {
	return s == StatusOverduePending || s == StatusOverdueCheckin || s == StatusOverdueCheckout
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
