package booking

import "github.com/atriumhq/service-reservation/pkg/domain"

// Event is an operator-triggered lifecycle event. Clock-driven overdue
// promotions are not events; they are applied only by the promotion
// sweep (see overdue.go).
type Event string

const (
	EventConfirm         Event = "confirm"
	EventReject          Event = "reject"
	EventCheckIn         Event = "check-in"
	EventRequestCheckout Event = "request-checkout"
	EventComplete        Event = "complete"
	EventCancel          Event = "cancel"
	EventMarkNoShow      Event = "mark-no-show"
	EventMarkAbandoned   Event = "mark-abandoned"
)

// ParseEvent converts a string to an Event, returning an error if unknown.
func ParseEvent(s string) (Event, error) {
	e := Event(s)
	if _, ok := knownEvents[e]; !ok {
		return "", domain.NewValidationError("unknown booking event: " + s)
	}
	return e, nil
}

var knownEvents = map[Event]struct{}{
	EventConfirm:         {},
	EventReject:          {},
	EventCheckIn:         {},
	EventRequestCheckout: {},
	EventComplete:        {},
	EventCancel:          {},
	EventMarkNoShow:      {},
	EventMarkAbandoned:   {},
}

// operatorTransitions is the full state machine for operator-triggered
// transitions, keyed by (status, event). A pair absent from this table
// is illegal. Adding a status forces a review of this table.
var operatorTransitions = map[BookingStatus]map[Event]BookingStatus{
	StatusPending: {
		EventConfirm: StatusConfirmed,
		EventReject:  StatusCancelled,
	},
	StatusConflict: {
		EventConfirm: StatusConfirmed,
		EventCancel:  StatusCancelled,
	},
	StatusConfirmed: {
		EventCheckIn:    StatusCheckedIn,
		EventMarkNoShow: StatusNoShow,
		EventCancel:     StatusCancelled,
	},
	StatusCheckedIn: {
		EventComplete:        StatusCompleted,
		EventRequestCheckout: StatusCheckout,
		EventCancel:          StatusCancelled,
		EventMarkAbandoned:   StatusAbandoned,
	},
	StatusCheckout: {
		EventComplete: StatusCompleted,
		EventCancel:   StatusCancelled,
	},
	StatusOverduePending: {
		EventComplete:      StatusCompleted,
		EventCancel:        StatusCancelled,
		EventMarkAbandoned: StatusAbandoned,
	},
	StatusOverdueCheckin: {
		EventComplete:      StatusCompleted,
		EventCancel:        StatusCancelled,
		EventMarkAbandoned: StatusAbandoned,
	},
	StatusOverdueCheckout: {
		EventComplete:      StatusCompleted,
		EventCancel:        StatusCancelled,
		EventMarkAbandoned: StatusAbandoned,
	},
}

// NextStatus resolves the target status for an event from the given
// status. Illegal pairs return an InvalidStateError carrying the
// originating status and the attempted event; such failures are caller
// bugs and must never be retried.
func NextStatus(from BookingStatus, event Event) (BookingStatus, error) {
	if events, ok := operatorTransitions[from]; ok {
		if to, ok := events[event]; ok {
			return to, nil
		}
	}
	return "", domain.NewInvalidStateError(string(from), string(event))
}

// CanApply reports whether the event is legal from the given status.
func CanApply(from BookingStatus, event Event) bool {
	_, err := NextStatus(from, event)
	return err == nil
}

// promotionTransitions maps each clock-promotable status to its
// overdue counterpart. Promotions are monotonic: once a booking leaves
// the source status, the promotion no longer applies.
var promotionTransitions = map[BookingStatus]BookingStatus{
	StatusPending:   StatusOverduePending,
	StatusConfirmed: StatusOverdueCheckin,
	StatusCheckedIn: StatusOverdueCheckout,
}
