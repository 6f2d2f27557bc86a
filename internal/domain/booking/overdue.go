package booking

import "time"

// OverduePolicy holds the grace periods after which the promotion sweep
// advances a booking into its overdue status. The values are deployment
// configuration; DefaultOverduePolicy suits a walk-in operation.
type OverduePolicy struct {
	// GracePending is how long past startTime a Pending booking may
	// wait for operator confirmation.
	GracePending time.Duration
	// GraceCheckin is how long past startTime a Confirmed booking may
	// wait for the customer to check in.
	GraceCheckin time.Duration
	// GraceCheckout is how long past endTime a CheckedIn booking may
	// stay without checking out.
	GraceCheckout time.Duration
}

// DefaultOverduePolicy returns the stock grace periods.
func DefaultOverduePolicy() OverduePolicy {
	return OverduePolicy{
		GracePending:  30 * time.Minute,
		GraceCheckin:  30 * time.Minute,
		GraceCheckout: time.Hour,
	}
}

// PromotionFor evaluates the clock-driven rules against now and returns
// the overdue status the booking is due for, if any. It is pure: the
// caller owns the compare-and-swap that actually applies the promotion.
func (p OverduePolicy) PromotionFor(b *Booking, now time.Time) (BookingStatus, bool) {
	switch b.Status() {
	case StatusPending:
		if now.After(b.StartTime().Add(p.GracePending)) {
			return StatusOverduePending, true
		}
	case StatusConfirmed:
		if now.After(b.StartTime().Add(p.GraceCheckin)) {
			return StatusOverdueCheckin, true
		}
	case StatusCheckedIn:
		if now.After(b.EndTime().Add(p.GraceCheckout)) {
			return StatusOverdueCheckout, true
		}
	}
	return "", false
}
