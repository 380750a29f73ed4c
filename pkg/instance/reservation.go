package instance

import (
	"context"
	"fmt"
	"time"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/internal/poll"
)

// Reservation is the state of an instance name reservation.
type Reservation uint8

const (
	Unreserved Reservation = iota
	Pending
	Succeeded
	Failed
)

// String returns the reservation state name.
func (r Reservation) String() string {
	switch r {
	case Unreserved:
		return "UNRESERVED"
	case Pending:
		return "PENDING"
	case Succeeded:
		return "SUCCEEDED"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// ReservationStatus returns the reservation state of name.
func (r *Registry) ReservationStatus(name string) Reservation {
	r.resMu.Lock()
	defer r.resMu.Unlock()
	return r.reservations[name]
}

// Reserve requests name and waits up to timeout for the runtime to answer.
// It returns Pending if the wait timed out; the request itself stays
// outstanding.
func (r *Registry) Reserve(ctx context.Context, name string, timeout time.Duration) (Reservation, error) {
	r.resMu.Lock()
	switch st := r.reservations[name]; st {
	case Pending, Succeeded:
		r.resMu.Unlock()
		r.logger.Warn("name already reserved or pending", "name", name, "status", st)
		return r.awaitReservation(ctx, name, timeout), nil
	}
	r.reservations[name] = Pending
	r.resMu.Unlock()

	if err := r.amb.ReserveObjectInstanceName(name); err != nil {
		r.setReservation(name, Failed)
		return Failed, fmt.Errorf("reserve %q: %w", name, err)
	}
	return r.awaitReservation(ctx, name, timeout), nil
}

func (r *Registry) awaitReservation(ctx context.Context, name string, timeout time.Duration) Reservation {
	poll.Until(ctx, r.pollInterval, timeout, func() bool {
		return r.ReservationStatus(name) != Pending
	})
	return r.ReservationStatus(name)
}

// Release gives a reserved name back to the runtime.
func (r *Registry) Release(name string) error {
	if r.ReservationStatus(name) != Succeeded {
		r.logger.Warn("releasing name that is not reserved", "name", name)
		return nil
	}
	if err := r.amb.ReleaseObjectInstanceName(name); err != nil {
		return fmt.Errorf("release %q: %w", name, err)
	}
	r.resMu.Lock()
	delete(r.reservations, name)
	r.resMu.Unlock()
	return nil
}

// NameReservationSucceeded records a successful reservation callback.
func (r *Registry) NameReservationSucceeded(name string) {
	r.resolveReservation(name, Succeeded)
}

// NameReservationFailed records a failed reservation callback.
func (r *Registry) NameReservationFailed(name string) {
	r.resolveReservation(name, Failed)
}

func (r *Registry) resolveReservation(name string, st Reservation) {
	r.resMu.Lock()
	defer r.resMu.Unlock()

	if r.reservations[name] != Pending {
		r.logger.Debug("reservation callback for name not pending", "name", name, "status", st)
		return
	}
	r.reservations[name] = st
	r.logger.Debug("name reservation resolved", "name", name, "status", st)
}

func (r *Registry) setReservation(name string, st Reservation) {
	r.resMu.Lock()
	r.reservations[name] = st
	r.resMu.Unlock()
}
