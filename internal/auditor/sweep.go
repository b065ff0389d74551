package auditor

import (
	"context"
	equipmentrepo "crewcall/internal/equipment/repository"
	eventsrepo "crewcall/internal/events/repository"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
)

const sweepPageSize = 100

type SweepReport struct {
	EventsChecked    int
	EventConflicts   int
	BookingsChecked  int
	BookingConflicts int
}

// Sweep audits every event and equipment booking overlapping
// [now, now+ConflictSweepHorizon). A record that fails to audit is logged and
// skipped so one bad document does not stop the sweep.
func (a *Auditor) Sweep(ctx context.Context, now time.Time) (*SweepReport, error) {
	from := now.UTC()
	to := from.Add(a.cfg.ConflictSweepHorizon)
	report := &SweepReport{}

	eventFilter := eventsrepo.Filter{From: &from, To: &to}
	for offset := int64(0); ; offset += sweepPageSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		page, err := a.events.Find(ctx, eventFilter, sweepPageSize, offset)
		if err != nil {
			return report, err
		}
		for _, event := range page {
			report.EventsChecked++
			conflicts, err := a.AuditEvent(ctx, event)
			if err != nil {
				a.log.Error("Failed to audit event", "event_id", event.ID, "error", err)
				continue
			}
			if len(conflicts) > 0 {
				report.EventConflicts++
			}
		}
		if len(page) < sweepPageSize {
			break
		}
	}

	bookingFilter := equipmentrepo.Filter{From: &from, To: &to}
	for offset := int64(0); ; offset += sweepPageSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		page, err := a.bookings.Find(ctx, bookingFilter, sweepPageSize, offset)
		if err != nil {
			return report, err
		}
		for _, booking := range page {
			report.BookingsChecked++
			conflicts, err := a.AuditBooking(ctx, booking)
			if err != nil {
				a.log.Error("Failed to audit equipment booking", "booking_id", booking.ID, "error", err)
				continue
			}
			if len(conflicts) > 0 {
				report.BookingConflicts++
			}
		}
		if len(page) < sweepPageSize {
			break
		}
	}

	return report, nil
}

// ScheduleSweep registers Sweep on c using ConflictSweepSchedule. Each run is
// bounded by timeout.
func (a *Auditor) ScheduleSweep(c *cron.Cron, timeout time.Duration) (cron.EntryID, error) {
	if a.cfg.ConflictSweepSchedule == "" {
		return 0, errors.New("conflict sweep schedule is empty")
	}
	return c.AddFunc(a.cfg.ConflictSweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		report, err := a.Sweep(ctx, start)
		if err != nil {
			a.log.Error("Conflict sweep failed", "error", err, "duration", time.Since(start))
			return
		}
		a.log.Info("Conflict sweep completed",
			"events_checked", report.EventsChecked,
			"event_conflicts", report.EventConflicts,
			"bookings_checked", report.BookingsChecked,
			"booking_conflicts", report.BookingConflicts,
			"duration", time.Since(start),
		)
	})
}
