package engine

import (
	"time"

	"crewcall/pkg/model"
)

// FindEventConflicts returns the events that overlap [start, end) in time AND
// share at least one attendee with the candidate. The event with id
// excludeEventID is skipped, which lets an edit ignore its own stored copy.
func FindEventConflicts(start, end time.Time, attendees []string, events []*model.Event, excludeEventID string) ([]*model.Event, error) {
	candidate, err := NewInterval(start, end)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(attendees))
	for _, a := range attendees {
		wanted[a] = struct{}{}
	}

	conflicts := make([]*model.Event, 0)
	if len(wanted) == 0 {
		return conflicts, nil
	}

	for _, e := range events {
		if e == nil {
			continue
		}
		if excludeEventID != "" && e.ID == excludeEventID {
			continue
		}
		if !candidate.Overlaps(Interval{Start: e.StartTime, End: e.EndTime}) {
			continue
		}
		if sharesAttendee(wanted, e.Attendees) {
			conflicts = append(conflicts, e)
		}
	}
	return conflicts, nil
}

// FindEquipmentConflicts returns the occupying bookings of equipmentID that
// overlap [start, end). Cancelled and returned bookings are ignored, as is the
// booking with id excludeBookingID.
func FindEquipmentConflicts(equipmentID string, start, end time.Time, bookings []*model.EquipmentBooking, excludeBookingID string) ([]*model.EquipmentBooking, error) {
	candidate, err := NewInterval(start, end)
	if err != nil {
		return nil, err
	}

	conflicts := make([]*model.EquipmentBooking, 0)
	for _, b := range bookings {
		if b == nil || b.EquipmentID != equipmentID {
			continue
		}
		if excludeBookingID != "" && b.ID == excludeBookingID {
			continue
		}
		if !b.Status.Occupies() {
			continue
		}
		if candidate.Overlaps(Interval{Start: b.StartTime, End: b.EndTime}) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts, nil
}

func sharesAttendee(wanted map[string]struct{}, attendees []string) bool {
	for _, a := range attendees {
		if _, ok := wanted[a]; ok {
			return true
		}
	}
	return false
}
