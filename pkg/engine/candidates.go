package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"crewcall/pkg/model"
)

// DefaultExcludeStatuses are the statuses that remove a subject from the
// candidate set.
var DefaultExcludeStatuses = []model.AvailabilityStatus{model.StatusBooked, model.StatusUnavailable}

// AvailableSubjects returns the roster members with no in-range record whose
// status is in excludeStatuses (DefaultExcludeStatuses when none are given).
//
// The roster should come from the caller. When it is empty the subjects are
// inferred from the records, which hides every subject that has no record at
// all; that fallback exists for callers without a roster.
//
// The result preserves roster order, without duplicates.
func AvailableSubjects(rangeStart, rangeEnd string, records []*model.AvailabilityRecord, roster []string, excludeStatuses ...model.AvailabilityStatus) ([]string, error) {
	dayRange, err := ParseDayRange(rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}
	if len(excludeStatuses) == 0 {
		excludeStatuses = DefaultExcludeStatuses
	}
	excluded := make(map[model.AvailabilityStatus]struct{}, len(excludeStatuses))
	for _, s := range excludeStatuses {
		excluded[s] = struct{}{}
	}

	if len(roster) == 0 {
		roster = subjectsOf(records)
	}

	blocked := make(map[string]struct{})
	for _, r := range records {
		if r == nil {
			continue
		}
		if _, ok := excluded[r.Status]; !ok {
			continue
		}
		day, err := ParseDay(r.Date)
		if err != nil {
			continue
		}
		if dayRange.Contains(day) {
			blocked[r.SubjectID] = struct{}{}
		}
	}

	return subtract(roster, blocked), nil
}

// ValidateRoster fails with ErrUnknownSubject naming every roster entry that is
// missing from known.
func ValidateRoster(roster []string, known []string) error {
	knownSet := make(map[string]struct{}, len(known))
	for _, k := range known {
		knownSet[k] = struct{}{}
	}
	var unknown []string
	for _, id := range roster {
		if _, ok := knownSet[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSubject, strings.Join(unknown, ", "))
	}
	return nil
}

// AvailableEquipment returns the equipment ids with no occupying booking
// overlapping [start, end). Cancelled and returned bookings never block.
func AvailableEquipment(start, end time.Time, equipmentIDs []string, bookings []*model.EquipmentBooking) ([]string, error) {
	window, err := NewInterval(start, end)
	if err != nil {
		return nil, err
	}

	busy := make(map[string]struct{})
	for _, b := range bookings {
		if b == nil || !b.Status.Occupies() {
			continue
		}
		if window.Overlaps(Interval{Start: b.StartTime, End: b.EndTime}) {
			busy[b.EquipmentID] = struct{}{}
		}
	}

	return subtract(equipmentIDs, busy), nil
}

func subjectsOf(records []*model.AvailabilityRecord) []string {
	seen := make(map[string]struct{})
	subjects := make([]string, 0)
	for _, r := range records {
		if r == nil {
			continue
		}
		if _, ok := seen[r.SubjectID]; ok {
			continue
		}
		seen[r.SubjectID] = struct{}{}
		subjects = append(subjects, r.SubjectID)
	}
	sort.Strings(subjects)
	return subjects
}

func subtract(ids []string, remove map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := remove[id]; ok {
			continue
		}
		result = append(result, id)
	}
	return result
}
