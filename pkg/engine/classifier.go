package engine

import (
	"sort"

	"crewcall/pkg/model"
)

// CheckAvailability classifies a subject's availability over the inclusive day
// range [rangeStart, rangeEnd] from the records snapshot.
//
// Precedence, evaluated in order:
//  1. no hard conflicts and no tentative holds: Available
//  2. every day in range has a hard conflict: Booked or Unavailable, after the
//     earliest conflicting record
//  3. some days have hard conflicts: Partial
//  4. only tentative holds: Tentative
//
// Hard conflicts always dominate tentative holds. Only cases 1 and 4 are
// available.
func CheckAvailability(subjectID, rangeStart, rangeEnd string, records []*model.AvailabilityRecord) (*model.AvailabilityResult, error) {
	dayRange, err := ParseDayRange(rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}

	conflicts := make([]*model.AvailabilityRecord, 0)
	conflictDays := make(map[Day]struct{})
	tentative := 0

	for _, r := range recordsInRange(subjectID, dayRange, records) {
		switch r.Status {
		case model.StatusBooked, model.StatusUnavailable:
			conflicts = append(conflicts, r)
			conflictDays[Day(r.Date)] = struct{}{}
		case model.StatusTentative:
			tentative++
		}
	}

	result := &model.AvailabilityResult{
		SubjectID: subjectID,
		Conflicts: conflicts,
	}

	switch {
	case len(conflicts) == 0 && tentative == 0:
		result.Status = model.StatusAvailable
		result.IsAvailable = true
	case len(conflictDays) == dayRange.Days():
		result.Status = model.StatusUnavailable
		if conflicts[0].Status == model.StatusBooked {
			result.Status = model.StatusBooked
		}
	case len(conflicts) > 0:
		result.Status = model.StatusPartial
	default:
		result.Status = model.StatusTentative
		result.IsAvailable = true
	}

	return result, nil
}

// recordsInRange returns the subject's well-formed records inside the range,
// ordered by day. Records with malformed dates cannot belong to any range and
// are skipped.
func recordsInRange(subjectID string, dayRange DayRange, records []*model.AvailabilityRecord) []*model.AvailabilityRecord {
	matched := make([]*model.AvailabilityRecord, 0)
	for _, r := range records {
		if r == nil || r.SubjectID != subjectID {
			continue
		}
		day, err := ParseDay(r.Date)
		if err != nil {
			continue
		}
		if dayRange.Contains(day) {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date < matched[j].Date
	})
	return matched
}
