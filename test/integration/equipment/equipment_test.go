package integrationtests

import (
	"crewcall/pkg/client"
	"crewcall/pkg/model"
	"crewcall/test/integration/common"
	"net/http"
	"slices"
	"testing"
	"time"
)

var bookingClient *client.EquipmentBookingClient

var day = time.Date(2031, 5, 12, 0, 0, 0, 0, time.UTC)

func at(hour int) time.Time {
	return day.Add(time.Duration(hour) * time.Hour)
}

func createBooking(t *testing.T, equipmentID string, start, end time.Time) *model.EquipmentBooking {
	t.Helper()
	resp, err := bookingClient.Create(map[string]any{
		"equipment_id": equipmentID,
		"start_time":   start,
		"end_time":     end,
	})
	common.RequireStatus(t, resp, err, http.StatusCreated)
	booking, err := bookingClient.DecodeBooking(resp)
	if err != nil {
		t.Fatalf("failed to decode booking: %v", err)
	}
	t.Cleanup(func() { common.Cleanup(t, bookingClient.Delete, booking.ID) })
	return booking
}

func TestEquipmentBookings(t *testing.T) {
	bookingClient = client.NewEquipmentBookingClient(common.ServerURL(t))
	camera := "cam-" + common.Suffix()
	lens := "lens-" + common.Suffix()

	first := createBooking(t, camera, at(9), at(12))
	if first.Status != model.EquipmentReserved {
		t.Fatalf("expected default status Reserved, got %s", first.Status)
	}

	t.Run("overlapping booking is rejected", func(t *testing.T) {
		resp, err := bookingClient.Create(map[string]any{
			"equipment_id": camera,
			"start_time":   at(11),
			"end_time":     at(13),
		})
		common.RequireCode(t, resp, err, http.StatusConflict, "CONFLICT")
	})

	t.Run("back to back booking is allowed", func(t *testing.T) {
		createBooking(t, camera, at(12), at(14))
	})

	t.Run("conflicts lists the holder", func(t *testing.T) {
		resp, err := bookingClient.Conflicts(camera, at(10), at(11), "")
		common.RequireStatus(t, resp, err, http.StatusOK)
		conflicts, err := bookingClient.DecodeConflicts(resp)
		if err != nil {
			t.Fatalf("failed to decode conflicts: %v", err)
		}
		if len(conflicts) != 1 || conflicts[0].ID != first.ID {
			t.Fatalf("expected %s as the only conflict, got %+v", first.ID, conflicts)
		}

		resp, err = bookingClient.Conflicts(camera, at(10), at(11), first.ID)
		common.RequireStatus(t, resp, err, http.StatusOK)
		conflicts, _ = bookingClient.DecodeConflicts(resp)
		if len(conflicts) != 0 {
			t.Fatalf("expected no conflicts when excluding the booking itself, got %+v", conflicts)
		}
	})

	t.Run("available filters booked equipment", func(t *testing.T) {
		resp, err := bookingClient.Available(at(10), at(11), []string{camera, lens})
		common.RequireStatus(t, resp, err, http.StatusOK)
		ids, err := bookingClient.DecodeEquipmentIDs(resp)
		if err != nil {
			t.Fatalf("failed to decode ids: %v", err)
		}
		if !slices.Equal(ids, []string{lens}) {
			t.Fatalf("expected only %s, got %v", lens, ids)
		}
	})

	t.Run("cancelled booking frees the slot", func(t *testing.T) {
		resp, err := bookingClient.Update(first.ID, map[string]any{"status": "Cancelled"})
		common.RequireStatus(t, resp, err, http.StatusNoContent)

		createBooking(t, camera, at(10), at(11))
	})

	t.Run("reversed interval is rejected", func(t *testing.T) {
		resp, err := bookingClient.Conflicts(camera, at(11), at(10), "")
		common.RequireCode(t, resp, err, http.StatusBadRequest, "INVALID_INPUT")
	})
}
