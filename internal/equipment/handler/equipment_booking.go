package handler

import (
	"crewcall/internal/equipment/repository"
	"crewcall/internal/equipment/service"
	httputil "crewcall/pkg/http"
	"crewcall/pkg/logger"
	"crewcall/pkg/model"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

type EquipmentBookingHandler struct {
	service service.EquipmentBookingService
	log     *logger.Logger
}

func NewEquipmentBookingHandler(service service.EquipmentBookingService, log *logger.Logger) *EquipmentBookingHandler {
	return &EquipmentBookingHandler{
		service: service,
		log:     log,
	}
}

func (h *EquipmentBookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking model.EquipmentBooking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &booking); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *EquipmentBookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EquipmentBookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, limit, offset, err := parseListQuery(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	bookings, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func parseListQuery(r *http.Request) (repository.Filter, int, int64, error) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		return repository.Filter{}, 0, 0, err
	}

	query := r.URL.Query()
	filter := repository.Filter{
		EquipmentID: query.Get("equipment_id"),
		EventID:     query.Get("event_id"),
		Status:      model.EquipmentBookingStatus(query.Get("status")),
	}
	if s := query.Get("from"); s != "" {
		from, err := httputil.ParseTimeParam("from", s)
		if err != nil {
			return repository.Filter{}, 0, 0, err
		}
		filter.From = &from
	}
	if s := query.Get("to"); s != "" {
		to, err := httputil.ParseTimeParam("to", s)
		if err != nil {
			return repository.Filter{}, 0, 0, err
		}
		filter.To = &to
	}
	return filter, limit, offset, nil
}

func (h *EquipmentBookingHandler) Conflicts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	params, err := httputil.RequiredQuery(r, "equipment_id", "start", "end")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Conflicts", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	start, end, err := parseWindow(params)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Conflicts", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	conflicts, err := h.service.Conflicts(r.Context(), params["equipment_id"], start, end, r.URL.Query().Get("exclude_booking_id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Conflicts", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, conflicts); err != nil {
		h.log.Error("failed to write success response", "handler", "Conflicts", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EquipmentBookingHandler) Available(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	params, err := httputil.RequiredQuery(r, "start", "end", "equipment_ids")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Available", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	start, end, err := parseWindow(params)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Available", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	available, err := h.service.Available(r.Context(), start, end, httputil.SplitCSV(params["equipment_ids"]))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Available", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	if available == nil {
		available = []string{}
	}

	if err := httputil.WriteSuccess(w, available); err != nil {
		h.log.Error("failed to write success response", "handler", "Available", "operation", "WriteSuccess", "error", err)
	}
}

func parseWindow(params map[string]string) (time.Time, time.Time, error) {
	start, err := httputil.ParseTimeParam("start", params["start"])
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := httputil.ParseTimeParam("end", params["end"])
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (h *EquipmentBookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.EquipmentBookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *EquipmentBookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *EquipmentBookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/equipment-bookings", h.Create)
	router.GET("/api/v1/equipment-bookings", h.GetAll)
	router.GET("/api/v1/equipment-bookings/conflicts", h.Conflicts)
	router.GET("/api/v1/equipment-bookings/available", h.Available)
	router.GET("/api/v1/equipment-bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/equipment-bookings/id/:id", h.Update)
	router.DELETE("/api/v1/equipment-bookings/id/:id", h.Delete)
}
