package handler

import (
	"crewcall/internal/events/repository"
	"crewcall/internal/events/service"
	httputil "crewcall/pkg/http"
	"crewcall/pkg/logger"
	"crewcall/pkg/model"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type EventHandler struct {
	service service.EventService
	log     *logger.Logger
}

func NewEventHandler(service service.EventService, log *logger.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		log:     log,
	}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	force, err := httputil.ParseBoolParam(r, "force")
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var event model.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.writeBadBody(w, "Create")
		return
	}

	if err := h.service.Create(r.Context(), &event, force); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, event); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *EventHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	event, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, event); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EventHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	query := r.URL.Query()
	filter := repository.Filter{
		ProjectID: query.Get("project_id"),
		Attendee:  query.Get("attendee"),
	}
	if s := query.Get("from"); s != "" {
		from, err := httputil.ParseTimeParam("from", s)
		if err != nil {
			h.writeError(w, "GetAll", err)
			return
		}
		filter.From = &from
	}
	if s := query.Get("to"); s != "" {
		to, err := httputil.ParseTimeParam("to", s)
		if err != nil {
			h.writeError(w, "GetAll", err)
			return
		}
		filter.To = &to
	}

	events, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, events, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *EventHandler) Conflicts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	params, err := httputil.RequiredQuery(r, "start", "end")
	if err != nil {
		h.writeError(w, "Conflicts", err)
		return
	}
	start, err := httputil.ParseTimeParam("start", params["start"])
	if err != nil {
		h.writeError(w, "Conflicts", err)
		return
	}
	end, err := httputil.ParseTimeParam("end", params["end"])
	if err != nil {
		h.writeError(w, "Conflicts", err)
		return
	}

	query := r.URL.Query()
	conflicts, err := h.service.Conflicts(r.Context(), start, end, httputil.SplitCSV(query.Get("attendees")), query.Get("exclude_event_id"))
	if err != nil {
		h.writeError(w, "Conflicts", err)
		return
	}

	if err := httputil.WriteSuccess(w, conflicts); err != nil {
		h.log.Error("failed to write success response", "handler", "Conflicts", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	force, err := httputil.ParseBoolParam(r, "force")
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var updates model.EventUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeBadBody(w, "Update")
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &updates, force); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *EventHandler) writeBadBody(w http.ResponseWriter, handler string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", writeErr)
	}
}

func (h *EventHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *EventHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/events", h.Create)
	router.GET("/api/v1/events", h.GetAll)
	router.GET("/api/v1/events/conflicts", h.Conflicts)
	router.GET("/api/v1/events/id/:id", h.GetByID)
	router.PATCH("/api/v1/events/id/:id", h.Update)
	router.DELETE("/api/v1/events/id/:id", h.Delete)
}
