package handler

import (
	"crewcall/internal/availability/repository"
	"crewcall/internal/availability/service"
	httputil "crewcall/pkg/http"
	"crewcall/pkg/logger"
	"crewcall/pkg/model"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var record model.AvailabilityRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		h.writeBadBody(w, "Create")
		return
	}

	if err := h.service.Create(r.Context(), &record); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, record); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *AvailabilityHandler) BulkUpsert(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var bulk model.AvailabilityBulkUpsert
	if err := json.NewDecoder(r.Body).Decode(&bulk); err != nil {
		h.writeBadBody(w, "BulkUpsert")
		return
	}

	result, err := h.service.BulkUpsert(r.Context(), &bulk)
	if err != nil {
		h.writeError(w, "BulkUpsert", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "BulkUpsert", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	record, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, record); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	query := r.URL.Query()
	filter := repository.Filter{
		SubjectID: query.Get("subject_id"),
		From:      query.Get("from"),
		To:        query.Get("to"),
	}

	records, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, records, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	params, err := httputil.RequiredQuery(r, "subject_id", "start", "end")
	if err != nil {
		h.writeError(w, "Check", err)
		return
	}

	result, err := h.service.CheckAvailability(r.Context(), params["subject_id"], params["start"], params["end"])
	if err != nil {
		h.writeError(w, "Check", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Check", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) AvailableSubjects(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	params, err := httputil.RequiredQuery(r, "start", "end")
	if err != nil {
		h.writeError(w, "AvailableSubjects", err)
		return
	}

	query := r.URL.Query()
	roster := httputil.SplitCSV(query.Get("roster"))
	var exclude []model.AvailabilityStatus
	for _, s := range httputil.SplitCSV(query.Get("exclude_statuses")) {
		exclude = append(exclude, model.AvailabilityStatus(s))
	}

	subjects, err := h.service.AvailableSubjects(r.Context(), params["start"], params["end"], roster, exclude)
	if err != nil {
		h.writeError(w, "AvailableSubjects", err)
		return
	}
	if subjects == nil {
		subjects = []string{}
	}

	if err := httputil.WriteSuccess(w, subjects); err != nil {
		h.log.Error("failed to write success response", "handler", "AvailableSubjects", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.AvailabilityUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeBadBody(w, "Update")
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) writeBadBody(w http.ResponseWriter, handler string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", writeErr)
	}
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/availability", h.Create)
	router.POST("/api/v1/availability/bulk", h.BulkUpsert)
	router.GET("/api/v1/availability", h.List)
	router.GET("/api/v1/availability/check", h.Check)
	router.GET("/api/v1/availability/available-subjects", h.AvailableSubjects)
	router.GET("/api/v1/availability/id/:id", h.GetByID)
	router.PATCH("/api/v1/availability/id/:id", h.Update)
	router.DELETE("/api/v1/availability/id/:id", h.Delete)
}
