package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/julienschmidt/httprouter"

	"revamp/internal/appointments/service"
	apperrors "revamp/pkg/errors"
	httputil "revamp/pkg/http"
	"revamp/pkg/logger"
	"revamp/pkg/model"
)

// APIPrefix is stripped from every route before a request is forwarded to
// the downstream booking service.
const APIPrefix = "/api/bookings"

type AppointmentHandler struct {
	service *service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(svc *service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: svc,
		log:     log,
	}
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	result, err := h.service.Create(r.Context(), &req, r.Header)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteRaw(w, result.StatusCode, result.Body); err != nil {
		h.log.Error("failed to write raw response", "handler", "Create", "operation", "WriteRaw", "error", err)
	}
}

func (h *AppointmentHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date := r.URL.Query().Get("date")
	if date == "" {
		h.writeError(w, "Availability", apperrors.InvalidInput("date query parameter is required"))
		return
	}

	resp, err := h.service.Availability(date)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

type estimateRequest struct {
	Modifications []string `json:"modifications"`
}

func (h *AppointmentHandler) Estimate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Estimate", apperrors.InvalidInput("Invalid request body"))
		return
	}

	resp, err := h.service.Estimate(req.Modifications)
	if err != nil {
		h.writeError(w, "Estimate", err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Estimate", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) Modifications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.service.Modifications()); err != nil {
		h.log.Error("failed to write success response", "handler", "Modifications", "operation", "WriteSuccess", "error", err)
	}
}

// Passthrough relays list, read, update, and cancel operations downstream.
func (h *AppointmentHandler) Passthrough(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			h.writeError(w, "Passthrough", apperrors.InvalidInput("Failed to read request body"))
			return
		}
	}

	result, err := h.service.Passthrough(r.Context(), r.Method, downstreamPath(r.URL), body, r.Header)
	if err != nil {
		h.writeError(w, "Passthrough", err)
		return
	}

	if err := httputil.WriteRaw(w, result.StatusCode, result.Body); err != nil {
		h.log.Error("failed to write raw response", "handler", "Passthrough", "operation", "WriteRaw", "error", err)
	}
}

// downstreamPath strips the gateway prefix and keeps the query string.
func downstreamPath(u *url.URL) string {
	path := strings.TrimPrefix(u.Path, APIPrefix)
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST(APIPrefix+"/appointments", h.Create)
	router.POST(APIPrefix+"/appointments/estimate", h.Estimate)
	router.GET(APIPrefix+"/availability", h.Availability)
	router.GET(APIPrefix+"/modifications", h.Modifications)

	router.GET(APIPrefix+"/appointments", h.Passthrough)
	router.GET(APIPrefix+"/appointments/:id", h.Passthrough)
	router.PATCH(APIPrefix+"/appointments/:id", h.Passthrough)
	router.DELETE(APIPrefix+"/appointments/:id", h.Passthrough)
}
