// Package v1 provides the REST API handlers for the sync service.
package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/composable-com/ct-connect-akeneo/internal/api/common"
	"github.com/composable-com/ct-connect-akeneo/internal/jobstatus"
	"github.com/composable-com/ct-connect-akeneo/internal/service"
	"github.com/composable-com/ct-connect-akeneo/internal/versions"
)

const (
	actionSave  = "save"
	actionStart = "start"
	actionStop  = "stop"
	actionGet   = "get"
)

// ServiceRequest is the body of POST /service
type ServiceRequest struct {
	Action   string          `json:"action"`
	SyncType string          `json:"syncType"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// StatusResponse reports the state a job is in after an action
type StatusResponse struct {
	Status jobstatus.State `json:"status"`
}

// TriggerResponse reports whether a trigger started a run
type TriggerResponse struct {
	Kind      jobstatus.Kind `json:"kind"`
	Triggered bool           `json:"triggered"`
}

// Routes defines the sync API routes
type Routes struct {
	service  service.Service
	launcher service.Launcher
}

// NewRoutes creates a new Routes instance. launcher may be nil when the
// process does not run syncs itself.
func NewRoutes(svc service.Service, launcher service.Launcher) *Routes {
	return &Routes{
		service:  svc,
		launcher: launcher,
	}
}

// ServiceHandler returns the handler for POST /service
func ServiceHandler(svc service.Service) http.HandlerFunc {
	return NewRoutes(svc, nil).handleServiceAction
}

// JobsRouter creates the router mounted at /jobs
func JobsRouter(svc service.Service, launcher service.Launcher) http.Handler {
	routes := NewRoutes(svc, launcher)

	r := chi.NewRouter()
	r.Get("/{kind}", routes.getJobStatus)
	r.Post("/{kind}", routes.triggerJob)

	return r
}

// handleServiceAction handles POST /service, the single entry point the
// admin UI drives jobs and configuration through.
func (rr *Routes) handleServiceAction(w http.ResponseWriter, r *http.Request) {
	var req ServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	kind, err := jobstatus.ParseKind(req.SyncType)
	if err != nil && req.Action != actionSave {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	switch req.Action {
	case actionSave:
		raw, err := configDocument(req.Config)
		if err != nil {
			common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := rr.service.SaveConfig(ctx, raw); err != nil {
			rr.writeServiceError(w, "save", err)
			return
		}
		common.WriteJSONResponse(w, map[string]string{"status": "success"}, http.StatusOK)

	case actionStart:
		state, err := rr.service.LaunchIfReady(ctx, kind)
		if err != nil {
			rr.writeServiceError(w, "start", err)
			return
		}
		common.WriteJSONResponse(w, StatusResponse{Status: state}, http.StatusOK)

	case actionStop:
		state, err := rr.service.RequestStop(ctx, kind)
		if err != nil {
			rr.writeServiceError(w, "stop", err)
			return
		}
		common.WriteJSONResponse(w, StatusResponse{Status: state}, http.StatusOK)

	case actionGet:
		if kind == jobstatus.KindAll {
			rec, err := rr.service.LoadConfig(ctx)
			if err != nil {
				rr.writeServiceError(w, "get", err)
				return
			}
			if rec == nil {
				common.WriteErrorResponse(w, "Sync config not found", http.StatusNotFound)
				return
			}
			common.WriteJSONResponse(w, rec, http.StatusOK)
			return
		}
		rr.writeStatus(w, r, kind)

	default:
		common.WriteErrorResponse(w, "Unknown action "+req.Action, http.StatusBadRequest)
	}
}

// getJobStatus handles GET /jobs/{kind}
func (rr *Routes) getJobStatus(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	rr.writeStatus(w, r, kind)
}

// triggerJob handles POST /jobs/{kind}, the scheduler hook that asks this
// process to work on a job now. The run itself happens in the background.
func (rr *Routes) triggerJob(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	if kind == jobstatus.KindAll {
		common.WriteErrorResponse(w, service.ErrNotAJob.Error(), http.StatusBadRequest)
		return
	}
	if rr.launcher == nil {
		common.WriteErrorResponse(w, "Sync processing is disabled", http.StatusServiceUnavailable)
		return
	}

	triggered := rr.launcher.Trigger(kind)
	common.WriteJSONResponse(w, TriggerResponse{Kind: kind, Triggered: triggered}, http.StatusAccepted)
}

func (rr *Routes) writeStatus(w http.ResponseWriter, r *http.Request, kind jobstatus.Kind) {
	status, err := rr.service.CheckStatus(r.Context(), kind)
	if err != nil {
		rr.writeServiceError(w, "get", err)
		return
	}
	if status == nil {
		status = &jobstatus.JobStatus{}
	}
	common.WriteJSONResponse(w, status, http.StatusOK)
}

func (*Routes) writeServiceError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidConfig), errors.Is(err, service.ErrNotAJob):
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("Service action failed", "action", action, "error", err)
		common.WriteErrorResponse(w, "Failed to "+action+" sync", http.StatusInternalServerError)
	}
}

func kindParam(w http.ResponseWriter, r *http.Request) (jobstatus.Kind, bool) {
	kind, err := jobstatus.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return kind, true
}

// configDocument accepts the mapping config either inline or as a string
// holding the JSON document, the way the admin UI posts it.
func configDocument(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errors.New("config is required")
	}
	if raw[0] != '"' {
		return raw, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.New("config is not a valid JSON string")
	}
	return []byte(s), nil
}

// HealthRouter creates a router for health check endpoints
func HealthRouter(svc service.Service) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(svc))
	r.Get("/version", versionHandler)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, map[string]string{"status": "healthy"}, http.StatusOK)
}

func readinessHandler(svc service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CheckReadiness(r.Context()); err != nil {
			common.WriteErrorResponse(w, "Service not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		common.WriteJSONResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
	}
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}
