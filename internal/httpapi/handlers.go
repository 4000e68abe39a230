// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/coriolis-labs/ensemble/ensemble/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func serviceIDParam(r *http.Request) service.ID {
	return service.ID(chi.URLParam(r, "id"))
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	ids, err := s.handle.RetrieveServiceIDs(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": ids})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	id := serviceIDParam(r)
	if err := s.handle.StartService(r.Context(), id); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": string(id), "status": "started"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	id := serviceIDParam(r)
	if err := s.handle.StopService(r.Context(), id); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": string(id), "status": "stopped"})
}

func (s *Server) handleStartAll(w http.ResponseWriter, r *http.Request) {
	if err := s.handle.StartAllServices(r.Context()); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (s *Server) handleStopAll(w http.ResponseWriter, r *http.Request) {
	if err := s.handle.StopAllServices(r.Context()); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := serviceIDParam(r)
	watcher, err := s.handle.StatusWatcherFor(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": string(id), "status": watcher.Get().String()})
}

// updateSettingsRequest maps JSON body keys to the service id they update.
// The value under each key stays an opaque json.RawMessage — it is handed
// to the target service's own Init as the next Settings() read sees it,
// never unmarshaled by this package into a concrete type.
type updateSettingsRequest map[service.ID]json.RawMessage

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	settings := make(map[service.ID]any, len(req))
	for id, raw := range req {
		settings[id] = raw
	}

	if err := s.handle.UpdateSettings(r.Context(), settings); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if err := s.handle.Shutdown(r.Context()); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "shutting down"})
}
