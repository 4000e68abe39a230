// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coriolis-labs/ensemble/ensemble/service"
	"github.com/coriolis-labs/ensemble/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The control surface is same-origin-or-CORS-gated already; the
	// upgrader's own origin check would just duplicate that.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleStatusStream upgrades to a websocket connection, sends the target
// service's current status, and then sends one JSON message each time the
// service reaches the status it is waiting for, using the status watcher's
// own WaitFor as the wakeup instead of polling on a ticker. After Stopped
// it waits for Starting; after Starting or Ready it waits for Stopped. A
// Starting-to-Ready transition is therefore not sent, and a status that is
// replaced before the watcher is read again is not seen.
func (s *Server) handleStatusStream(w http.ResponseWriter, r *http.Request) {
	id := serviceIDParam(r)
	watcher, err := s.handle.StatusWatcherFor(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.CtxErr(r.Context(), err).Str("service", string(id)).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	cur := watcher.Get()
	if err := conn.WriteJSON(statusEvent(id, cur)); err != nil {
		return
	}

	for {
		next, err := watcher.WaitFor(ctx, oppositeOf(cur), 0)
		if err != nil {
			return
		}
		cur = next
		if err := conn.WriteJSON(statusEvent(id, cur)); err != nil {
			return
		}
	}
}

func statusEvent(id service.ID, st service.Status) map[string]string {
	return map[string]string{"id": string(id), "status": st.String(), "ts": time.Now().UTC().Format(time.RFC3339)}
}

// oppositeOf picks a status WaitFor hasn't already reached, so the first
// wait call always blocks for an actual future transition rather than
// returning immediately against the status we just read.
func oppositeOf(cur service.Status) service.Status {
	if cur == service.Stopped {
		return service.Starting
	}
	return service.Stopped
}
