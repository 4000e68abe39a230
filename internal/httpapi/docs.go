// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package httpapi

// swaggerDoc is a hand-written OpenAPI description of the control surface,
// served at /swagger/doc.json for httpSwagger.Handler. The teacher
// generates its swagger JSON with swaggo/swag's codegen step over struct
// annotations; this repo keeps the same serving mechanism
// (swaggo/http-swagger/v2) without running that codegen, so the document
// is maintained by hand here instead.
const swaggerDoc = `{
  "swagger": "2.0",
  "info": {
    "title": "Ensemble control API",
    "description": "HTTP control surface over an ensemble.ControlHandle",
    "version": "1.0"
  },
  "basePath": "/control",
  "paths": {
    "/services": {
      "get": { "summary": "List registered service ids", "responses": { "200": { "description": "OK" } } }
    },
    "/services/{id}/start": {
      "post": { "summary": "Start one service", "responses": { "200": { "description": "OK" }, "400": { "description": "start failed" } } }
    },
    "/services/{id}/stop": {
      "post": { "summary": "Stop one service", "responses": { "200": { "description": "OK" }, "400": { "description": "stop failed" } } }
    },
    "/services/{id}/status": {
      "get": { "summary": "Read one service's current status", "responses": { "200": { "description": "OK" }, "404": { "description": "unknown service" } } }
    },
    "/services/start-all": {
      "post": { "summary": "Start every registered service", "responses": { "200": { "description": "OK" } } }
    },
    "/services/stop-all": {
      "post": { "summary": "Stop every registered service", "responses": { "200": { "description": "OK" } } }
    },
    "/settings": {
      "put": { "summary": "Fan out settings updates keyed by service id", "responses": { "200": { "description": "OK" } } }
    },
    "/shutdown": {
      "post": { "summary": "Drain every service and terminate the supervisor loop", "responses": { "200": { "description": "OK" } } }
    },
    "/ws/status/{id}": {
      "get": { "summary": "Stream status transitions for one service over a websocket", "responses": { "101": { "description": "Switching Protocols" } } }
    }
  }
}`
