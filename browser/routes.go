package browser

import (
	"encoding/json"
	"io"
	"net/http"
)

const contentTypeJSON = "application/json; charset=utf-8"

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteFunc("GET "+RouteWebSocket, ChainMiddleware(s.hub.HandleConnection, s.LoggingMiddleware))

	// Proximity API
	s.RegisterRouteHandler("OPTIONS "+RouteAPI, ChainMiddleware(notFound, s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteProximityStatus, ChainMiddleware(s.ProximityStatusHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteProximityCheck, ChainMiddleware(s.ProximityCheckHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteProximityClear, ChainMiddleware(s.ProximityClearHandler(), s.APIMiddleware()...))
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"pages":  s.hub.Connected(),
		})
	}
}

func (s *Server) ProximityStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.engine.Status())
	}
}

func (s *Server) ProximityCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ran := s.engine.Check(r.Context())
		writeJSON(w, http.StatusOK, map[string]bool{"ran": ran})
	}
}

// ClearRequest re-enables one point of interest, or all of them when ID is empty
type ClearRequest struct {
	ID string `json:"id,omitempty"`
}

func (s *Server) ProximityClearHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClearRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			writeJSONError(w, "invalid_request", "body must be a JSON object", http.StatusBadRequest)
			return
		}
		if req.ID == "" {
			s.engine.ClearAll()
		} else {
			s.engine.ClearNotification(req.ID)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	http.NotFound(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}
