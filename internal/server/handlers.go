package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/graphscope/internal/errors"
	"github.com/rohankatakam/graphscope/internal/snapshot"
	"github.com/rohankatakam/graphscope/internal/subgraph"
)

// projectionRequest is the body shared by the projection routes.
// nodes and relations describe the client's current view; either may be absent.
type projectionRequest struct {
	Nodes       []subgraph.ID `json:"nodes"`
	Relations   []subgraph.ID `json:"relations"`
	DeleteNode  *subgraph.ID  `json:"delete_node"`
	ExpandNode  *subgraph.ID  `json:"expand_node"`
	LimitNumber *int          `json:"limit_number"`
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, "pong!")
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health == nil {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	if err := s.deps.Health.HealthCheck(r.Context()); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGraphData serves the pre-materialized snapshot bytes as stored
func (s *Server) handleGraphData(w http.ResponseWriter, r *http.Request) {
	if s.deps.Snapshots == nil {
		s.writeError(w, r, errors.NotFoundf("no graph snapshot configured"))
		return
	}
	data, err := s.deps.Snapshots.Read(r.Context(), snapshot.GraphKey)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleTableData(w http.ResponseWriter, r *http.Request) {
	if s.deps.Tables == nil {
		s.writeError(w, r, errors.NotFoundf("no table source configured"))
		return
	}
	catalog, err := s.deps.Tables.Catalog(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, catalog)
}

func (s *Server) handleRetrieveSubgraph(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	sg, err := s.deps.Engine.Select(r.Context(), req.Nodes, req.Relations)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, subgraph.Serialize(sg, s.deps.Key))
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	if req.DeleteNode == nil {
		s.writeError(w, r, errors.MalformedRequest("delete_node is required"))
		return
	}

	current, err := s.deps.Engine.Select(r.Context(), req.Nodes, req.Relations)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, subgraph.Serialize(subgraph.DeleteNode(current, *req.DeleteNode), s.deps.Key))
}

func (s *Server) handleExpandNode(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	if req.ExpandNode == nil {
		s.writeError(w, r, errors.MalformedRequest("expand_node is required"))
		return
	}
	limit, err := s.deps.Engine.ExpandLimit(req.LimitNumber)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	current, err := s.deps.Engine.Select(r.Context(), req.Nodes, req.Relations)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	expanded, err := s.deps.Engine.ExpandNode(r.Context(), current, *req.ExpandNode, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, subgraph.Serialize(expanded, s.deps.Key))
}

// decodeRequest reads a projection body. An empty body is an empty request.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (projectionRequest, bool) {
	var req projectionRequest
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && err != io.EOF {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": "request body too large",
			})
			return req, false
		}
		s.writeError(w, r, errors.MalformedRequestf("invalid request body: %v", err))
		return req, false
	}
	return req, true
}

// statusFor maps error kinds to HTTP status codes
func statusFor(err error) int {
	var typed *errors.Error
	if !errors.As(err, &typed) {
		return http.StatusInternalServerError
	}
	switch typed.Type {
	case errors.ErrorTypeMalformedRequest:
		return http.StatusBadRequest
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	entry := s.logger.WithFields(logrus.Fields{
		"request_id": requestIDFrom(r.Context()),
		"path":       r.URL.Path,
		"status":     status,
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Warn("Failed to write response")
	}
}
