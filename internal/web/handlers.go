package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/tabledef/internal/core"
	"github.com/JonMunkholm/tabledef/internal/filter"
	"github.com/JonMunkholm/tabledef/internal/logging"
	"github.com/JonMunkholm/tabledef/internal/rest"
	"github.com/go-chi/chi/v5"
)

// CriterionPrefix marks data query parameters that carry filter criteria.
const CriterionPrefix = "f."

// handleHealth reports liveness and store reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{
		"status": "ok",
		"tables": core.TableCount(),
	}
	if err := s.service.Ping(r.Context()); err != nil {
		logging.FromContext(r.Context()).Warn("health check failed", "error", err)
		status = http.StatusServiceUnavailable
		body["status"] = "unavailable"
	}
	writeJSONStatus(w, status, body)
}

// handleServices lists the registered services.
func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, rest.ServiceList{
		Servlet:  s.cfg.Tables.Servlet,
		Services: core.Names(),
	})
}

// handleInfo returns a service's table definition.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	def, err := s.service.TableInfo(chi.URLParam(r, "service"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, rest.FromDefinition(def))
}

// handleData returns a service's rows, narrowed by f.<column> criteria.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "service")

	def, err := s.service.TableInfo(name)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	rows, err := s.service.Data(r.Context(), name)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	criteria := parseCriteria(r)
	filtered, err := filter.Apply(def, criteria, rows)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if filtered == nil {
		filtered = [][]string{}
	}

	logging.WithFields(r.Context(), "service", name).Debug("table data",
		"rows", len(rows),
		"matched", len(filtered),
		"criteria", len(criteria),
	)
	writeJSON(w, filtered)
}

// handleUpdate applies a batch of row changes and answers with a JSON bool.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "service")

	var updates []rest.UpdateInfo
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err := dec.Decode(&updates); err != nil {
		err = fmt.Errorf("%w: %v", errInvalidBody, err)
		respondError(w, r, err, statusFor(err))
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	ok, err := s.service.Update(ctx, name, rest.ToChanges(updates))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, ok)
}

// parseCriteria collects f.<column> query parameters. Only the first value
// of a repeated parameter is used; empty criteria are dropped.
func parseCriteria(r *http.Request) map[string]string {
	criteria := make(map[string]string)
	for key, values := range r.URL.Query() {
		name, ok := strings.CutPrefix(key, CriterionPrefix)
		if !ok || name == "" || len(values) == 0 {
			continue
		}
		if v := strings.TrimSpace(values[0]); v != "" {
			criteria[name] = v
		}
	}
	return criteria
}
