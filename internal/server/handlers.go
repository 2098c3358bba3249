// internal/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"talent-matching/internal/common/errors"
	"talent-matching/internal/matching/engine"
	"talent-matching/internal/models"
	"talent-matching/internal/store"
)

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.engine.Recommend(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := s.engine.Stats(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"summary": summary,
		"cache":   s.engine.CacheStats(),
	})
}

// handleInvalidate is the profile-change notification hook: the owning entity
// service posts here whenever a candidate or job is created, updated, or
// deleted.
func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	entityID := mux.Vars(r)["entityId"]
	if entityID == "" {
		s.writeError(w, r, errors.NewInvalidQueryError("entityId", "entity id is required"))
		return
	}

	dropped := s.engine.InvalidateEntity(r.Context(), entityID)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"entityId": entityID,
		"dropped":  dropped,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	checks := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			status = "degraded"
			checks[name] = err.Error()
		} else {
			checks[name] = "ok"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC(),
	})
}

// parseQuery builds an engine query from request parameters. Page and limit
// defaults are left to the engine, which also enforces the server-side
// bounds.
func parseQuery(r *http.Request) (engine.Query, error) {
	params := r.URL.Query()

	kind, err := models.ParseEntityKind(params.Get("type"))
	if err != nil {
		return engine.Query{}, errors.NewInvalidQueryError("type", err.Error())
	}
	filter, err := models.ParseFilterKind(params.Get("filter"))
	if err != nil {
		return engine.Query{}, errors.NewInvalidQueryError("filter", err.Error())
	}

	q := engine.Query{
		TargetID:   params.Get("id"),
		TargetKind: kind,
		Filter:     filter,
		Page:       1,
	}

	if v := params.Get("page"); v != "" {
		q.Page, err = strconv.Atoi(v)
		if err != nil {
			return engine.Query{}, errors.NewInvalidQueryError("page", "must be an integer")
		}
	}
	if v := params.Get("limit"); v != "" {
		q.PageSize, err = strconv.Atoi(v)
		if err != nil {
			return engine.Query{}, errors.NewInvalidQueryError("limit", "must be an integer")
		}
	}
	if v := params.Get("minScore"); v != "" {
		q.MinScore, err = strconv.Atoi(v)
		if err != nil {
			return engine.Query{}, errors.NewInvalidQueryError("minScore", "must be an integer")
		}
	}
	if v := params.Get("fresh"); v != "" {
		q.Fresh, err = strconv.ParseBool(v)
		if err != nil {
			return engine.Query{}, errors.NewInvalidQueryError("fresh", "must be a boolean")
		}
	}

	criteria := store.Criteria{
		Location: strings.TrimSpace(params.Get("location")),
	}
	if v := params.Get("skills"); v != "" {
		for _, skill := range strings.Split(v, ",") {
			if skill = strings.TrimSpace(skill); skill != "" {
				criteria.Skills = append(criteria.Skills, skill)
			}
		}
	}
	if v := params.Get("remote"); v != "" {
		criteria.RemoteOnly, err = strconv.ParseBool(v)
		if err != nil {
			return engine.Query{}, errors.NewInvalidQueryError("remote", "must be a boolean")
		}
	}
	q.Criteria = criteria

	return q, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encoding failed", map[string]interface{}{
			"error": err,
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)

	s.logger.WithError(err).Warn("request failed", map[string]interface{}{
		"requestId": RequestIDFromContext(r.Context()),
		"path":      r.URL.Path,
		"status":    status,
	})

	s.writeJSON(w, status, map[string]interface{}{"error": errors.AsStandard(err)})
}
