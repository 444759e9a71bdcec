package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/minbump/pkg/buildinfo"
	"github.com/matzehuels/minbump/pkg/errors"
	"github.com/matzehuels/minbump/pkg/lockfile"
	"github.com/matzehuels/minbump/pkg/render"
	"github.com/matzehuels/minbump/pkg/resolve"
)

type updateRequest struct {
	Dependency   string   `json:"dependency"`
	Required     string   `json:"required"`
	Roots        []string `json:"roots"`
	ExpandRanges bool     `json:"expand_ranges"`
}

type updateResult struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Outcome string `json:"outcome,omitempty"`
}

type updateResponse struct {
	ID      string         `json:"id"`
	Results []updateResult `json:"results"`
}

type closureResponse struct {
	Root    resolve.Package   `json:"root"`
	Members []resolve.Package `json:"members"`
	Edges   []resolve.Edge    `json:"edges"`
}

type versionsResponse struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
}

type statsResponse struct {
	Session resolve.Stats   `json:"session"`
	Events  MetricsSnapshot `json:"events"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code,omitempty"`
	Message string      `json:"message"`
	Hint    string      `json:"hint,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	})
}

func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	roots, err := req.validate()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id := uuid.NewString()
	logger := s.logger.With("id", id)
	logger.Info("resolving updates", "dependency", req.Dependency, "required", req.Required, "roots", len(roots))

	results, err := s.session.ListUpdate(r.Context(), req.ExpandRanges, roots, req.Dependency, req.Required)
	if err != nil {
		logger.Error("update failed", "err", err)
		s.writeError(w, r, registryError(r.Context(), err))
		return
	}

	resp := updateResponse{ID: id, Results: make([]updateResult, len(results))}
	for i, res := range results {
		out := updateResult{Name: res.Name}
		if res.Outcome.NoFavourable {
			out.Outcome = res.Outcome.String()
		} else {
			out.Version = res.Outcome.Version
		}
		resp.Results[i] = out
	}
	writeJSON(w, http.StatusOK, resp)
}

func (req updateRequest) validate() ([]resolve.Package, error) {
	if err := errors.ValidatePackageName(req.Dependency); err != nil {
		return nil, err
	}
	if err := errors.ValidateVersion(req.Required); err != nil {
		return nil, err
	}
	roots := make([]resolve.Package, 0, len(req.Roots))
	for _, ref := range req.Roots {
		name, ver, err := lockfile.ParseRef(ref)
		if err != nil {
			return nil, err
		}
		if err := errors.ValidatePackageName(name); err != nil {
			return nil, err
		}
		if err := errors.ValidateSpecifier(ver); err != nil {
			return nil, err
		}
		roots = append(roots, resolve.Package{Name: name, Version: ver})
	}
	return roots, nil
}

func (s *Server) handleClosure(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "name")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ver, err := pathParam(r, "version")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidatePackageName(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidateSpecifier(ver); err != nil {
		s.writeError(w, r, err)
		return
	}

	expand := false
	if v := r.URL.Query().Get("expand"); v != "" {
		if expand, err = strconv.ParseBool(v); err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid expand value %q", v))
			return
		}
	}

	c, err := s.session.Closure(r.Context(), name, ver, expand)
	if err != nil {
		s.writeError(w, r, registryError(r.Context(), err))
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		edges := c.Edges
		if edges == nil {
			edges = []resolve.Edge{}
		}
		writeJSON(w, http.StatusOK, closureResponse{Root: c.Root, Members: c.Members, Edges: edges})
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(render.ToDOT(c, render.Options{Title: c.Root.String()})))
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (want json or dot)", format))
	}
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "name")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidatePackageName(name); err != nil {
		s.writeError(w, r, err)
		return
	}

	versions, err := s.session.Versions(r.Context(), name)
	if err != nil {
		s.writeError(w, r, registryError(r.Context(), err))
		return
	}
	if versions == nil {
		versions = []string{}
	}
	writeJSON(w, http.StatusOK, versionsResponse{Name: name, Versions: versions})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		Session: s.session.Stats(),
		Events:  s.metrics.Snapshot(),
	})
}

// pathParam returns an unescaped chi URL parameter. chi matches on the raw
// path, so "@babel%2Fcore" arrives still escaped.
func pathParam(r *http.Request, key string) (string, error) {
	v, err := url.PathUnescape(chi.URLParam(r, key))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid %s", key)
	}
	return v, nil
}

// registryError classifies a resolver failure for the client.
func registryError(ctx context.Context, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "registry request timed out")
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "registry request failed")
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    errors.GetCode(err),
		Message: errors.UserMessage(err),
		Hint:    errors.Hint(err),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
