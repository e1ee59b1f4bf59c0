package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pipgrid/pkg/errors"
	"github.com/matzehuels/pipgrid/pkg/lattice"
	"github.com/matzehuels/pipgrid/pkg/observability"
	"github.com/matzehuels/pipgrid/pkg/pipeline"
)

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

// tokenResponse is a pipeline result plus its share link.
type tokenResponse struct {
	*pipeline.Result
	URL string `json:"url"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	resp := errorResponse{
		Code:      errors.GetCode(err),
		Message:   errors.UserMessage(err),
		RequestID: RequestIDFromContext(r.Context()),
	}
	if status >= http.StatusInternalServerError {
		observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
		s.logger.Error("request failed", "request_id", resp.RequestID, "err", err)
		if resp.Code == "" {
			resp.Code = errors.ErrCodeInternal
		}
		resp.Message = "internal error"
	}
	s.writeJSON(w, status, resp)
}

// decodeBody reads a JSON body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	opts := pipeline.Options{Geometry: s.cfg.Geometry(), Logger: s.logger}
	if v := r.URL.Query().Get("placements"); v != "" {
		placements, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "placements must be a boolean, got %q", v))
			return
		}
		opts.Placements = placements
	}

	res, err := s.runner.Decode(r.Context(), token, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenResponse{Result: res, URL: s.cfg.ShareURL(res.Token)})
}

func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if err := pipeline.ValidateGridDocument(doc); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req pipeline.GridDocument
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid grid"))
		return
	}
	res, err := s.runner.Encode(r.Context(), req.Grid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", s.cfg.ShareURL(res.Token))
	s.writeJSON(w, http.StatusCreated, tokenResponse{Result: res, URL: s.cfg.ShareURL(res.Token)})
}

// =============================================================================
// Lattice
// =============================================================================

type latticeFreeRequest struct {
	Target   lattice.Point  `json:"target"`
	Occupied []lattice.Cell `json:"occupied"`
	PipSize  float64        `json:"pip_size"`
}

type latticeFreeResponse struct {
	Cell  lattice.Cell  `json:"cell"`
	Point lattice.Point `json:"point"`
	Found bool          `json:"found"`
}

type latticePackRequest struct {
	Center   lattice.Point  `json:"center"`
	Count    int            `json:"count"`
	Occupied []lattice.Cell `json:"occupied"`
	PipSize  float64        `json:"pip_size"`
}

type latticePackResponse struct {
	Cells     []lattice.Cell  `json:"cells"`
	Points    []lattice.Point `json:"points"`
	Shortfall int             `json:"shortfall"`
}

// latticeFor returns the lattice for a request's pip size, defaulting to
// the configured board.
func (s *Server) latticeFor(pipSize float64) (lattice.Lattice, error) {
	if pipSize == 0 {
		pipSize = s.cfg.Board.PipSize
	}
	if pipSize <= 0 {
		return lattice.Lattice{}, errors.New(errors.ErrCodeInvalidInput, "pip_size must be positive, got %v", pipSize)
	}
	return lattice.New(pipSize), nil
}

func (s *Server) handleLatticeFree(w http.ResponseWriter, r *http.Request) {
	var req latticeFreeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.latticeFor(req.PipSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cell, found := l.FindFree(req.Target, lattice.NewOccupancy(req.Occupied...))
	s.writeJSON(w, http.StatusOK, latticeFreeResponse{Cell: cell, Point: l.Point(cell), Found: found})
}

func (s *Server) handleLatticePack(w http.ResponseWriter, r *http.Request) {
	var req latticePackRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Count < 0 || req.Count > lattice.DefaultMaxVisits {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "count must be between 0 and %d, got %d", lattice.DefaultMaxVisits, req.Count))
		return
	}
	l, err := s.latticeFor(req.PipSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cells := l.PackAround(req.Center, req.Count, lattice.NewOccupancy(req.Occupied...))
	resp := latticePackResponse{
		Cells:     make([]lattice.Cell, 0, len(cells)),
		Points:    make([]lattice.Point, 0, len(cells)),
		Shortfall: req.Count - len(cells),
	}
	for _, c := range cells {
		resp.Cells = append(resp.Cells, c)
		resp.Points = append(resp.Points, l.Point(c))
	}
	s.writeJSON(w, http.StatusOK, resp)
}
