package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"spot_picker/internal/app"
	"spot_picker/internal/domain"
)

const defaultMaxUpload = 32 << 20

type Handlers struct {
	Sessions *app.Sessions
	Places   *app.PlaceResolver
	Spots    domain.SpotsAPI
	// Journal is nil when JOURNAL_DRIVER=none.
	Journal   domain.SubmissionJournal
	MaxUpload int64
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// stateResponse is the session snapshot plus whether the last event changed it.
type stateResponse struct {
	app.Snapshot
	Applied bool `json:"applied"`
}

type submitResponse struct {
	Result domain.SubmitResult `json:"result"`
	State  app.Snapshot        `json:"state"`
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, c *app.Controller)

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Post("/v1/sessions", h.createSession)
	s.mux.Route("/v1/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.session(h.getSession))
		r.Delete("/", h.deleteSession)
		r.Post("/search", h.session(h.search))
		r.Post("/place", h.session(h.selectPlace))
		r.Post("/map-click", h.session(h.mapClick))
		r.Put("/description", h.session(h.setDescription))
		r.Post("/files", h.session(h.attachFiles))
		r.Delete("/files/{index}", h.session(h.removeFile))
		r.Post("/photo/open", h.session(h.openPhoto))
		r.Post("/photo/next", h.session(h.nextPhoto))
		r.Post("/photo/prev", h.session(h.prevPhoto))
		r.Post("/photo/close", h.session(h.closePhoto))
		r.Post("/submit", h.session(h.submit))
	})

	s.mux.Post("/v1/spots/search", h.searchSpots)
	s.mux.Post("/v1/hikingspots/search", h.searchHikingSpots)
	s.mux.Get("/v1/spots", h.listSpots)
	s.mux.Get("/v1/submissions", h.listSubmissions)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps workflow errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	var re *domain.RemoteError
	switch {
	case domain.IsValidation(err):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, domain.ErrSubmissionInFlight):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.As(err, &re):
		writeProblem(w, http.StatusBadGateway, "Upstream Error", re.Message)
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusBadGateway, "Upstream Error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return false
	}
	return true
}

func (h *Handlers) session(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := h.Sessions.Get(chi.URLParam(r, "id"))
		if !ok {
			writeProblem(w, http.StatusNotFound, "Not Found", "session not found")
			return
		}
		next(w, r, c)
	}
}

// ---- sessions ----

func (h *Handlers) createSession(w http.ResponseWriter, r *http.Request) {
	id, c := h.Sessions.Create()
	w.Header().Set("Location", "/v1/sessions/"+id)
	writeJSON(w, http.StatusCreated, struct {
		ID    string       `json:"id"`
		State app.Snapshot `json:"state"`
	}{id, c.Snapshot()})
}

func (h *Handlers) getSession(w http.ResponseWriter, r *http.Request, c *app.Controller) {
	etag, body := calcETagAndBody(c.Snapshot())
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write session body")
	}
}

func (h *Handlers) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.Sessions.Delete(chi.URLParam(r, "id")) {
		writeProblem(w, http.StatusNotFound, "Not Found", "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- place selection ----

func (h *Handlers) search(w http.ResponseWriter, r *http.Request, _ *app.Controller) {
	var in struct {
		Query string `json:"query"`
	}
	if !decode(w, r, &in) {
		return
	}
	cands, err := h.Places.Search(r.Context(), in.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	if cands == nil {
		cands = []domain.PlaceCandidate{}
	}
	writeJSON(w, http.StatusOK, cands)
}

func (h *Handlers) selectPlace(w http.ResponseWriter, r *http.Request, c *app.Controller) {
	var in struct {
		PlaceID string `json:"placeId"`
	}
	if !decode(w, r, &in) {
		return
	}
	snap, applied := c.SelectPlace(r.Context(), in.PlaceID)
	writeJSON(w, http.StatusOK, stateResponse{snap, applied})
}

func (h *Handlers) mapClick(w http.ResponseWriter, r *http.Request, c *app.Controller) {
	var in domain.MapClick
	if !decode(w, r, &in) {
		return
	}
	snap, applied, err := c.MapClick(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{snap, applied})
}

// ---- draft ----

func (h *Handlers) setDescription(w http.ResponseWriter, r *http.Request, c *app.Controller) {
	var in struct {
		Description string `json:"description"`
	}
	if !decode(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{c.SetDescription(in.Description), true})
}

func (h *Handlers) attachFiles(w http.ResponseWriter, r *http.Request, c *app.Controller) {
	limit := h.MaxUpload
	if limit <= 0 {
		limit = defaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Upload", "expected multipart form with files parts")
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid Upload", "no files attached")
		return
	}

	files := make([]domain.Attachment, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Upload", "cannot read "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Upload", "cannot read "+fh.Filename)
			return
		}
		ct := fh.Header.Get("Content-Type")
		if ct == "" || ct == "application/octet-stream" {
			ct = http.DetectContentType(data)
		}
		files = append(files, domain.Attachment{Name: fh.Filename, ContentType: ct, Data: data})
	}
	writeJSON(w, http.StatusOK, stateResponse{c.AttachFiles(files...), true})
}

func (h *Handlers) removeFile(w http.ResponseWriter, r *http.Request, c *app.Controller) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Index", "index must be a number")
		return
	}
	snap, err := c.RemoveFile(i)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{snap, true})
}

// ---- photo viewer ----

func (h *Handlers) openPhoto(w http.ResponseWriter, r *http.Request, c *app.Controller) {
	var in struct {
		Index int `json:"index"`
	}
	if !decode(w, r, &in) {
		return
	}
	photoResult(w)(c.OpenPhoto(in.Index))
}

func (h *Handlers) nextPhoto(w http.ResponseWriter, r *http.Request, c *app.Controller) {
	photoResult(w)(c.NextPhoto())
}

func (h *Handlers) prevPhoto(w http.ResponseWriter, r *http.Request, c *app.Controller) {
	photoResult(w)(c.PrevPhoto())
}

func (h *Handlers) closePhoto(w http.ResponseWriter, r *http.Request, c *app.Controller) {
	writeJSON(w, http.StatusOK, stateResponse{c.ClosePhoto(), true})
}

func photoResult(w http.ResponseWriter) func(app.Snapshot, error) {
	return func(snap app.Snapshot, err error) {
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stateResponse{snap, true})
	}
}

// ---- submission ----

func (h *Handlers) submit(w http.ResponseWriter, r *http.Request, c *app.Controller) {
	auth := domain.AuthContext{Token: app.BearerToken(r.Header.Get("Authorization"))}
	res, err := c.Submit(r.Context(), auth)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{Result: res, State: c.Snapshot()})
}

// ---- backend passthrough ----

func (h *Handlers) searchSpots(w http.ResponseWriter, r *http.Request) {
	var q domain.SearchRequest
	if !decode(w, r, &q) {
		return
	}
	h.passthrough(w)(h.Spots.SearchSpots(r.Context(), q))
}

func (h *Handlers) searchHikingSpots(w http.ResponseWriter, r *http.Request) {
	var q domain.SearchRequest
	if !decode(w, r, &q) {
		return
	}
	h.passthrough(w)(h.Spots.SearchHikingSpots(r.Context(), q))
}

func (h *Handlers) listSpots(w http.ResponseWriter, r *http.Request) {
	h.passthrough(w)(h.Spots.ListSpots(r.Context()))
}

func (h *Handlers) passthrough(w http.ResponseWriter) func(domain.SearchResult, error) {
	return func(body domain.SearchResult, err error) {
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			log.Error().Err(err).Msg("failed to write passthrough body")
		}
	}
}

// ---- journal ----

func (h *Handlers) listSubmissions(w http.ResponseWriter, r *http.Request) {
	if h.Journal == nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "submission journal is disabled")
		return
	}
	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}
	entries, err := h.Journal.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("journal read failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "journal unavailable")
		return
	}
	if entries == nil {
		entries = []domain.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
