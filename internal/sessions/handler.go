package sessions

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/JaimeStill/voidsort/internal/builds"
	"github.com/JaimeStill/voidsort/internal/documents"
	"github.com/JaimeStill/voidsort/internal/preview"
	"github.com/JaimeStill/voidsort/pkg/auth"
	"github.com/JaimeStill/voidsort/pkg/handlers"
	"github.com/JaimeStill/voidsort/pkg/routes"
)

const (
	msgpackContentType = "application/msgpack"
	maxCommandBody     = 64 << 10
)

// BuildIDHeader carries the id of the build recorded by a finish request.
const BuildIDHeader = "X-Build-ID"

// Handler provides HTTP endpoints for review sessions.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler. maxUploadSize bounds the multipart body of
// session creation.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "sessions"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for session endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "GET", Pattern: "/{id}/current", Handler: h.Current},
			{Method: "PUT", Pattern: "/{id}/current", Handler: h.Classify},
			{Method: "GET", Pattern: "/{id}/current/preview", Handler: h.Preview},
			{Method: "POST", Pattern: "/{id}/next", Handler: h.Next},
			{Method: "POST", Pattern: "/{id}/prev", Handler: h.Prev},
			{Method: "GET", Pattern: "/{id}/plan", Handler: h.Plan},
			{Method: "POST", Pattern: "/{id}/finish", Handler: h.Finish},
		},
	}
}

// Create starts a session from a multipart form carrying an "address" field
// and a "file" archive.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, err)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	address := r.FormValue("address")
	if strings.TrimSpace(address) == "" {
		handlers.RespondError(w, h.logger, http.StatusUnprocessableEntity, ErrAddressRequired)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, documents.ErrNotArchive)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".zip") {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, documents.ErrNotArchive)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	sum, err := h.sys.Create(r.Context(), CreateCommand{Address: address, Data: data})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, sum)
}

// List returns summaries of all active sessions.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.List(r.Context()))
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	sum, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sum)
}

// Delete abandons a session without producing output.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	v, err := h.sys.Current(r.Context(), id)
	h.respondView(w, v, err)
}

// Classify sets the classification of the current document.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var cmd ClassifyCommand
	if err := json.NewDecoder(io.LimitReader(r.Body, maxCommandBody)).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	v, err := h.sys.Classify(r.Context(), id, cmd)
	h.respondView(w, v, err)
}

// Next advances the cursor. An optional body classifies the current document
// first.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	cmd, err := decodeOptional(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	v, err := h.sys.Next(r.Context(), id, cmd)
	h.respondView(w, v, err)
}

func (h *Handler) Prev(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	v, err := h.sys.Prev(r.Context(), id)
	h.respondView(w, v, err)
}

// Preview returns the current document's first page as a PNG image.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	data, err := h.sys.Preview(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", preview.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Plan returns the output layout the session would produce. Clients sending
// Accept: application/msgpack receive a MessagePack body.
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	plan, err := h.sys.Plan(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if !acceptsMsgpack(r) {
		handlers.RespondJSON(w, http.StatusOK, plan)
		return
	}

	data, err := msgpack.Marshal(plan)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", msgpackContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Finish finalizes the session and streams the resulting archive. An optional
// body classifies the last document first.
func (h *Handler) Finish(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	cmd, err := decodeOptional(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	artifact, err := h.sys.Finish(r.Context(), id, FinishCommand{
		Classification: cmd,
		CreatedBy:      auth.Subject(r.Context()),
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondAttachment(w, h.logger, handlers.Attachment{
		Filename:    artifact.Build.Filename,
		ContentType: builds.ContentType,
		Size:        int64(len(artifact.Data)),
		Header:      http.Header{BuildIDHeader: {artifact.Build.ID.String()}},
	}, bytes.NewReader(artifact.Data))
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondView(w http.ResponseWriter, v *View, err error) {
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, v)
}

func decodeOptional(r *http.Request) (*ClassifyCommand, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCommandBody))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var cmd ClassifyCommand
	if err := json.Unmarshal(body, &cmd); err != nil {
		return nil, err
	}
	return &cmd, nil
}

func acceptsMsgpack(r *http.Request) bool {
	for _, v := range r.Header.Values("Accept") {
		for part := range strings.SplitSeq(v, ",") {
			media, _, _ := strings.Cut(strings.TrimSpace(part), ";")
			switch strings.ToLower(media) {
			case msgpackContentType, "application/x-msgpack", "application/vnd.msgpack":
				return true
			}
		}
	}
	return false
}
