package sessions_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/JaimeStill/voidsort/internal/archive"
	"github.com/JaimeStill/voidsort/internal/builds"
	"github.com/JaimeStill/voidsort/internal/classifications"
	"github.com/JaimeStill/voidsort/internal/documents"
	"github.com/JaimeStill/voidsort/internal/sessions"
	"github.com/JaimeStill/voidsort/pkg/auth"
	"github.com/JaimeStill/voidsort/pkg/lifecycle"
)

type mockSystem struct {
	createFn   func(ctx context.Context, cmd sessions.CreateCommand) (*sessions.Summary, error)
	findFn     func(ctx context.Context, id uuid.UUID) (*sessions.Summary, error)
	deleteFn   func(ctx context.Context, id uuid.UUID) error
	currentFn  func(ctx context.Context, id uuid.UUID) (*sessions.View, error)
	classifyFn func(ctx context.Context, id uuid.UUID, cmd sessions.ClassifyCommand) (*sessions.View, error)
	nextFn     func(ctx context.Context, id uuid.UUID, cmd *sessions.ClassifyCommand) (*sessions.View, error)
	prevFn     func(ctx context.Context, id uuid.UUID) (*sessions.View, error)
	previewFn  func(ctx context.Context, id uuid.UUID) ([]byte, error)
	planFn     func(ctx context.Context, id uuid.UUID) (*sessions.PlanView, error)
	finishFn   func(ctx context.Context, id uuid.UUID, cmd sessions.FinishCommand) (*builds.Artifact, error)
}

func (m *mockSystem) Handler(maxUploadSize int64) *sessions.Handler {
	return sessions.NewHandler(m, discard(), maxUploadSize)
}

func (m *mockSystem) Start(*lifecycle.Coordinator) error { return nil }

func (m *mockSystem) Create(ctx context.Context, cmd sessions.CreateCommand) (*sessions.Summary, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) List(context.Context) []sessions.Summary { return nil }

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*sessions.Summary, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockSystem) Current(ctx context.Context, id uuid.UUID) (*sessions.View, error) {
	return m.currentFn(ctx, id)
}

func (m *mockSystem) Classify(ctx context.Context, id uuid.UUID, cmd sessions.ClassifyCommand) (*sessions.View, error) {
	return m.classifyFn(ctx, id, cmd)
}

func (m *mockSystem) Next(ctx context.Context, id uuid.UUID, cmd *sessions.ClassifyCommand) (*sessions.View, error) {
	return m.nextFn(ctx, id, cmd)
}

func (m *mockSystem) Prev(ctx context.Context, id uuid.UUID) (*sessions.View, error) {
	return m.prevFn(ctx, id)
}

func (m *mockSystem) Preview(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return m.previewFn(ctx, id)
}

func (m *mockSystem) Plan(ctx context.Context, id uuid.UUID) (*sessions.PlanView, error) {
	return m.planFn(ctx, id)
}

func (m *mockSystem) Finish(ctx context.Context, id uuid.UUID, cmd sessions.FinishCommand) (*builds.Artifact, error) {
	return m.finishFn(ctx, id, cmd)
}

func (m *mockSystem) Sweep() int { return 0 }

func setupMux(h *sessions.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

var sessionID = uuid.MustParse("0b7f5c3e-2a91-4c4d-8f0e-6a1d9e2b7c44")

func multipartBody(t *testing.T, address, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if address != "" {
		if err := mw.WriteField("address", address); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHandlerCreate(t *testing.T) {
	var captured sessions.CreateCommand
	sys := &mockSystem{
		createFn: func(_ context.Context, cmd sessions.CreateCommand) (*sessions.Summary, error) {
			captured = cmd
			return &sessions.Summary{ID: sessionID, Address: "221B BAKER ST", Total: 2}, nil
		},
	}
	mux := setupMux(sys.Handler(1 << 20))

	body, ct := multipartBody(t, "221b baker st", "Scans.ZIP", []byte("PK-data"))
	req := httptest.NewRequest("POST", "/sessions", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if captured.Address != "221b baker st" || string(captured.Data) != "PK-data" {
		t.Errorf("captured = %+v", captured)
	}

	var sum sessions.Summary
	if err := json.NewDecoder(rec.Body).Decode(&sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.ID != sessionID {
		t.Errorf("id = %s", sum.ID)
	}
}

func TestHandlerCreateRejects(t *testing.T) {
	sys := &mockSystem{
		createFn: func(context.Context, sessions.CreateCommand) (*sessions.Summary, error) {
			t.Fatal("system must not be called")
			return nil, nil
		},
	}

	tests := []struct {
		name     string
		address  string
		filename string
		want     int
	}{
		{"missing address", "", "scans.zip", http.StatusUnprocessableEntity},
		{"missing file", "221B BAKER ST", "", http.StatusBadRequest},
		{"wrong extension", "221B BAKER ST", "scans.rar", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := setupMux(sys.Handler(1 << 20))
			body, ct := multipartBody(t, tt.address, tt.filename, []byte("PK"))
			req := httptest.NewRequest("POST", "/sessions", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerCreateTooLarge(t *testing.T) {
	sys := &mockSystem{}
	mux := setupMux(sys.Handler(64))

	body, ct := multipartBody(t, "221B BAKER ST", "scans.zip", bytes.Repeat([]byte("x"), 4096))
	req := httptest.NewRequest("POST", "/sessions", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestHandlerClassify(t *testing.T) {
	var captured sessions.ClassifyCommand
	sys := &mockSystem{
		classifyFn: func(_ context.Context, id uuid.UUID, cmd sessions.ClassifyCommand) (*sessions.View, error) {
			captured = cmd
			if cmd.Kind == "WORK_ORDER" && cmd.Description == "" {
				return nil, classifications.ErrDescriptionRequired
			}
			return &sessions.View{Session: sessions.Summary{ID: id}}, nil
		},
	}
	mux := setupMux(sys.Handler(1 << 20))

	tests := []struct {
		name string
		body string
		want int
	}{
		{"valid", `{"kind":"MTW"}`, http.StatusOK},
		{"missing description", `{"kind":"WORK_ORDER"}`, http.StatusUnprocessableEntity},
		{"malformed", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("PUT", "/sessions/"+sessionID.String()+"/current", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if captured.Kind != "WORK_ORDER" {
		t.Errorf("last kind = %q", captured.Kind)
	}
}

func TestHandlerNextOptionalBody(t *testing.T) {
	var got []*sessions.ClassifyCommand
	sys := &mockSystem{
		nextFn: func(_ context.Context, id uuid.UUID, cmd *sessions.ClassifyCommand) (*sessions.View, error) {
			got = append(got, cmd)
			return &sessions.View{Session: sessions.Summary{ID: id, Index: 1}}, nil
		},
	}
	mux := setupMux(sys.Handler(1 << 20))

	for _, body := range []string{"", `{"kind":"SKIP"}`} {
		req := httptest.NewRequest("POST", "/sessions/"+sessionID.String()+"/next", strings.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	}

	if len(got) != 2 || got[0] != nil || got[1] == nil || got[1].Kind != "SKIP" {
		t.Errorf("commands = %+v", got)
	}
}

func TestHandlerInvalidID(t *testing.T) {
	mux := setupMux((&mockSystem{}).Handler(1 << 20))

	req := httptest.NewRequest("GET", "/sessions/not-a-uuid/current", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerNotFound(t *testing.T) {
	sys := &mockSystem{
		findFn: func(context.Context, uuid.UUID) (*sessions.Summary, error) {
			return nil, sessions.ErrNotFound
		},
		deleteFn: func(context.Context, uuid.UUID) error {
			return sessions.ErrNotFound
		},
	}
	mux := setupMux(sys.Handler(1 << 20))

	for _, method := range []string{"GET", "DELETE"} {
		req := httptest.NewRequest(method, "/sessions/"+sessionID.String(), nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", method, rec.Code)
		}
	}
}

func TestHandlerPreview(t *testing.T) {
	sys := &mockSystem{
		previewFn: func(context.Context, uuid.UUID) ([]byte, error) {
			return []byte("\x89PNG"), nil
		},
	}
	mux := setupMux(sys.Handler(1 << 20))

	req := httptest.NewRequest("GET", "/sessions/"+sessionID.String()+"/current/preview", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
}

func TestHandlerPlanNegotiation(t *testing.T) {
	plan := &sessions.PlanView{
		Plan: archive.Plan{
			Address:  "221B BAKER ST",
			Filename: "221B BAKER ST - VOID RENAMED.zip",
			Entries: []archive.Entry{
				{Source: "scan1.pdf", Kind: classifications.KindChecklist, Folder: "Inspection Checklist", Name: "221B BAKER ST - VOID INSPECTION CHECKLIST.pdf"},
			},
		},
		Tree: []archive.Folder{{Name: "Inspection Checklist", Files: []string{"221B BAKER ST - VOID INSPECTION CHECKLIST.pdf"}}},
	}
	sys := &mockSystem{
		planFn: func(context.Context, uuid.UUID) (*sessions.PlanView, error) { return plan, nil },
	}
	mux := setupMux(sys.Handler(1 << 20))

	t.Run("json", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/sessions/"+sessionID.String()+"/plan", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		var got sessions.PlanView
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Filename != plan.Filename || len(got.Tree) != 1 {
			t.Errorf("plan = %+v", got)
		}
	})

	t.Run("msgpack", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/sessions/"+sessionID.String()+"/plan", nil)
		req.Header.Set("Accept", "application/json;q=0.5, application/msgpack")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if ct := rec.Header().Get("Content-Type"); ct != "application/msgpack" {
			t.Fatalf("content type = %q", ct)
		}

		var got sessions.PlanView
		if err := msgpack.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(got.Entries) != 1 || got.Entries[0].Folder != "Inspection Checklist" {
			t.Errorf("entries = %+v", got.Entries)
		}
	})
}

func TestHandlerFinish(t *testing.T) {
	buildID := uuid.New()
	var captured sessions.FinishCommand

	sys := &mockSystem{
		finishFn: func(_ context.Context, _ uuid.UUID, cmd sessions.FinishCommand) (*builds.Artifact, error) {
			captured = cmd
			return &builds.Artifact{
				Build: &builds.Build{ID: buildID, Filename: "221B BAKER ST - VOID RENAMED.zip"},
				Data:  []byte("PK\x03\x04"),
			}, nil
		},
	}
	mux := setupMux(sys.Handler(1 << 20))

	req := httptest.NewRequest("POST", "/sessions/"+sessionID.String()+"/finish", strings.NewReader(`{"kind":"BMD"}`))
	req = req.WithContext(auth.WithSubject(req.Context(), "ops@example.com"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get(sessions.BuildIDHeader); got != buildID.String() {
		t.Errorf("build id header = %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != builds.ContentType {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "VOID RENAMED.zip") {
		t.Errorf("content disposition = %q", cd)
	}
	if captured.CreatedBy != "ops@example.com" || captured.Classification == nil || captured.Classification.Kind != "BMD" {
		t.Errorf("captured = %+v", captured)
	}
}

func TestHandlerFinishErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not last", sessions.ErrNotLast, http.StatusConflict},
		{"unclassified", classifications.ErrKindRequired, http.StatusUnprocessableEntity},
		{"no documents", documents.ErrNoDocuments, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				finishFn: func(context.Context, uuid.UUID, sessions.FinishCommand) (*builds.Artifact, error) {
					return nil, tt.err
				},
			}
			mux := setupMux(sys.Handler(1 << 20))

			req := httptest.NewRequest("POST", "/sessions/"+sessionID.String()+"/finish", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
