package documents_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/voidsort/internal/classifications"
	"github.com/JaimeStill/voidsort/internal/documents"
)

type entry struct {
	name string
	body string
}

func buildZip(t *testing.T, entries ...entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		if e.body != "" {
			_, err = w.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newLoader(opts documents.LoadOptions) *documents.Loader {
	return documents.NewLoader(opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoadFiltersAndPreservesOrder(t *testing.T) {
	data := buildZip(t,
		entry{"scans/", ""},
		entry{"scans/checklist.pdf", "%PDF-1.4 one"},
		entry{"notes.txt", "not a pdf"},
		entry{"scans/MTW.PDF", "%PDF-1.4 two"},
		entry{"__MACOSX/scans/._checklist.pdf", "resource fork"},
		entry{"scans/._MTW.PDF", "apple double"},
		entry{"bmd.Pdf", "%PDF-1.4 three"},
	)

	docs, err := newLoader(documents.LoadOptions{Concurrency: 2}).Load(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "scans/checklist.pdf", docs[0].Name)
	assert.Equal(t, "scans/MTW.PDF", docs[1].Name)
	assert.Equal(t, "bmd.Pdf", docs[2].Name)

	assert.Equal(t, []byte("%PDF-1.4 two"), docs[1].Content)
	assert.Equal(t, int64(len("%PDF-1.4 three")), docs[2].SizeBytes)

	seen := map[string]bool{}
	for _, d := range docs {
		assert.False(t, seen[d.ID.String()], "duplicate id")
		seen[d.ID.String()] = true
		assert.Nil(t, d.PageCount, "fake PDF bytes should not yield a page count")
		assert.False(t, d.Classified())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		opts    documents.LoadOptions
		wantErr error
	}{
		{
			name:    "not a zip",
			data:    []byte("%PDF-1.4 dropped a pdf instead"),
			wantErr: documents.ErrNotArchive,
		},
		{
			name:    "empty input",
			data:    nil,
			wantErr: documents.ErrNotArchive,
		},
		{
			name:    "no pdf entries",
			data:    buildZip(t, entry{"readme.txt", "hello"}, entry{"folder/", ""}),
			wantErr: documents.ErrNoDocuments,
		},
		{
			name:    "too many documents",
			data:    buildZip(t, entry{"a.pdf", "a"}, entry{"b.pdf", "b"}, entry{"c.pdf", "c"}),
			opts:    documents.LoadOptions{MaxDocuments: 2},
			wantErr: documents.ErrTooManyDocuments,
		},
		{
			name:    "document too large",
			data:    buildZip(t, entry{"a.pdf", "0123456789"}),
			opts:    documents.LoadOptions{MaxDocumentSize: 4},
			wantErr: documents.ErrDocumentTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := newLoader(tt.opts).Load(context.Background(), tt.data)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, docs)
			assert.True(t, documents.IsInput(err))
		})
	}
}

func TestLoadCancelled(t *testing.T) {
	data := buildZip(t, entry{"a.pdf", "a"}, entry{"b.pdf", "b"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newLoader(documents.LoadOptions{Concurrency: 1}).Load(ctx, data)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClassifications(t *testing.T) {
	docs := []documents.Document{
		{Name: "a.pdf", Classification: classifications.Classification{Kind: classifications.KindMTW}},
		{Name: "b.pdf"},
	}

	got := documents.Classifications(docs)
	require.Len(t, got, 2)
	assert.Equal(t, classifications.KindMTW, got[0].Kind)
	assert.True(t, got[1].IsZero())
	assert.True(t, docs[0].Classified())
}

func TestMapHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, documents.MapHTTPStatus(documents.ErrNotArchive))
	assert.Equal(t, http.StatusUnprocessableEntity, documents.MapHTTPStatus(documents.ErrNoDocuments))
	assert.Equal(t, http.StatusRequestEntityTooLarge, documents.MapHTTPStatus(documents.ErrTooManyDocuments))
	assert.Equal(t, http.StatusInternalServerError, documents.MapHTTPStatus(assert.AnError))
}
