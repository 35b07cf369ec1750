package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"
)

const macOSMetadataDir = "__MACOSX/"

// LoadOptions bounds the work performed while extracting an archive.
// Zero values fall back to defaults.
type LoadOptions struct {
	Concurrency     int
	MaxDocuments    int
	MaxDocumentSize int64
}

// Loader extracts PDF documents from zip archives.
type Loader struct {
	opts   LoadOptions
	logger *slog.Logger
}

// NewLoader creates a Loader with the given limits.
func NewLoader(opts LoadOptions, logger *slog.Logger) *Loader {
	return &Loader{
		opts:   opts,
		logger: logger.With("system", "loader"),
	}
}

// Load parses data as a zip archive and returns every regular entry whose name
// ends in ".pdf" (case-insensitive), in archive order. Entries are decompressed
// with bounded concurrency. PageCount is populated when pdfcpu can read the
// document and left nil otherwise.
func (l *Loader) Load(ctx context.Context, data []byte) ([]Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, ErrNotArchive
		}
		return nil, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}

	entries := pdfEntries(zr.File)
	if len(entries) == 0 {
		return nil, ErrNoDocuments
	}

	if l.opts.MaxDocuments > 0 && len(entries) > l.opts.MaxDocuments {
		return nil, fmt.Errorf("%w: %d (limit %d)", ErrTooManyDocuments, len(entries), l.opts.MaxDocuments)
	}

	docs := make([]Document, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workerCount(len(entries)))

	for i, f := range entries {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			doc, err := l.readEntry(f)
			if err != nil {
				return err
			}

			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.Info("archive loaded", "documents", len(docs), "entries", len(zr.File))
	return docs, nil
}

func (l *Loader) readEntry(f *zip.File) (Document, error) {
	if l.opts.MaxDocumentSize > 0 && int64(f.UncompressedSize64) > l.opts.MaxDocumentSize {
		return Document{}, fmt.Errorf("%w: %s", ErrDocumentTooLarge, f.Name)
	}

	rc, err := f.Open()
	if err != nil {
		return Document{}, fmt.Errorf("%w: open %s: %w", ErrCorruptArchive, f.Name, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if l.opts.MaxDocumentSize > 0 {
		r = io.LimitReader(rc, l.opts.MaxDocumentSize+1)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("%w: read %s: %w", ErrCorruptArchive, f.Name, err)
	}

	if l.opts.MaxDocumentSize > 0 && int64(len(content)) > l.opts.MaxDocumentSize {
		return Document{}, fmt.Errorf("%w: %s", ErrDocumentTooLarge, f.Name)
	}

	return Document{
		ID:        uuid.New(),
		Name:      f.Name,
		SizeBytes: int64(len(content)),
		PageCount: l.pageCount(f.Name, content),
		Content:   content,
	}, nil
}

func (l *Loader) pageCount(name string, content []byte) *int {
	count, err := api.PageCount(bytes.NewReader(content), nil)
	if err != nil {
		l.logger.Warn("failed to extract PDF page count", "name", name, "error", err)
		return nil
	}
	return &count
}

func (l *Loader) workerCount(n int) int {
	limit := l.opts.Concurrency
	if limit <= 0 {
		limit = min(runtime.NumCPU(), 4)
	}
	return max(min(limit, n), 1)
}

func pdfEntries(files []*zip.File) []*zip.File {
	out := make([]*zip.File, 0, len(files))
	for _, f := range files {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		if strings.HasPrefix(f.Name, macOSMetadataDir) || strings.HasPrefix(path.Base(f.Name), "._") {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(f.Name), ".pdf") {
			continue
		}
		out = append(out, f)
	}
	return out
}
