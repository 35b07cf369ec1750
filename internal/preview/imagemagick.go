package preview

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/image"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const defaultDPI = 96

// ImageMagick renders previews through document-context's ImageMagick
// renderer. The PDF is trimmed to its first page with pdfcpu before it is
// written to a temporary file for rendering.
type ImageMagick struct {
	cfg     config.ImageConfig
	tempDir string
}

// NewImageMagick creates an ImageMagick renderer. A zero dpi selects a screen
// resolution; an empty tempDir uses the system default.
func NewImageMagick(dpi int, tempDir string) *ImageMagick {
	if dpi <= 0 {
		dpi = defaultDPI
	}

	return &ImageMagick{
		cfg: config.ImageConfig{
			Format:  "png",
			DPI:     dpi,
			Options: map[string]any{"background": "white"},
		},
		tempDir: tempDir,
	}
}

func (r *ImageMagick) Render(ctx context.Context, content []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	first, err := FirstPage(content)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(r.tempDir, "voidsort-preview-*")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp dir: %w", ErrRenderFailed, err)
	}
	defer os.RemoveAll(dir)

	pdfPath := filepath.Join(dir, "page.pdf")
	if err := os.WriteFile(pdfPath, first, 0600); err != nil {
		return nil, fmt.Errorf("%w: write temp pdf: %w", ErrRenderFailed, err)
	}

	pdfDoc, err := document.OpenPDF(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", ErrRenderFailed, err)
	}
	defer pdfDoc.Close()

	renderer, err := image.NewImageMagickRenderer(r.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create renderer: %w", ErrRenderFailed, err)
	}

	page, err := pdfDoc.ExtractPage(1)
	if err != nil {
		return nil, fmt.Errorf("%w: extract page: %w", ErrRenderFailed, err)
	}

	data, err := page.ToImage(renderer, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: render page: %w", ErrRenderFailed, err)
	}

	return data, ctx.Err()
}

// FirstPage returns a copy of the PDF reduced to its first page.
func FirstPage(content []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := api.Trim(bytes.NewReader(content), &out, []string{"1"}, nil); err != nil {
		return nil, fmt.Errorf("%w: trim to first page: %w", ErrRenderFailed, err)
	}
	return out.Bytes(), nil
}
