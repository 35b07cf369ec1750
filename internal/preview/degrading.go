package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"sync"
)

// A4 proportions at 96 DPI.
const (
	BlankWidth  = 794
	BlankHeight = 1123
)

// Degrading wraps a Renderer and substitutes a blank page when it fails.
// Context cancellation is still reported to the caller.
type Degrading struct {
	next   Renderer
	logger *slog.Logger

	once  sync.Once
	blank []byte
}

// NewDegrading wraps next. A nil next always yields the blank page.
func NewDegrading(next Renderer, logger *slog.Logger) *Degrading {
	return &Degrading{
		next:   next,
		logger: logger.With("system", "preview"),
	}
}

func (d *Degrading) Render(ctx context.Context, content []byte) ([]byte, error) {
	if d.next == nil {
		return d.Blank(), nil
	}

	data, err := d.next.Render(ctx, content)
	if err == nil && len(data) > 0 {
		return data, nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if err == nil {
		err = fmt.Errorf("%w: empty image", ErrRenderFailed)
	}

	d.logger.Warn("preview degraded to blank page", "error", err)
	return d.Blank(), nil
}

// Blank returns the encoded blank page.
func (d *Degrading) Blank() []byte {
	d.once.Do(func() {
		d.blank = Blank(BlankWidth, BlankHeight)
	})
	return d.blank
}

// Blank encodes a white PNG canvas of the given size.
func Blank(width, height int) []byte {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = color.White.Y
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
