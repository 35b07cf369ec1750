// Package preview renders the first page of a source document to a PNG image
// for operator review. Rendering is best effort: front ends wrap renderers in
// Degrading so a failed render shows a blank page instead of an error.
package preview

import (
	"context"
	"errors"
)

// ContentType is the media type of every rendered preview.
const ContentType = "image/png"

// ErrRenderFailed indicates a document could not be rendered.
var ErrRenderFailed = errors.New("preview render failed")

// Renderer produces a PNG image of the first page of a PDF.
type Renderer interface {
	Render(ctx context.Context, content []byte) ([]byte, error)
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(ctx context.Context, content []byte) ([]byte, error)

func (f RenderFunc) Render(ctx context.Context, content []byte) ([]byte, error) {
	return f(ctx, content)
}
