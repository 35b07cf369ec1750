package builds

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/voidsort/pkg/pagination"
	"github.com/JaimeStill/voidsort/pkg/storage"
)

// System defines the public contract for build history operations.
type System interface {
	Handler() *Handler

	// Finalize builds, stores, and records the output archive for a reviewed
	// document set. Nothing is left behind when any step fails.
	Finalize(ctx context.Context, cmd FinalizeCommand) (*Artifact, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Build], error)

	Find(ctx context.Context, id uuid.UUID) (*Build, error)
	Download(ctx context.Context, id uuid.UUID) (*Build, *storage.Blob, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
