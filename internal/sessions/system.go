package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/voidsort/internal/archive"
	"github.com/JaimeStill/voidsort/internal/builds"
	"github.com/JaimeStill/voidsort/internal/documents"
	"github.com/JaimeStill/voidsort/pkg/lifecycle"
)

// Finalizer turns a finished session's documents into a stored archive.
type Finalizer interface {
	Finalize(ctx context.Context, cmd builds.FinalizeCommand) (*builds.Artifact, error)
}

// CreateCommand carries an uploaded archive and its property address.
type CreateCommand struct {
	Address string
	Data    []byte
}

// ClassifyCommand is an operator's classification choice by kind name.
type ClassifyCommand struct {
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

// FinishCommand optionally classifies the last document before finishing.
type FinishCommand struct {
	Classification *ClassifyCommand
	CreatedBy      string
}

// View pairs the session summary with its current document.
type View struct {
	Session  Summary            `json:"session"`
	Document documents.Document `json:"document"`
}

// PlanView is the dry-run output of a session.
type PlanView struct {
	archive.Plan
	Tree []archive.Folder `json:"tree" msgpack:"tree"`
}

// Options bounds the session registry.
type Options struct {
	MaxSessions   int
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	Now           func() time.Time
}

// System defines the public contract for review session operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Start registers the idle-session sweeper with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error

	Create(ctx context.Context, cmd CreateCommand) (*Summary, error)
	List(ctx context.Context) []Summary
	Find(ctx context.Context, id uuid.UUID) (*Summary, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Current(ctx context.Context, id uuid.UUID) (*View, error)
	Classify(ctx context.Context, id uuid.UUID, cmd ClassifyCommand) (*View, error)
	Next(ctx context.Context, id uuid.UUID, cmd *ClassifyCommand) (*View, error)
	Prev(ctx context.Context, id uuid.UUID) (*View, error)

	// Preview renders the current document's first page as PNG.
	Preview(ctx context.Context, id uuid.UUID) ([]byte, error)
	// Plan computes the output archive layout without finishing the session.
	Plan(ctx context.Context, id uuid.UUID) (*PlanView, error)
	Finish(ctx context.Context, id uuid.UUID, cmd FinishCommand) (*builds.Artifact, error)

	// Sweep evicts finished and idle sessions and returns how many were removed.
	Sweep() int
}
