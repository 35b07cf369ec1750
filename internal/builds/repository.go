package builds

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/voidsort/internal/archive"
	"github.com/JaimeStill/voidsort/pkg/pagination"
	"github.com/JaimeStill/voidsort/pkg/query"
	"github.com/JaimeStill/voidsort/pkg/repository"
	"github.com/JaimeStill/voidsort/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	builder    *archive.Builder
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a build repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	builder *archive.Builder,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		builder:    builder,
		logger:     logger.With("system", "builds"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Finalize(ctx context.Context, cmd FinalizeCommand) (*Artifact, error) {
	plan, err := r.builder.Build(cmd.Address, cmd.Documents)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := archive.Write(&buf, plan); err != nil {
		return nil, err
	}

	manifest, err := json.Marshal(plan.Entries)
	if err != nil {
		return nil, fmt.Errorf("%w: encode manifest: %w", archive.ErrBuildFailed, err)
	}

	id := uuid.New()
	key := r.storage.Key(id.String(), url.PathEscape(plan.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(buf.Bytes()), ContentType); err != nil {
		return nil, fmt.Errorf("upload archive: %w", err)
	}

	var createdBy *string
	if cmd.CreatedBy != "" {
		createdBy = &cmd.CreatedBy
	}

	q := `
		INSERT INTO builds(id, address, filename, storage_key, size_bytes, document_count, entry_count, skipped_count, skip_policy, created_by, manifest)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, address, filename, storage_key, size_bytes, document_count, entry_count, skipped_count, skip_policy, created_by, manifest, created_at`

	insertArgs := []any{
		id,
		plan.Address,
		plan.Filename,
		key,
		int64(buf.Len()),
		len(cmd.Documents),
		len(plan.Entries),
		plan.Skipped,
		string(r.builder.SkipPolicy()),
		createdBy,
		manifest,
	}

	b, err := repository.QueryOne(ctx, r.db, q, insertArgs, scanBuild)
	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"build recorded",
		"id", b.ID,
		"address", b.Address,
		"entries", b.EntryCount,
		"skipped", b.SkippedCount,
	)
	return &Artifact{Build: &b, Data: buf.Bytes()}, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Build], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Address", "Filename")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanBuild)
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Build, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	b, err := repository.QueryOne(ctx, r.db, q, args, scanBuild)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &b, nil
}

func (r *repo) Download(ctx context.Context, id uuid.UUID) (*Build, *storage.Blob, error) {
	b, err := r.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	blob, err := r.storage.Download(ctx, b.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("download archive %s: %w", b.ID, err)
	}
	return b, blob, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	key, err := repository.QueryOne(
		ctx, r.db,
		"DELETE FROM builds WHERE id = $1 RETURNING storage_key",
		[]any{id},
		func(s repository.Scanner) (string, error) {
			var key string
			err := s.Scan(&key)
			return key, err
		},
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, key); delErr != nil && !errors.Is(delErr, storage.ErrNotFound) {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", key,
			"error", delErr,
		)
	}

	r.logger.Info("build deleted", "id", id)
	return nil
}
