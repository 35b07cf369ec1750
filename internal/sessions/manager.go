package sessions

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/voidsort/internal/archive"
	"github.com/JaimeStill/voidsort/internal/builds"
	"github.com/JaimeStill/voidsort/internal/classifications"
	"github.com/JaimeStill/voidsort/internal/documents"
	"github.com/JaimeStill/voidsort/internal/preview"
	"github.com/JaimeStill/voidsort/pkg/lifecycle"
)

const (
	defaultMaxSessions   = 32
	defaultIdleTimeout   = 2 * time.Hour
	defaultSweepInterval = time.Minute
)

type entry struct {
	mu         sync.Mutex
	session    *Session
	lastActive time.Time
	removed    bool
}

type manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*entry

	loader    *documents.Loader
	builder   *archive.Builder
	finalizer Finalizer
	renderer  preview.Renderer
	opts      Options
	logger    *slog.Logger
}

// New creates an in-memory session registry implementing the System interface.
func New(
	loader *documents.Loader,
	builder *archive.Builder,
	finalizer Finalizer,
	renderer preview.Renderer,
	opts Options,
	logger *slog.Logger,
) System {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = defaultMaxSessions
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &manager{
		sessions:  make(map[uuid.UUID]*entry),
		loader:    loader,
		builder:   builder,
		finalizer: finalizer,
		renderer:  renderer,
		opts:      opts,
		logger:    logger.With("system", "sessions"),
	}
}

func (m *manager) Handler(maxUploadSize int64) *Handler {
	return NewHandler(m, m.logger, maxUploadSize)
}

func (m *manager) Start(lc *lifecycle.Coordinator) error {
	m.logger.Info(
		"starting session sweeper",
		"max_sessions", m.opts.MaxSessions,
		"idle_timeout", m.opts.IdleTimeout,
	)

	done := make(chan struct{})
	go func() {
		defer close(done)

		ticker := time.NewTicker(m.opts.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				return
			case <-ticker.C:
				if n := m.Sweep(); n > 0 {
					m.logger.Info("idle sessions evicted", "count", n)
				}
			}
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-done

		m.mu.Lock()
		n := len(m.sessions)
		clear(m.sessions)
		m.mu.Unlock()

		m.logger.Info("sessions released", "count", n)
	})

	return nil
}

func (m *manager) Create(ctx context.Context, cmd CreateCommand) (*Summary, error) {
	if classifications.Normalize(cmd.Address) == "" {
		return nil, ErrAddressRequired
	}
	if m.full() {
		return nil, ErrCapacity
	}

	docs, err := m.loader.Load(ctx, cmd.Data)
	if err != nil {
		return nil, err
	}

	s, err := New(cmd.Address, docs)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if len(m.sessions) >= m.opts.MaxSessions {
		m.mu.Unlock()
		return nil, ErrCapacity
	}
	m.sessions[s.ID()] = &entry{session: s, lastActive: m.opts.Now()}
	m.mu.Unlock()

	m.logger.Info("session created", "id", s.ID(), "address", s.Address(), "documents", s.Len())

	sum := s.Summary()
	return &sum, nil
}

func (m *manager) List(ctx context.Context) []Summary {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.sessions))
	for _, e := range m.sessions {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.removed {
			out = append(out, e.session.Summary())
		}
		e.mu.Unlock()
	}

	slices.SortFunc(out, func(a, b Summary) int {
		return strings.Compare(a.Address+a.ID.String(), b.Address+b.ID.String())
	})
	return out
}

func (m *manager) Find(ctx context.Context, id uuid.UUID) (*Summary, error) {
	var sum Summary
	err := m.with(id, func(s *Session) error {
		sum = s.Summary()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

func (m *manager) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()

	m.logger.Info("session abandoned", "id", id)
	return nil
}

func (m *manager) Current(ctx context.Context, id uuid.UUID) (*View, error) {
	return m.view(id, func(*Session) error { return nil })
}

func (m *manager) Classify(ctx context.Context, id uuid.UUID, cmd ClassifyCommand) (*View, error) {
	return m.view(id, func(s *Session) error {
		return classify(s, cmd)
	})
}

func (m *manager) Next(ctx context.Context, id uuid.UUID, cmd *ClassifyCommand) (*View, error) {
	return m.view(id, func(s *Session) error {
		if cmd != nil {
			if err := classify(s, *cmd); err != nil {
				return err
			}
		}
		return s.Next()
	})
}

func (m *manager) Prev(ctx context.Context, id uuid.UUID) (*View, error) {
	return m.view(id, func(s *Session) error {
		return s.Prev()
	})
}

func (m *manager) Preview(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var content []byte
	err := m.with(id, func(s *Session) error {
		doc, _ := s.Current()
		content = doc.Content
		return nil
	})
	if err != nil {
		return nil, err
	}

	return m.renderer.Render(ctx, content)
}

func (m *manager) Plan(ctx context.Context, id uuid.UUID) (*PlanView, error) {
	var (
		address string
		docs    []documents.Document
	)
	err := m.with(id, func(s *Session) error {
		address = s.Address()
		docs = s.Documents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	plan, err := m.builder.Build(address, docs)
	if err != nil {
		return nil, err
	}
	return &PlanView{Plan: plan, Tree: plan.Tree()}, nil
}

func (m *manager) Finish(ctx context.Context, id uuid.UUID, cmd FinishCommand) (*builds.Artifact, error) {
	var artifact *builds.Artifact

	err := m.with(id, func(s *Session) error {
		if cmd.Classification != nil {
			if err := classify(s, *cmd.Classification); err != nil {
				return err
			}
		}

		return s.Finish(func(docs []documents.Document) error {
			a, err := m.finalizer.Finalize(ctx, builds.FinalizeCommand{
				Address:   s.Address(),
				Documents: docs,
				CreatedBy: cmd.CreatedBy,
			})
			if err != nil {
				m.logger.Error("finalize failed; session returned to review", "id", id, "error", err)
				return err
			}
			artifact = a
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("session finished", "id", id, "build_id", artifact.Build.ID)
	return artifact, nil
}

func (m *manager) Sweep() int {
	now := m.opts.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if e.session.State() == StateFinished || now.Sub(e.lastActive) > m.opts.IdleTimeout {
			e.removed = true
			delete(m.sessions, id)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

func (m *manager) full() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions) >= m.opts.MaxSessions
}

func (m *manager) with(id uuid.UUID, fn func(*Session) error) error {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed {
		return ErrNotFound
	}

	e.lastActive = m.opts.Now()
	return fn(e.session)
}

func (m *manager) view(id uuid.UUID, fn func(*Session) error) (*View, error) {
	var v View
	err := m.with(id, func(s *Session) error {
		if err := fn(s); err != nil {
			return err
		}
		doc, _ := s.Current()
		v = View{Session: s.Summary(), Document: doc}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func classify(s *Session, cmd ClassifyCommand) error {
	kind, err := classifications.ParseKind(cmd.Kind)
	if err != nil {
		return err
	}
	return s.SetClassification(kind, cmd.Description)
}
