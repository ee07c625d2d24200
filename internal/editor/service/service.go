package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/resumeforge/resumeforge/backend/go-services/internal/editor/repository"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/identity"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/reconcile"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/resume"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/rewrite"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/storage"
	"github.com/resumeforge/resumeforge/backend/go-services/pkg/logger"
	"github.com/resumeforge/resumeforge/backend/go-services/pkg/metrics"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidDocument     = errors.New("invalid document")
	ErrInvalidTarget       = errors.New("invalid edit target")
	ErrRewriterUnavailable = errors.New("rewriting is not configured")
	ErrRewriteFailed       = errors.New("rewrite failed")
	ErrExportUnavailable   = errors.New("snapshot export is not configured")
)

// State is what clients see of a session after every operation.
type State struct {
	ID        string          `json:"id"`
	Document  resume.Document `json:"document"`
	CanUndo   bool            `json:"canUndo"`
	CanRedo   bool            `json:"canRedo"`
	Past      int             `json:"past"`
	Future    int             `json:"future"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Ticket identifies one rewrite request. Only the newest ticket of a session
// may commit.
type Ticket struct {
	Number int64           `json:"ticket"`
	Base   resume.Document `json:"base"`
}

// RewriteRequest asks the configured Rewriter to change the document.
type RewriteRequest struct {
	Instruction string        `json:"instruction" binding:"required"`
	Target      resume.Target `json:"target"`
}

// CommitResult reports the outcome of a rewrite. A discarded result left the
// history untouched because a newer request superseded it.
type CommitResult struct {
	Ticket    int64            `json:"ticket"`
	Discarded bool             `json:"discarded"`
	State     *State           `json:"state"`
	Report    reconcile.Report `json:"report,omitempty"`
}

// Service defines the editing-session operations used by the handler layer.
type Service interface {
	Create(ctx context.Context, doc *resume.Document) (*State, error)
	Get(ctx context.Context, id string) (*State, error)
	Set(ctx context.Context, id string, doc resume.Document) (*State, error)
	Undo(ctx context.Context, id string) (*State, error)
	Redo(ctx context.Context, id string) (*State, error)
	BeginRewrite(ctx context.Context, id string) (*Ticket, error)
	CommitRewrite(ctx context.Context, id string, ticket int64, returned resume.Document) (*CommitResult, error)
	Rewrite(ctx context.Context, id string, req RewriteRequest) (*CommitResult, error)
	Import(ctx context.Context, text string) (*State, error)
	Snapshot(ctx context.Context, id string) (resume.Document, error)
	Export(ctx context.Context, id string) (*storage.Published, error)
	Delete(ctx context.Context, id string) error
	Expired(ctx context.Context, ids []string)
}

// Deps wires the service. Repo, Sequencer and Reconciler default to in-memory
// implementations; Rewriter and Publisher are optional.
type Deps struct {
	Repo         *repository.MemoryRepo
	Sequencer    repository.Sequencer
	Reconciler   *reconcile.Reconciler
	Rewriter     rewrite.Rewriter
	Publisher    storage.Publisher
	SessionIDs   identity.Generator
	HistoryLimit int
}

// New returns the memory-backed Service.
func New(d Deps) Service {
	if d.Repo == nil {
		d.Repo = repository.NewMemoryRepo()
	}
	if d.Sequencer == nil {
		d.Sequencer = repository.NewMemorySequencer()
	}
	if d.Reconciler == nil {
		d.Reconciler = reconcile.New(nil)
	}
	if d.SessionIDs == nil {
		d.SessionIDs = identity.UUIDGenerator{}
	}
	return &memoryService{
		repo:       d.Repo,
		seq:        d.Sequencer,
		reconciler: d.Reconciler,
		rewriter:   d.Rewriter,
		publisher:  d.Publisher,
		ids:        d.SessionIDs,
		limit:      d.HistoryLimit,
	}
}

type memoryService struct {
	repo       *repository.MemoryRepo
	seq        repository.Sequencer
	reconciler *reconcile.Reconciler
	rewriter   rewrite.Rewriter
	publisher  storage.Publisher
	ids        identity.Generator
	limit      int
}

func stateOf(s *repository.Session) *State {
	past, future := s.History.Depth()
	return &State{
		ID:        s.ID,
		Document:  s.History.Present(),
		CanUndo:   s.History.CanUndo(),
		CanRedo:   s.History.CanRedo(),
		Past:      past,
		Future:    future,
		UpdatedAt: s.UpdatedAt,
	}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
}

func recordReport(r reconcile.Report) {
	for kind, c := range r {
		metrics.ReconcileEntries.WithLabelValues(string(kind), "preserved").Add(float64(c.Preserved))
		metrics.ReconcileEntries.WithLabelValues(string(kind), "minted").Add(float64(c.Minted))
		metrics.ReconcileEntries.WithLabelValues(string(kind), "dropped").Add(float64(c.Dropped))
	}
}

func (m *memoryService) lookup(id string) (*repository.Session, error) {
	s, err := m.repo.Get(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *memoryService) start(doc resume.Document) *State {
	s := repository.NewSession(m.ids.NewToken(), doc, m.limit)
	_ = m.repo.Create(s)
	metrics.ActiveSessions.Set(float64(m.repo.Len()))
	logger.Infof("session %s created", s.ID)
	s.Lock()
	defer s.Unlock()
	return stateOf(s)
}

func (m *memoryService) Create(ctx context.Context, doc *resume.Document) (*State, error) {
	if doc == nil {
		return m.start(resume.Blank()), nil
	}
	if err := resume.Validate(*doc); err != nil {
		return nil, invalid(err)
	}
	res := m.reconciler.AssignMissing(*doc)
	return m.start(res.Document), nil
}

func (m *memoryService) Get(ctx context.Context, id string) (*State, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	s.Lock()
	defer s.Unlock()
	return stateOf(s), nil
}

// changed records a history mutation: it invalidates any pending rewrite so a
// late result cannot overwrite the user's newer intent. The edit is already
// applied, so a sequencer failure is only logged; clearing Pending is enough
// to make every open ticket stale.
func (m *memoryService) changed(ctx context.Context, s *repository.Session) {
	m.repo.Touch(s)
	s.Pending = nil
	if _, err := m.seq.Next(ctx, s.ID); err != nil {
		logger.With("session", s.ID).Warnw("advance rewrite sequence failed", "error", err)
	}
}

func (m *memoryService) Set(ctx context.Context, id string, doc resume.Document) (*State, error) {
	if err := resume.Validate(doc); err != nil {
		return nil, invalid(err)
	}
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	res := m.reconciler.AssignMissing(doc)

	s.Lock()
	defer s.Unlock()
	ok := s.History.Set(res.Document)
	metrics.HistoryOperations.WithLabelValues("set", metrics.HistoryResult(ok)).Inc()
	if ok {
		m.changed(ctx, s)
	}
	return stateOf(s), nil
}

func (m *memoryService) step(ctx context.Context, id, op string, move func(*repository.Session) bool) (*State, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	s.Lock()
	defer s.Unlock()
	ok := move(s)
	metrics.HistoryOperations.WithLabelValues(op, metrics.HistoryResult(ok)).Inc()
	if ok {
		m.changed(ctx, s)
	}
	return stateOf(s), nil
}

func (m *memoryService) Undo(ctx context.Context, id string) (*State, error) {
	return m.step(ctx, id, "undo", func(s *repository.Session) bool { return s.History.Undo() })
}

func (m *memoryService) Redo(ctx context.Context, id string) (*State, error) {
	return m.step(ctx, id, "redo", func(s *repository.Session) bool { return s.History.Redo() })
}

func (m *memoryService) BeginRewrite(ctx context.Context, id string) (*Ticket, error) {
	return m.begin(ctx, id, resume.Target{})
}

// begin issues a ticket for a rewrite of target, checked against the same
// present that becomes the ticket's base.
func (m *memoryService) begin(ctx context.Context, id string, target resume.Target) (*Ticket, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	s.Lock()
	defer s.Unlock()
	if err := target.Validate(s.History.Present()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	n, err := m.seq.Next(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("issue rewrite ticket: %w", err)
	}
	base := s.History.Present()
	s.Pending = &repository.PendingRewrite{Ticket: n, Base: base}
	logger.With("session", id, "ticket", n).Debugw("rewrite begun")
	return &Ticket{Number: n, Base: base.Clone()}, nil
}

func (m *memoryService) CommitRewrite(ctx context.Context, id string, ticket int64, returned resume.Document) (*CommitResult, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	s.Lock()
	defer s.Unlock()
	log := logger.With("session", id, "ticket", ticket)

	current, err := m.seq.Current(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read rewrite sequence: %w", err)
	}
	if s.Pending == nil || s.Pending.Ticket != ticket || ticket != current {
		metrics.RewriteCommits.WithLabelValues("discarded").Inc()
		log.Infow("stale rewrite discarded", "latest", current)
		return &CommitResult{Ticket: ticket, Discarded: true, State: stateOf(s)}, nil
	}

	res := m.reconciler.Reconcile(s.Pending.Base, returned)
	if err := resume.Validate(res.Document); err != nil {
		metrics.RewriteCommits.WithLabelValues("invalid").Inc()
		log.Warnw("rewrite result rejected", "error", err)
		return nil, invalid(err)
	}
	recordReport(res.Report)

	ok := s.History.Set(res.Document)
	metrics.HistoryOperations.WithLabelValues("commit", metrics.HistoryResult(ok)).Inc()
	metrics.RewriteCommits.WithLabelValues("committed").Inc()
	s.Pending = nil
	m.repo.Touch(s)
	total := res.Report.Total()
	log.Infow("rewrite committed", "changed", ok,
		"preserved", total.Preserved, "minted", total.Minted, "dropped", total.Dropped)
	return &CommitResult{Ticket: ticket, State: stateOf(s), Report: res.Report}, nil
}

func (m *memoryService) Rewrite(ctx context.Context, id string, req RewriteRequest) (*CommitResult, error) {
	if m.rewriter == nil {
		return nil, ErrRewriterUnavailable
	}
	t, err := m.begin(ctx, id, req.Target)
	if err != nil {
		return nil, err
	}
	doc, err := m.rewriter.Rewrite(ctx, t.Base, req.Instruction, req.Target)
	if err != nil {
		metrics.RewriteCommits.WithLabelValues("failed").Inc()
		logger.With("session", id, "ticket", t.Number).Warnw("rewriter failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrRewriteFailed, err)
	}
	return m.CommitRewrite(ctx, id, t.Number, doc)
}

func (m *memoryService) Import(ctx context.Context, text string) (*State, error) {
	if m.rewriter == nil {
		return nil, ErrRewriterUnavailable
	}
	doc, err := m.rewriter.Structure(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRewriteFailed, err)
	}
	res := m.reconciler.AssignMissing(doc.Normalize())
	if err := resume.Validate(res.Document); err != nil {
		return nil, invalid(err)
	}
	recordReport(res.Report)
	return m.start(res.Document), nil
}

func (m *memoryService) Snapshot(ctx context.Context, id string) (resume.Document, error) {
	s, err := m.lookup(id)
	if err != nil {
		return resume.Document{}, err
	}
	s.Lock()
	defer s.Unlock()
	return s.History.Present(), nil
}

func (m *memoryService) Export(ctx context.Context, id string) (*storage.Published, error) {
	if m.publisher == nil {
		return nil, ErrExportUnavailable
	}
	doc, err := m.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	pub, err := m.publisher.Publish(ctx, id, doc)
	if err != nil {
		return nil, fmt.Errorf("export session %s: %w", id, err)
	}
	logger.Infof("session %s exported to %s", id, pub.Key)
	return pub, nil
}

func (m *memoryService) Delete(ctx context.Context, id string) error {
	if err := m.repo.Delete(id); err != nil {
		return ErrNotFound
	}
	m.Expired(ctx, []string{id})
	return nil
}

// Expired releases per-session state kept outside the repository. The janitor
// calls it after discarding idle sessions.
func (m *memoryService) Expired(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := m.seq.Forget(ctx, id); err != nil {
			logger.Warnf("forget rewrite sequence for %s: %v", id, err)
		}
	}
	metrics.ActiveSessions.Set(float64(m.repo.Len()))
}
