package entities

import (
	"context"
	"sync"
	"time"

	"github.com/craftlab/skillforge/pkg/logger"
	"github.com/craftlab/skillforge/pkg/mutation"
	"github.com/craftlab/skillforge/pkg/types/entity"
)

// Service wraps a Store with the editing discipline the wizard needs: every
// load-mutate-save cycle for one entity id runs inside that id's mutex, so
// two concurrent editors serialize instead of silently overwriting each
// other. Different ids never block each other.
type Service struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a service over the given store.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		locks: map[string]*sync.Mutex{},
	}
}

// lockFor returns the mutex dedicated to one entity id, creating it on
// first use. Lock entries are never evicted; the set of ids edited in one
// process lifetime is small.
func (s *Service) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

// Create allocates a new draft with a fresh prefixed id and persists it
// immediately. Initial top-level fields may be supplied as an
// update-description applied before the first save.
func (s *Service) Create(ctx context.Context, kind entity.Kind, name string, initial map[string]any) (*entity.Entity, *mutation.Report, error) {
	e := entity.New(kind, name)

	var report mutation.Report
	if len(initial) > 0 {
		report = mutation.Apply(e, initial)
	}

	if err := s.store.Create(ctx, e); err != nil {
		return nil, nil, err
	}
	logger.G(ctx).WithField("entity_id", e.ID).WithField("kind", kind).Info("created entity")
	return e, &report, nil
}

// Get loads the full document for id.
func (s *Service) Get(ctx context.Context, id string) (*entity.Entity, error) {
	return s.store.Load(ctx, id)
}

// List returns summaries of every stored entity.
func (s *Service) List(ctx context.Context) ([]entity.Summary, error) {
	return s.store.List(ctx)
}

// Delete removes the document for id. Deleting an absent id succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()
	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}
	logger.G(ctx).WithField("entity_id", id).Info("removed entity")
	return nil
}

// UpdateState applies an update-description to the entity and persists the
// result exactly once. The mutation operates on a private clone, so a
// storage failure never leaves a half-applied document behind. Malformed
// instructions are reported in the returned mutation report without
// aborting the rest of the batch.
func (s *Service) UpdateState(ctx context.Context, id string, updates map[string]any) (*entity.Entity, *mutation.Report, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	e, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	next, err := e.Clone()
	if err != nil {
		return nil, nil, err
	}

	report := mutation.Apply(next, updates)
	next.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, next); err != nil {
		return nil, nil, err
	}

	log := logger.G(ctx).WithField("entity_id", id).WithField("applied", len(report.Applied))
	if len(report.Errors) > 0 {
		log.WithField("rejected", len(report.Errors)).Warn("update applied with rejected instructions")
	} else {
		log.Debug("update applied")
	}
	return next, &report, nil
}

// AppendMessage appends one conversation entry with a generated msg_ id and
// timestamp, then saves. Appends against one id are atomic with respect to
// concurrent appends because the whole cycle holds the id's mutex.
func (s *Service) AppendMessage(ctx context.Context, id, role, content string) (*entity.Entity, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	e, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	e.Conversation = append(e.Conversation, entity.NewMessage(role, content))
	e.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Save persists an already-mutated entity under its id lock, bumping
// updated_at. Callers that used UpdateState never need this; it exists for
// collaborators that edit the document wholesale.
func (s *Service) Save(ctx context.Context, e *entity.Entity) error {
	lock := s.lockFor(e.ID)
	lock.Lock()
	defer lock.Unlock()

	e.UpdatedAt = time.Now().UTC()
	return s.store.Save(ctx, e)
}

// Close releases the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}
