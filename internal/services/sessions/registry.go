package sessions

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/services/dialog"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/ui"
)

// DefaultIdleTimeout resets a silent session back to the welcome screen.
const DefaultIdleTimeout = 300 * time.Second

type Gateway interface {
	GetUsers(ctx context.Context, ids ...string) ([]*model.Candidate, error)
}

type Store interface {
	UpsertOperator(ctx context.Context, op *model.Operator, forceLocation bool) error
}

type Engine interface {
	Handle(ctx context.Context, s *dialog.Session, text string) []ui.Outbound
	Greet(s *dialog.Session) []ui.Outbound
	ResetAfterAbsence(s *dialog.Session, idleTimeout time.Duration) []ui.Outbound
}

type entry struct {
	mu      sync.Mutex
	session *dialog.Session
}

type Dependencies struct {
	Engine  Engine
	Gateway Gateway
	Store   Store
	Logger  *zap.Logger
}

type Config struct {
	IdleTimeout time.Duration
}

// Registry maps operator ids to live dialogue sessions. Turns for the same
// operator are serialized on a per-session mutex; distinct operators run
// concurrently.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry

	engine  Engine
	gateway Gateway
	store   Store
	logger  *zap.Logger

	idleTimeout time.Duration
	now         func() time.Time
}

func NewRegistry(deps Dependencies, cfg Config) *Registry {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	return &Registry{
		entries:     make(map[string]*entry),
		engine:      deps.Engine,
		gateway:     deps.Gateway,
		store:       deps.Store,
		logger:      logger,
		idleTimeout: cfg.IdleTimeout,
		now:         time.Now,
	}
}

// HandleInbound routes one inbound message to the operator's session,
// creating the session on first contact. It returns every outbound message
// the turn produced, greeting and absence notices included.
func (r *Registry) HandleInbound(ctx context.Context, operatorID, text string) []ui.Outbound {
	ent := r.entry(operatorID)
	ent.mu.Lock()
	defer ent.mu.Unlock()

	var out []ui.Outbound
	if ent.session == nil {
		session, err := r.createSession(ctx, operatorID)
		if err != nil {
			r.logger.Error("session create failed", zap.String("operator", operatorID), zap.Error(err))
			r.remove(operatorID)
			return []ui.Outbound{ui.Text(ui.PhraseStorageUnavailable)}
		}
		ent.session = session
		out = append(out, r.engine.Greet(session)...)
	} else if r.now().Sub(ent.session.LastContact) > r.idleTimeout {
		out = append(out, r.engine.ResetAfterAbsence(ent.session, r.idleTimeout)...)
	}

	out = append(out, r.engine.Handle(ctx, ent.session, text)...)

	if ent.session.Closed {
		r.remove(operatorID)
	}
	return out
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) entry(operatorID string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	ent, ok := r.entries[operatorID]
	if !ok {
		ent = &entry{}
		r.entries[operatorID] = ent
	}
	return ent
}

func (r *Registry) remove(operatorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, operatorID)
}

// createSession resolves the operator's directory profile, persists it and
// opens a fresh welcome-state session. A failed profile lookup degrades to a
// bare profile so the dialogue can still start; a failed persist is fatal to
// the turn.
func (r *Registry) createSession(ctx context.Context, operatorID string) (*dialog.Session, error) {
	op := &model.Operator{DirectoryID: operatorID}
	profiles, err := r.gateway.GetUsers(ctx, operatorID)
	if err != nil || len(profiles) == 0 {
		r.logger.Warn("operator profile lookup failed", zap.String("operator", operatorID), zap.Error(err))
	} else {
		op = operatorFromProfile(profiles[0])
	}
	op.LastContact = r.now()

	if err := r.store.UpsertOperator(ctx, op, false); err != nil {
		return nil, err
	}
	return dialog.NewSession(op, r.now()), nil
}

func operatorFromProfile(profile *model.Candidate) *model.Operator {
	return &model.Operator{
		DirectoryID: profile.DirectoryID,
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Domain:      profile.Domain,
		Sex:         profile.Sex,
		CountryID:   profile.CountryID,
		CountryName: profile.CountryName,
		CityID:      profile.CityID,
		CityName:    profile.CityName,
		Hometown:    profile.Hometown,
		Birth:       profile.Birth,
	}
}
