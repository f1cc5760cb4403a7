package sessions

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/services/dialog"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/ui"
)

type fakeEngine struct {
	mu      sync.Mutex
	handled []string
	resets  int
	closeOn string
	now     func() time.Time
}

func (f *fakeEngine) Handle(ctx context.Context, s *dialog.Session, text string) []ui.Outbound {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handled = append(f.handled, text)
	if f.now != nil {
		s.LastContact = f.now()
	} else {
		s.LastContact = time.Now()
	}
	if f.closeOn != "" && text == f.closeOn {
		s.Closed = true
	}
	return []ui.Outbound{ui.Text("handled: " + text)}
}

func (f *fakeEngine) Greet(s *dialog.Session) []ui.Outbound {
	return []ui.Outbound{ui.Text(fmt.Sprintf(ui.PhraseGreetings, s.Operator.FirstName))}
}

func (f *fakeEngine) ResetAfterAbsence(s *dialog.Session, idleTimeout time.Duration) []ui.Outbound {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	s.State = dialog.StateWelcome
	return []ui.Outbound{ui.Text(fmt.Sprintf(ui.PhraseWasAbsent, s.Operator.FirstName, int(idleTimeout.Seconds())))}
}

type fakeProfileGateway struct {
	profiles map[string]*model.Candidate
	fail     bool
}

func (f *fakeProfileGateway) GetUsers(ctx context.Context, ids ...string) ([]*model.Candidate, error) {
	if f.fail {
		return nil, fmt.Errorf("directory unavailable")
	}
	var out []*model.Candidate
	for _, id := range ids {
		if profile, ok := f.profiles[id]; ok {
			out = append(out, profile)
		}
	}
	return out, nil
}

type fakeOperatorStore struct {
	upserts int
	fail    bool
}

func (f *fakeOperatorStore) UpsertOperator(ctx context.Context, op *model.Operator, forceLocation bool) error {
	if f.fail {
		return fmt.Errorf("connection refused")
	}
	f.upserts++
	op.ID = int64(f.upserts)
	return nil
}

func newTestRegistry(engine *fakeEngine, gateway *fakeProfileGateway, store *fakeOperatorStore) *Registry {
	return NewRegistry(Dependencies{Engine: engine, Gateway: gateway, Store: store}, Config{IdleTimeout: DefaultIdleTimeout})
}

func TestFirstContactCreatesSessionAndGreets(t *testing.T) {
	engine := &fakeEngine{}
	gateway := &fakeProfileGateway{profiles: map[string]*model.Candidate{
		"100": {DirectoryID: "100", FirstName: "Анна", CountryID: 1, CountryName: "Россия"},
	}}
	store := &fakeOperatorStore{}
	registry := newTestRegistry(engine, gateway, store)

	out := registry.HandleInbound(context.Background(), "100", "привет")

	if store.upserts != 1 {
		t.Fatalf("expected operator persisted once, got %d", store.upserts)
	}
	text := out[0].Text
	if !strings.Contains(text, "Анна") {
		t.Fatalf("expected greeting with first name, got %q", text)
	}
	if registry.Len() != 1 {
		t.Fatalf("expected one live session, got %d", registry.Len())
	}
}

func TestSecondMessageReusesSession(t *testing.T) {
	engine := &fakeEngine{}
	gateway := &fakeProfileGateway{profiles: map[string]*model.Candidate{
		"100": {DirectoryID: "100", FirstName: "Анна"},
	}}
	store := &fakeOperatorStore{}
	registry := newTestRegistry(engine, gateway, store)

	registry.HandleInbound(context.Background(), "100", "привет")
	registry.HandleInbound(context.Background(), "100", "да")

	if store.upserts != 1 {
		t.Fatalf("expected a single upsert across turns, got %d", store.upserts)
	}
	if len(engine.handled) != 2 {
		t.Fatalf("expected both messages handled, got %v", engine.handled)
	}
}

func TestIdleTimeoutResetsSession(t *testing.T) {
	engine := &fakeEngine{}
	gateway := &fakeProfileGateway{profiles: map[string]*model.Candidate{
		"100": {DirectoryID: "100", FirstName: "Анна"},
	}}
	registry := newTestRegistry(engine, gateway, &fakeOperatorStore{})

	current := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return current }
	engine.now = registry.now

	registry.HandleInbound(context.Background(), "100", "привет")

	current = current.Add(DefaultIdleTimeout + time.Minute)
	out := registry.HandleInbound(context.Background(), "100", "да")

	if engine.resets != 1 {
		t.Fatalf("expected one absence reset, got %d", engine.resets)
	}
	if !strings.Contains(out[0].Text, "тебя не было") {
		t.Fatalf("expected absence notice first, got %q", out[0].Text)
	}
}

func TestQuitRemovesSession(t *testing.T) {
	engine := &fakeEngine{closeOn: "выход"}
	gateway := &fakeProfileGateway{profiles: map[string]*model.Candidate{
		"100": {DirectoryID: "100", FirstName: "Анна"},
	}}
	registry := newTestRegistry(engine, gateway, &fakeOperatorStore{})

	registry.HandleInbound(context.Background(), "100", "привет")
	registry.HandleInbound(context.Background(), "100", "выход")

	if registry.Len() != 0 {
		t.Fatalf("expected session removed after quit, got %d live", registry.Len())
	}
}

func TestProfileLookupFailureStillStartsSession(t *testing.T) {
	engine := &fakeEngine{}
	gateway := &fakeProfileGateway{fail: true}
	store := &fakeOperatorStore{}
	registry := newTestRegistry(engine, gateway, store)

	registry.HandleInbound(context.Background(), "100", "привет")

	if store.upserts != 1 {
		t.Fatalf("expected bare operator persisted, got %d upserts", store.upserts)
	}
	if registry.Len() != 1 {
		t.Fatalf("expected session created despite lookup failure")
	}
}

func TestPersistFailureAbortsSessionCreate(t *testing.T) {
	engine := &fakeEngine{}
	gateway := &fakeProfileGateway{profiles: map[string]*model.Candidate{}}
	store := &fakeOperatorStore{fail: true}
	registry := newTestRegistry(engine, gateway, store)

	out := registry.HandleInbound(context.Background(), "100", "привет")

	if registry.Len() != 0 {
		t.Fatalf("expected no session after persist failure")
	}
	if len(out) != 1 || out[0].Text != ui.PhraseStorageUnavailable {
		t.Fatalf("expected storage apology, got %+v", out)
	}
	if len(engine.handled) != 0 {
		t.Fatalf("turn must abort before engine dispatch, handled %v", engine.handled)
	}
}

func TestDistinctOperatorsRunConcurrently(t *testing.T) {
	engine := &fakeEngine{}
	gateway := &fakeProfileGateway{profiles: map[string]*model.Candidate{}}
	registry := newTestRegistry(engine, gateway, &fakeOperatorStore{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("op-%d", i)
			registry.HandleInbound(context.Background(), id, "привет")
			registry.HandleInbound(context.Background(), id, "да")
		}(i)
	}
	wg.Wait()

	if registry.Len() != 8 {
		t.Fatalf("expected eight live sessions, got %d", registry.Len())
	}
}
