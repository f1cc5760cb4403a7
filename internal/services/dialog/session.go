package dialog

import (
	"time"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/enums"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
)

// State is the dialogue position of one operator.
type State int

const (
	// StateWelcome is the very first screen. Quit is ignored here and any
	// unrecognized input just shows the start prompt.
	StateWelcome State = iota
	StatePrompt
	StateHistorySelect
	StateCountryInput
	StateCountrySelect
	StateCityInput
	StateCitySelect
	StateSexSelect
	StateStatusSelect
	StateMinAgeInput
	StateMaxAgeInput
	StatePresentCandidate
	// StateRatedListLoading is transient: the engine passes through it
	// while a search or a rated-list load is in flight.
	StateRatedListLoading
)

// Session is the in-memory dialogue state of one operator. It is owned by
// exactly one engine turn at a time; the registry serializes access per
// operator.
type Session struct {
	Operator     *model.Operator
	State        State
	Draft        model.SearchSpec
	RatingFilter enums.Rating
	History      []model.SearchSpec

	FoundCountries []model.Country
	FoundCities    []model.City

	Candidates []*model.Candidate
	Active     *model.Candidate
	cursor     int

	LastContact time.Time

	// Closed marks the session for removal from the registry after this
	// turn's outbound messages are delivered.
	Closed bool

	historyLoaded bool
}

func NewSession(op *model.Operator, now time.Time) *Session {
	return &Session{
		Operator:     op,
		State:        StateWelcome,
		RatingFilter: enums.RatingNew,
		LastContact:  now,
	}
}

func (s *Session) resetDraft() {
	s.Draft = model.SearchSpec{Sex: enums.SexAny}
}

// nextCandidate advances the cursor past candidates whose rating does not
// match the active filter and returns the next match, or nil when exhausted.
func (s *Session) nextCandidate() *model.Candidate {
	for s.cursor < len(s.Candidates) {
		cand := s.Candidates[s.cursor]
		s.cursor++
		if cand.Rating == s.RatingFilter {
			return cand
		}
	}
	return nil
}

func (s *Session) resetCursor(candidates []*model.Candidate) {
	s.Candidates = candidates
	s.cursor = 0
	s.Active = nil
}
