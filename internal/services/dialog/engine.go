package dialog

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/directory"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/enums"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/ui"
)

const (
	defaultPhotoCount = 3

	minAcceptedAge = 0
	maxAcceptedAge = 127
)

type Gateway interface {
	SearchUsers(ctx context.Context, spec model.SearchSpec) ([]*model.Candidate, error)
	GetCountries(ctx context.Context, code string) ([]model.Country, error)
	SearchCities(ctx context.Context, countryID int, namePrefix string) ([]model.City, error)
	GetPhotos(ctx context.Context, ownerID, albumID string, maxCount int, sortBy directory.PhotoSort) ([]model.Photo, error)
}

type Store interface {
	UpsertOperator(ctx context.Context, op *model.Operator, forceLocation bool) error
	RecordSearch(ctx context.Context, operatorID int64, spec *model.SearchSpec) error
	LoadHistory(ctx context.Context, operatorID int64) ([]model.SearchSpec, error)
	UpsertCandidates(ctx context.Context, searchID int64, candidates []*model.Candidate) error
	RecordRating(ctx context.Context, operatorID, candidateID int64, rating enums.Rating) error
	ReplacePhotos(ctx context.Context, candidateID int64, photos []model.Photo) error
	SyncRatings(ctx context.Context, operatorID int64, candidates []*model.Candidate) error
	LoadByRating(ctx context.Context, operatorID int64, rating enums.Rating) ([]*model.Candidate, error)
}

// Archiver optionally copies a presented candidate's best photo to object
// storage. Implementations must never fail the dialogue turn.
type Archiver interface {
	Archive(ctx context.Context, cand *model.Candidate)
}

type Config struct {
	PhotoCount int
}

type Dependencies struct {
	Gateway  Gateway
	Store    Store
	Archiver Archiver
	Logger   *zap.Logger
}

// Engine interprets one inbound message against the session state and emits
// the outbound messages for that turn. It holds no per-operator state itself;
// everything mutable lives in the Session.
type Engine struct {
	gateway  Gateway
	store    Store
	archiver Archiver
	logger   *zap.Logger
	cfg      Config

	now  func() time.Time
	rand *rand.Rand
}

func NewEngine(deps Dependencies, cfg Config) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PhotoCount <= 0 {
		cfg.PhotoCount = defaultPhotoCount
	}
	return &Engine{
		gateway:  deps.Gateway,
		store:    deps.Store,
		archiver: deps.Archiver,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type handlerFunc func(e *Engine, ctx context.Context, s *Session, input string) []ui.Outbound

type transition struct {
	state State
	cmd   Command
	fn    handlerFunc
}

// The dialogue graph as data. Rows are scanned in order; the first row whose
// state matches and whose command class matches the input wins, so CmdAny
// rows must come last within a state.
var transitions = []transition{
	{StateWelcome, CmdYes, (*Engine).startSearchCreating},
	{StateWelcome, CmdNewSearch, (*Engine).startSearchCreating},
	{StateWelcome, CmdShowHistory, (*Engine).showHistory},
	{StateWelcome, CmdLiked, (*Engine).showRatedList},
	{StateWelcome, CmdDisliked, (*Engine).showRatedList},
	{StateWelcome, CmdBanned, (*Engine).showRatedList},
	{StateWelcome, CmdNo, (*Engine).sayGoodbye},
	{StateWelcome, CmdAny, (*Engine).proposeStart},

	{StatePrompt, CmdYes, (*Engine).startSearchCreating},
	{StatePrompt, CmdNewSearch, (*Engine).startSearchCreating},
	{StatePrompt, CmdShowHistory, (*Engine).showHistory},
	{StatePrompt, CmdLiked, (*Engine).showRatedList},
	{StatePrompt, CmdDisliked, (*Engine).showRatedList},
	{StatePrompt, CmdBanned, (*Engine).showRatedList},
	{StatePrompt, CmdNo, (*Engine).sayGoodbye},

	{StateHistorySelect, CmdBack, (*Engine).proposeStart},
	{StateHistorySelect, CmdAny, (*Engine).onHistoryChoose},

	{StateCountryInput, CmdBack, (*Engine).startSearchCreating},
	{StateCountryInput, CmdAny, (*Engine).onCountryNameInput},

	{StateCountrySelect, CmdBack, (*Engine).proposeCountryInput},
	{StateCountrySelect, CmdAny, (*Engine).onCountryChoose},

	{StateCityInput, CmdBack, (*Engine).proposeStart},
	{StateCityInput, CmdCountry, (*Engine).proposeCountryInput},
	{StateCityInput, CmdAny, (*Engine).onCityNameInput},

	{StateCitySelect, CmdBack, (*Engine).startSearchCreating},
	{StateCitySelect, CmdAny, (*Engine).onCityChoose},

	{StateSexSelect, CmdBack, (*Engine).startSearchCreating},
	{StateSexSelect, CmdAny, (*Engine).onSexChoose},

	{StateStatusSelect, CmdBack, (*Engine).proposeSexChoose},
	{StateStatusSelect, CmdAny, (*Engine).onStatusChoose},

	{StateMinAgeInput, CmdBack, (*Engine).proposeStatusChoose},
	{StateMinAgeInput, CmdAny, (*Engine).onMinAgeEnter},

	{StateMaxAgeInput, CmdBack, (*Engine).proposeMinAgeEnter},
	{StateMaxAgeInput, CmdAny, (*Engine).onMaxAgeEnter},

	{StatePresentCandidate, CmdBack, (*Engine).backFromPresentation},
	{StatePresentCandidate, CmdAny, (*Engine).onDecision},
}

// Handle runs one dialogue turn. Global overrides (quit, self-test) are
// evaluated before the transition table.
func (e *Engine) Handle(ctx context.Context, s *Session, text string) []ui.Outbound {
	s.LastContact = e.now()

	if CmdQuit.Matches(text) && s.State != StateWelcome {
		return e.sayGoodbye(ctx, s, text)
	}
	if CmdTest.Matches(text) {
		return e.runSelfTest(ctx, s)
	}

	for _, row := range transitions {
		if row.state != s.State {
			continue
		}
		if !row.cmd.Matches(text) {
			continue
		}
		return row.fn(e, ctx, s, text)
	}
	return e.unknownCommand(ctx, s, text)
}

// Greet produces the first-contact greeting. The registry calls it right
// after creating a session.
func (e *Engine) Greet(s *Session) []ui.Outbound {
	return []ui.Outbound{ui.Text(fmt.Sprintf(ui.PhraseGreetings, s.Operator.FirstName))}
}

// ResetAfterAbsence puts an idle-expired session back to the welcome screen
// and returns the notice to prepend to the next turn's output.
func (e *Engine) ResetAfterAbsence(s *Session, idleTimeout time.Duration) []ui.Outbound {
	s.State = StateWelcome
	return []ui.Outbound{ui.Text(fmt.Sprintf(ui.PhraseWasAbsent, s.Operator.FirstName, int(idleTimeout.Seconds())))}
}

func (e *Engine) proposeStart(ctx context.Context, s *Session, _ string) []ui.Outbound {
	s.State = StatePrompt
	s.RatingFilter = enums.RatingNew
	if !s.historyLoaded {
		history, err := e.store.LoadHistory(ctx, s.Operator.ID)
		if err != nil {
			e.logger.Warn("load search history failed", zap.Error(err))
		} else {
			s.History = history
			s.historyLoaded = true
		}
	}
	if len(s.History) == 0 {
		return []ui.Outbound{ui.WithKeyboard(ui.PhraseWantToFindPair, kbYesNo)}
	}
	return []ui.Outbound{ui.WithKeyboard(ui.PhraseHaveHistory, kbPrompt)}
}

func (e *Engine) sayGoodbye(ctx context.Context, s *Session, _ string) []ui.Outbound {
	s.Closed = true
	keyboard := kbYesNo
	if len(s.History) > 0 {
		keyboard = kbPrompt
	}
	return []ui.Outbound{ui.WithKeyboard(fmt.Sprintf(ui.PhraseGoodbye, s.Operator.FirstName), keyboard)}
}

func (e *Engine) unknownCommand(_ context.Context, _ *Session, _ string) []ui.Outbound {
	return []ui.Outbound{ui.Text(ui.PhraseDontUnderstand)}
}

func (e *Engine) startSearchCreating(ctx context.Context, s *Session, _ string) []ui.Outbound {
	s.State = StateCityInput
	s.RatingFilter = enums.RatingNew
	s.resetDraft()
	prompt := fmt.Sprintf(ui.PhraseEnterCityNameIn, s.Operator.CountryName)
	return []ui.Outbound{ui.WithKeyboard(prompt, kbCityInput)}
}

func (e *Engine) showHistory(ctx context.Context, s *Session, _ string) []ui.Outbound {
	s.State = StateHistorySelect
	s.RatingFilter = enums.RatingNew
	history, err := e.store.LoadHistory(ctx, s.Operator.ID)
	if err != nil {
		e.logger.Error("load search history failed", zap.Error(err))
		out := []ui.Outbound{ui.Text(ui.PhraseStorageUnavailable)}
		return append(out, e.proposeStart(ctx, s, "")...)
	}
	s.History = history
	s.historyLoaded = true
	if len(history) == 0 {
		out := []ui.Outbound{ui.Text(ui.PhraseNoSearchHistory)}
		return append(out, e.proposeStart(ctx, s, "")...)
	}
	lines := make([]string, 0, len(history))
	for i, spec := range history {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, spec.Summary()))
	}
	return []ui.Outbound{
		ui.WithKeyboard(strings.Join(lines, "\n"), kbBackQuit),
		ui.Text(ui.PhraseChooseHistoryNumber),
	}
}

func (e *Engine) onHistoryChoose(ctx context.Context, s *Session, input string) []ui.Outbound {
	index, ok := parseIndex(input, len(s.History))
	if !ok {
		out := []ui.Outbound{ui.Text(ui.PhraseNoSuchHistory)}
		return append(out, e.showHistory(ctx, s, "")...)
	}
	s.Draft = s.History[index-1]
	return e.runSearch(ctx, s)
}

func (e *Engine) proposeCountryInput(ctx context.Context, s *Session, _ string) []ui.Outbound {
	s.State = StateCountryInput
	return []ui.Outbound{ui.WithKeyboard(ui.PhraseEnterCountryName, kbBackQuit)}
}

func (e *Engine) onCountryNameInput(ctx context.Context, s *Session, input string) []ui.Outbound {
	countries, err := e.gateway.GetCountries(ctx, "")
	if err != nil {
		e.logger.Error("country catalog fetch failed", zap.Error(err))
		out := []ui.Outbound{ui.Text(ui.PhraseNoSuchCountryName)}
		return append(out, e.proposeCountryInput(ctx, s, "")...)
	}
	needle := strings.ToLower(strings.TrimSpace(input))
	var found []model.Country
	for _, country := range countries {
		if strings.Contains(strings.ToLower(country.Title), needle) {
			found = append(found, country)
		}
	}
	if len(found) == 0 {
		out := []ui.Outbound{ui.Text(ui.PhraseNoSuchCountryName)}
		return append(out, e.proposeCountryInput(ctx, s, "")...)
	}
	s.State = StateCountrySelect
	s.FoundCountries = found
	return append(renderCountryList(found), ui.Text(ui.PhraseChooseCountryNumber))
}

func (e *Engine) onCountryChoose(ctx context.Context, s *Session, input string) []ui.Outbound {
	index, ok := parseIndex(input, len(s.FoundCountries))
	if !ok {
		out := []ui.Outbound{ui.Text(ui.PhraseNoSuchCountryInList)}
		out = append(out, renderCountryList(s.FoundCountries)...)
		return append(out, ui.Text(ui.PhraseChooseCountryNumber))
	}
	chosen := s.FoundCountries[index-1]
	s.Operator.CountryID = chosen.ID
	s.Operator.CountryName = chosen.Title
	if err := e.store.UpsertOperator(ctx, s.Operator, true); err != nil {
		e.logger.Error("save operator country failed", zap.Error(err))
		out := []ui.Outbound{ui.Text(ui.PhraseStorageUnavailable)}
		return append(out, e.proposeStart(ctx, s, "")...)
	}
	out := []ui.Outbound{ui.Text(fmt.Sprintf(ui.PhraseChosenCountry, chosen.Title))}
	return append(out, e.startSearchCreating(ctx, s, "")...)
}

func renderCountryList(countries []model.Country) []ui.Outbound {
	lines := make([]string, 0, len(countries))
	for i, country := range countries {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, country.Title))
	}
	return []ui.Outbound{ui.WithKeyboard(strings.Join(lines, "\n"), kbBackQuit)}
}

func (e *Engine) onCityNameInput(ctx context.Context, s *Session, input string) []ui.Outbound {
	cities, err := e.gateway.SearchCities(ctx, s.Operator.CountryID, strings.TrimSpace(input))
	if err != nil {
		e.logger.Error("city search failed", zap.Error(err))
		out := []ui.Outbound{ui.Text(ui.PhraseNoSuchCityName)}
		return append(out, e.startSearchCreating(ctx, s, "")...)
	}
	if len(cities) == 0 {
		out := []ui.Outbound{ui.Text(ui.PhraseNoSuchCityName)}
		return append(out, e.startSearchCreating(ctx, s, "")...)
	}
	s.State = StateCitySelect
	s.FoundCities = cities
	return append(renderCityList(cities), ui.Text(ui.PhraseChooseCityNumber))
}

func (e *Engine) onCityChoose(ctx context.Context, s *Session, input string) []ui.Outbound {
	index, ok := parseIndex(input, len(s.FoundCities))
	if !ok {
		out := []ui.Outbound{ui.Text(ui.PhraseNoSuchCityInList)}
		out = append(out, renderCityList(s.FoundCities)...)
		return append(out, ui.Text(ui.PhraseChooseCityNumber))
	}
	chosen := s.FoundCities[index-1]
	s.Draft.CityID = chosen.ID
	s.Draft.CityName = chosen.Title
	out := []ui.Outbound{ui.Text(fmt.Sprintf(ui.PhraseChosenCity, chosen.Title))}
	return append(out, e.proposeSexChoose(ctx, s, "")...)
}

func renderCityList(cities []model.City) []ui.Outbound {
	lines := make([]string, 0, len(cities))
	for i, city := range cities {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, city.Label()))
	}
	return []ui.Outbound{ui.WithKeyboard(strings.Join(lines, "\n"), kbBackQuit)}
}

func (e *Engine) proposeSexChoose(ctx context.Context, s *Session, _ string) []ui.Outbound {
	s.State = StateSexSelect
	lines := make([]string, 0, enums.SexCount())
	for id := enums.SexAny; id < enums.Sex(enums.SexCount()); id++ {
		lines = append(lines, fmt.Sprintf("%d. %s", int(id), id.Title()))
	}
	return []ui.Outbound{
		ui.WithKeyboard(strings.Join(lines, "\n"), kbSexSelect),
		ui.Text(ui.PhraseChooseSexNumber),
	}
}

func (e *Engine) onSexChoose(ctx context.Context, s *Session, input string) []ui.Outbound {
	var (
		sex enums.Sex
		ok  bool
	)
	switch {
	case CmdWoman.Matches(input):
		sex, ok = enums.SexFemale, true
	case CmdMan.Matches(input):
		sex, ok = enums.SexMale, true
	case CmdAnybody.Matches(input):
		sex, ok = enums.SexAny, true
	default:
		if v, err := strconv.Atoi(strings.TrimSpace(input)); err == nil && enums.Sex(v).Valid() {
			sex, ok = enums.Sex(v), true
		}
	}
	if !ok {
		out := []ui.Outbound{ui.Text(ui.PhraseNoSuchSexInList)}
		return append(out, e.proposeSexChoose(ctx, s, "")...)
	}
	s.Draft.Sex = sex
	out := []ui.Outbound{ui.Text(fmt.Sprintf(ui.PhraseChosenSex, sex.Title()))}
	return append(out, e.proposeStatusChoose(ctx, s, "")...)
}

func (e *Engine) proposeStatusChoose(ctx context.Context, s *Session, _ string) []ui.Outbound {
	s.State = StateStatusSelect
	lines := make([]string, 0, enums.LoveStatusCount())
	for _, id := range enums.LoveStatusList() {
		lines = append(lines, fmt.Sprintf("%d. %s", int(id), id.Title()))
	}
	return []ui.Outbound{
		ui.WithKeyboard(strings.Join(lines, "\n"), kbBackQuit),
		ui.Text(ui.PhraseChooseStatusNumber),
	}
}

func (e *Engine) onStatusChoose(ctx context.Context, s *Session, input string) []ui.Outbound {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || !enums.LoveStatus(v).Valid() {
		out := []ui.Outbound{ui.Text(ui.PhraseNoSuchStatusInList)}
		return append(out, e.proposeStatusChoose(ctx, s, "")...)
	}
	s.Draft.Status = enums.LoveStatus(v)
	out := []ui.Outbound{ui.Text(fmt.Sprintf(ui.PhraseChosenStatus, s.Draft.Status.Title()))}
	return append(out, e.proposeMinAgeEnter(ctx, s, "")...)
}

func (e *Engine) proposeMinAgeEnter(ctx context.Context, s *Session, _ string) []ui.Outbound {
	s.State = StateMinAgeInput
	return []ui.Outbound{ui.WithKeyboard(ui.PhraseEnterMinAge, kbBackQuit)}
}

func (e *Engine) onMinAgeEnter(ctx context.Context, s *Session, input string) []ui.Outbound {
	age, ok := parseAge(input)
	if !ok {
		out := []ui.Outbound{ui.Text(ui.PhraseErrorInAge)}
		return append(out, e.proposeMinAgeEnter(ctx, s, "")...)
	}
	s.Draft.MinAge = age
	s.State = StateMaxAgeInput
	return []ui.Outbound{ui.WithKeyboard(fmt.Sprintf(ui.PhraseEnterMaxAge, s.Draft.MinAge), kbBackQuit)}
}

func (e *Engine) onMaxAgeEnter(ctx context.Context, s *Session, input string) []ui.Outbound {
	age, ok := parseAge(input)
	if !ok {
		out := []ui.Outbound{ui.Text(ui.PhraseErrorInAge)}
		return append(out, e.proposeMinAgeEnter(ctx, s, "")...)
	}
	if age < s.Draft.MinAge {
		out := []ui.Outbound{ui.Text(ui.PhraseMinAgeMoreMaxAge)}
		return append(out, e.proposeMinAgeEnter(ctx, s, "")...)
	}
	s.Draft.MaxAge = age
	out := []ui.Outbound{ui.Text(fmt.Sprintf(ui.PhraseChosenAges, s.Draft.MinAge, s.Draft.MaxAge))}
	return append(out, e.runSearch(ctx, s)...)
}

func (e *Engine) runSelfTest(ctx context.Context, s *Session) []ui.Outbound {
	s.resetDraft()
	s.Draft.Sex = enums.Sex(e.rand.Intn(2))
	s.Draft.Status = enums.LoveStatus(1 + e.rand.Intn(enums.LoveStatusCount()-1))
	s.Draft.CityID = 1
	s.Draft.CityName = "Москва"
	s.Draft.MinAge = e.rand.Intn(60)
	s.Draft.MaxAge = s.Draft.MinAge + e.rand.Intn(maxAcceptedAge-s.Draft.MinAge)
	s.RatingFilter = enums.RatingNew
	return e.runSearch(ctx, s)
}

func parseIndex(input string, listLen int) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || v < 1 || v > listLen {
		return 0, false
	}
	return v, true
}

func parseAge(input string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || v < minAcceptedAge || v > maxAcceptedAge {
		return 0, false
	}
	return v, true
}
