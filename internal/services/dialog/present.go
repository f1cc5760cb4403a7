package dialog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/directory"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/enums"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/ui"
)

// runSearch executes the draft spec against the directory: persist the spec,
// fetch, drop closed and never-seen profiles, rank by last seen, reconcile
// ratings and hand the new subset to the presentation cursor.
func (e *Engine) runSearch(ctx context.Context, s *Session) []ui.Outbound {
	s.State = StateRatedListLoading
	wasNew := s.Draft.ID == 0

	out := []ui.Outbound{ui.Text(fmt.Sprintf("%s\n(%s)", ui.PhraseStartedSearch, searchParams(s.Draft)))}

	if err := e.store.RecordSearch(ctx, s.Operator.ID, &s.Draft); err != nil {
		e.logger.Error("record search failed", zap.Error(err))
		out = append(out, ui.Text(ui.PhraseStorageUnavailable))
		return append(out, e.proposeStart(ctx, s, "")...)
	}
	if wasNew {
		s.History = append([]model.SearchSpec{s.Draft}, s.History...)
	}

	found, err := e.gateway.SearchUsers(ctx, s.Draft)
	if err != nil {
		e.logger.Error("directory search failed", zap.Error(err))
		out = append(out, ui.Text(ui.PhraseNoPeoplesFound))
		return append(out, e.proposeStart(ctx, s, "")...)
	}

	visible := found[:0]
	for _, cand := range found {
		if cand.IsClosed || cand.LastSeen == 0 {
			continue
		}
		visible = append(visible, cand)
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].LastSeen > visible[j].LastSeen
	})
	if len(visible) == 0 {
		out = append(out, ui.Text(ui.PhraseNoPeoplesFound))
		return append(out, e.proposeStart(ctx, s, "")...)
	}

	if err := e.store.SyncRatings(ctx, s.Operator.ID, visible); err != nil {
		e.logger.Error("sync ratings failed", zap.Error(err))
		out = append(out, ui.Text(ui.PhraseStorageUnavailable))
		return append(out, e.proposeStart(ctx, s, "")...)
	}

	counts := ratingCounts(visible)
	out = append(out, ui.Text(fmt.Sprintf(ui.PhraseFoundPeoples, len(visible),
		counts[enums.RatingNew], counts[enums.RatingLiked],
		counts[enums.RatingDisliked], counts[enums.RatingBanned])))

	if counts[enums.RatingNew] == 0 {
		out = append(out, ui.Text(ui.PhraseNoNewPeoplesFound))
		return append(out, e.proposeStart(ctx, s, "")...)
	}

	if err := e.store.UpsertCandidates(ctx, s.Draft.ID, visible); err != nil {
		e.logger.Error("store candidates failed", zap.Error(err))
		out = append(out, ui.Text(ui.PhraseStorageUnavailable))
		return append(out, e.proposeStart(ctx, s, "")...)
	}

	s.resetCursor(visible)
	return append(out, e.showNext(ctx, s)...)
}

// showRatedList loads a previously judged candidate list and browses it with
// the same presentation cursor as a fresh search.
func (e *Engine) showRatedList(ctx context.Context, s *Session, input string) []ui.Outbound {
	s.State = StateRatedListLoading
	switch {
	case CmdBanned.Matches(input):
		s.RatingFilter = enums.RatingBanned
	case CmdDisliked.Matches(input):
		s.RatingFilter = enums.RatingDisliked
	default:
		s.RatingFilter = enums.RatingLiked
	}

	candidates, err := e.store.LoadByRating(ctx, s.Operator.ID, s.RatingFilter)
	if err != nil {
		e.logger.Error("load rated candidates failed", zap.Error(err))
		out := []ui.Outbound{ui.Text(ui.PhraseStorageUnavailable)}
		return append(out, e.proposeStart(ctx, s, "")...)
	}
	if len(candidates) == 0 {
		out := []ui.Outbound{ui.Text(ui.PhraseNoPeoplesFound)}
		return append(out, e.proposeStart(ctx, s, "")...)
	}
	s.resetCursor(candidates)
	return e.showNext(ctx, s)
}

// showNext presents the next candidate matching the active rating filter or
// returns to the start prompt when the cursor is exhausted.
func (e *Engine) showNext(ctx context.Context, s *Session) []ui.Outbound {
	s.State = StatePresentCandidate
	s.Active = s.nextCandidate()
	if s.Active == nil {
		out := []ui.Outbound{ui.Text(ui.PhraseLetsStartAgain)}
		return append(out, e.proposeStart(ctx, s, "")...)
	}
	cand := s.Active

	photos, err := e.gateway.GetPhotos(ctx, cand.DirectoryID, directory.AlbumProfile, e.cfg.PhotoCount, directory.SortByPopularity)
	if err != nil {
		e.logger.Warn("profile photos fetch failed", zap.String("candidate", cand.DirectoryID), zap.Error(err))
	}
	if len(photos) == 0 {
		photos, err = e.gateway.GetPhotos(ctx, cand.DirectoryID, directory.AlbumWall, e.cfg.PhotoCount, directory.SortByPopularity)
		if err != nil {
			e.logger.Warn("wall photos fetch failed", zap.String("candidate", cand.DirectoryID), zap.Error(err))
		}
	}
	cand.Photos = photos

	urls := make([]string, 0, len(photos))
	for _, photo := range photos {
		urls = append(urls, photo.URL)
	}

	out := []ui.Outbound{
		{Text: presentCard(cand, e.now()), PhotoURLs: urls, Keyboard: kbDecision},
		ui.Text(ui.PhraseDoYouLikeIt),
	}

	if cand.ID != 0 {
		if err := e.store.ReplacePhotos(ctx, cand.ID, photos); err != nil {
			e.logger.Warn("store photos failed", zap.Int64("candidate_id", cand.ID), zap.Error(err))
		}
	}
	if e.archiver != nil {
		e.archiver.Archive(ctx, cand)
	}
	return out
}

func (e *Engine) onDecision(ctx context.Context, s *Session, input string) []ui.Outbound {
	if s.Active == nil {
		return e.proposeStart(ctx, s, "")
	}
	var rating enums.Rating
	switch {
	case CmdYes.Matches(input):
		rating = enums.RatingLiked
	case CmdNo.Matches(input):
		rating = enums.RatingDisliked
	case CmdBan.Matches(input):
		rating = enums.RatingBanned
	default:
		return e.unknownCommand(ctx, s, input)
	}

	s.Active.Rating = rating
	if err := e.store.RecordRating(ctx, s.Operator.ID, s.Active.ID, rating); err != nil {
		e.logger.Error("record rating failed", zap.Error(err))
		out := []ui.Outbound{ui.Text(ui.PhraseStorageUnavailable)}
		return append(out, e.proposeStart(ctx, s, "")...)
	}
	return e.showNext(ctx, s)
}

// backFromPresentation leaves the card view: during a fresh search it steps
// back to the age prompt, during rated-list browsing to the start prompt.
func (e *Engine) backFromPresentation(ctx context.Context, s *Session, _ string) []ui.Outbound {
	if s.RatingFilter == enums.RatingNew {
		return e.proposeMinAgeEnter(ctx, s, "")
	}
	return e.proposeStart(ctx, s, "")
}

func presentCard(cand *model.Candidate, now time.Time) string {
	card := cand.FullName()
	details := cand.CityName
	if age := cand.Birth.Age(now); age > 0 {
		if details != "" {
			details += ", "
		}
		details += fmt.Sprintf("возраст: %d", age)
	}
	if details != "" {
		card += " (" + details + ")"
	}
	card += ui.LastSeen(cand.LastSeen, now)
	card += "\nhttps://vk.com/" + cand.Domain
	return card
}

func searchParams(spec model.SearchSpec) string {
	return fmt.Sprintf(ui.PhraseSearchParams,
		spec.CityName, spec.Sex.Title(), spec.Status.Title(), spec.MinAge, spec.MaxAge)
}

func ratingCounts(candidates []*model.Candidate) map[enums.Rating]int {
	counts := make(map[enums.Rating]int, 4)
	for _, cand := range candidates {
		counts[cand.Rating]++
	}
	return counts
}
