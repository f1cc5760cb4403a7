package roster

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/enums"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
)

// HistoryLimit caps how many saved searches an operator keeps. Recording a
// new search first trims the history to HistoryLimit-1 newest entries.
const HistoryLimit = 10

type OperatorStore interface {
	Upsert(ctx context.Context, op *model.Operator, forceLocation bool) error
}

type SearchStore interface {
	Record(ctx context.Context, operatorID int64, spec *model.SearchSpec, keep int) error
	ListByOperator(ctx context.Context, operatorID int64) ([]model.SearchSpec, error)
}

type CandidateStore interface {
	UpsertBatch(ctx context.Context, searchID int64, candidates []*model.Candidate) error
}

type RatingStore interface {
	RecordRating(ctx context.Context, operatorID, candidateID int64, rating enums.Rating) error
	MapByDirectoryIDs(ctx context.Context, operatorID int64, directoryIDs []string) (map[string]enums.Rating, error)
	ListByRating(ctx context.Context, operatorID int64, rating enums.Rating) ([]*model.Candidate, error)
}

type PhotoStore interface {
	Replace(ctx context.Context, candidateID int64, photos []model.Photo) error
}

type Dependencies struct {
	Operators  OperatorStore
	Searches   SearchStore
	Candidates CandidateStore
	Ratings    RatingStore
	Photos     PhotoStore
	Logger     *zap.Logger
}

// Service is the persistence facade the dialogue engine talks to. It owns
// the history cap and the rating defaults so callers never see raw rows.
type Service struct {
	operators  OperatorStore
	searches   SearchStore
	candidates CandidateStore
	ratings    RatingStore
	photos     PhotoStore
	logger     *zap.Logger

	historyLimit int
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		operators:    deps.Operators,
		searches:     deps.Searches,
		candidates:   deps.Candidates,
		ratings:      deps.Ratings,
		photos:       deps.Photos,
		logger:       logger,
		historyLimit: HistoryLimit,
	}
}

// UpsertOperator saves the operator profile. A fresh profile always wins for
// the city; the stored country sticks unless forceLocation is set.
func (s *Service) UpsertOperator(ctx context.Context, op *model.Operator, forceLocation bool) error {
	if op == nil {
		return fmt.Errorf("operator is required")
	}
	if err := s.operators.Upsert(ctx, op, forceLocation); err != nil {
		return fmt.Errorf("upsert operator: %w", err)
	}
	return nil
}

// RecordSearch persists a newly composed search and trims older history down
// to the cap. Specs replayed from history carry a nonzero ID and are skipped.
func (s *Service) RecordSearch(ctx context.Context, operatorID int64, spec *model.SearchSpec) error {
	if spec == nil {
		return fmt.Errorf("search spec is required")
	}
	if spec.ID != 0 {
		return nil
	}
	if err := s.searches.Record(ctx, operatorID, spec, s.historyLimit-1); err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	return nil
}

// LoadHistory returns the operator's saved searches, newest first.
func (s *Service) LoadHistory(ctx context.Context, operatorID int64) ([]model.SearchSpec, error) {
	specs, err := s.searches.ListByOperator(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return specs, nil
}

// UpsertCandidates stores a result page and links every row to the search.
func (s *Service) UpsertCandidates(ctx context.Context, searchID int64, candidates []*model.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	if err := s.candidates.UpsertBatch(ctx, searchID, candidates); err != nil {
		return fmt.Errorf("upsert candidates: %w", err)
	}
	return nil
}

// RecordRating stores the operator's verdict for a candidate.
func (s *Service) RecordRating(ctx context.Context, operatorID, candidateID int64, rating enums.Rating) error {
	if err := s.ratings.RecordRating(ctx, operatorID, candidateID, rating); err != nil {
		return fmt.Errorf("record rating: %w", err)
	}
	return nil
}

// ReplacePhotos swaps a candidate's stored photo set.
func (s *Service) ReplacePhotos(ctx context.Context, candidateID int64, photos []model.Photo) error {
	if err := s.photos.Replace(ctx, candidateID, photos); err != nil {
		return fmt.Errorf("replace photos: %w", err)
	}
	return nil
}

// SyncRatings attaches the operator's stored verdicts to fresh directory
// results; profiles never rated before get the new rating. The input slice
// is annotated in place.
func (s *Service) SyncRatings(ctx context.Context, operatorID int64, candidates []*model.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	ids := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		ids = append(ids, cand.DirectoryID)
	}
	stored, err := s.ratings.MapByDirectoryIDs(ctx, operatorID, ids)
	if err != nil {
		return fmt.Errorf("sync ratings: %w", err)
	}
	for _, cand := range candidates {
		rating, ok := stored[cand.DirectoryID]
		if !ok || !rating.Valid() {
			rating = enums.RatingNew
		}
		cand.Rating = rating
	}
	return nil
}

// LoadByRating returns the operator's candidates carrying the given verdict.
func (s *Service) LoadByRating(ctx context.Context, operatorID int64, rating enums.Rating) ([]*model.Candidate, error) {
	list, err := s.ratings.ListByRating(ctx, operatorID, rating)
	if err != nil {
		return nil, fmt.Errorf("load rated candidates: %w", err)
	}
	return list, nil
}
