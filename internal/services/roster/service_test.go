package roster

import (
	"context"
	"fmt"
	"testing"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/enums"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
)

type fakeSearchStore struct {
	recorded []model.SearchSpec
	keep     int
	listed   []model.SearchSpec
	nextID   int64
}

func (f *fakeSearchStore) Record(ctx context.Context, operatorID int64, spec *model.SearchSpec, keep int) error {
	f.keep = keep
	f.nextID++
	spec.ID = f.nextID
	f.recorded = append(f.recorded, *spec)
	return nil
}

func (f *fakeSearchStore) ListByOperator(ctx context.Context, operatorID int64) ([]model.SearchSpec, error) {
	return f.listed, nil
}

type fakeRatingStore struct {
	stored   map[string]enums.Rating
	verdicts map[int64]enums.Rating
	byRating []*model.Candidate
	mapErr   error
}

func (f *fakeRatingStore) RecordRating(ctx context.Context, operatorID, candidateID int64, rating enums.Rating) error {
	if f.verdicts == nil {
		f.verdicts = map[int64]enums.Rating{}
	}
	f.verdicts[candidateID] = rating
	return nil
}

func (f *fakeRatingStore) MapByDirectoryIDs(ctx context.Context, operatorID int64, directoryIDs []string) (map[string]enums.Rating, error) {
	if f.mapErr != nil {
		return nil, f.mapErr
	}
	out := map[string]enums.Rating{}
	for _, id := range directoryIDs {
		if rating, ok := f.stored[id]; ok {
			out[id] = rating
		}
	}
	return out, nil
}

func (f *fakeRatingStore) ListByRating(ctx context.Context, operatorID int64, rating enums.Rating) ([]*model.Candidate, error) {
	return f.byRating, nil
}

type fakeOperatorStore struct {
	lastForce bool
	calls     int
}

func (f *fakeOperatorStore) Upsert(ctx context.Context, op *model.Operator, forceLocation bool) error {
	f.calls++
	f.lastForce = forceLocation
	op.ID = 7
	return nil
}

type fakeCandidateStore struct {
	searchID int64
	batch    []*model.Candidate
}

func (f *fakeCandidateStore) UpsertBatch(ctx context.Context, searchID int64, candidates []*model.Candidate) error {
	f.searchID = searchID
	f.batch = candidates
	return nil
}

type fakePhotoStore struct {
	candidateID int64
	photos      []model.Photo
}

func (f *fakePhotoStore) Replace(ctx context.Context, candidateID int64, photos []model.Photo) error {
	f.candidateID = candidateID
	f.photos = photos
	return nil
}

func newTestService(searches *fakeSearchStore, ratings *fakeRatingStore) (*Service, *fakeOperatorStore, *fakeCandidateStore, *fakePhotoStore) {
	operators := &fakeOperatorStore{}
	candidates := &fakeCandidateStore{}
	photos := &fakePhotoStore{}
	svc := NewService(Dependencies{
		Operators:  operators,
		Searches:   searches,
		Candidates: candidates,
		Ratings:    ratings,
		Photos:     photos,
	})
	return svc, operators, candidates, photos
}

func TestRecordSearchTrimsToHistoryCap(t *testing.T) {
	searches := &fakeSearchStore{}
	svc, _, _, _ := newTestService(searches, &fakeRatingStore{})

	spec := &model.SearchSpec{Sex: enums.SexFemale, MinAge: 20, MaxAge: 30}
	if err := svc.RecordSearch(context.Background(), 1, spec); err != nil {
		t.Fatalf("record search: %v", err)
	}

	if searches.keep != HistoryLimit-1 {
		t.Fatalf("expected trim to %d entries, got %d", HistoryLimit-1, searches.keep)
	}
	if spec.ID == 0 {
		t.Fatalf("expected spec id filled after record")
	}
}

func TestRecordSearchSkipsHistoryReplay(t *testing.T) {
	searches := &fakeSearchStore{}
	svc, _, _, _ := newTestService(searches, &fakeRatingStore{})

	spec := &model.SearchSpec{ID: 42, Sex: enums.SexMale}
	if err := svc.RecordSearch(context.Background(), 1, spec); err != nil {
		t.Fatalf("record search: %v", err)
	}

	if len(searches.recorded) != 0 {
		t.Fatalf("expected no record call for a replayed spec, got %d", len(searches.recorded))
	}
	if spec.ID != 42 {
		t.Fatalf("expected spec id untouched, got %d", spec.ID)
	}
}

func TestSyncRatingsDefaultsToNew(t *testing.T) {
	ratings := &fakeRatingStore{stored: map[string]enums.Rating{
		"10": enums.RatingLiked,
		"30": enums.RatingBanned,
	}}
	svc, _, _, _ := newTestService(&fakeSearchStore{}, ratings)

	candidates := []*model.Candidate{
		{DirectoryID: "10"},
		{DirectoryID: "20"},
		{DirectoryID: "30"},
	}
	if err := svc.SyncRatings(context.Background(), 1, candidates); err != nil {
		t.Fatalf("sync ratings: %v", err)
	}

	want := []enums.Rating{enums.RatingLiked, enums.RatingNew, enums.RatingBanned}
	for i, cand := range candidates {
		if cand.Rating != want[i] {
			t.Fatalf("candidate %s: expected rating %s, got %s", cand.DirectoryID, want[i], cand.Rating)
		}
	}
}

func TestSyncRatingsPropagatesStoreError(t *testing.T) {
	ratings := &fakeRatingStore{mapErr: fmt.Errorf("connection refused")}
	svc, _, _, _ := newTestService(&fakeSearchStore{}, ratings)

	err := svc.SyncRatings(context.Background(), 1, []*model.Candidate{{DirectoryID: "10"}})
	if err == nil {
		t.Fatalf("expected error from rating store")
	}
}

func TestUpsertOperatorPassesForceFlag(t *testing.T) {
	svc, operators, _, _ := newTestService(&fakeSearchStore{}, &fakeRatingStore{})

	op := &model.Operator{DirectoryID: "99", FirstName: "Анна"}
	if err := svc.UpsertOperator(context.Background(), op, true); err != nil {
		t.Fatalf("upsert operator: %v", err)
	}

	if !operators.lastForce {
		t.Fatalf("expected force location flag forwarded")
	}
	if op.ID != 7 {
		t.Fatalf("expected operator id filled by store, got %d", op.ID)
	}
}

func TestUpsertCandidatesSkipsEmptyBatch(t *testing.T) {
	svc, _, candidates, _ := newTestService(&fakeSearchStore{}, &fakeRatingStore{})

	if err := svc.UpsertCandidates(context.Background(), 5, nil); err != nil {
		t.Fatalf("upsert candidates: %v", err)
	}
	if candidates.searchID != 0 {
		t.Fatalf("expected no store call for empty batch")
	}

	batch := []*model.Candidate{{DirectoryID: "1"}}
	if err := svc.UpsertCandidates(context.Background(), 5, batch); err != nil {
		t.Fatalf("upsert candidates: %v", err)
	}
	if candidates.searchID != 5 || len(candidates.batch) != 1 {
		t.Fatalf("expected batch forwarded to store")
	}
}
