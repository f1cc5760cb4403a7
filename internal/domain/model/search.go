package model

import (
	"fmt"
	"time"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/enums"
)

// SearchSpec is the filter for one directory search. ID is zero while the
// spec is still being built in a dialogue; it is assigned on first persist.
// A spec re-run from history keeps its ID and is not stored again.
type SearchSpec struct {
	ID       int64
	Sex      enums.Sex
	Status   enums.LoveStatus
	CityID   int
	CityName string
	MinAge   int
	MaxAge   int
	SavedAt  time.Time
}

func (s SearchSpec) Summary() string {
	return fmt.Sprintf("%s, %s, %s, от %d до %d лет",
		s.CityName, s.Sex.Title(), s.Status.Title(), s.MinAge, s.MaxAge)
}
