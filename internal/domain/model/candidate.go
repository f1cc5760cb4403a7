package model

import (
	"time"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/enums"
)

// Candidate is a directory profile an operator evaluates. The rating tag is
// scoped to the viewing operator and filled in by the rating sync.
type Candidate struct {
	ID          int64
	DirectoryID string
	FirstName   string
	LastName    string
	Domain      string
	Sex         enums.Sex
	IsClosed    bool
	CountryID   int
	CountryName string
	CityID      int
	CityName    string
	Hometown    string
	Birth       BirthDate
	LastSeen    int64
	Rating      enums.Rating
	Photos      []Photo
	UpdatedAt   time.Time
}

func (c *Candidate) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
