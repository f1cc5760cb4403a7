package model

import (
	"time"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/enums"
)

// Operator is the bot end-user. Country is sticky across visits: once stored
// it wins over the freshly observed profile location unless the operator
// explicitly picks a new country.
type Operator struct {
	ID          int64
	DirectoryID string
	FirstName   string
	LastName    string
	Domain      string
	Sex         enums.Sex
	CountryID   int
	CountryName string
	CityID      int
	CityName    string
	Hometown    string
	Birth       BirthDate
	LastContact time.Time
}

func (o *Operator) FullName() string {
	if o.LastName == "" {
		return o.FirstName
	}
	return o.FirstName + " " + o.LastName
}
