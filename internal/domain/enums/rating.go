package enums

type Rating string

const (
	RatingNew      Rating = "new"
	RatingLiked    Rating = "liked"
	RatingDisliked Rating = "disliked"
	RatingBanned   Rating = "banned"
)

func (r Rating) Valid() bool {
	switch r {
	case RatingNew, RatingLiked, RatingDisliked, RatingBanned:
		return true
	default:
		return false
	}
}
