package model

// Photo is a point-in-time snapshot of one candidate attachment. Stored
// photos are fully replaced every time the candidate is presented.
type Photo struct {
	ExternalID    int64
	OwnerID       int64
	URL           string
	LikesCount    int
	CommentsCount int
	RepostsCount  int
}
