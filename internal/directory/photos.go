package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
)

type PhotoSort string

const (
	SortByPopularity PhotoSort = "popularity"
	SortByDate       PhotoSort = "date"
)

const (
	AlbumProfile = "profile"
	AlbumWall    = "wall"
)

// sizeCodeRank orders legacy size codes from worst to best; used only when
// every size variant reports zero dimensions (photos older than 2012).
var sizeCodeRank = map[string]int{
	"s": 1, "m": 2, "x": 3, "o": 4, "p": 5, "q": 6, "r": 7, "y": 8, "z": 9, "w": 10,
}

type photoPayload struct {
	ID      int64 `json:"id"`
	OwnerID int64 `json:"owner_id"`
	Date    int64 `json:"date"`
	Likes   struct {
		Count int `json:"count"`
	} `json:"likes"`
	Comments struct {
		Count int `json:"count"`
	} `json:"comments"`
	Reposts struct {
		Count int `json:"count"`
	} `json:"reposts"`
	Sizes []photoSize `json:"sizes"`
}

type photoSize struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// GetPhotos fetches every photo of an album, ranks them client-side and
// keeps the top maxCount (zero or negative keeps all). For each kept photo
// the URL of the largest size variant is chosen by pixel area, with the
// legacy size-code ranking as fallback when no variant reports dimensions.
func (c *Client) GetPhotos(ctx context.Context, ownerID, albumID string, maxCount int, sortBy PhotoSort) ([]model.Photo, error) {
	items, err := fetchAll(ctx, defaultPageSize, func(ctx context.Context, offset, limit int) ([]photoPayload, error) {
		params := url.Values{}
		params.Set("count", strconv.Itoa(limit))
		params.Set("offset", strconv.Itoa(offset))
		params.Set("owner_id", ownerID)
		params.Set("album_id", albumID)
		params.Set("rev", "1")
		params.Set("extended", "1")
		params.Set("photo_sizes", "1")

		raw, err := c.get(ctx, "photos.get", params, "response")
		if err != nil {
			return nil, err
		}
		p, err := decodePage(raw)
		if err != nil {
			return nil, err
		}
		payloads := make([]photoPayload, 0, len(p.Items))
		for _, item := range p.Items {
			var photo photoPayload
			if err := json.Unmarshal(item, &photo); err != nil {
				return nil, fmt.Errorf("decode photo: %w", err)
			}
			payloads = append(payloads, photo)
		}
		return payloads, nil
	})
	if err != nil {
		if len(items) == 0 {
			return nil, fmt.Errorf("get photos: %w", err)
		}
		c.logger.Warn("photo listing degraded to partial result",
			zap.Int("fetched", len(items)), zap.Error(err))
	}

	return selectPhotos(items, maxCount, sortBy), nil
}

func selectPhotos(photos []photoPayload, maxCount int, sortBy PhotoSort) []model.Photo {
	if sortBy == SortByDate {
		sort.SliceStable(photos, func(i, j int) bool {
			return photos[i].Date > photos[j].Date
		})
	} else {
		sort.SliceStable(photos, func(i, j int) bool {
			return popularity(photos[i]) > popularity(photos[j])
		})
	}

	if maxCount <= 0 || maxCount > len(photos) {
		maxCount = len(photos)
	}

	result := make([]model.Photo, 0, maxCount)
	for _, photo := range photos[:maxCount] {
		result = append(result, model.Photo{
			ExternalID:    photo.ID,
			OwnerID:       photo.OwnerID,
			URL:           bestSizeURL(photo.Sizes),
			LikesCount:    photo.Likes.Count,
			CommentsCount: photo.Comments.Count,
			RepostsCount:  photo.Reposts.Count,
		})
	}
	return result
}

func popularity(p photoPayload) int {
	return p.Likes.Count + p.Comments.Count + p.Reposts.Count*3
}

func bestSizeURL(sizes []photoSize) string {
	bestURL := ""
	fallbackURL := ""
	maxArea := -1
	maxRank := -1
	for _, size := range sizes {
		if area := size.Height * size.Width; area > maxArea {
			maxArea = area
			bestURL = size.URL
		}
		if rank := sizeCodeRank[size.Type]; rank > maxRank {
			maxRank = rank
			fallbackURL = size.URL
		}
	}
	if maxArea == 0 {
		return fallbackURL
	}
	return bestURL
}
