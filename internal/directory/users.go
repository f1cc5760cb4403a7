package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/enums"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
)

type userPayload struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Deactivated string `json:"deactivated"`
	Sex         int    `json:"sex"`
	IsClosed    bool   `json:"is_closed"`
	Domain      string `json:"domain"`
	BirthDate   string `json:"bdate"`
	HomeTown    string `json:"home_town"`
	Country     struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	} `json:"country"`
	City struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	} `json:"city"`
	LastSeen struct {
		Time int64 `json:"time"`
	} `json:"last_seen"`
}

func (p userPayload) toCandidate() *model.Candidate {
	cand := &model.Candidate{
		DirectoryID: strconv.FormatInt(p.ID, 10),
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Domain:      p.Domain,
		Sex:         enums.Sex(p.Sex),
		IsClosed:    p.IsClosed,
		CountryID:   p.Country.ID,
		CountryName: p.Country.Title,
		CityID:      p.City.ID,
		CityName:    p.City.Title,
		Hometown:    p.HomeTown,
		Birth:       model.ParseBirthDate(p.BirthDate),
		LastSeen:    p.LastSeen.Time,
		Rating:      enums.RatingNew,
	}
	// Profiles without an explicit country belong to the directory's home
	// region catalog entry.
	if cand.CountryID == 0 {
		cand.CountryID = 1
		cand.CountryName = "Россия"
	}
	return cand
}

// GetUsers looks up directory profiles by id; without ids it resolves the
// profile that owns the access token. This is a single-page operation.
// Deactivated profiles are treated as not found.
func (c *Client) GetUsers(ctx context.Context, ids ...string) ([]*model.Candidate, error) {
	params := url.Values{}
	params.Set("fields", strings.Join(requiredUserFields, ","))
	if len(ids) > 0 {
		params.Set("user_ids", strings.Join(ids, ","))
	}

	raw, err := c.get(ctx, "users.get", params, "response")
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	var payloads []userPayload
	if err := json.Unmarshal(raw, &payloads); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*model.Candidate, 0, len(payloads))
	for _, p := range payloads {
		if p.Deactivated != "" {
			continue
		}
		users = append(users, p.toCandidate())
	}
	return users, nil
}

// SearchUsers runs a paginated profile search. Filters are passed through
// only when set; the request always demands a photo and server-side sort.
// A mid-pagination failure degrades to the pages fetched so far.
func (c *Client) SearchUsers(ctx context.Context, spec model.SearchSpec) ([]*model.Candidate, error) {
	items, err := fetchAll(ctx, defaultPageSize, func(ctx context.Context, offset, limit int) ([]userPayload, error) {
		params := url.Values{}
		params.Set("count", strconv.Itoa(limit))
		params.Set("offset", strconv.Itoa(offset))
		params.Set("online", "0")
		params.Set("has_photo", "1")
		params.Set("sort", "1")
		params.Set("fields", strings.Join(requiredUserFields, ","))
		if spec.CityID != 0 {
			params.Set("city", strconv.Itoa(spec.CityID))
		}
		if spec.Sex != enums.SexAny {
			params.Set("sex", strconv.Itoa(int(spec.Sex)))
		}
		if spec.Status != 0 {
			params.Set("status", strconv.Itoa(int(spec.Status)))
		}
		if spec.MinAge > 0 {
			params.Set("age_from", strconv.Itoa(spec.MinAge))
		}
		if spec.MaxAge > 0 {
			params.Set("age_to", strconv.Itoa(spec.MaxAge))
		}

		raw, err := c.get(ctx, "users.search", params, "response")
		if err != nil {
			return nil, err
		}
		p, err := decodePage(raw)
		if err != nil {
			return nil, err
		}
		payloads := make([]userPayload, 0, len(p.Items))
		for _, item := range p.Items {
			var u userPayload
			if err := json.Unmarshal(item, &u); err != nil {
				return nil, fmt.Errorf("decode user: %w", err)
			}
			payloads = append(payloads, u)
		}
		return payloads, nil
	})
	if err != nil {
		if len(items) == 0 {
			return nil, fmt.Errorf("search users: %w", err)
		}
		c.logger.Warn("user search degraded to partial result",
			zap.Int("fetched", len(items)), zap.Error(err))
	}

	users := make([]*model.Candidate, 0, len(items))
	now := time.Now()
	for _, p := range items {
		cand := p.toCandidate()
		cand.UpdatedAt = now
		users = append(users, cand)
	}
	return users, nil
}
