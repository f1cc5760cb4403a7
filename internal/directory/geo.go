package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
)

type countryPayload struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type cityPayload struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Area   string `json:"area"`
	Region string `json:"region"`
}

// GetCountries returns the country catalog, optionally narrowed to
// comma-separated ISO 3166-1 alpha-2 codes. The full catalog is cached
// because it almost never changes.
func (c *Client) GetCountries(ctx context.Context, code string) ([]model.Country, error) {
	if code == "" && c.cache != nil {
		if cached, ok := c.cache.GetCountries(ctx); ok {
			var countries []model.Country
			if err := json.Unmarshal(cached, &countries); err == nil {
				return countries, nil
			}
			c.logger.Warn("country cache entry is malformed, refetching")
		}
	}

	items, err := fetchAll(ctx, defaultPageSize, func(ctx context.Context, offset, limit int) ([]countryPayload, error) {
		params := url.Values{}
		params.Set("count", strconv.Itoa(limit))
		params.Set("offset", strconv.Itoa(offset))
		if code != "" {
			params.Set("code", code)
		} else {
			params.Set("need_all", "1")
		}

		raw, err := c.get(ctx, "database.getCountries", params, "response")
		if err != nil {
			return nil, err
		}
		return decodeGeoPage[countryPayload](raw)
	})
	if err != nil {
		if len(items) == 0 {
			return nil, fmt.Errorf("get countries: %w", err)
		}
		c.logger.Warn("country listing degraded to partial result",
			zap.Int("fetched", len(items)), zap.Error(err))
	}

	countries := make([]model.Country, 0, len(items))
	for _, p := range items {
		countries = append(countries, model.Country{ID: p.ID, Title: p.Title})
	}

	if code == "" && c.cache != nil && len(countries) > 0 {
		if payload, err := json.Marshal(countries); err == nil {
			c.cache.SetCountries(ctx, payload)
		}
	}
	return countries, nil
}

// SearchCities lists cities of a country, filtered by a name prefix when
// given, the whole catalog otherwise.
func (c *Client) SearchCities(ctx context.Context, countryID int, namePrefix string) ([]model.City, error) {
	items, err := fetchAll(ctx, defaultPageSize, func(ctx context.Context, offset, limit int) ([]cityPayload, error) {
		params := url.Values{}
		params.Set("count", strconv.Itoa(limit))
		params.Set("offset", strconv.Itoa(offset))
		if countryID != 0 {
			params.Set("country_id", strconv.Itoa(countryID))
		}
		if namePrefix != "" {
			params.Set("q", namePrefix)
		} else {
			params.Set("need_all", "1")
		}

		raw, err := c.get(ctx, "database.getCities", params, "response")
		if err != nil {
			return nil, err
		}
		return decodeGeoPage[cityPayload](raw)
	})
	if err != nil {
		if len(items) == 0 {
			return nil, fmt.Errorf("search cities: %w", err)
		}
		c.logger.Warn("city search degraded to partial result",
			zap.Int("fetched", len(items)), zap.Error(err))
	}

	cities := make([]model.City, 0, len(items))
	for _, p := range items {
		cities = append(cities, model.City{ID: p.ID, Title: p.Title, Area: p.Area, Region: p.Region})
	}
	return cities, nil
}

func decodeGeoPage[T any](raw json.RawMessage) ([]T, error) {
	p, err := decodePage(raw)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(p.Items))
	for _, item := range p.Items {
		var value T
		if err := json.Unmarshal(item, &value); err != nil {
			return nil, fmt.Errorf("decode catalog item: %w", err)
		}
		items = append(items, value)
	}
	return items, nil
}
