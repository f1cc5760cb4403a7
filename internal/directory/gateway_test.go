package directory

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/enums"
	"github.com/sourcery-ai-bot/vkinder-bot/internal/domain/model"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL:         srv.URL + "/method/",
		Token:           "test-token",
		RequestInterval: time.Millisecond,
	}, srv.Client(), nil, nil)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client, srv
}

func TestGetUsersSkipsDeactivated(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("user_ids"); got != "100,200" {
			t.Errorf("unexpected user_ids: %s", got)
		}
		fmt.Fprint(w, `{"response": [
			{"id": 100, "first_name": "Анна", "last_name": "Иванова", "sex": 1, "bdate": "2.4.1995"},
			{"id": 200, "first_name": "DELETED", "deactivated": "deleted"}
		]}`)
	}))

	users, err := client.GetUsers(context.Background(), "100", "200")
	if err != nil {
		t.Fatalf("get users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected deactivated profile to be dropped, got %d users", len(users))
	}
	if users[0].DirectoryID != "100" || users[0].FirstName != "Анна" {
		t.Fatalf("unexpected user: %+v", users[0])
	}
	if users[0].Birth.Year != 1995 || users[0].Birth.Day != 2 {
		t.Fatalf("unexpected birth date: %+v", users[0].Birth)
	}
}

func TestSearchUsersSendsOnlySetFilters(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("has_photo") != "1" || q.Get("sort") != "1" {
			t.Errorf("has_photo/sort must always be requested, got %v", q)
		}
		if q.Get("city") != "1" || q.Get("status") != "2" {
			t.Errorf("unexpected city/status: %v", q)
		}
		if q.Get("age_from") != "25" || q.Get("age_to") != "40" {
			t.Errorf("unexpected age bounds: %v", q)
		}
		if _, ok := q["sex"]; ok {
			t.Errorf("sex=any must be omitted, got %v", q)
		}
		fmt.Fprint(w, `{"response": {"count": 1, "items": [
			{"id": 7, "first_name": "Мария", "last_seen": {"time": 1700000000}}
		]}}`)
	}))

	users, err := client.SearchUsers(context.Background(), model.SearchSpec{
		Sex:    enums.SexAny,
		Status: 2,
		CityID: 1,
		MinAge: 25,
		MaxAge: 40,
	})
	if err != nil {
		t.Fatalf("search users: %v", err)
	}
	if len(users) != 1 || users[0].LastSeen != 1700000000 {
		t.Fatalf("unexpected search result: %+v", users)
	}
}

func TestSearchUsersPaginatesUntilShortPage(t *testing.T) {
	var mu sync.Mutex
	offsets := []string{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		offsets = append(offsets, r.URL.Query().Get("offset"))
		call := len(offsets)
		mu.Unlock()

		if call == 1 {
			w.Write([]byte(pageOfUsers(defaultPageSize, 0)))
			return
		}
		w.Write([]byte(pageOfUsers(3, defaultPageSize)))
	}))

	users, err := client.SearchUsers(context.Background(), model.SearchSpec{CityID: 5})
	if err != nil {
		t.Fatalf("search users: %v", err)
	}
	if len(users) != defaultPageSize+3 {
		t.Fatalf("unexpected user count: got %d want %d", len(users), defaultPageSize+3)
	}
	if len(offsets) != 2 || offsets[1] != fmt.Sprint(defaultPageSize) {
		t.Fatalf("unexpected pagination offsets: %v", offsets)
	}
}

func TestSearchUsersDegradesToPartialOnMidPageError(t *testing.T) {
	call := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call++
		if call == 1 {
			w.Write([]byte(pageOfUsers(defaultPageSize, 0)))
			return
		}
		fmt.Fprint(w, `{"error": {"error_code": 6, "error_msg": "Too many requests per second"}}`)
	}))

	users, err := client.SearchUsers(context.Background(), model.SearchSpec{CityID: 5})
	if err != nil {
		t.Fatalf("partial search must not error: %v", err)
	}
	if len(users) != defaultPageSize {
		t.Fatalf("unexpected partial size: got %d want %d", len(users), defaultPageSize)
	}
}

func TestGetCountriesUsesCache(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"response": {"count": 2, "items": [
			{"id": 1, "title": "Россия"},
			{"id": 2, "title": "Украина"}
		]}}`)
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cache := &memoryCountryCache{}
	client, err := NewClient(Config{
		BaseURL:         srv.URL + "/method/",
		Token:           "test-token",
		RequestInterval: time.Millisecond,
	}, srv.Client(), cache, nil)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	for i := 0; i < 2; i++ {
		countries, err := client.GetCountries(context.Background(), "")
		if err != nil {
			t.Fatalf("get countries #%d: %v", i+1, err)
		}
		if len(countries) != 2 || countries[0].Title != "Россия" {
			t.Fatalf("unexpected countries: %+v", countries)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one upstream call thanks to cache, got %d", calls)
	}
}

func TestSearchCitiesByPrefix(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("country_id") != "1" || q.Get("q") != "Моск" {
			t.Errorf("unexpected city query: %v", q)
		}
		fmt.Fprint(w, `{"response": {"count": 1, "items": [
			{"id": 1, "title": "Москва", "region": "Московская область"}
		]}}`)
	}))

	cities, err := client.SearchCities(context.Background(), 1, "Моск")
	if err != nil {
		t.Fatalf("search cities: %v", err)
	}
	if len(cities) != 1 || cities[0].Title != "Москва" {
		t.Fatalf("unexpected cities: %+v", cities)
	}
	if got := cities[0].Label(); got != "Москва (Московская область)" {
		t.Fatalf("unexpected city label: %s", got)
	}
}

func pageOfUsers(count, startID int) string {
	items := ""
	for i := 0; i < count; i++ {
		if i > 0 {
			items += ","
		}
		items += fmt.Sprintf(`{"id": %d, "first_name": "u%d"}`, startID+i+1, startID+i+1)
	}
	return fmt.Sprintf(`{"response": {"count": %d, "items": [%s]}}`, count, items)
}

type memoryCountryCache struct {
	payload []byte
}

func (c *memoryCountryCache) GetCountries(ctx context.Context) ([]byte, bool) {
	return c.payload, c.payload != nil
}

func (c *memoryCountryCache) SetCountries(ctx context.Context, payload []byte) {
	c.payload = payload
}
