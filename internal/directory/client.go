package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL    = "https://api.vk.com/method/"
	defaultAPIVersion = "5.124"
	userAgent         = "vkinder-bot"
)

// user fields requested with every profile lookup or search.
var requiredUserFields = []string{"sex", "bdate", "domain", "country", "city", "last_seen", "home_town"}

// RequestError is the single error shape for everything that can go wrong
// talking to the directory: transport failures, decode failures and errors
// reported by the service itself. Callers branch on error presence only,
// never on transport detail.
type RequestError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", e.Op, e.StatusCode)
	default:
		return e.Op
	}
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CountryCache keeps the country catalog between searches; it changes rarely
// enough to fetch once and reuse. Implementations may miss (return ok=false).
type CountryCache interface {
	GetCountries(ctx context.Context) ([]byte, bool)
	SetCountries(ctx context.Context, payload []byte)
}

type Config struct {
	BaseURL         string
	Token           string
	Version         string
	RequestInterval time.Duration
}

// Client is the typed gateway to the remote social directory. All requests
// flow through one shared pacer, which is the single point of rate limiting.
type Client struct {
	baseURL    string
	token      string
	version    string
	httpClient *http.Client
	pacer      *Pacer
	cache      CountryCache
	logger     *zap.Logger

	selfID string
}

func NewClient(cfg Config, httpClient *http.Client, cache CountryCache, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("directory token is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	version := cfg.Version
	if version == "" {
		version = defaultAPIVersion
	}

	return &Client{
		baseURL:    baseURL,
		token:      cfg.Token,
		version:    version,
		httpClient: httpClient,
		pacer:      NewPacer(cfg.RequestInterval),
		cache:      cache,
		logger:     logger,
	}, nil
}

// get performs one paced GET against a directory method and extracts the
// payload at the dotted path. Every endpoint-specific request function is
// built on top of this helper, so nothing bypasses the pacer.
func (c *Client) get(ctx context.Context, method string, params url.Values, path string) (json.RawMessage, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("access_token", c.token)
	query.Set("v", c.version)
	for key, values := range params {
		for _, value := range values {
			query.Add(key, value)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+method+"?"+query.Encode(), nil)
	if err != nil {
		return nil, &RequestError{Op: method, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Op: method, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Op: method, StatusCode: resp.StatusCode, Err: err}
	}

	return extractPayload(method, resp.StatusCode, body, path)
}

type apiError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

// extractPayload normalizes a raw directory response: non-2xx statuses,
// undecodable bodies and service-reported error objects all come out as a
// RequestError. On success it walks the dotted path into the document; when a
// list is met mid-path the walk stops early and returns the list. An empty
// body with no path requested is a valid empty result.
func extractPayload(op string, statusCode int, body []byte, path string) (json.RawMessage, error) {
	if statusCode < 200 || statusCode >= 300 {
		return nil, &RequestError{Op: op, StatusCode: statusCode, Err: fmt.Errorf("request error: %s", http.StatusText(statusCode))}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		if path == "" {
			return nil, nil
		}
		return nil, &RequestError{Op: op, StatusCode: statusCode, Err: fmt.Errorf("object not found")}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &RequestError{Op: op, StatusCode: statusCode, Err: fmt.Errorf("json decode error")}
	}

	if rawErr, ok := doc["error"]; ok {
		var apiErr apiError
		if err := json.Unmarshal(rawErr, &apiErr); err == nil {
			return nil, &RequestError{Op: op, StatusCode: statusCode,
				Err: fmt.Errorf("error %d: %s", apiErr.Code, apiErr.Message)}
		}
		return nil, &RequestError{Op: op, StatusCode: statusCode, Err: fmt.Errorf("directory error")}
	}

	current := json.RawMessage(body)
	for _, key := range strings.Split(path, ".") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if isJSONArray(current) {
			return current, nil
		}
		var node map[string]json.RawMessage
		if err := json.Unmarshal(current, &node); err != nil {
			return nil, &RequestError{Op: op, StatusCode: statusCode, Err: fmt.Errorf("json decode error")}
		}
		next, ok := node[key]
		if !ok {
			return nil, &RequestError{Op: op, StatusCode: statusCode, Err: fmt.Errorf("object not found")}
		}
		current = next
	}
	return current, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// page is the common envelope of every paginated directory listing.
type page struct {
	Count int               `json:"count"`
	Items []json.RawMessage `json:"items"`
}

func decodePage(raw json.RawMessage) (page, error) {
	var p page
	if err := json.Unmarshal(raw, &p); err != nil {
		return page{}, fmt.Errorf("decode page: %w", err)
	}
	return p, nil
}
