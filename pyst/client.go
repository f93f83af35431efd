// Package pyst is a client for the PyST vocabulary service, used to suggest
// ontology concepts for data columns.
package pyst

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// DefaultHost is used when no host is configured.
const DefaultHost = "http://localhost:8000"

// authHeader is the PyST authentication header; the service does not use
// bearer tokens.
const authHeader = "x-pyst-auth-token"

const maxQueryLength = 500

// SupportedLanguages lists the ISO 639-1 codes the suggest endpoint accepts.
var SupportedLanguages = []string{"da", "de", "en", "es", "fr", "it", "pt"}

var (
	ErrEmptyQuery          = errors.New("pyst: query must not be empty")
	ErrQueryTooLong        = fmt.Errorf("pyst: query exceeds %d characters", maxQueryLength)
	ErrUnsupportedLanguage = errors.New("pyst: unsupported language")
)

// Concept is one suggestion returned by the service.
type Concept struct {
	IRI        string  `json:"iri"`
	Label      string  `json:"label"`
	Definition string  `json:"definition,omitempty"`
	Scheme     string  `json:"scheme,omitempty"`
	Score      float64 `json:"score,omitempty"`
}

// UnmarshalJSON tolerates the identifier and label key spellings seen across
// PyST deployments: "iri"/"id"/"id_"/"uri" and "label"/"name".
func (c *Concept) UnmarshalJSON(b []byte) error {
	var raw struct {
		IRI        string  `json:"iri"`
		ID         string  `json:"id"`
		IDAlt      string  `json:"id_"`
		URI        string  `json:"uri"`
		Label      string  `json:"label"`
		Name       string  `json:"name"`
		Definition string  `json:"definition"`
		Scheme     string  `json:"scheme"`
		Score      float64 `json:"score"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.IRI = firstNonEmpty(raw.IRI, raw.ID, raw.IDAlt, raw.URI)
	c.Label = firstNonEmpty(raw.Label, raw.Name)
	c.Definition = raw.Definition
	c.Scheme = raw.Scheme
	c.Score = raw.Score
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Client talks to one PyST host. It is safe for concurrent use.
type Client struct {
	host       string
	authToken  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAuthToken sets the authentication token sent on every request.
func WithAuthToken(token string) Option {
	return func(c *Client) { c.authToken = token }
}

// WithTimeout overrides the default 30s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client for the given host. An empty host falls back to
// DefaultHost.
func NewClient(host string, opts ...Option) *Client {
	if host == "" {
		host = DefaultHost
	}
	c := &Client{
		host:       strings.TrimRight(host, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Suggest queries /concepts/suggest/ for concepts matching query in the
// given language. The query is trimmed before sending; validation failures
// are reported without a round trip.
func (c *Client) Suggest(ctx context.Context, query, language string) ([]Concept, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if len(query) > maxQueryLength {
		return nil, ErrQueryTooLong
	}
	language = strings.ToLower(strings.TrimSpace(language))
	if !supportedLanguage(language) {
		return nil, fmt.Errorf("%w: %q (supported: %s)",
			ErrUnsupportedLanguage, language, strings.Join(SupportedLanguages, ", "))
	}

	u := c.host + "/concepts/suggest/?" + url.Values{
		"query":    {query},
		"language": {language},
	}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("pyst: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set(authHeader, c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pyst: suggest %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pyst: suggest %q: status %d: %s",
			query, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var concepts []Concept
	if err := json.NewDecoder(resp.Body).Decode(&concepts); err != nil {
		return nil, fmt.Errorf("pyst: decode response: %w", err)
	}
	return concepts, nil
}

func supportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// stop words skipped when deriving a search term from a column name.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "per": true,
	"total": true, "avg": true, "mean": true, "sum": true, "value": true,
}

// SearchTerm derives a suggest query from a column name: the name is split
// on underscores, dashes and spaces, and the first token that is neither a
// stop word nor trivially short is used. Falls back to the first token.
func SearchTerm(columnName string) string {
	fields := strings.FieldsFunc(strings.ToLower(columnName), func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for _, w := range fields {
		if !stopWords[w] && len(w) > 2 {
			return w
		}
	}
	if len(fields) > 0 {
		return fields[0]
	}
	return columnName
}
