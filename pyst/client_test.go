package pyst_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trailpack/trailpack/pyst"
)

func TestSuggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/concepts/suggest/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "carbon" {
			t.Errorf("query = %q", got)
		}
		if got := r.URL.Query().Get("language"); got != "en" {
			t.Errorf("language = %q", got)
		}
		if got := r.Header.Get("x-pyst-auth-token"); got != "sekrit" {
			t.Errorf("auth header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"iri":"https://vocab.sentier.dev/concepts/carbon","label":"Carbon","score":0.98},
			{"iri":"https://vocab.sentier.dev/concepts/carbon-dioxide","label":"Carbon dioxide","score":0.71}
		]`))
	}))
	defer srv.Close()

	c := pyst.NewClient(srv.URL, pyst.WithAuthToken("sekrit"))
	concepts, err := c.Suggest(context.Background(), "carbon", "en")
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(concepts) != 2 {
		t.Fatalf("got %d concepts, want 2", len(concepts))
	}
	if concepts[0].Label != "Carbon" || concepts[0].IRI != "https://vocab.sentier.dev/concepts/carbon" {
		t.Fatalf("unexpected first concept: %+v", concepts[0])
	}
}

func TestSuggestAlternateKeySpellings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id_":"https://vocab.sentier.dev/concepts/mass","name":"Mass"},
			{"uri":"https://vocab.sentier.dev/concepts/length","label":"Length"}
		]`))
	}))
	defer srv.Close()

	concepts, err := pyst.NewClient(srv.URL).Suggest(context.Background(), "mass", "en")
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if concepts[0].IRI != "https://vocab.sentier.dev/concepts/mass" || concepts[0].Label != "Mass" {
		t.Fatalf("id_/name spelling not normalized: %+v", concepts[0])
	}
	if concepts[1].IRI != "https://vocab.sentier.dev/concepts/length" {
		t.Fatalf("uri spelling not normalized: %+v", concepts[1])
	}
}

func TestSuggestValidation(t *testing.T) {
	c := pyst.NewClient("http://unreachable.invalid")

	if _, err := c.Suggest(context.Background(), "   ", "en"); !errors.Is(err, pyst.ErrEmptyQuery) {
		t.Errorf("blank query: err = %v", err)
	}
	if _, err := c.Suggest(context.Background(), "carbon", "xx"); !errors.Is(err, pyst.ErrUnsupportedLanguage) {
		t.Errorf("unsupported language: err = %v", err)
	}
	// Uppercase codes are normalized, not rejected; the request then fails on
	// the unreachable host rather than on validation.
	_, err := c.Suggest(context.Background(), "carbon", "EN")
	if errors.Is(err, pyst.ErrUnsupportedLanguage) {
		t.Errorf("uppercase code should normalize: %v", err)
	}
}

func TestSuggestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := pyst.NewClient(srv.URL)
	if _, err := c.Suggest(context.Background(), "carbon", "en"); err == nil {
		t.Fatal("expected an error for a 502 response")
	}
}

func TestSearchTerm(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"temperature", "temperature"},
		{"avg_temperature_c", "temperature"},
		{"total-mass", "mass"},
		{"CO2 emissions", "co2"},
		{"the_sum", "the"},
	}
	for _, tc := range tests {
		if got := pyst.SearchTerm(tc.in); got != tc.want {
			t.Errorf("SearchTerm(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
