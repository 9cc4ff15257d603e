package lever

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v0/postings/acme":
			assert.Equal(t, "json", r.URL.Query().Get("mode"))
			_, _ = w.Write([]byte(`[
			  {"id":"a1","text":"Platform Engineer","hostedUrl":"https://jobs.lever.co/acme/a1",
			   "createdAt":1760000000000,"description":"<p>Run the platform.</p>",
			   "categories":{"location":"Berlin, berlin","team":"Infra","commitment":"Full-time"}},
			  {"id":"a2","text":"Data Engineer","hostedUrl":"` + srv.URL + `/page/a2",
			   "descriptionPlain":"Pipelines.","categories":{}},
			  {"id":"","text":"ignored"},
			  {"id":"a3","text":"   "}
			]`))
		case "/v0/postings/broken":
			http.Error(w, "gone", http.StatusNotFound)
		case "/page/a2":
			_, _ = w.Write([]byte(`<html><body><div class="posting-categories"><div class="location">Remote - EU</div></div></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	return srv
}

func TestFetch_MapsPostingsAndSkipsBrokenCompany(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()

	s := New(Config{
		BaseURL: srv.URL,
		Companies: []Company{
			{Slug: "broken", Name: "Broken Inc"},
			{Slug: "acme", Name: "Acme"},
		},
	}, nil)

	got := s.Fetch(context.Background())
	require.Len(t, got, 2)

	a1 := got[0]
	assert.Equal(t, "lever", a1.Source)
	assert.Equal(t, "lever:acme:a1", a1.ExternalID)
	assert.Equal(t, "Acme", a1.CompanyName)
	assert.Equal(t, "Platform Engineer", a1.Title)
	assert.Equal(t, "Berlin", a1.Location)
	assert.Equal(t, "Full-time", a1.ContractType)
	assert.Equal(t, []string{"Infra"}, a1.Categories)
	assert.Equal(t, "<p>Run the platform.</p>", a1.Description)
	require.NotNil(t, a1.PostedAt)

	a2 := got[1]
	assert.Equal(t, "Pipelines.", a2.Description)
	assert.Equal(t, "Remote - EU", a2.Location)
	assert.Nil(t, a2.Categories)
	assert.Nil(t, a2.PostedAt)
}

func TestFetch_NoCompanies(t *testing.T) {
	assert.Empty(t, New(Config{}, nil).Fetch(context.Background()))
}

func TestFetch_NameFallsBackToSlug(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()

	got := New(Config{BaseURL: srv.URL, Companies: []Company{{Slug: "acme"}}}, nil).Fetch(context.Background())
	require.NotEmpty(t, got)
	assert.Equal(t, "acme", got[0].CompanyName)
}

func TestFetch_CancelledContext(t *testing.T) {
	srv := newServer(t)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := New(Config{BaseURL: srv.URL, Companies: []Company{{Slug: "acme"}}}, nil).Fetch(ctx)
	assert.Empty(t, got)
}
