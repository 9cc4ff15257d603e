package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeURL(t *testing.T) {
	assert.Equal(t,
		"https://www.linkedin.com/jobs/view/12345/",
		CanonicalizeURL("https://WWW.LinkedIn.com/comm/jobs/view/12345/?trackingId=abc&refId=x#frag"))
	assert.Equal(t,
		"https://jobs.example/apply?id=7",
		CanonicalizeURL(" https://jobs.example/apply?utm_source=mail&id=7 "))
	assert.Equal(t, "", CanonicalizeURL("   "))
}

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "Bangalore, India", NormalizeLocation("Location:  Bangalore,  India, india ,Bangalore"))
	assert.Equal(t, "", NormalizeLocation("Location:"))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText(" a  b\n\tc "))
}

func TestDoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(`{"n":3}`))
		case "/bad":
			_, _ = w.Write([]byte(`{"n":`))
		default:
			http.Error(w, "nope", http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	hc := NewClient(time.Second)
	lim := NewHostLimiter(100, 10)

	var out struct{ N int }
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/ok", nil)
	require.NoError(t, DoJSON(ctx, hc, lim, req, &out))
	assert.Equal(t, 3, out.N)

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/bad", nil)
	assert.ErrorContains(t, DoJSON(ctx, hc, lim, req, &out), "decode")

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/down", nil)
	err := DoJSON(ctx, hc, nil, req, &out)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Status)
}

func TestHostLimiter_NilAndCancelled(t *testing.T) {
	var nilLim *HostLimiter
	assert.NoError(t, nilLim.WaitURL(context.Background(), "https://a.example"))

	lim := NewHostLimiter(0.001, 1)
	require.NoError(t, lim.WaitURL(context.Background(), "https://a.example/x"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, lim.WaitURL(ctx, "https://a.example/y"))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "POST https://jooble.org/api/****: EOF", Redact("POST https://jooble.org/api/k3y: EOF", "k3y"))
	assert.Equal(t, "x", Redact("x", ""))
}
