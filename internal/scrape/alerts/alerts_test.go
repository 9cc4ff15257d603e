package alerts

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alertHTML = `<html><body>
<table><tr><td>
  <a href="https://www.linkedin.com/comm/jobs/view/111/?trackingId=x"><img src="https://media.licdn.com/foo.png"></a>
  <a href="https://www.linkedin.com/comm/jobs/view/111/?trackingId=y">Backend Engineer Actively recruiting</a>
  <p>Foo Corp · Bangalore</p>
  <p>₹25L - ₹40L / year</p>
  <a href="https://www.linkedin.com/comm/jobs/view/111/">View job</a>
</td></tr></table>
<table><tr><td>
  <a href="https://click.example/track?url=https%3A%2F%2Fwww.linkedin.com%2Fjobs%2Fview%2F222%2F">
    <p>Data Analyst</p>
  </a>
  <p>Bar Ltd · Pune, India</p>
  <p>12 connections work here</p>
</td></tr></table>
<table><tr><td>
  <a href="https://www.linkedin.com/jobs/search/">See all jobs</a>
  <a href="https://www.linkedin.com/comm/psettings/job-alerts">Unsubscribe</a>
</td></tr></table>
</body></html>`

func TestParseAlertHTML(t *testing.T) {
	got, err := ParseAlertHTML(alertHTML)
	require.NoError(t, err)
	require.Len(t, got, 2)

	a := got[0]
	assert.Equal(t, "alerts", a.Source)
	assert.Equal(t, "linkedin:111", a.ExternalID)
	assert.Equal(t, "Backend Engineer", a.Title)
	assert.Equal(t, "Foo Corp", a.CompanyName)
	assert.Equal(t, "Bangalore", a.Location)
	assert.Equal(t, "₹25L - ₹40L / year", a.SalaryText)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/111/", a.RedirectURL)
	assert.Equal(t, "https://media.licdn.com/foo.png", a.LogoURL)

	b := got[1]
	assert.Equal(t, "linkedin:222", b.ExternalID)
	assert.Equal(t, "Data Analyst", b.Title)
	assert.Equal(t, "Bar Ltd", b.CompanyName)
	assert.Equal(t, "Pune, India", b.Location)
	assert.Empty(t, b.SalaryText)
}

func rfc822(from, subject, html string) []byte {
	return []byte(strings.ReplaceAll(`From: `+from+`
To: me@example.com
Subject: `+subject+`
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="b1"

--b1
Content-Type: text/plain; charset=utf-8

plain version
--b1
Content-Type: text/html; charset=utf-8
Content-Transfer-Encoding: 8bit

`+html+`
--b1--
`, "\n", "\r\n"))
}

type fakeMailbox struct {
	msgs   []rawMessage
	err    error
	since  time.Time
	closed bool
}

func (f *fakeMailbox) Unseen(_ context.Context, since time.Time, _ int) ([]rawMessage, error) {
	f.since = since
	return f.msgs, f.err
}

func (f *fakeMailbox) Close() { f.closed = true }

func newTestScraper(mb *fakeMailbox, dialErr error) *Scraper {
	s := New(Config{Addr: "imap.example:993", Username: "me", Password: "pw"})
	s.dial = func(context.Context, Config) (mailbox, error) {
		if dialErr != nil {
			return nil, dialErr
		}
		return mb, nil
	}
	s.now = func() time.Time { return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestFetch_ParsesOnlyAlertMail(t *testing.T) {
	received := time.Date(2026, 10, 17, 7, 0, 0, 0, time.UTC)
	mb := &fakeMailbox{msgs: []rawMessage{
		{UID: 1, Date: received, Raw: rfc822("LinkedIn Job Alerts <jobalerts-noreply@linkedin.com>", "Backend Engineer: Foo Corp and more", alertHTML)},
		{UID: 2, Date: received, Raw: rfc822("friend@example.com", "lunch?", "<p>see https://www.linkedin.com/jobs/view/999/</p>")},
	}}

	got := newTestScraper(mb, nil).Fetch(context.Background())
	require.Len(t, got, 2)
	assert.Equal(t, "Backend Engineer", got[0].Title)
	require.NotNil(t, got[0].PostedAt)
	assert.True(t, received.Equal(*got[0].PostedAt))
	assert.True(t, mb.closed)
	assert.Equal(t, time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC), mb.since)
}

func TestFetch_MissingCredentials(t *testing.T) {
	s := New(Config{Addr: "imap.example:993"})
	s.dial = func(context.Context, Config) (mailbox, error) {
		t.Fatal("dial must not be called")
		return nil, nil
	}
	assert.Empty(t, s.Fetch(context.Background()))
}

func TestFetch_MailboxErrors(t *testing.T) {
	assert.Empty(t, newTestScraper(nil, errors.New("dial refused")).Fetch(context.Background()))

	mb := &fakeMailbox{err: errors.New("search failed")}
	assert.Empty(t, newTestScraper(mb, nil).Fetch(context.Background()))
	assert.True(t, mb.closed)
}

func TestParseMessage_PicksHTMLPart(t *testing.T) {
	pm, err := parseMessage(rfc822("a@b.c", "Job alert", "<b>hi</b>"))
	require.NoError(t, err)
	assert.Equal(t, "Job alert", pm.Subject)
	assert.Contains(t, pm.HTML, "<b>hi</b>")
	assert.NotContains(t, pm.HTML, "plain version")
}

func TestDialIMAP_SilentServerHonorsDeadline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c) // accept, never speak
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan int, 1)
	go func() {
		s := New(Config{Addr: ln.Addr().String(), Username: "u", Password: "p"})
		done <- len(s.Fetch(ctx))
	}()

	select {
	case n := <-done:
		assert.Zero(t, n)
	case <-time.After(3 * time.Second):
		t.Fatal("Fetch did not return after its deadline")
	}

	_, err = dialIMAP(context.Background(), Config{})
	assert.Error(t, err)
}
