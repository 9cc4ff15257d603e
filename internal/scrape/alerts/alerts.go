// Package alerts turns job-alert emails sitting in an IMAP mailbox into raw
// listings. The mailbox is opened read-only and bodies are peeked, so the
// user's unread state is left untouched.
package alerts

import (
	"context"
	"log"
	"strings"
	"time"

	"jobboard-engine/internal/domain"
)

type Config struct {
	Addr        string // imap.gmail.com:993
	Username    string
	Password    string
	Folder      string // INBOX
	SinceDays   int    // 7
	MaxMessages int    // 50
}

type Scraper struct {
	cfg  Config
	dial func(ctx context.Context, cfg Config) (mailbox, error)
	now  func() time.Time
}

func New(cfg Config) *Scraper {
	if cfg.Folder == "" {
		cfg.Folder = "INBOX"
	}
	if cfg.SinceDays <= 0 {
		cfg.SinceDays = 7
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = 50
	}
	return &Scraper{cfg: cfg, dial: dialIMAP, now: time.Now}
}

func (s *Scraper) Name() string { return "alerts" }

func (s *Scraper) Fetch(ctx context.Context) []domain.RawListing {
	if strings.TrimSpace(s.cfg.Username) == "" || s.cfg.Password == "" {
		log.Printf("[alerts] level=warn msg=%q", "imap username/password not configured; skipping")
		return nil
	}

	mb, err := s.dial(ctx, s.cfg)
	if err != nil {
		log.Printf("[alerts] level=error addr=%s err=%v", s.cfg.Addr, err)
		return nil
	}
	defer mb.Close()

	since := s.now().AddDate(0, 0, -s.cfg.SinceDays)
	msgs, err := mb.Unseen(ctx, since, s.cfg.MaxMessages)
	if err != nil {
		log.Printf("[alerts] level=error addr=%s err=%v", s.cfg.Addr, err)
		return nil
	}

	var (
		out    []domain.RawListing
		alerts int
	)
	for _, m := range msgs {
		pm, err := parseMessage(m.Raw)
		if err != nil {
			log.Printf("[alerts] uid=%d parse: %v", m.UID, err)
			continue
		}
		if pm.HTML == "" || !isJobAlert(pm) {
			continue
		}
		alerts++

		listings, err := ParseAlertHTML(pm.HTML)
		if err != nil {
			log.Printf("[alerts] uid=%d html: %v", m.UID, err)
			continue
		}
		for i := range listings {
			if !m.Date.IsZero() {
				d := m.Date
				listings[i].PostedAt = &d
			}
		}
		out = append(out, listings...)
	}

	log.Printf("[alerts] messages=%d alerts=%d fetched=%d", len(msgs), alerts, len(out))
	return out
}
