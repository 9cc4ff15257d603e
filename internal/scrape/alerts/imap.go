package alerts

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// rawMessage is one fetched email, headers and body as sent.
type rawMessage struct {
	UID  imap.UID
	Date time.Time
	Raw  []byte
}

// mailbox is the slice of an IMAP session the connector needs.
type mailbox interface {
	Unseen(ctx context.Context, since time.Time, max int) ([]rawMessage, error)
	Close()
}

type imapMailbox struct {
	c *imapclient.Client
}

// dialIMAP connects over TLS, logs in and selects the folder read-only so
// nothing fetched here changes flags on the server.
func dialIMAP(ctx context.Context, cfg Config) (mailbox, error) {
	if cfg.Addr == "" {
		return nil, errors.New("imap addr is required")
	}
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	// The handshake happens inside DialContext, so ctx bounds it too.
	dialer := &tls.Dialer{Config: tlsConfig}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	c := imapclient.New(conn, &imapclient.Options{TLSConfig: tlsConfig})
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })

	if err := c.Login(cfg.Username, cfg.Password).Wait(); err != nil {
		stop()
		_ = c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	if _, err := c.Select(cfg.Folder, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		stop()
		_ = c.Close()
		return nil, fmt.Errorf("imap select %q: %w", cfg.Folder, err)
	}
	return &imapMailbox{c: c}, nil
}

// Unseen returns up to max unseen messages received since the cutoff,
// newest first. Bodies are fetched with BODY.PEEK[].
func (m *imapMailbox) Unseen(ctx context.Context, since time.Time, max int) ([]rawMessage, error) {
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   since,
	}
	searchData, err := m.c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if max > 0 && len(uids) > max {
		uids = uids[:max]
	}

	bodyAll := &imap.FetchItemBodySection{Specifier: imap.PartSpecifierNone, Peek: true}
	fetchCmd := m.c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:          true,
		InternalDate: true,
		BodySection:  []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	out := make([]rawMessage, 0, len(uids))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}
		out = append(out, rawMessage{
			UID:  buf.UID,
			Date: buf.InternalDate,
			Raw:  append([]byte(nil), buf.FindBodySection(bodyAll)...),
		})
	}
	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

func (m *imapMailbox) Close() {
	if err := m.c.Logout().Wait(); err != nil {
		log.Printf("[alerts] imap logout: %v", err)
	}
	_ = m.c.Close()
}
