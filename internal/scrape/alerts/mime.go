package alerts

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
)

const maxPartSize = 8 << 20

type parsedMessage struct {
	From    string
	Subject string
	HTML    string
}

// parseMessage decodes an RFC 822 message and keeps the largest text/html
// part. Transfer encodings and charsets are handled by go-message.
func parseMessage(raw []byte) (parsedMessage, error) {
	e, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return parsedMessage{}, fmt.Errorf("read message: %w", err)
	}

	var pm parsedMessage
	pm.From, _ = e.Header.Text("From")
	pm.Subject, _ = e.Header.Text("Subject")

	err = e.Walk(func(_ []int, part *message.Entity, err error) error {
		if err != nil {
			if message.IsUnknownCharset(err) {
				return nil
			}
			return err
		}
		mediaType, _, _ := part.Header.ContentType()
		if !strings.EqualFold(mediaType, "text/html") {
			return nil
		}
		b, err := io.ReadAll(io.LimitReader(part.Body, maxPartSize))
		if err != nil {
			return err
		}
		if len(b) > len(pm.HTML) {
			pm.HTML = string(b)
		}
		return nil
	})
	if err != nil {
		return pm, fmt.Errorf("walk message: %w", err)
	}
	return pm, nil
}

// isJobAlert matches LinkedIn-style job alert mails by sender, or by
// subject when the body links to job postings.
func isJobAlert(pm parsedMessage) bool {
	from := strings.ToLower(pm.From)
	if strings.Contains(from, "jobalerts-noreply") || strings.Contains(from, "jobs-noreply") {
		return true
	}
	subj := strings.ToLower(pm.Subject)
	if strings.Contains(subj, "job alert") || strings.Contains(subj, "new jobs") {
		return strings.Contains(strings.ToLower(pm.HTML), "/jobs/view/")
	}
	return false
}
