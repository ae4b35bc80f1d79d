// Package notify formats tender alerts and delivers them.
package notify

import (
	"context"
	"fmt"
	"strings"

	"tender-watch/pkg/domain"
)

// Message is one alert: a subject line and a plain-text body
type Message struct {
	Subject string
	Body    string
}

// Notifier delivers a single alert. Implementations must not retry; the
// caller decides what a failed send means for persisted state.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// SiteMessage builds the alert listing every new tender found on a site
func SiteMessage(siteName string, tenders []domain.Tender) Message {
	return Message{
		Subject: fmt.Sprintf("New Tenders from %s", siteName),
		Body:    FormatBody(tenders),
	}
}

// LatestMessage builds the alert for a site that only tracks its newest tender
func LatestMessage(siteName string, tender domain.Tender) Message {
	return Message{
		Subject: fmt.Sprintf("New %s Tender Alert: %s", siteName, tender.Title),
		Body:    FormatBody([]domain.Tender{tender}),
	}
}

// FormatBody renders each tender as its title and URL on two lines,
// separating tenders with a blank line.
func FormatBody(tenders []domain.Tender) string {
	blocks := make([]string, 0, len(tenders))
	for _, tender := range tenders {
		blocks = append(blocks, tender.Title+"\n"+tender.URL+"\n")
	}
	return strings.Join(blocks, "\n")
}
