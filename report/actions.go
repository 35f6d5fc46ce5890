package report

import (
	"errors"
	"fmt"
)

// ErrUnknownAction is returned for report actions other than export, email and share
var ErrUnknownAction = errors.New("unknown report action")

const (
	ActionExport = "export"
	ActionEmail  = "email"
	ActionShare  = "share"
)

// Share is the payload a client hands to its share dialog.
type Share struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// Acknowledgement answers a report action. Export and email are placeholders.
type Acknowledgement struct {
	Action  string `json:"action"`
	Message string `json:"message"`
	Share   *Share `json:"share,omitempty"`
}

func ShareInfo(v View, pageURL string) Share {
	return Share{
		Title: "SEO Audit Report",
		Text:  fmt.Sprintf("SEO Score: %d/100 for %s", v.ScoreCard.Score, v.URL),
		URL:   pageURL,
	}
}

func Acknowledge(action string) (Acknowledgement, error) {
	var msg string
	switch action {
	case ActionExport:
		msg = "PDF export functionality would be implemented here"
	case ActionEmail:
		msg = "Email report functionality would be implemented here"
	case ActionShare:
		msg = "Link copied to clipboard!"
	default:
		return Acknowledgement{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return Acknowledgement{Action: action, Message: msg}, nil
}
