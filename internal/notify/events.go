package notify

import "time"

// Event types pushed to connected clients. Session events mirror auth
// state changes; the rest announce admin mutations so open views can
// refresh.
const (
	EventSignedIn      = "session.signed_in"
	EventSignedOut     = "session.signed_out"
	EventTitleSaved    = "title.saved"
	EventTitleDeleted  = "title.deleted"
	EventBannerSaved   = "banner.saved"
	EventBannerDeleted = "banner.deleted"
	EventLinksReplaced = "links.replaced"
)

type Event struct {
	Type string    `json:"type"`
	ID   string    `json:"id,omitempty"`
	Role string    `json:"role,omitempty"`
	At   time.Time `json:"at"`
}
