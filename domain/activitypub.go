package domain

import "encoding/json"

const (
	CreateType   = "Create"
	LikeType     = "Like"
	AnnounceType = "Announce"
)

// Activity is a federation envelope as it appears in a remote outbox. Object may be an
// embedded object or a bare IRI string.
type Activity struct {
	Context   interface{}     `json:"@context,omitempty"`
	Id        string          `json:"id"`
	Type      string          `json:"type"`
	Actor     string          `json:"actor"`
	Object    json.RawMessage `json:"object,omitempty"`
	Published string          `json:"published,omitempty"`
	To        []string        `json:"to,omitempty"`
	Cc        []string        `json:"cc,omitempty"`
}

// ProcessingMode selects what the activity processor does with an activity.
type ProcessingMode int

const (
	// ModeCaching materializes remote content locally without delivering anything.
	ModeCaching ProcessingMode = iota
)

func (m ProcessingMode) String() string {
	switch m {
	case ModeCaching:
		return "caching"
	default:
		return "unknown"
	}
}

// ProcessResult lists the objects an activity caused to be newly stored.
type ProcessResult struct {
	CreatedObjects []Object
}
