package domain

import "time"

const NoteType = "Note"

// ObjectProperties is the JSON property bag stored with every object.
type ObjectProperties struct {
	Content      string `json:"content"`
	Published    string `json:"published,omitempty"`
	AttributedTo string `json:"attributedTo,omitempty"`
	URL          string `json:"url,omitempty"`
	InReplyTo    string `json:"inReplyTo,omitempty"`
	Summary      string `json:"summary,omitempty"`
	Sensitive    bool   `json:"sensitive,omitempty"`
}

// Object is a federation content item. A status is an Object of type Note.
type Object struct {
	Id               string
	MastodonId       string
	Type             string
	Properties       ObjectProperties
	OriginalActorId  string
	OriginalObjectId string // remote object URL, empty for local objects
	Local            bool
	CreatedAt        time.Time
}

// OutboxNote is one row of a local timeline page: a Note from an actor's outbox together
// with its social counters.
type OutboxNote struct {
	Object          Object
	ActorId         string
	CDate           string
	FavouritesCount int
	ReblogsCount    int
}
