package domain

import "time"

const (
	PersonType      = "Person"
	ApplicationType = "Application"
)

// Actor is a federation participant, either hosted here or a cached copy of a remote one.
// Id is the canonical actor URL.
type Actor struct {
	Id                string
	Type              string
	PreferredUsername string
	Name              string
	Summary           string
	IconURL           string
	InboxURI          string
	OutboxURI         string
	PublicKeyPem      string
	PrivateKeyPem     string // only set for local actors
	Local             bool
	CreatedAt         time.Time
	LastFetchedAt     time.Time
}
