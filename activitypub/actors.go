package activitypub

import (
	"context"
	"fmt"
	"time"

	"github.com/deemkeen/statusbridge/db"
	"github.com/deemkeen/statusbridge/domain"
	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/rs/zerolog/log"
)

const (
	actorMaxAge   = 24 * time.Hour
	actorCacheTTL = 10 * time.Minute
)

// ActorDocument represents the JSON structure of an ActivityPub actor
type ActorDocument struct {
	Context           interface{} `json:"@context"`
	ID                string      `json:"id"`
	Type              string      `json:"type"`
	PreferredUsername string      `json:"preferredUsername"`
	Name              string      `json:"name"`
	Summary           string      `json:"summary"`
	Inbox             string      `json:"inbox"`
	Outbox            string      `json:"outbox"`
	Published         string      `json:"published,omitempty"`
	Icon              *Image      `json:"icon,omitempty"`
	PublicKey         PublicKey   `json:"publicKey"`
}

type Image struct {
	Type      string `json:"type"`
	MediaType string `json:"mediaType,omitempty"`
	URL       string `json:"url"`
}

type PublicKey struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	PublicKeyPem string `json:"publicKeyPem"`
}

// NewActorCacheStore builds the in-memory store fronting the actors table.
func NewActorCacheStore() (store.StoreInterface, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("actor cache: %w", err)
	}
	return ristretto_store.NewRistretto(client), nil
}

// Directory resolves actors from the cache, then the actors table, then the network.
type Directory struct {
	db     *db.DB
	client *Client
	cache  *marshaler.Marshaler
}

func NewDirectory(database *db.DB, client *Client, cacheStore store.StoreInterface) *Directory {
	return &Directory{
		db:     database,
		client: client,
		cache:  marshaler.New(cache.New[any](cacheStore)),
	}
}

func actorCacheKey(id string) string {
	return "actor#" + id
}

// GetByID returns a stored actor without touching the network.
func (d *Directory) GetByID(ctx context.Context, id string) (*domain.Actor, error) {
	if cached, err := d.cache.Get(ctx, actorCacheKey(id), new(domain.Actor)); err == nil {
		return cached.(*domain.Actor), nil
	}

	actor, err := d.db.ReadActorById(ctx, id)
	if err != nil {
		return nil, err
	}
	d.remember(ctx, actor)
	return actor, nil
}

// GetAndCache returns the actor at id, fetching and storing it when it is unknown or
// its stored copy is older than a day. Local actors are never fetched.
func (d *Directory) GetAndCache(ctx context.Context, id string) (*domain.Actor, error) {
	known, err := d.GetByID(ctx, id)
	if err == nil && (known.Local || time.Since(known.LastFetchedAt) < actorMaxAge) {
		return known, nil
	}

	fetched, ferr := d.fetch(ctx, id)
	if ferr != nil {
		if known != nil {
			log.Warn().Err(ferr).Str("actor", id).Msg("Refreshing actor failed, using stored copy")
			return known, nil
		}
		return nil, ferr
	}

	if err := d.db.SaveActor(ctx, fetched); err != nil {
		return nil, fmt.Errorf("failed to store actor %s: %w", id, err)
	}
	d.remember(ctx, fetched)
	return fetched, nil
}

func (d *Directory) remember(ctx context.Context, actor *domain.Actor) {
	err := d.cache.Set(ctx, actorCacheKey(actor.Id), actor,
		store.WithExpiration(actorCacheTTL),
		store.WithCost(1),
	)
	if err != nil {
		log.Debug().Err(err).Str("actor", actor.Id).Msg("Failed to cache actor")
	}
}

func (d *Directory) fetch(ctx context.Context, id string) (*domain.Actor, error) {
	var doc ActorDocument
	if err := d.client.fetchJSON(ctx, id, documentAccept, &doc); err != nil {
		return nil, err
	}
	if doc.ID == "" || doc.Outbox == "" {
		return nil, fmt.Errorf("actor %s missing required fields", id)
	}
	if pem := doc.PublicKey.PublicKeyPem; pem != "" {
		if _, err := ParsePublicKey(pem); err != nil {
			return nil, fmt.Errorf("actor %s has an unusable public key: %w", id, err)
		}
	}
	if doc.ID != id {
		log.Debug().Str("requested", id).Str("actor", doc.ID).Msg("Actor document has a different id")
	}
	return doc.toActor(), nil
}

func (doc *ActorDocument) toActor() *domain.Actor {
	actor := &domain.Actor{
		Id:                doc.ID,
		Type:              doc.Type,
		PreferredUsername: doc.PreferredUsername,
		Name:              doc.Name,
		Summary:           doc.Summary,
		InboxURI:          doc.Inbox,
		OutboxURI:         doc.Outbox,
		PublicKeyPem:      doc.PublicKey.PublicKeyPem,
		LastFetchedAt:     time.Now(),
	}
	if doc.Icon != nil {
		actor.IconURL = doc.Icon.URL
	}
	if published, err := time.Parse(time.RFC3339, doc.Published); err == nil {
		actor.CreatedAt = published
	}
	return actor
}
