package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/deemkeen/statusbridge/domain"
)

const (
	sqlActorColumns = `id, type, preferred_username, name, summary, icon_url, inbox_uri, outbox_uri, public_key_pem, private_key_pem, local, cdate, last_fetched_at`

	sqlUpsertActor = `INSERT INTO actors(` + sqlActorColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			preferred_username = excluded.preferred_username,
			name = excluded.name,
			summary = excluded.summary,
			icon_url = excluded.icon_url,
			inbox_uri = excluded.inbox_uri,
			outbox_uri = excluded.outbox_uri,
			public_key_pem = excluded.public_key_pem,
			last_fetched_at = excluded.last_fetched_at`
	sqlSelectActorById = `SELECT ` + sqlActorColumns + ` FROM actors WHERE id = ?`
)

// SaveActor inserts the actor or refreshes the cached profile of an existing one.
// Key material and the local flag of an existing row are never overwritten.
func (db *DB) SaveActor(ctx context.Context, actor *domain.Actor) error {
	if actor.CreatedAt.IsZero() {
		actor.CreatedAt = time.Now()
	}
	if actor.LastFetchedAt.IsZero() {
		actor.LastFetchedAt = time.Now()
	}
	return db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, sqlUpsertActor,
			actor.Id,
			actor.Type,
			actor.PreferredUsername,
			actor.Name,
			actor.Summary,
			actor.IconURL,
			actor.InboxURI,
			actor.OutboxURI,
			actor.PublicKeyPem,
			actor.PrivateKeyPem,
			actor.Local,
			FormatCDate(actor.CreatedAt),
			FormatCDate(actor.LastFetchedAt),
		)
		return err
	})
}

// ReadActorById returns ErrActorNotFound when no actor has the given URL.
func (db *DB) ReadActorById(ctx context.Context, id string) (*domain.Actor, error) {
	row := db.db.QueryRowContext(ctx, sqlSelectActorById, id)
	var actor domain.Actor
	var cdate, lastFetched string
	err := row.Scan(
		&actor.Id,
		&actor.Type,
		&actor.PreferredUsername,
		&actor.Name,
		&actor.Summary,
		&actor.IconURL,
		&actor.InboxURI,
		&actor.OutboxURI,
		&actor.PublicKeyPem,
		&actor.PrivateKeyPem,
		&actor.Local,
		&cdate,
		&lastFetched,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read actor %s: %w", id, err)
	}
	actor.CreatedAt = storedTime(cdate, "actors.cdate", actor.Id)
	actor.LastFetchedAt = storedTime(lastFetched, "actors.last_fetched_at", actor.Id)
	return &actor, nil
}
