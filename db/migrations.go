package db

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"
)

const (
	sqlCreateActorsTable = `CREATE TABLE IF NOT EXISTS actors (
		id TEXT NOT NULL PRIMARY KEY,
		type TEXT NOT NULL DEFAULT 'Person',
		preferred_username TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		icon_url TEXT NOT NULL DEFAULT '',
		inbox_uri TEXT NOT NULL DEFAULT '',
		outbox_uri TEXT NOT NULL DEFAULT '',
		public_key_pem TEXT NOT NULL DEFAULT '',
		private_key_pem TEXT NOT NULL DEFAULT '',
		local INTEGER NOT NULL DEFAULT 0,
		cdate TEXT NOT NULL,
		last_fetched_at TEXT NOT NULL
	)`

	sqlCreateObjectsTable = `CREATE TABLE IF NOT EXISTS objects (
		id TEXT NOT NULL PRIMARY KEY,
		mastodon_id TEXT UNIQUE NOT NULL,
		type TEXT NOT NULL,
		properties TEXT NOT NULL DEFAULT '{}',
		original_actor_id TEXT NOT NULL DEFAULT '',
		original_object_id TEXT UNIQUE,
		local INTEGER NOT NULL DEFAULT 0,
		cdate TEXT NOT NULL
	)`

	sqlCreateOutboxObjectsTable = `CREATE TABLE IF NOT EXISTS outbox_objects (
		id TEXT NOT NULL PRIMARY KEY,
		actor_id TEXT NOT NULL,
		object_id TEXT NOT NULL,
		cdate TEXT NOT NULL,
		published_date TEXT NOT NULL DEFAULT ''
	)`

	sqlCreateFavouritesTable = `CREATE TABLE IF NOT EXISTS actor_favourites (
		id TEXT NOT NULL PRIMARY KEY,
		actor_id TEXT NOT NULL,
		object_id TEXT NOT NULL,
		cdate TEXT NOT NULL,
		UNIQUE(actor_id, object_id)
	)`

	sqlCreateReblogsTable = `CREATE TABLE IF NOT EXISTS actor_reblogs (
		id TEXT NOT NULL PRIMARY KEY,
		actor_id TEXT NOT NULL,
		object_id TEXT NOT NULL,
		cdate TEXT NOT NULL,
		UNIQUE(actor_id, object_id)
	)`

	sqlCreateIndices = `
		CREATE INDEX IF NOT EXISTS idx_actors_preferred_username ON actors(preferred_username);
		CREATE INDEX IF NOT EXISTS idx_objects_type ON objects(type);
		CREATE INDEX IF NOT EXISTS idx_outbox_objects_actor_cdate ON outbox_objects(actor_id, cdate DESC);
		CREATE INDEX IF NOT EXISTS idx_outbox_objects_object_id ON outbox_objects(object_id);
		CREATE INDEX IF NOT EXISTS idx_actor_favourites_object_id ON actor_favourites(object_id);
		CREATE INDEX IF NOT EXISTS idx_actor_reblogs_object_id ON actor_reblogs(object_id);
	`
)

// RunMigrations executes all database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	return db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		tables := []struct {
			name string
			sql  string
		}{
			{"actors", sqlCreateActorsTable},
			{"objects", sqlCreateObjectsTable},
			{"outbox_objects", sqlCreateOutboxObjectsTable},
			{"actor_favourites", sqlCreateFavouritesTable},
			{"actor_reblogs", sqlCreateReblogsTable},
		}
		for _, t := range tables {
			if err := db.createTableIfNotExists(tx, t.sql, t.name); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(sqlCreateIndices); err != nil {
			log.Warn().Err(err).Msg("Failed to create indices")
		}
		return nil
	})
}

func (db *DB) createTableIfNotExists(tx *sql.Tx, createSQL string, tableName string) error {
	_, err := tx.Exec(createSQL)
	if err != nil {
		log.Error().Err(err).Str("table", tableName).Msg("Error creating table")
		return err
	}
	log.Debug().Str("table", tableName).Msg("Table created or already exists")
	return nil
}
