package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/deemkeen/statusbridge/domain"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	sqlObjectColumns = `objects.id, objects.mastodon_id, objects.type, objects.properties, objects.original_actor_id, objects.original_object_id, objects.local, objects.cdate`

	sqlInsertObject                = `INSERT INTO objects(id, mastodon_id, type, properties, original_actor_id, original_object_id, local, cdate) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	sqlSelectObjectById            = `SELECT ` + sqlObjectColumns + ` FROM objects WHERE objects.id = ?`
	sqlSelectObjectByOriginalId    = `SELECT ` + sqlObjectColumns + ` FROM objects WHERE objects.original_object_id = ?`
	sqlInsertOutboxObject          = `INSERT INTO outbox_objects(id, actor_id, object_id, cdate, published_date) VALUES (?, ?, ?, ?, ?)`
	sqlSelectOutboxCdateByObjectId = `SELECT cdate FROM outbox_objects WHERE object_id = ? LIMIT 1`
	sqlInsertFavourite             = `INSERT INTO actor_favourites(id, actor_id, object_id, cdate) VALUES (?, ?, ?, ?) ON CONFLICT(actor_id, object_id) DO NOTHING`
	sqlInsertReblog                = `INSERT INTO actor_reblogs(id, actor_id, object_id, cdate) VALUES (?, ?, ?, ?) ON CONFLICT(actor_id, object_id) DO NOTHING`

	sqlSelectLocalStatuses = `SELECT ` + sqlObjectColumns + `,
       outbox_objects.actor_id,
       outbox_objects.cdate,
       (SELECT count(*) FROM actor_favourites WHERE actor_favourites.object_id = objects.id) AS favourites_count,
       (SELECT count(*) FROM actor_reblogs WHERE actor_reblogs.object_id = objects.id) AS reblogs_count
FROM outbox_objects
INNER JOIN objects ON objects.id = outbox_objects.object_id
WHERE outbox_objects.actor_id = ? AND outbox_objects.cdate > ? AND objects.type = 'Note'
ORDER BY outbox_objects.cdate DESC
LIMIT ?`

	sqlCountLocalStatuses = `SELECT count(*) FROM outbox_objects
INNER JOIN objects ON objects.id = outbox_objects.object_id
WHERE outbox_objects.actor_id = ? AND objects.type = 'Note'`
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// CreateObject stores a locally published object.
func (db *DB) CreateObject(ctx context.Context, obj *domain.Object) error {
	prepareObject(obj)
	obj.Local = true
	return db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		return insertObject(ctx, tx, obj)
	})
}

// CacheObject stores a copy of a remote object unless one with the same original id is
// already known. The returned bool reports whether a new row was created.
func (db *DB) CacheObject(ctx context.Context, obj *domain.Object) (*domain.Object, bool, error) {
	if obj.OriginalObjectId == "" {
		return nil, false, fmt.Errorf("cache object: missing original object id")
	}
	prepareObject(obj)
	obj.Local = false

	var result *domain.Object
	created := false
	err := db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := scanObject(tx.QueryRowContext(ctx, sqlSelectObjectByOriginalId, obj.OriginalObjectId))
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, ErrObjectNotFound) {
			return err
		}
		if err := insertObject(ctx, tx, obj); err != nil {
			return err
		}
		result = obj
		created = true
		return nil
	})
	if err != nil && isUniqueViolation(err) {
		// lost a race against a concurrent ingestion of the same object
		existing, rerr := db.ReadObjectByOriginalId(ctx, obj.OriginalObjectId)
		return existing, false, rerr
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache object %s: %w", obj.OriginalObjectId, err)
	}
	return result, created, nil
}

func (db *DB) ReadObjectById(ctx context.Context, id string) (*domain.Object, error) {
	return scanObject(db.db.QueryRowContext(ctx, sqlSelectObjectById, id))
}

func (db *DB) ReadObjectByOriginalId(ctx context.Context, originalId string) (*domain.Object, error) {
	return scanObject(db.db.QueryRowContext(ctx, sqlSelectObjectByOriginalId, originalId))
}

// AddObjectInOutbox appends objectId to the actor's outbox. A zero published time means now.
func (db *DB) AddObjectInOutbox(ctx context.Context, actorId, objectId string, published time.Time) error {
	if published.IsZero() {
		published = time.Now()
	}
	cdate := FormatCDate(published)
	return db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, sqlInsertOutboxObject, uuid.New().String(), actorId, objectId, cdate, published.UTC().Format(time.RFC3339))
		return err
	})
}

// ReadOutboxCursor returns the cdate of the outbox entry for objectId, or ErrCursorNotFound.
func (db *DB) ReadOutboxCursor(ctx context.Context, objectId string) (string, error) {
	var cdate string
	err := db.db.QueryRowContext(ctx, sqlSelectOutboxCdateByObjectId, objectId).Scan(&cdate)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("max_id %s: %w", objectId, ErrCursorNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read cursor %s: %w", objectId, err)
	}
	return cdate, nil
}

// ReadLocalStatuses returns up to limit Notes from the actor's outbox with a cdate strictly
// greater than after, newest first.
func (db *DB) ReadLocalStatuses(ctx context.Context, actorId string, after string, limit int) ([]domain.OutboxNote, error) {
	rows, err := db.db.QueryContext(ctx, sqlSelectLocalStatuses, actorId, after, limit)
	if err != nil {
		return nil, fmt.Errorf("SQL error: %w", err)
	}
	defer rows.Close()

	notes := []domain.OutboxNote{}
	for rows.Next() {
		var note domain.OutboxNote
		var properties, objCdate string
		var originalObjectId sql.NullString
		if err := rows.Scan(
			&note.Object.Id,
			&note.Object.MastodonId,
			&note.Object.Type,
			&properties,
			&note.Object.OriginalActorId,
			&originalObjectId,
			&note.Object.Local,
			&objCdate,
			&note.ActorId,
			&note.CDate,
			&note.FavouritesCount,
			&note.ReblogsCount,
		); err != nil {
			return nil, fmt.Errorf("SQL error: %w", err)
		}
		if err := json.Unmarshal([]byte(properties), &note.Object.Properties); err != nil {
			return nil, fmt.Errorf("object %s has invalid properties: %w", note.Object.Id, err)
		}
		note.Object.OriginalObjectId = originalObjectId.String
		note.Object.CreatedAt = storedTime(objCdate, "objects.cdate", note.Object.Id)
		notes = append(notes, note)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("SQL error: %w", err)
	}
	return notes, nil
}

// CreateFavourite records a Like. Repeated likes by the same actor are ignored.
func (db *DB) CreateFavourite(ctx context.Context, actorId, objectId string) error {
	return db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, sqlInsertFavourite, uuid.New().String(), actorId, objectId, FormatCDate(time.Now()))
		return err
	})
}

// CreateReblog records an Announce. Repeated announces by the same actor are ignored.
func (db *DB) CreateReblog(ctx context.Context, actorId, objectId string) error {
	return db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, sqlInsertReblog, uuid.New().String(), actorId, objectId, FormatCDate(time.Now()))
		return err
	})
}

func prepareObject(obj *domain.Object) {
	if obj.Id == "" {
		obj.Id = uuid.New().String()
	}
	if obj.MastodonId == "" {
		obj.MastodonId = uuid.New().String()
	}
	if obj.CreatedAt.IsZero() {
		obj.CreatedAt = time.Now()
	}
}

func insertObject(ctx context.Context, tx *sql.Tx, obj *domain.Object) error {
	properties, err := json.Marshal(obj.Properties)
	if err != nil {
		return err
	}
	var originalObjectId sql.NullString
	if obj.OriginalObjectId != "" {
		originalObjectId = sql.NullString{String: obj.OriginalObjectId, Valid: true}
	}
	_, err = tx.ExecContext(ctx, sqlInsertObject,
		obj.Id,
		obj.MastodonId,
		obj.Type,
		string(properties),
		obj.OriginalActorId,
		originalObjectId,
		obj.Local,
		FormatCDate(obj.CreatedAt),
	)
	return err
}

func scanObject(row rowScanner) (*domain.Object, error) {
	var obj domain.Object
	var properties, cdate string
	var originalObjectId sql.NullString
	err := row.Scan(
		&obj.Id,
		&obj.MastodonId,
		&obj.Type,
		&properties,
		&obj.OriginalActorId,
		&originalObjectId,
		&obj.Local,
		&cdate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(properties), &obj.Properties); err != nil {
		return nil, fmt.Errorf("object %s has invalid properties: %w", obj.Id, err)
	}
	obj.OriginalObjectId = originalObjectId.String
	obj.CreatedAt = storedTime(cdate, "objects.cdate", obj.Id)
	return &obj, nil
}

// CountLocalStatuses returns how many Notes the actor's outbox holds.
func (db *DB) CountLocalStatuses(ctx context.Context, actorId string) (int, error) {
	var count int
	err := db.db.QueryRowContext(ctx, sqlCountLocalStatuses, actorId).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("SQL error: %w", err)
	}
	return count, nil
}
