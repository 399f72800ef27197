package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// DB is the database struct.
type DB struct {
	db *sql.DB
}

const (
	// CDateLayout is the storage format of every cdate column. It sorts lexically.
	CDateLayout = "2006-01-02 15:04:05.000"

	// BeginningOfTime sorts before every stored cdate.
	BeginningOfTime = "00-00-00 00:00:00"
)

var (
	ErrActorNotFound  = errors.New("actor not found")
	ErrObjectNotFound = errors.New("object not found")
	ErrCursorNotFound = errors.New("cursor not found")
)

// FormatCDate renders t in the storage layout, in UTC.
func FormatCDate(t time.Time) string {
	return t.UTC().Format(CDateLayout)
}

// ParseCDate parses a stored cdate.
func ParseCDate(s string) (time.Time, error) {
	return time.ParseInLocation(CDateLayout, s, time.UTC)
}

// Open opens the sqlite database at path and makes sure the schema exists.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if path == ":memory:" {
		// every connection to :memory: is a separate database
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)

		var journalMode string
		err = sqlDB.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to enable WAL mode")
		} else {
			log.Debug().Str("mode", journalMode).Msg("Database journal mode")
		}
	}

	sqlDB.Exec("PRAGMA synchronous = NORMAL")
	sqlDB.Exec("PRAGMA temp_store = MEMORY")
	sqlDB.Exec("PRAGMA busy_timeout = 5000")

	db := &DB{db: sqlDB}
	if err := db.RunMigrations(context.Background()); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// wrapTransaction runs the given function within a transaction.
func (db *DB) wrapTransaction(ctx context.Context, f func(tx *sql.Tx) error) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("error starting transaction")
		return err
	}
	if err = f(tx); err != nil {
		log.Error().Err(err).Msg("error in transaction")
		tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		log.Error().Err(err).Msg("error committing transaction")
		return err
	}
	return nil
}

// storedTime parses a cdate read back from a row. A malformed value yields the zero time.
func storedTime(cdate, column, id string) time.Time {
	t, err := ParseCDate(cdate)
	if err != nil {
		log.Debug().Err(err).Str("column", column).Str("id", id).Msg("Unparseable stored cdate")
	}
	return t
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code()&0xff == sqlitelib.SQLITE_CONSTRAINT
}
