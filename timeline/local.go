package timeline

import (
	"context"
	"fmt"

	"github.com/deemkeen/statusbridge/db"
	"github.com/deemkeen/statusbridge/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// LocalStatuses returns a page of Notes from the outbox of an actor hosted on host.
// Only entries newer than opts.MaxID qualify; the newest of those come first.
func (s *Service) LocalStatuses(ctx context.Context, host string, handle Handle, opts Options) ([]domain.Status, error) {
	if opts.Pinned {
		return []domain.Status{}, nil
	}

	after, err := ResolveCursor(ctx, s.store, opts.MaxID)
	if err != nil {
		return nil, err
	}

	actorId := domain.LocalActorURL(host, handle.LocalPart)
	notes, err := s.store.ReadLocalStatuses(ctx, actorId, after, ClampLimit(opts.Limit))
	if err != nil {
		return nil, fmt.Errorf("local statuses of %s: %w", actorId, err)
	}

	statuses := lo.FilterMap(notes, func(note domain.OutboxNote, _ int) (domain.Status, bool) {
		author, err := s.actors.GetByID(ctx, note.ActorId)
		if err != nil {
			log.Warn().Err(err).Str("actor", note.ActorId).Str("object", note.Object.Id).Msg("Note author is unknown, skipping")
			return domain.Status{}, false
		}

		acct := fmt.Sprintf("%s@%s", author.PreferredUsername, host)
		account := s.accounts.Project(acct, author)
		return ProjectStatus(host, note.Object.Id, localCreatedAt(note), note.Object, account, Counters{
			Favourites: note.FavouritesCount,
			Reblogs:    note.ReblogsCount,
		}), true
	})
	return statuses, nil
}

func localCreatedAt(note domain.OutboxNote) string {
	t, err := db.ParseCDate(note.CDate)
	if err != nil {
		log.Debug().Err(err).Str("cdate", note.CDate).Msg("Unparseable cdate, using object creation time")
		t = note.Object.CreatedAt
	}
	return t.UTC().Format(ISOLayout)
}
