package timeline

import (
	"context"
	"fmt"

	"github.com/deemkeen/statusbridge/domain"
	"github.com/rs/zerolog/log"
)

// RemoteStatuses discovers a remote actor, ingests its outbox and returns the Notes that
// were newly stored by this request, in outbox order.
func (s *Service) RemoteStatuses(ctx context.Context, host string, handle Handle, opts Options) ([]domain.Status, error) {
	if opts.Pinned {
		return []domain.Status{}, nil
	}

	acct := handle.Acct()
	link, err := s.discoverer.QueryAcctLink(ctx, handle.Domain, acct)
	if err != nil {
		return nil, fmt.Errorf("webfinger %s: %w", acct, err)
	}
	if link == "" {
		return nil, fmt.Errorf("%s: %w", acct, ErrRemoteResolution)
	}

	actor, err := s.actors.GetAndCache(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("actor %s: %w", link, err)
	}

	activities, err := s.outbox.Fetch(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("outbox of %s: %w", actor.Id, err)
	}

	var created []domain.Object
	for _, activity := range activities {
		result, err := s.processor.Process(ctx, host, activity, domain.ModeCaching)
		if err != nil {
			return nil, fmt.Errorf("activity %s: %w", activity.Id, err)
		}
		if result != nil {
			created = append(created, result.CreatedObjects...)
		}
	}

	account := s.accounts.Project(acct, actor)
	statuses := make([]domain.Status, 0, len(created))
	for _, obj := range created {
		if obj.Type != domain.NoteType {
			log.Debug().Str("object", obj.Id).Str("type", obj.Type).Msg("Skipping non-Note object")
			continue
		}
		statuses = append(statuses, ProjectStatus(host, obj.MastodonId, obj.Properties.Published, obj, account, Counters{}))
	}
	return statuses, nil
}
