package timeline

import (
	"context"
	"fmt"

	"github.com/deemkeen/statusbridge/domain"
)

// Store is the slice of the database the local reader needs.
type Store interface {
	ReadOutboxCursor(ctx context.Context, objectId string) (string, error)
	ReadLocalStatuses(ctx context.Context, actorId string, after string, limit int) ([]domain.OutboxNote, error)
}

// ActorDirectory looks up actors. GetByID only consults local storage, GetAndCache
// fetches and stores remote actors that are unknown or stale.
type ActorDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.Actor, error)
	GetAndCache(ctx context.Context, id string) (*domain.Actor, error)
}

// Discoverer resolves an acct to the actor link it advertises. An empty link with a nil
// error means the remote server does not know the account.
type Discoverer interface {
	QueryAcctLink(ctx context.Context, domain, acct string) (string, error)
}

type OutboxFetcher interface {
	Fetch(ctx context.Context, actor *domain.Actor) ([]domain.Activity, error)
}

type ActivityProcessor interface {
	Process(ctx context.Context, host string, activity domain.Activity, mode domain.ProcessingMode) (*domain.ProcessResult, error)
}

type AccountProjector interface {
	Project(acct string, actor *domain.Actor) domain.Account
}

// Options are the query parameters of a statuses request.
type Options struct {
	MaxID  string
	Pinned bool
	Limit  int
}

// Service resolves the statuses of local and remote accounts.
type Service struct {
	store      Store
	actors     ActorDirectory
	discoverer Discoverer
	outbox     OutboxFetcher
	processor  ActivityProcessor
	accounts   AccountProjector
}

type Deps struct {
	Store      Store
	Actors     ActorDirectory
	Discoverer Discoverer
	Outbox     OutboxFetcher
	Processor  ActivityProcessor
	Accounts   AccountProjector
}

func NewService(deps Deps) *Service {
	accounts := deps.Accounts
	if accounts == nil {
		accounts = MastodonAccounts{}
	}
	return &Service{
		store:      deps.Store,
		actors:     deps.Actors,
		discoverer: deps.Discoverer,
		outbox:     deps.Outbox,
		processor:  deps.Processor,
		accounts:   accounts,
	}
}

// Statuses dispatches on the resolution kind. The returned slice is never nil on success.
func (s *Service) Statuses(ctx context.Context, res Resolution, opts Options) ([]domain.Status, error) {
	switch res.Kind {
	case Local:
		return s.LocalStatuses(ctx, res.Host, res.Handle, opts)
	case Remote:
		return s.RemoteStatuses(ctx, res.Host, res.Handle, opts)
	default:
		return nil, fmt.Errorf("%q: %w", res.Handle.Acct(), ErrInvalidHandle)
	}
}
