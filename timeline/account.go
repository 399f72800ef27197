package timeline

import "github.com/deemkeen/statusbridge/domain"

const (
	// ISOLayout is the timestamp format of every created_at this package emits.
	ISOLayout = "2006-01-02T15:04:05.000Z"
)

// MastodonAccounts projects actors into Mastodon account blocks.
type MastodonAccounts struct{}

func (MastodonAccounts) Project(acct string, actor *domain.Actor) domain.Account {
	return domain.Account{
		Id:             acct,
		Username:       actor.PreferredUsername,
		Acct:           acct,
		URL:            actor.Id,
		DisplayName:    actor.Name,
		Note:           actor.Summary,
		Avatar:         actor.IconURL,
		AvatarStatic:   actor.IconURL,
		Header:         "",
		HeaderStatic:   "",
		CreatedAt:      actor.CreatedAt.UTC().Format(ISOLayout),
		Locked:         false,
		Bot:            actor.Type == domain.ApplicationType,
		Discoverable:   true,
		Group:          false,
		FollowersCount: 0,
		FollowingCount: 0,
		StatusesCount:  0,
		Emojis:         []domain.Emoji{},
		Fields:         []domain.Field{},
	}
}
