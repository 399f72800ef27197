package timeline

import "github.com/deemkeen/statusbridge/domain"

const visibilityPublic = "public"

// Counters are the social counts of a status. Remote statuses always have zero counters.
type Counters struct {
	Favourites int
	Reblogs    int
}

// ProjectStatus builds the public representation of a Note. id and createdAt are chosen by
// the caller because local and remote statuses source them differently.
func ProjectStatus(host, id, createdAt string, obj domain.Object, account domain.Account, counters Counters) domain.Status {
	return domain.Status{
		Id:               id,
		URI:              domain.ObjectURI(host, obj.Id),
		CreatedAt:        createdAt,
		Content:          obj.Properties.Content,
		Account:          account,
		FavouritesCount:  counters.Favourites,
		ReblogsCount:     counters.Reblogs,
		Emojis:           []domain.Emoji{},
		MediaAttachments: []interface{}{},
		Tags:             []interface{}{},
		Mentions:         []interface{}{},
		Visibility:       visibilityPublic,
		SpoilerText:      "",
	}
}
