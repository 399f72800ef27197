package activitypub

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"
)

const jrdJSONType = "application/jrd+json"

type WebfingerLink struct {
	Rel  string `json:"rel"`
	Type string `json:"type,omitempty"`
	Href string `json:"href,omitempty"`
}

// WebfingerResponse is a JSON Resource Descriptor.
type WebfingerResponse struct {
	Subject string          `json:"subject"`
	Aliases []string        `json:"aliases,omitempty"`
	Links   []WebfingerLink `json:"links"`
}

// QueryAcctLink asks domain for the actor behind acct. It returns an empty link when the
// server does not know the account or advertises no ActivityPub actor for it.
func (c *Client) QueryAcctLink(ctx context.Context, domain, acct string) (string, error) {
	uri := fmt.Sprintf("https://%s/.well-known/webfinger?resource=%s", domain, url.QueryEscape("acct:"+acct))

	var jrd WebfingerResponse
	err := c.fetchJSON(ctx, uri, jrdJSONType, &jrd)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	link, ok := lo.Find(jrd.Links, func(l WebfingerLink) bool {
		return l.Rel == "self" && isActivityPubType(l.Type) && l.Href != ""
	})
	if !ok {
		return "", nil
	}
	return link.Href, nil
}

func isActivityPubType(mediaType string) bool {
	return mediaType == ActivityJSONType || strings.HasPrefix(mediaType, "application/ld+json")
}
