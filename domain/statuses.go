package domain

// Field is a profile metadata entry on an Account.
type Field struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	VerifiedAt *string `json:"verified_at"`
}

// Emoji is a custom emoji. Statuses always carry an empty list.
type Emoji struct {
	Shortcode string `json:"shortcode"`
	URL       string `json:"url"`
	StaticURL string `json:"static_url"`
}

// Account is the Mastodon account block embedded in every status.
type Account struct {
	Id             string  `json:"id"`
	Username       string  `json:"username"`
	Acct           string  `json:"acct"`
	URL            string  `json:"url"`
	DisplayName    string  `json:"display_name"`
	Note           string  `json:"note"`
	Avatar         string  `json:"avatar"`
	AvatarStatic   string  `json:"avatar_static"`
	Header         string  `json:"header"`
	HeaderStatic   string  `json:"header_static"`
	CreatedAt      string  `json:"created_at"`
	Locked         bool    `json:"locked"`
	Bot            bool    `json:"bot"`
	Discoverable   bool    `json:"discoverable"`
	Group          bool    `json:"group"`
	FollowersCount int     `json:"followers_count"`
	FollowingCount int     `json:"following_count"`
	StatusesCount  int     `json:"statuses_count"`
	Emojis         []Emoji `json:"emojis"`
	Fields         []Field `json:"fields"`
}

// Status is the public representation of a Note.
type Status struct {
	Id               string        `json:"id"`
	URI              string        `json:"uri"`
	CreatedAt        string        `json:"created_at"`
	Content          string        `json:"content"`
	Account          Account       `json:"account"`
	FavouritesCount  int           `json:"favourites_count"`
	ReblogsCount     int           `json:"reblogs_count"`
	Emojis           []Emoji       `json:"emojis"`
	MediaAttachments []interface{} `json:"media_attachments"`
	Tags             []interface{} `json:"tags"`
	Mentions         []interface{} `json:"mentions"`
	Visibility       string        `json:"visibility"`
	SpoilerText      string        `json:"spoiler_text"`
}
