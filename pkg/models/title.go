package models

// Title is the internal form of one anime catalog entry.
//
// The gateway stores these as snake_case rows; everything inside the
// application works with this representation. Genres carry no order and
// must not contain duplicates.
type Title struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Image       string         `json:"image,omitempty"`
	Cover       string         `json:"cover,omitempty"`
	Year        int            `json:"year,omitempty"`
	Episodes    int            `json:"episodes,omitempty"`
	Genres      []string       `json:"genres"`
	Popular     bool           `json:"popular"`
	IsNew       bool           `json:"isNew"`
	Links       []DownloadLink `json:"downloadLinks,omitempty"`
}

// DownloadLink is a single quality/episode-specific URL for a Title.
// Episode 0 means "not set"; grouping treats it as episode 1.
type DownloadLink struct {
	ID         string `json:"id"`
	TitleID    string `json:"titleId,omitempty"`
	Quality    string `json:"quality"`
	URL        string `json:"url"`
	Episode    int    `json:"episode,omitempty"`
	Streamable bool   `json:"streamable,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
}

// EpisodeGroup is one episode's worth of download links, in input order.
type EpisodeGroup struct {
	Episode int            `json:"episode"`
	Links   []DownloadLink `json:"links"`
}
