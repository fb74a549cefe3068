package models

// Banner is a promotional carousel entry, optionally pointing back at a
// Title. DisplayOrder drives rendering sequence among active banners; ties
// keep whatever order the gateway returned.
type Banner struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle,omitempty"`
	Image        string   `json:"image,omitempty"`
	Theme        string   `json:"theme,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	Episodes     int      `json:"episodes,omitempty"`
	Active       bool     `json:"active"`
	DisplayOrder int      `json:"displayOrder"`
	TitleID      string   `json:"titleId,omitempty"`
}
