package models

import "time"

// RecentSelection is one entry of the most-recently-clicked episode list.
type RecentSelection struct {
	Title     string    `json:"title"`
	Episode   int       `json:"episode"`
	Quality   string    `json:"quality,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
