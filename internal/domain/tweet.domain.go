package domain

import "time"

type Tweet struct {
	ID          string    `json:"_id"`
	AuthorID    string    `json:"authorId"`
	Author      *User     `json:"author,omitempty"`
	Content     string    `json:"content"`
	AudioURL    string    `json:"audioUrl,omitempty"`
	Likes       int       `json:"likes"`
	LikedBy     []string  `json:"likedBy"`
	Retweets    int       `json:"retweets"`
	RetweetedBy []string  `json:"retweetedBy"`
	Timestamp   time.Time `json:"timestamp"`
}
