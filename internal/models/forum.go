package models

import "time"

// ForumPost is a discussion thread. CommentCount is denormalized and kept in
// step with the comments table in the same transaction that inserts a comment.
type ForumPost struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	AuthorID     string    `json:"authorId"`
	AuthorName   string    `json:"authorName"`
	Category     string    `json:"category"` // e.g. "Advice", "Question", "Story"
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ForumComment is a reply attached to a single post.
type ForumComment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}
