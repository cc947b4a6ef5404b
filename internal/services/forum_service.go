package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pawspace/pawspace-be/internal/models"
)

// ForumServiceProvider defines the interface for forum services.
type ForumServiceProvider interface {
	GetPosts(category string) ([]models.ForumPost, error)
	GetPostWithComments(id string) (models.ForumPost, []models.ForumComment, error)
	CreatePost(authorID, title, content, category string) (models.ForumPost, error)
	AddComment(postID, authorID, content string) (models.ForumComment, error)
}

// ForumService provides business logic for forum posts and comments.
type ForumService struct {
	db       *sql.DB
	eventSvc EventServiceProvider
}

// NewForumService creates a new ForumService.
func NewForumService(db *sql.DB, eventSvc EventServiceProvider) *ForumService {
	return &ForumService{db: db, eventSvc: eventSvc}
}

const postColumns = "id, title, content, author_id, author_name, category, comment_count, created_at"

// GetPosts returns forum posts newest-first, optionally filtered by category.
func (s *ForumService) GetPosts(category string) ([]models.ForumPost, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+` FROM forum_posts
		WHERE (? = '' OR category = ?)
		ORDER BY created_at DESC`, category, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.ForumPost
	for rows.Next() {
		var p models.ForumPost
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.AuthorName,
			&p.Category, &p.CommentCount, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *ForumService) getPost(id string) (models.ForumPost, error) {
	var p models.ForumPost
	row := s.db.QueryRow("SELECT "+postColumns+" FROM forum_posts WHERE id = ?", id)
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.AuthorName,
		&p.Category, &p.CommentCount, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ForumPost{}, models.ErrNotFound
		}
		return models.ForumPost{}, err
	}
	return p, nil
}

// GetPostWithComments returns a post and its comments, oldest comment first.
func (s *ForumService) GetPostWithComments(id string) (models.ForumPost, []models.ForumComment, error) {
	post, err := s.getPost(id)
	if err != nil {
		return models.ForumPost{}, nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, post_id, content, author_id, author_name, created_at
		FROM forum_comments WHERE post_id = ? ORDER BY created_at ASC`, id)
	if err != nil {
		return models.ForumPost{}, nil, err
	}
	defer rows.Close()

	var comments []models.ForumComment
	for rows.Next() {
		var c models.ForumComment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Content, &c.AuthorID, &c.AuthorName, &c.CreatedAt); err != nil {
			return models.ForumPost{}, nil, err
		}
		comments = append(comments, c)
	}
	return post, comments, rows.Err()
}

// CreatePost creates a new forum post with a zero comment count.
func (s *ForumService) CreatePost(authorID, title, content, category string) (models.ForumPost, error) {
	var authorName string
	if err := s.db.QueryRow("SELECT display_name FROM users WHERE id = ?", authorID).Scan(&authorName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ForumPost{}, models.ErrNotFound
		}
		return models.ForumPost{}, err
	}

	id := uuid.New().String()
	_, err := s.db.Exec(`INSERT INTO forum_posts (id, title, content, author_id, author_name, category)
		VALUES (?, ?, ?, ?, ?, ?)`, id, title, content, authorID, authorName, category)
	if err != nil {
		return models.ForumPost{}, err
	}

	if s.eventSvc != nil {
		s.eventSvc.CreateEvent(models.EventPostCreated, "info",
			fmt.Sprintf("%s posted %q", authorName, title), &authorID)
	}

	return s.getPost(id)
}

// AddComment appends a comment to a post. The comment insert and the post's
// denormalized comment_count increment happen in one transaction, so the
// counter can never drift from the comments table.
func (s *ForumService) AddComment(postID, authorID, content string) (models.ForumComment, error) {
	var authorName string
	if err := s.db.QueryRow("SELECT display_name FROM users WHERE id = ?", authorID).Scan(&authorName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ForumComment{}, models.ErrNotFound
		}
		return models.ForumComment{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.ForumComment{}, err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow("SELECT COUNT(1) FROM forum_posts WHERE id = ?", postID).Scan(&exists); err != nil {
		return models.ForumComment{}, err
	}
	if exists == 0 {
		return models.ForumComment{}, models.ErrNotFound
	}

	comment := models.ForumComment{
		ID:         uuid.New().String(),
		PostID:     postID,
		Content:    content,
		AuthorID:   authorID,
		AuthorName: authorName,
	}

	if _, err := tx.Exec(`INSERT INTO forum_comments (id, post_id, content, author_id, author_name)
		VALUES (?, ?, ?, ?, ?)`,
		comment.ID, comment.PostID, comment.Content, comment.AuthorID, comment.AuthorName); err != nil {
		return models.ForumComment{}, err
	}

	if _, err := tx.Exec("UPDATE forum_posts SET comment_count = comment_count + 1 WHERE id = ?", postID); err != nil {
		return models.ForumComment{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.ForumComment{}, err
	}

	if s.eventSvc != nil {
		s.eventSvc.CreateEvent(models.EventCommentCreated, "info",
			fmt.Sprintf("%s commented on a post", authorName), &authorID)
	}

	row := s.db.QueryRow(`SELECT id, post_id, content, author_id, author_name, created_at
		FROM forum_comments WHERE id = ?`, comment.ID)
	if err := row.Scan(&comment.ID, &comment.PostID, &comment.Content,
		&comment.AuthorID, &comment.AuthorName, &comment.CreatedAt); err != nil {
		return models.ForumComment{}, err
	}
	return comment, nil
}
