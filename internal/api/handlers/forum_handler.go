package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pawspace/pawspace-be/internal/auth"
	"github.com/pawspace/pawspace-be/internal/models"
	"github.com/pawspace/pawspace-be/internal/services"
	"github.com/rs/zerolog/log"
)

// ForumHandler handles HTTP requests for the discussion forum.
type ForumHandler struct {
	service services.ForumServiceProvider
}

// NewForumHandler creates a new ForumHandler.
func NewForumHandler(service services.ForumServiceProvider) *ForumHandler {
	return &ForumHandler{service: service}
}

// GetPosts lists forum posts, optionally filtered by category.
func (h *ForumHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	posts, err := h.service.GetPosts(category)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list forum posts")
		serviceError(w, err)
		return
	}
	if posts == nil {
		posts = []models.ForumPost{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// GetPost returns a post together with its comments.
func (h *ForumHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, comments, err := h.service.GetPostWithComments(id)
	if err != nil {
		log.Warn().Err(err).Str("post_id", id).Msg("Failed to get forum post")
		serviceError(w, err)
		return
	}
	if comments == nil {
		comments = []models.ForumComment{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"post":     post,
		"comments": comments,
	})
}

// CreatePost handles new thread creation.
func (h *ForumHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing auth token", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Title == "" || payload.Content == "" {
		http.Error(w, "Title and content are required", http.StatusBadRequest)
		return
	}

	post, err := h.service.CreatePost(claims.UserID, payload.Title, payload.Content, payload.Category)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to create forum post")
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// AddComment appends a comment to a post.
func (h *ForumHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing auth token", http.StatusUnauthorized)
		return
	}

	postID := chi.URLParam(r, "id")
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Content == "" {
		http.Error(w, "Content is required", http.StatusBadRequest)
		return
	}

	comment, err := h.service.AddComment(postID, claims.UserID, payload.Content)
	if err != nil {
		log.Warn().Err(err).Str("post_id", postID).Str("user_id", claims.UserID).Msg("Failed to add comment")
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}
