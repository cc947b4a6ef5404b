package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pawspace/pawspace-be/internal/models"
	"golang.org/x/crypto/bcrypt"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	CreateUser(displayName, email, password string) (models.User, error)
	GetOrCreateProfile(id, displayName, email, photoURL string) (models.User, error)
	UpdateProfile(id, displayName, photoURL string) (models.User, error)
	AuthenticateUser(email, password string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db       *sql.DB
	eventSvc EventServiceProvider
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, eventSvc EventServiceProvider) *UserService {
	return &UserService{db: db, eventSvc: eventSvc}
}

const userColumns = "id, display_name, email, password_hash, photo_url, is_seller, stripe_account_id, created_at"

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash,
		&user.PhotoURL, &user.IsSeller, &user.StripeAccountID, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, models.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// GetUserByEmail retrieves a single user by their email, including the password hash.
func (s *UserService) GetUserByEmail(email string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint error.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// CreateUser creates a new user, hashing their password. The UNIQUE index on
// email is the single source of truth for duplicates, so two concurrent
// registrations cannot both slip past a pre-check.
func (s *UserService) CreateUser(displayName, email, password string) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:          uuid.New().String(),
		DisplayName: displayName,
		Email:       email,
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, display_name, email, password_hash) VALUES(?, ?, ?, ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	if _, err := stmt.Exec(user.ID, user.DisplayName, user.Email, string(hashedPassword)); err != nil {
		if isUniqueViolation(err) {
			return models.User{}, models.ErrDuplicateEmail
		}
		return models.User{}, err
	}

	if s.eventSvc != nil {
		s.eventSvc.CreateEvent(models.EventUserRegistered, "info",
			fmt.Sprintf("%s joined PawSpace", user.DisplayName), &user.ID)
	}

	return s.GetUserByID(user.ID)
}

// GetOrCreateProfile returns the profile for id, creating one from the
// supplied identity data when no record exists yet. A repeat call for the
// same id returns the stored profile unchanged.
func (s *UserService) GetOrCreateProfile(id, displayName, email, photoURL string) (models.User, error) {
	user, err := s.GetUserByID(id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return models.User{}, err
	}

	if displayName == "" {
		displayName = "New User"
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, display_name, email, password_hash, photo_url) VALUES(?, ?, ?, '', ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	if _, err := stmt.Exec(id, displayName, email, photoURL); err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(id)
}

// UpdateProfile updates a user's display name and photo.
func (s *UserService) UpdateProfile(id, displayName, photoURL string) (models.User, error) {
	res, err := s.db.Exec("UPDATE users SET display_name = ?, photo_url = ? WHERE id = ?", displayName, photoURL, id)
	if err != nil {
		return models.User{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.User{}, models.ErrNotFound
	}
	return s.GetUserByID(id)
}

// AuthenticateUser verifies a user's credentials.
func (s *UserService) AuthenticateUser(email, password string) (models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return models.User{}, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, models.ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}
