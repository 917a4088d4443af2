package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"langbot-backend/internal/models"
	"langbot-backend/internal/store"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Compile-time check to ensure SQLiteStore implements store.Store
var _ store.Store = (*SQLiteStore)(nil)

// SQLiteStore keeps users, conversations and messages in a single file.
type SQLiteStore struct {
	db *gorm.DB
}

// Open creates the database file (and its directory) if needed, migrates
// the three tables and returns a ready store.
func Open(path string) (*SQLiteStore, error) {
	return open(path, log.New(os.Stdout, "\r\n", log.LstdFlags))
}

// newGormLogger reports slow queries and real errors; lookups that miss are
// surfaced as store.ErrNotFound instead.
func newGormLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func open(path string, logWriter logger.Writer) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(logWriter),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite database object: %w", err)
	}
	// SQLite only supports a single writer.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.Message{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}

	log.Printf("[SQLiteStore] Database ready at %s", path)
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --- User Methods ---

// CreateUser inserts a new user. Returns store.ErrDuplicateEmail when the
// email is already taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.PreferredLanguage == "" {
		user.PreferredLanguage = models.DefaultPreferredLanguage
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			log.Printf("[SQLiteStore] CreateUser: duplicate email %s", user.Email)
			return store.ErrDuplicateEmail
		}
		log.Printf("ERROR [SQLiteStore] CreateUser: Failed to insert user %s: %v", user.Email, err)
		return fmt.Errorf("database error creating user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by their email address.
// Returns store.ErrNotFound if the user does not exist.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error fetching user by email: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by primary key.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error fetching user by id: %w", err)
	}
	return &user, nil
}

// --- Conversation Methods ---

func (s *SQLiteStore) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}
	if conv.Title == "" {
		conv.Title = store.DefaultConversationTitle(conv.Language)
	}
	if err := s.db.WithContext(ctx).Create(conv).Error; err != nil {
		return fmt.Errorf("database error creating conversation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error fetching conversation: %w", err)
	}
	return &conv, nil
}

// ListConversationsByUser returns the user's conversations, most recently
// updated first.
func (s *SQLiteStore) ListConversationsByUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	convs := []models.Conversation{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %w", err)
	}
	return convs, nil
}

// TouchConversation refreshes updated_at.
func (s *SQLiteStore) TouchConversation(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", time.Now().UTC())
	if res.Error != nil {
		return fmt.Errorf("error touching conversation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --- Message Methods ---

func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *models.Message) error {
	if msg.Sender != models.SenderUser && msg.Sender != models.SenderAI {
		return fmt.Errorf("invalid message sender %q", msg.Sender)
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("database error appending message: %w", err)
	}
	return nil
}

// ListMessagesByConversation returns messages oldest first. Rows sharing a
// timestamp keep insertion order.
func (s *SQLiteStore) ListMessagesByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	msgs := []models.Message{}
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC").
		Order("rowid ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	return msgs, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
