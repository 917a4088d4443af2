package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"langbot-backend/internal/models"
	"langbot-backend/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

// uniqueViolation is the PostgreSQL error code for unique_violation.
const uniqueViolation = "23505"

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Connect opens a pool for databaseURL, pings it and runs Migrate.
func Connect(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	dbpool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create database connection pool: %w", err)
	}
	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	s := NewPostgresStore(dbpool)
	if err := s.Migrate(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}
	log.Println("[PostgresStore] Connection pool established and schema migrated.")
	return s, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    hashed_password TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    preferred_language TEXT NOT NULL DEFAULT 'en',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS conversations (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users (id),
    language TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_conversations_user_updated ON conversations (user_id, updated_at DESC);

CREATE TABLE IF NOT EXISTS messages (
    seq BIGSERIAL UNIQUE,
    id UUID PRIMARY KEY,
    conversation_id UUID NOT NULL REFERENCES conversations (id),
    sender TEXT NOT NULL CHECK (sender IN ('user', 'ai')),
    content TEXT NOT NULL,
    timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation_ts ON messages (conversation_id, timestamp);
`

// Migrate creates the users, conversations and messages tables if missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// --- User Methods ---

const createUser = `-- name: CreateUser :one
INSERT INTO users (id, email, hashed_password, name, preferred_language)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at, updated_at;
`

// CreateUser inserts a new user record into the database.
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.PreferredLanguage == "" {
		user.PreferredLanguage = models.DefaultPreferredLanguage
	}

	err := s.db.QueryRow(ctx, createUser,
		user.ID,
		user.Email,
		user.HashedPassword,
		user.Name,
		user.PreferredLanguage,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == uniqueViolation {
				return store.ErrDuplicateEmail
			}
			log.Printf("ERROR [PostgresStore] CreateUser: PostgreSQL error executing insert for email %s: Code=%s, Message=%s, Detail=%s", user.Email, pgErr.Code, pgErr.Message, pgErr.Detail)
		} else {
			log.Printf("ERROR [PostgresStore] CreateUser: Failed to execute insert for email %s: %v", user.Email, err)
		}
		return fmt.Errorf("database error creating user: %w", err)
	}
	return nil
}

const userColumns = `id, email, hashed_password, name, preferred_language, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.Name,
		&user.PreferredLanguage,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
// Returns store.ErrNotFound if the user does not exist.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("ERROR [PostgresStore] GetUserByEmail: Failed to query/scan user for email %s: %v", email, err)
		return nil, fmt.Errorf("database error fetching user by email: %w", err)
	}
	return user, err
}

// GetUserByID retrieves a user by primary key.
func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("database error fetching user by id: %w", err)
	}
	return user, err
}

// --- Conversation Methods ---

const createConversation = `-- name: CreateConversation :one
INSERT INTO conversations (id, user_id, language, title)
VALUES ($1, $2, $3, $4)
RETURNING created_at, updated_at;
`

func (s *PostgresStore) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}
	if conv.Title == "" {
		conv.Title = store.DefaultConversationTitle(conv.Language)
	}
	err := s.db.QueryRow(ctx, createConversation, conv.ID, conv.UserID, conv.Language, conv.Title).
		Scan(&conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("database error creating conversation: %w", err)
	}
	return nil
}

const conversationColumns = `id, user_id, language, title, created_at, updated_at`

func scanConversation(row pgx.Row, c *models.Conversation) error {
	return row.Scan(&c.ID, &c.UserID, &c.Language, &c.Title, &c.CreatedAt, &c.UpdatedAt)
}

func (s *PostgresStore) GetConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	err := scanConversation(s.db.QueryRow(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id), &conv)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning conversation: %w", err)
	}
	return &conv, nil
}

const listConversationsByUser = `-- name: ListConversationsByUser :many
SELECT ` + conversationColumns + `
FROM conversations
WHERE user_id = $1
ORDER BY updated_at DESC;
`

func (s *PostgresStore) ListConversationsByUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	rows, err := s.db.Query(ctx, listConversationsByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %w", err)
	}
	defer rows.Close()

	items := []models.Conversation{}
	for rows.Next() {
		var c models.Conversation
		if err := scanConversation(rows, &c); err != nil {
			return nil, fmt.Errorf("error scanning conversation row: %w", err)
		}
		items = append(items, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation rows: %w", err)
	}
	return items, nil
}

const touchConversation = `-- name: TouchConversation :exec
UPDATE conversations SET updated_at = $1 WHERE id = $2;
`

func (s *PostgresStore) TouchConversation(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, touchConversation, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error executing touch conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --- Message Methods ---

const appendMessage = `-- name: AppendMessage :exec
INSERT INTO messages (id, conversation_id, sender, content, timestamp)
VALUES ($1, $2, $3, $4, $5);
`

func (s *PostgresStore) AppendMessage(ctx context.Context, msg *models.Message) error {
	if msg.Sender != models.SenderUser && msg.Sender != models.SenderAI {
		return fmt.Errorf("invalid message sender %q", msg.Sender)
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if _, err := s.db.Exec(ctx, appendMessage, msg.ID, msg.ConversationID, msg.Sender, msg.Content, msg.Timestamp); err != nil {
		return fmt.Errorf("database error appending message: %w", err)
	}
	return nil
}

const listMessages = `-- name: ListMessagesByConversation :many
SELECT id, conversation_id, sender, content, timestamp
FROM messages
WHERE conversation_id = $1
ORDER BY timestamp ASC, seq ASC;
`

func (s *PostgresStore) ListMessagesByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	rows, err := s.db.Query(ctx, listMessages, conversationID)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	items := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Sender, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		items = append(items, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return items, nil
}
