package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Postgres is the production Store backend.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects to the database and verifies the connection.
func OpenPostgres(dsn string) (*Postgres, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "ping postgres")
	}
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(25)
	conn.SetConnMaxLifetime(5 * time.Minute)
	return &Postgres{db: conn}, nil
}

// AutoMigrate creates the schema if it does not exist.
func (p *Postgres) AutoMigrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
            username VARCHAR(50) PRIMARY KEY,
            password_hash VARCHAR(255) NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            deactivated BOOLEAN NOT NULL DEFAULT FALSE
        )`,

		`CREATE TABLE IF NOT EXISTS messages (
            id BIGSERIAL PRIMARY KEY,
            sender VARCHAR(50) NOT NULL,
            recipient VARCHAR(50) NOT NULL,
            body TEXT NOT NULL,
            sent_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            unread BOOLEAN NOT NULL DEFAULT TRUE
        )`,

		`CREATE INDEX IF NOT EXISTS idx_messages_unread
            ON messages (recipient, sender) WHERE unread`,
	}

	for _, query := range queries {
		if _, err := p.db.Exec(query); err != nil {
			return errors.Wrap(err, "migration failed")
		}
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) RegisterAccount(ctx context.Context, username, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	query := "INSERT INTO accounts (username, password_hash) VALUES ($1, $2)"
	if _, err := p.db.ExecContext(ctx, query, username, string(hashed)); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrUserTaken
		}
		return errors.Wrap(err, "insert account")
	}
	return nil
}

func (p *Postgres) VerifyLogin(ctx context.Context, username, password string) error {
	var hash string
	var deactivated bool
	query := "SELECT password_hash, deactivated FROM accounts WHERE username = $1"

	err := p.db.QueryRowContext(ctx, query, username).Scan(&hash, &deactivated)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return errors.Wrap(err, "select account")
	}
	// A deactivated account behaves as if it never existed.
	if deactivated {
		return ErrUserNotFound
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrWrongPassword
	}
	return nil
}

func (p *Postgres) DeactivateAccount(ctx context.Context, username string) error {
	query := "UPDATE accounts SET deactivated = TRUE WHERE username = $1 AND NOT deactivated"
	res, err := p.db.ExecContext(ctx, query, username)
	if err != nil {
		return errors.Wrap(err, "deactivate account")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (p *Postgres) IsDeliverable(ctx context.Context, recipient string) (bool, error) {
	var deactivated bool
	query := "SELECT deactivated FROM accounts WHERE username = $1"

	err := p.db.QueryRowContext(ctx, query, recipient).Scan(&deactivated)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "select account")
	}
	return !deactivated, nil
}

func (p *Postgres) StoreMessage(ctx context.Context, sender, recipient, body string) (int64, error) {
	var id int64
	query := "INSERT INTO messages (sender, recipient, body) VALUES ($1, $2, $3) RETURNING id"

	if err := p.db.QueryRowContext(ctx, query, sender, recipient, body).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "insert message")
	}
	return id, nil
}

func (p *Postgres) FetchRecent(ctx context.Context, userA, userB string, beforeID int64, limit int) ([]Message, int, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, "begin fetch")
	}
	defer tx.Rollback()

	query := `
		SELECT id, sender, recipient, body, sent_at, unread
		FROM messages
		WHERE ((sender = $1 AND recipient = $2) OR (sender = $2 AND recipient = $1))
		  AND ($3::bigint < 0 OR id < $3)
		ORDER BY id DESC
		LIMIT $4
	`
	rows, err := tx.QueryContext(ctx, query, userA, userB, beforeID, limit)
	if err != nil {
		return nil, 0, errors.Wrap(err, "select messages")
	}
	defer rows.Close()

	var page []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Recipient, &m.Body, &m.SentAt, &m.Unread); err != nil {
			return nil, 0, errors.Wrap(err, "scan message")
		}
		page = append(page, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "iterate messages")
	}

	// Returned newest-first; callers want oldest-first.
	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}

	// Flip the requester-addressed messages to read inside the same
	// transaction, so unread counts never drift from the rows.
	marked := 0
	for i := range page {
		if page[i].Recipient != userA || !page[i].Unread {
			continue
		}
		if _, err := tx.ExecContext(ctx, "UPDATE messages SET unread = FALSE WHERE id = $1", page[i].ID); err != nil {
			return nil, 0, errors.Wrap(err, "mark read")
		}
		page[i].Unread = false
		marked++
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, errors.Wrap(err, "commit fetch")
	}
	return page, marked, nil
}

func (p *Postgres) DeleteMessage(ctx context.Context, id int64) (DeleteResult, error) {
	res := DeleteResult{ID: id}
	query := "DELETE FROM messages WHERE id = $1 RETURNING recipient, sender, unread"

	err := p.db.QueryRowContext(ctx, query, id).Scan(&res.Recipient, &res.Sender, &res.WasUnread)
	if errors.Is(err, sql.ErrNoRows) {
		return DeleteResult{}, ErrMessageNotFound
	}
	if err != nil {
		return DeleteResult{}, errors.Wrap(err, "delete message")
	}
	return res, nil
}

func (p *Postgres) MarkRead(ctx context.Context, id int64) error {
	_, err := p.db.ExecContext(ctx, "UPDATE messages SET unread = FALSE WHERE id = $1", id)
	return errors.Wrap(err, "mark read")
}

func (p *Postgres) Conversations(ctx context.Context, username string) ([]Conversation, error) {
	query := `
		SELECT sender, COUNT(*) AS unread, MAX(id) AS last_id
		FROM messages
		WHERE recipient = $1 AND unread
		GROUP BY sender
		ORDER BY last_id DESC
	`
	rows, err := p.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, errors.Wrap(err, "select unread peers")
	}
	defer rows.Close()

	var convos []Conversation
	withUnread := make(map[string]bool)
	for rows.Next() {
		var c Conversation
		var lastID int64
		if err := rows.Scan(&c.Peer, &c.Unread, &lastID); err != nil {
			return nil, errors.Wrap(err, "scan unread peer")
		}
		withUnread[c.Peer] = true
		convos = append(convos, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate unread peers")
	}

	others, err := p.db.QueryContext(ctx,
		"SELECT username FROM accounts WHERE username <> $1 AND NOT deactivated ORDER BY username ASC",
		username)
	if err != nil {
		return nil, errors.Wrap(err, "select accounts")
	}
	defer others.Close()

	for others.Next() {
		var peer string
		if err := others.Scan(&peer); err != nil {
			return nil, errors.Wrap(err, "scan account")
		}
		if withUnread[peer] {
			continue
		}
		convos = append(convos, Conversation{Peer: peer})
	}
	if err := others.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate accounts")
	}
	return convos, nil
}
