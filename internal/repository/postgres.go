package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/career-passport/internal/domain"
	"github.com/prohmpiriya/career-passport/pkg/config"
	"github.com/prohmpiriya/career-passport/pkg/database"
)

// postgresSchema mirrors the DynamoDB layout. Timestamps stay RFC3339 text so
// both backends return identical values.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		event_id           TEXT PRIMARY KEY,
		org_wallet_address TEXT NOT NULL,
		title              TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		start_date         TEXT NOT NULL,
		end_date           TEXT NOT NULL,
		location           TEXT NOT NULL DEFAULT '',
		max_participants   INTEGER,
		status             TEXT NOT NULL,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_org_wallet ON events (org_wallet_address)`,
	`CREATE TABLE IF NOT EXISTS event_applications (
		application_id   TEXT PRIMARY KEY,
		event_id         TEXT NOT NULL,
		wallet_address   TEXT NOT NULL,
		application_text TEXT NOT NULL DEFAULT '',
		applied_at       TEXT NOT NULL,
		status           TEXT NOT NULL,
		updated_at       TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_event ON event_applications (event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_wallet ON event_applications (wallet_address)`,
	`CREATE TABLE IF NOT EXISTS messages (
		message_id       TEXT PRIMARY KEY,
		sender_wallet    TEXT NOT NULL,
		recipient_wallet TEXT NOT NULL,
		content          TEXT NOT NULL,
		read             BOOLEAN NOT NULL DEFAULT FALSE,
		created_at       TEXT NOT NULL,
		read_at          TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages (sender_wallet)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_recipient ON messages (recipient_wallet)`,
	`CREATE TABLE IF NOT EXISTS matches (
		match_id           TEXT PRIMARY KEY,
		student_wallet     TEXT NOT NULL,
		org_wallet_address TEXT NOT NULL,
		event_id           TEXT NOT NULL DEFAULT '',
		note               TEXT NOT NULL DEFAULT '',
		status             TEXT NOT NULL,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_student ON matches (student_wallet)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_org ON matches (org_wallet_address)`,
}

// EnsureSchema creates the tables and indexes when missing
func EnsureSchema(ctx context.Context, db *database.PostgresDB) error {
	for _, stmt := range postgresSchema {
		if err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// NewPostgresStore wires the PostgreSQL repositories on top of db
func NewPostgresStore(db *database.PostgresDB) *Store {
	pool := db.Pool()
	return &Store{
		Driver:       config.StoreDriverPostgres,
		Events:       &postgresEventRepository{pool: pool},
		Applications: &postgresApplicationRepository{pool: pool},
		Messages:     &postgresMessageRepository{pool: pool},
		Matches:      &postgresMatchRepository{pool: pool},
		ping: func(ctx context.Context) error {
			var n int
			err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE FALSE`).Scan(&n)
			return translatePgErr("store.ping", err)
		},
		close: db.Close,
	}
}

func translatePgErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case database.HasCode(err, database.PgCodeUndefinedTable):
		return domain.Unavailable(op, err)
	case database.HasCode(err, database.PgCodeUniqueViolation):
		return domain.Conflict(op, "item already exists")
	default:
		return domain.Internal(op, err)
	}
}

// --- events ---

const eventColumns = `event_id, org_wallet_address, title, description, start_date, end_date,
	location, max_participants, status, created_at, updated_at`

type postgresEventRepository struct {
	pool *pgxpool.Pool
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(
		&e.EventID,
		&e.OrgWalletAddress,
		&e.Title,
		&e.Description,
		&e.StartDate,
		&e.EndDate,
		&e.Location,
		&e.MaxParticipants,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

func (r *postgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		event.EventID,
		event.OrgWalletAddress,
		event.Title,
		event.Description,
		event.StartDate,
		event.EndDate,
		event.Location,
		event.MaxParticipants,
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	return translatePgErr("events.create", err)
}

func (r *postgresEventRepository) GetByID(ctx context.Context, eventID string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE event_id = $1`
	event, err := scanEvent(r.pool.QueryRow(ctx, query, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("events.get", "event not found")
	}
	if err != nil {
		return nil, translatePgErr("events.get", err)
	}
	return event, nil
}

func (r *postgresEventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	return r.query(ctx, "events.list", `SELECT `+eventColumns+` FROM events`)
}

func (r *postgresEventRepository) ListByOrg(ctx context.Context, orgWalletAddress string) ([]*domain.Event, error) {
	return r.query(ctx, "events.list_by_org",
		`SELECT `+eventColumns+` FROM events WHERE org_wallet_address = $1`, orgWalletAddress)
}

func (r *postgresEventRepository) query(ctx context.Context, op, query string, args ...interface{}) ([]*domain.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePgErr(op, err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, translatePgErr(op, err)
		}
		events = append(events, event)
	}
	return events, translatePgErr(op, rows.Err())
}

func (r *postgresEventRepository) Update(ctx context.Context, eventID string, patch *domain.EventPatch, updatedAt string) (*domain.Event, error) {
	const op = "events.update"

	query, args := buildEventUpdate(eventID, patch, updatedAt)
	event, err := scanEvent(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound(op, "event not found")
	}
	if err != nil {
		return nil, translatePgErr(op, err)
	}
	return event, nil
}

// buildEventUpdate renders an UPDATE ... RETURNING for the fields set in
// patch. updated_at is always written; the event id is the last argument.
func buildEventUpdate(eventID string, patch *domain.EventPatch, updatedAt string) (string, []interface{}) {
	sets := make([]string, 0, 8)
	args := make([]interface{}, 0, 9)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.StartDate != nil {
		add("start_date", *patch.StartDate)
	}
	if patch.EndDate != nil {
		add("end_date", *patch.EndDate)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.MaxParticipants != nil {
		add("max_participants", *patch.MaxParticipants)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	add("updated_at", updatedAt)
	args = append(args, eventID)

	query := fmt.Sprintf(`UPDATE events SET %s WHERE event_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), eventColumns)
	return query, args
}

func (r *postgresEventRepository) Delete(ctx context.Context, eventID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM events WHERE event_id = $1`, eventID)
	return translatePgErr("events.delete", err)
}

// --- applications ---

const applicationColumns = `application_id, event_id, wallet_address, application_text,
	applied_at, status, updated_at`

type postgresApplicationRepository struct {
	pool *pgxpool.Pool
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	a := &domain.Application{}
	err := row.Scan(
		&a.ApplicationID,
		&a.EventID,
		&a.WalletAddress,
		&a.ApplicationText,
		&a.AppliedAt,
		&a.Status,
		&a.UpdatedAt,
	)
	return a, err
}

func (r *postgresApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO event_applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		app.ApplicationID,
		app.EventID,
		app.WalletAddress,
		app.ApplicationText,
		app.AppliedAt,
		app.Status,
		app.UpdatedAt,
	)
	return translatePgErr("applications.create", err)
}

func (r *postgresApplicationRepository) GetByID(ctx context.Context, applicationID string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM event_applications WHERE application_id = $1`
	app, err := scanApplication(r.pool.QueryRow(ctx, query, applicationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("applications.get", "application not found")
	}
	if err != nil {
		return nil, translatePgErr("applications.get", err)
	}
	return app, nil
}

func (r *postgresApplicationRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Application, error) {
	return r.query(ctx, "applications.list_by_event",
		`SELECT `+applicationColumns+` FROM event_applications WHERE event_id = $1`, eventID)
}

func (r *postgresApplicationRepository) ListByWallet(ctx context.Context, walletAddress string) ([]*domain.Application, error) {
	return r.query(ctx, "applications.list_by_wallet",
		`SELECT `+applicationColumns+` FROM event_applications WHERE wallet_address = $1`, walletAddress)
}

func (r *postgresApplicationRepository) query(ctx context.Context, op, query string, args ...interface{}) ([]*domain.Application, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePgErr(op, err)
	}
	defer rows.Close()

	apps := make([]*domain.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, translatePgErr(op, err)
		}
		apps = append(apps, app)
	}
	return apps, translatePgErr(op, rows.Err())
}

func (r *postgresApplicationRepository) UpdateStatus(ctx context.Context, applicationID, status, updatedAt string) error {
	const op = "applications.update_status"
	tag, err := r.pool.Exec(ctx,
		`UPDATE event_applications SET status = $1, updated_at = $2 WHERE application_id = $3`,
		status, updatedAt, applicationID)
	if err != nil {
		return translatePgErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound(op, "application not found")
	}
	return nil
}

// --- messages ---

const messageColumns = `message_id, sender_wallet, recipient_wallet, content, read, created_at, read_at`

type postgresMessageRepository struct {
	pool *pgxpool.Pool
}

func (r *postgresMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (` + messageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		msg.MessageID,
		msg.SenderWallet,
		msg.RecipientWallet,
		msg.Content,
		msg.Read,
		msg.CreatedAt,
		msg.ReadAt,
	)
	return translatePgErr("messages.create", err)
}

func (r *postgresMessageRepository) ListByWallet(ctx context.Context, walletAddress string) ([]*domain.Message, error) {
	return r.query(ctx, "messages.list_by_wallet",
		`SELECT `+messageColumns+` FROM messages WHERE sender_wallet = $1 OR recipient_wallet = $1`,
		walletAddress)
}

func (r *postgresMessageRepository) ListConversation(ctx context.Context, walletA, walletB string) ([]*domain.Message, error) {
	return r.query(ctx, "messages.list_conversation",
		`SELECT `+messageColumns+` FROM messages
		WHERE (sender_wallet = $1 AND recipient_wallet = $2)
		   OR (sender_wallet = $2 AND recipient_wallet = $1)`,
		walletA, walletB)
}

func (r *postgresMessageRepository) query(ctx context.Context, op, query string, args ...interface{}) ([]*domain.Message, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePgErr(op, err)
	}
	defer rows.Close()

	msgs := make([]*domain.Message, 0)
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(
			&m.MessageID,
			&m.SenderWallet,
			&m.RecipientWallet,
			&m.Content,
			&m.Read,
			&m.CreatedAt,
			&m.ReadAt,
		); err != nil {
			return nil, translatePgErr(op, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, translatePgErr(op, rows.Err())
}

func (r *postgresMessageRepository) MarkRead(ctx context.Context, messageID, readAt string) error {
	const op = "messages.mark_read"
	tag, err := r.pool.Exec(ctx,
		`UPDATE messages SET read = TRUE,
			read_at = CASE WHEN read_at = '' THEN $1 ELSE read_at END
		WHERE message_id = $2`,
		readAt, messageID)
	if err != nil {
		return translatePgErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound(op, "message not found")
	}
	return nil
}

// --- matches ---

const matchColumns = `match_id, student_wallet, org_wallet_address, event_id, note, status, created_at, updated_at`

type postgresMatchRepository struct {
	pool *pgxpool.Pool
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	m := &domain.Match{}
	err := row.Scan(
		&m.MatchID,
		&m.StudentWallet,
		&m.OrgWalletAddress,
		&m.EventID,
		&m.Note,
		&m.Status,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *domain.Match) error {
	query := `
		INSERT INTO matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		match.MatchID,
		match.StudentWallet,
		match.OrgWalletAddress,
		match.EventID,
		match.Note,
		match.Status,
		match.CreatedAt,
		match.UpdatedAt,
	)
	return translatePgErr("matches.create", err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, matchID string) (*domain.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE match_id = $1`
	match, err := scanMatch(r.pool.QueryRow(ctx, query, matchID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("matches.get", "match not found")
	}
	if err != nil {
		return nil, translatePgErr("matches.get", err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByWallet(ctx context.Context, walletAddress string) ([]*domain.Match, error) {
	const op = "matches.list_by_wallet"
	rows, err := r.pool.Query(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE student_wallet = $1 OR org_wallet_address = $1`,
		walletAddress)
	if err != nil {
		return nil, translatePgErr(op, err)
	}
	defer rows.Close()

	matches := make([]*domain.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, translatePgErr(op, err)
		}
		matches = append(matches, match)
	}
	return matches, translatePgErr(op, rows.Err())
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, matchID, status, updatedAt string) (*domain.Match, error) {
	const op = "matches.update_status"
	query := `UPDATE matches SET status = $1, updated_at = $2 WHERE match_id = $3 RETURNING ` + matchColumns
	match, err := scanMatch(r.pool.QueryRow(ctx, query, status, updatedAt, matchID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound(op, "match not found")
	}
	if err != nil {
		return nil, translatePgErr(op, err)
	}
	return match, nil
}
