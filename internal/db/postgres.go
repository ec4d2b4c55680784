package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sketchive/internal/state"

	"github.com/lib/pq"
)

// Schema creates the tables used by Postgres. Strokes keep their bounding
// box so box deletes can skip strokes that cannot match.
const Schema = `
CREATE TABLE IF NOT EXISTS whiteboards (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT        NOT NULL,
	owner_id      BIGINT      NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	current_state TEXT        NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS strokes (
	id            BIGSERIAL PRIMARY KEY,
	whiteboard_id BIGINT           NOT NULL REFERENCES whiteboards(id) ON DELETE CASCADE,
	owner_id      BIGINT           NOT NULL DEFAULT 0,
	path          JSONB            NOT NULL,
	color         TEXT             NOT NULL,
	width         DOUBLE PRECISION NOT NULL,
	min_x         DOUBLE PRECISION NOT NULL,
	max_x         DOUBLE PRECISION NOT NULL,
	min_y         DOUBLE PRECISION NOT NULL,
	max_y         DOUBLE PRECISION NOT NULL,
	deleted       BOOLEAN          NOT NULL DEFAULT false,
	created_at    TIMESTAMPTZ      NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS strokes_board_idx ON strokes (whiteboard_id, deleted, created_at, id);
`

// foreign_key_violation
const pqForeignKeyViolation = "23503"

// Postgres is a Repository backed by PostgreSQL through lib/pq.
type Postgres struct {
	db *sql.DB
}

var _ Repository = (*Postgres)(nil)

// OpenPostgres connects with the given URL and checks the connection.
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	conn, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewPostgres(conn), nil
}

func NewPostgres(conn *sql.DB) *Postgres {
	return &Postgres{db: conn}
}

func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (p *Postgres) CreateWhiteboard(ctx context.Context, wb *state.Whiteboard) (*state.Whiteboard, error) {
	created := *wb
	if created.Name == "" {
		created.Name = DefaultWhiteboardName
	}
	query := `INSERT INTO whiteboards (name, owner_id, current_state)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := p.db.QueryRowContext(ctx, query, created.Name, created.OwnerID, created.Data).
		Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert whiteboard: %w", err)
	}
	return &created, nil
}

func (p *Postgres) GetWhiteboard(ctx context.Context, id int64) (*state.Whiteboard, error) {
	query := `SELECT id, name, owner_id, created_at, updated_at, current_state
		FROM whiteboards WHERE id = $1`

	var wb state.Whiteboard
	err := p.db.QueryRowContext(ctx, query, id).
		Scan(&wb.ID, &wb.Name, &wb.OwnerID, &wb.CreatedAt, &wb.UpdatedAt, &wb.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get whiteboard %d: %w", id, err)
	}
	return &wb, nil
}

func (p *Postgres) UpdateWhiteboard(ctx context.Context, wb *state.Whiteboard) (*state.Whiteboard, error) {
	query := `UPDATE whiteboards
		SET name = $1, current_state = $2, updated_at = now()
		WHERE id = $3
		RETURNING id, name, owner_id, created_at, updated_at, current_state`

	var updated state.Whiteboard
	err := p.db.QueryRowContext(ctx, query, wb.Name, wb.Data, wb.ID).
		Scan(&updated.ID, &updated.Name, &updated.OwnerID, &updated.CreatedAt, &updated.UpdatedAt, &updated.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update whiteboard %d: %w", wb.ID, err)
	}
	return &updated, nil
}

func (p *Postgres) DeleteWhiteboard(ctx context.Context, id int64) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM whiteboards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete whiteboard %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete whiteboard %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ClearWhiteboard(ctx context.Context, id int64) (int64, error) {
	if err := p.exists(ctx, id); err != nil {
		return 0, err
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE strokes SET deleted = true WHERE whiteboard_id = $1 AND deleted = false`, id)
	if err != nil {
		return 0, fmt.Errorf("clear whiteboard %d: %w", id, err)
	}
	return res.RowsAffected()
}

func (p *Postgres) CreateStroke(ctx context.Context, s state.Stroke) (*state.Stroke, error) {
	box, err := state.BoundingBoxOf(s.Path)
	if err != nil {
		return nil, ErrEmptyPath
	}
	path, err := json.Marshal(s.Path)
	if err != nil {
		return nil, fmt.Errorf("marshal stroke path: %w", err)
	}

	query := `INSERT INTO strokes (whiteboard_id, owner_id, path, color, width, min_x, max_x, min_y, max_y)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	created := s
	err = p.db.QueryRowContext(ctx, query,
		s.WhiteboardID, s.OwnerID, path, s.Color, s.Width,
		box.MinX, box.MaxX, box.MinY, box.MaxY,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("insert stroke: %w", err)
	}
	return &created, nil
}

func (p *Postgres) GetStrokes(ctx context.Context, whiteboardID int64) ([]state.Stroke, error) {
	if err := p.exists(ctx, whiteboardID); err != nil {
		return nil, err
	}
	query := `SELECT id, whiteboard_id, owner_id, path, color, width, created_at
		FROM strokes
		WHERE whiteboard_id = $1 AND deleted = false
		ORDER BY created_at, id`

	rows, err := p.db.QueryContext(ctx, query, whiteboardID)
	if err != nil {
		return nil, fmt.Errorf("get strokes: %w", err)
	}
	defer rows.Close()

	strokes := make([]state.Stroke, 0)
	for rows.Next() {
		var (
			s    state.Stroke
			path []byte
		)
		if err := rows.Scan(&s.ID, &s.WhiteboardID, &s.OwnerID, &path, &s.Color, &s.Width, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stroke: %w", err)
		}
		if err := json.Unmarshal(path, &s.Path); err != nil {
			return nil, fmt.Errorf("decode path of stroke %d: %w", s.ID, err)
		}
		strokes = append(strokes, s)
	}
	return strokes, rows.Err()
}

func (p *Postgres) DeleteStrokesInBox(ctx context.Context, whiteboardID int64, box state.BoundingBox) (int64, error) {
	if err := p.exists(ctx, whiteboardID); err != nil {
		return 0, err
	}
	// the stored box only narrows the scan; a path point must fall inside
	query := `UPDATE strokes SET deleted = true
		WHERE whiteboard_id = $1 AND deleted = false
		AND min_x <= $3 AND max_x >= $2
		AND min_y <= $5 AND max_y >= $4
		AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(path) AS pt
			WHERE (pt->>'x')::float8 BETWEEN $2 AND $3
			AND (pt->>'y')::float8 BETWEEN $4 AND $5
		)`

	res, err := p.db.ExecContext(ctx, query, whiteboardID, box.MinX, box.MaxX, box.MinY, box.MaxY)
	if err != nil {
		return 0, fmt.Errorf("delete strokes in box: %w", err)
	}
	return res.RowsAffected()
}

func (p *Postgres) exists(ctx context.Context, id int64) error {
	var found bool
	err := p.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM whiteboards WHERE id = $1)`, id).Scan(&found)
	if err != nil {
		return fmt.Errorf("look up whiteboard %d: %w", id, err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
