// Package postgres is a store.Store backed by PostgreSQL through pgxpool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Paintersrp/citegraph/internal/paper"
	"github.com/Paintersrp/citegraph/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS papers (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	authors           TEXT[] NOT NULL,
	year              INTEGER NOT NULL,
	category          TEXT NOT NULL DEFAULT 'other',
	tags              TEXT[] NOT NULL DEFAULT '{}',
	familiarity_level TEXT,
	importance_rating INTEGER CHECK (importance_rating BETWEEN 1 AND 5),
	is_favorite       BOOLEAN NOT NULL DEFAULT FALSE,
	notes             TEXT NOT NULL DEFAULT '',
	added_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_reviewed_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS relationships (
	id                TEXT PRIMARY KEY,
	from_paper_id     TEXT NOT NULL REFERENCES papers (id) ON DELETE CASCADE,
	to_paper_id       TEXT NOT NULL REFERENCES papers (id) ON DELETE CASCADE,
	relationship_type TEXT NOT NULL,
	strength          INTEGER NOT NULL CHECK (strength BETWEEN 1 AND 10),
	description       TEXT NOT NULL DEFAULT '',
	UNIQUE (from_paper_id, to_paper_id, relationship_type)
);
`

const paperColumns = `id, title, authors, year, category, tags, familiarity_level,
	importance_rating, is_favorite, notes, added_at, last_reviewed_at`

// Store keeps papers and relationships in two tables. The schema is created
// on Open when missing.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open connects to dsn and migrates the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn cannot be empty")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return &Store{pool: pool, now: time.Now}, nil
}

func (s *Store) Papers(ctx context.Context) ([]paper.Paper, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+paperColumns+" FROM papers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query papers: %w", err)
	}
	defer rows.Close()

	papers := make([]paper.Paper, 0)
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

func (s *Store) Relationships(ctx context.Context) ([]paper.Relationship, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, from_paper_id, to_paper_id, relationship_type, strength, description
		FROM relationships ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query relationships: %w", err)
	}
	defer rows.Close()

	rels := make([]paper.Relationship, 0)
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}

func (s *Store) CreatePaper(ctx context.Context, p paper.Paper) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Added.IsZero() {
		p.Added = s.now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO papers (`+paperColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		paperArgs(p)...,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", store.ErrPaperExists, p.ID)
	}
	if err != nil {
		return fmt.Errorf("insert paper %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) UpdatePaper(ctx context.Context, p paper.Paper) error {
	if err := p.Validate(); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE papers SET
			title = $2, authors = $3, year = $4, category = $5, tags = $6,
			familiarity_level = $7, importance_rating = $8, is_favorite = $9,
			notes = $10, added_at = COALESCE($11, added_at), last_reviewed_at = $12
		WHERE id = $1`,
		paperArgs(p)...,
	)
	if err != nil {
		return fmt.Errorf("update paper %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", store.ErrPaperNotFound, p.ID)
	}
	return nil
}

func (s *Store) DeletePaper(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"DELETE FROM relationships WHERE from_paper_id = $1 OR to_paper_id = $1", id,
	); err != nil {
		return fmt.Errorf("delete relationships of %s: %w", id, err)
	}
	tag, err := tx.Exec(ctx, "DELETE FROM papers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete paper %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", store.ErrPaperNotFound, id)
	}
	return tx.Commit(ctx)
}

func (s *Store) AddRelationship(
	ctx context.Context,
	rel paper.Relationship,
) (paper.Relationship, bool, error) {
	rel, err := store.Prepare(rel)
	if err != nil {
		return paper.Relationship{}, false, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return paper.Relationship{}, false, err
	}
	defer tx.Rollback(ctx)

	for _, id := range []string{rel.From, rel.To} {
		var exists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM papers WHERE id = $1)", id,
		).Scan(&exists); err != nil {
			return paper.Relationship{}, false, err
		}
		if !exists {
			return paper.Relationship{}, false, fmt.Errorf("%w: %s", store.ErrPaperNotFound, id)
		}
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO relationships
			(id, from_paper_id, to_paper_id, relationship_type, strength, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (from_paper_id, to_paper_id, relationship_type) DO NOTHING`,
		rel.ID, rel.From, rel.To, string(rel.Type), rel.Strength, rel.Description,
	)
	if err != nil {
		return paper.Relationship{}, false, fmt.Errorf("insert relationship: %w", err)
	}

	created := tag.RowsAffected() > 0
	if !created {
		row := tx.QueryRow(ctx, `
			SELECT id, from_paper_id, to_paper_id, relationship_type, strength, description
			FROM relationships
			WHERE from_paper_id = $1 AND to_paper_id = $2 AND relationship_type = $3`,
			rel.From, rel.To, string(rel.Type),
		)
		if rel, err = scanRelationship(row); err != nil {
			return paper.Relationship{}, false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return paper.Relationship{}, false, err
	}
	return rel, created, nil
}

func (s *Store) DeleteRelationship(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM relationships WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete relationship %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", store.ErrRelationshipNotFound, id)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func paperArgs(p paper.Paper) []any {
	var familiarity *string
	if p.Familiarity.IsSet() {
		value := string(p.Familiarity)
		familiarity = &value
	}
	var importance *int
	if p.Importance > 0 {
		value := p.Importance
		importance = &value
	}
	var added, reviewed *time.Time
	if !p.Added.IsZero() {
		added = &p.Added
	}
	if !p.LastReviewed.IsZero() {
		reviewed = &p.LastReviewed
	}
	category := p.Category
	if category == "" {
		category = paper.CategoryOther
	}
	return []any{
		p.ID,
		p.Title,
		p.Authors,
		p.Year,
		string(category),
		paper.NormalizeTags(p.Tags),
		familiarity,
		importance,
		p.Favorite,
		p.Notes,
		added,
		reviewed,
	}
}

func scanPaper(row pgx.Row) (paper.Paper, error) {
	var (
		p           paper.Paper
		category    string
		familiarity *string
		importance  *int
		reviewed    *time.Time
	)
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Authors,
		&p.Year,
		&category,
		&p.Tags,
		&familiarity,
		&importance,
		&p.Favorite,
		&p.Notes,
		&p.Added,
		&reviewed,
	)
	if err != nil {
		return paper.Paper{}, fmt.Errorf("scan paper: %w", err)
	}
	p.Category = paper.Category(category)
	if familiarity != nil {
		p.Familiarity = paper.Familiarity(*familiarity)
	}
	if importance != nil {
		p.Importance = *importance
	}
	if reviewed != nil {
		p.LastReviewed = *reviewed
	}
	return p, nil
}

func scanRelationship(row pgx.Row) (paper.Relationship, error) {
	var (
		rel     paper.Relationship
		relType string
	)
	if err := row.Scan(&rel.ID, &rel.From, &rel.To, &relType, &rel.Strength, &rel.Description); err != nil {
		return paper.Relationship{}, fmt.Errorf("scan relationship: %w", err)
	}
	rel.Type = paper.RelationshipType(relType)
	return rel, nil
}
