// Package postgres stores the tool catalog in PostgreSQL. The site reads it
// once at startup; Import replaces the stored catalog wholesale.
package postgres

import (
	"context"
	"fmt"

	"github.com/freetools/toolsite/internal/catalog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the catalog tables. position keeps catalog order.
const Schema = `
CREATE TABLE IF NOT EXISTS categories (
	id          text PRIMARY KEY,
	name        text NOT NULL,
	description text NOT NULL DEFAULT '',
	icon        text NOT NULL DEFAULT '',
	faq         jsonb,
	position    integer NOT NULL
);

CREATE TABLE IF NOT EXISTS tools (
	category_id text NOT NULL REFERENCES categories (id) ON DELETE CASCADE,
	id          text NOT NULL,
	title       text NOT NULL,
	description text NOT NULL DEFAULT '',
	url         text NOT NULL DEFAULT '',
	featured    boolean NOT NULL DEFAULT false,
	position    integer NOT NULL,
	PRIMARY KEY (category_id, id)
);
`

const (
	categoriesQuery = `SELECT id, name, description, icon, COALESCE(faq, '[]'::jsonb) AS faq
FROM categories ORDER BY position, id`

	toolsQuery = `SELECT t.category_id, t.id, t.title, t.description, t.url, t.featured
FROM tools t JOIN categories c ON c.id = t.category_id
ORDER BY c.position, t.position, t.id`
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type categoryRow struct {
	ID          string        `db:"id"`
	Name        string        `db:"name"`
	Description string        `db:"description"`
	Icon        string        `db:"icon"`
	FAQ         []catalog.FAQ `db:"faq"`
}

type toolRow struct {
	CategoryID  string `db:"category_id"`
	ID          string `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	URL         string `db:"url"`
	Featured    bool   `db:"featured"`
}

type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) TestConnection(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the catalog tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate catalog schema: %w", err)
	}
	return nil
}

func (s *Store) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	return LoadCatalog(ctx, s.pool)
}

// Import replaces the stored catalog with cat in one transaction.
func (s *Store) Import(ctx context.Context, cat *catalog.Catalog) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM categories`); err != nil {
			return fmt.Errorf("clear catalog: %w", err)
		}

		batch := &pgx.Batch{}
		for i, c := range cat.Categories() {
			batch.Queue(`INSERT INTO categories (id, name, description, icon, faq, position)
VALUES ($1, $2, $3, $4, $5, $6)`, c.ID, c.Name, c.Description, c.Icon, c.FAQ, i)
			for j, t := range cat.ToolsByCategory(c.ID) {
				batch.Queue(`INSERT INTO tools (category_id, id, title, description, url, featured, position)
VALUES ($1, $2, $3, $4, $5, $6, $7)`, c.ID, t.ID, t.Title, t.Description, t.URL, t.Featured, j)
			}
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert catalog: %w", err)
		}
		return nil
	})
}

// LoadCatalog reads categories and tools in stored order and validates them
// as a catalog.
func LoadCatalog(ctx context.Context, q Querier) (*catalog.Catalog, error) {
	rows, err := q.Query(ctx, categoriesQuery)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	cats, err := pgx.CollectRows(rows, pgx.RowToStructByName[categoryRow])
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}

	rows, err = q.Query(ctx, toolsQuery)
	if err != nil {
		return nil, fmt.Errorf("query tools: %w", err)
	}
	tools, err := pgx.CollectRows(rows, pgx.RowToStructByName[toolRow])
	if err != nil {
		return nil, fmt.Errorf("scan tools: %w", err)
	}

	return assemble(cats, tools)
}

func assemble(cats []categoryRow, tools []toolRow) (*catalog.Catalog, error) {
	sections := make([]catalog.Section, len(cats))
	index := make(map[string]int, len(cats))
	for i, c := range cats {
		sections[i] = catalog.Section{Category: catalog.Category{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Icon:        c.Icon,
			FAQ:         c.FAQ,
		}}
		index[c.ID] = i
	}

	for _, t := range tools {
		i, ok := index[t.CategoryID]
		if !ok {
			return nil, fmt.Errorf("%w: tool %q references unknown category %q", catalog.ErrInvalidCatalog, t.ID, t.CategoryID)
		}
		sections[i].Tools = append(sections[i].Tools, catalog.Tool{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			URL:         t.URL,
			Featured:    t.Featured,
		})
	}
	return catalog.New(sections)
}
