// Package recipestore keeps recipes in a SQLite database laid out as recipes(Title, Ingredients, Instructions).
package recipestore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/askiada/food-assistant/pkg/lookup"
)

const createTable = `CREATE TABLE IF NOT EXISTS recipes (
	Title        TEXT NOT NULL,
	Ingredients  TEXT NOT NULL DEFAULT '',
	Instructions TEXT NOT NULL DEFAULT ''
)`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Store is a SQLite recipe store.
type Store struct {
	db *sql.DB
}

// Open opens the database at path for lookups. The recipes table is not created, a missing database or table is
// reported by the first query.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "unable to open sqlite")
	}
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

// Create opens the database at path and creates the recipes table when missing.
func Create(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		err := os.MkdirAll(dir, 0o750)
		if err != nil {
			return nil, errors.Wrap(err, "unable to create data directory")
		}
	}

	store, err := Open(path)
	if err != nil {
		return nil, err
	}

	_, err = store.db.Exec(createTable)
	if err != nil {
		_ = store.Close()

		return nil, errors.Wrap(err, "unable to create recipes table")
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// FindByTitle returns the first recipe whose title contains fragment, ignoring ASCII case.
func (s *Store) FindByTitle(ctx context.Context, fragment string) (lookup.Recipe, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT Title, Ingredients, Instructions FROM recipes WHERE Title LIKE ? ESCAPE '\' LIMIT 1`,
		"%"+likeEscaper.Replace(fragment)+"%",
	)

	var recipe lookup.Recipe
	err := row.Scan(&recipe.Title, &recipe.Ingredients, &recipe.Instructions)
	if errors.Is(err, sql.ErrNoRows) {
		return lookup.Recipe{}, false, nil
	}
	if err != nil {
		return lookup.Recipe{}, false, errors.Wrap(err, "unable to query recipes")
	}

	return recipe, true, nil
}

// Insert adds recipes in a single transaction.
func (s *Store) Insert(ctx context.Context, recipes ...lookup.Recipe) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "unable to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO recipes (Title, Ingredients, Instructions) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "unable to prepare insert")
	}
	defer stmt.Close()

	for _, r := range recipes {
		_, err := stmt.ExecContext(ctx, r.Title, r.Ingredients, r.Instructions)
		if err != nil {
			return errors.Wrapf(err, "unable to insert %q", r.Title)
		}
	}

	err = tx.Commit()
	if err != nil {
		return errors.Wrap(err, "unable to commit")
	}

	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "unable to count recipes")
	}

	return n, nil
}

var _ lookup.RecipeStore = (*Store)(nil)
