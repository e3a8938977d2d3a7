package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JonMunkholm/productview/internal/core"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLite reads records from a table in a SQLite database file.
type SQLite struct {
	db    *sql.DB
	path  string
	table string
}

// NewSQLite opens the database at path. The file is not touched until Fetch.
func NewSQLite(path, table string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite path cannot be empty", ErrUnsupportedSource)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=query_only(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &SQLite{db: db, path: path, table: table}, nil
}

func (s *SQLite) Name() string { return "sqlite:" + s.path + "/" + s.table }

// Fetch reads every row of the table in id order. Prices are read as text
// so that stored decimals keep their exact value.
func (s *SQLite) Fetch(ctx context.Context) ([]core.RecordInput, error) {
	rows, err := s.db.QueryContext(ctx, selectRecordsQuery(s.table, sqliteCast))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	inputs := []core.RecordInput{}
	for rows.Next() {
		var (
			id                          sql.NullInt64
			name, category, subcategory sql.NullString
			createdAt, updatedAt        sql.NullString
			price, salePrice            sql.NullString
		)
		if err := rows.Scan(&id, &name, &category, &subcategory, &createdAt, &updatedAt, &price, &salePrice); err != nil {
			inputs = append(inputs, core.RecordInput{Err: err})
			continue
		}

		r := row{
			name:        nullString(name),
			category:    nullString(category),
			subcategory: nullString(subcategory),
			createdAt:   nullString(createdAt),
			updatedAt:   nullString(updatedAt),
			price:       nullString(price),
			salePrice:   nullString(salePrice),
		}
		if id.Valid {
			r.id = &id.Int64
		}
		inputs = append(inputs, r.input())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.table, err)
	}

	return inputs, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

var sqliteCast = columnCast{
	timestamp: func(col string) string { return col },
	decimal:   func(col string) string { return "CAST(" + col + " AS TEXT)" },
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
