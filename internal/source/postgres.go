package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/JonMunkholm/productview/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres reads records from a PostgreSQL table through a pgx pool.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
	name  string
}

// NewPostgres creates the pool. No connection is made until Fetch.
func NewPostgres(ctx context.Context, dsn, table string, maxConns int) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}
	poolConfig.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}

	return &Postgres{
		pool:  pool,
		table: table,
		name:  "postgres:" + databaseName(dsn) + "/" + table,
	}, nil
}

func (p *Postgres) Name() string { return p.name }

// Fetch reads every row of the table in id order.
func (p *Postgres) Fetch(ctx context.Context) ([]core.RecordInput, error) {
	query := selectRecordsQuery(p.table, postgresCast)

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", p.table, err)
	}
	defer rows.Close()

	inputs := []core.RecordInput{}
	for rows.Next() {
		var (
			id                          pgtype.Int8
			name, category, subcategory pgtype.Text
			createdAt, updatedAt        pgtype.Timestamptz
			price, salePrice            pgtype.Text
		)
		if err := rows.Scan(&id, &name, &category, &subcategory, &createdAt, &updatedAt, &price, &salePrice); err != nil {
			inputs = append(inputs, core.RecordInput{Err: err})
			continue
		}

		r := row{
			name:        pgText(name),
			category:    pgText(category),
			subcategory: pgText(subcategory),
			price:       pgText(price),
			salePrice:   pgText(salePrice),
		}
		if id.Valid {
			r.id = &id.Int64
		}
		if createdAt.Valid {
			r.createdAt = formatTime(createdAt.Time)
		}
		if updatedAt.Valid {
			r.updatedAt = formatTime(updatedAt.Time)
		}
		inputs = append(inputs, r.input())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", p.table, err)
	}

	return inputs, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

var postgresCast = columnCast{
	timestamp: func(col string) string { return col + "::timestamptz" },
	decimal:   func(col string) string { return col + "::text" },
}

func pgText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// databaseName extracts the database name from a connection URL for logging.
func databaseName(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "unknown"
	}
	return strings.TrimPrefix(u.Path, "/")
}
