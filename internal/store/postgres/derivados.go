package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Richetti123/CashFlow/internal/domain"
	"github.com/Richetti123/CashFlow/internal/store"
)

type Derivados struct{ pool *pgxpool.Pool }

func NewDerivados(p *pgxpool.Pool) *Derivados { return &Derivados{pool: p} }

func (r *Derivados) Add(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO derivados(key, name, created_at)
		VALUES(lower($1), $1, $2)
		ON CONFLICT DO NOTHING
	`, name, time.Now().Format("2006-01-02"))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrDuplicate
	}
	return nil
}

func (r *Derivados) Remove(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM derivados WHERE key=lower($1)`, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Derivados) List(ctx context.Context) ([]domain.Derivado, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, created_at, clients FROM derivados ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Derivado
	for rows.Next() {
		var d domain.Derivado
		if e := rows.Scan(&d.Name, &d.CreatedAt, &d.Clients); e != nil {
			return nil, e
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
