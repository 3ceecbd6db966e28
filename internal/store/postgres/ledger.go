// Package postgres implements the store interfaces on a pgx pool, for
// deployments that outgrow the whole-file jsonfile backing.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Richetti123/CashFlow/internal/domain"
	"github.com/Richetti123/CashFlow/internal/store"
)

type Ledger struct{ pool *pgxpool.Pool }

func NewLedger(p *pgxpool.Pool) *Ledger { return &Ledger{pool: p} }

func (r *Ledger) Register(ctx context.Context, c domain.Client) error {
	if err := domain.ValidateNumber(c.Number); err != nil {
		return err
	}
	if err := domain.ValidateBillingDay(c.BillingDay); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO clients(number, name, billing_day, amount, flag, suspended, chat_id)
		VALUES($1,$2,$3,$4,$5,$6,$7)
	`, c.Number, c.Name, c.BillingDay, c.Amount, c.Flag, c.Suspended, c.ChatID)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return err
	}

	for _, p := range c.Payments {
		if _, err := tx.Exec(ctx, `
			INSERT INTO payments(client_number, amount, date, confirmed, proof_ref)
			VALUES($1,$2,$3,$4,$5)
		`, c.Number, p.Amount, p.Date, p.Confirmed, p.ProofRef); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Ledger) Get(ctx context.Context, number string) (domain.Client, error) {
	var c domain.Client
	err := r.pool.QueryRow(ctx, `
		SELECT number, name, billing_day, amount, flag, suspended, chat_id
		FROM clients WHERE number=$1
	`, number).Scan(&c.Number, &c.Name, &c.BillingDay, &c.Amount, &c.Flag, &c.Suspended, &c.ChatID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Client{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Client{}, err
	}
	c.Payments, err = r.payments(ctx, number)
	return c, err
}

func (r *Ledger) List(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT number, name, billing_day, amount, flag, suspended, chat_id
		FROM clients
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		var c domain.Client
		if e := rows.Scan(&c.Number, &c.Name, &c.BillingDay, &c.Amount, &c.Flag, &c.Suspended, &c.ChatID); e != nil {
			return nil, e
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Payments, err = r.payments(ctx, out[i].Number); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Ledger) Remove(ctx context.Context, number string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE number=$1`, number)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Ledger) AppendPayment(ctx context.Context, number string, p domain.Payment) error {
	if err := r.exists(ctx, number); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO payments(client_number, amount, date, confirmed, proof_ref)
		VALUES($1,$2,$3,$4,$5)
	`, number, p.Amount, p.Date, p.Confirmed, p.ProofRef)
	return err
}

func (r *Ledger) ConfirmPayment(ctx context.Context, number, proofRef, date string) error {
	if err := r.exists(ctx, number); err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE payments SET confirmed=TRUE, proof_ref=$2
		WHERE id = (
			SELECT id FROM payments
			WHERE client_number=$1 AND NOT confirmed
			ORDER BY id DESC LIMIT 1
		)
	`, number, proofRef)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO payments(client_number, amount, date, confirmed, proof_ref)
		SELECT number, amount, $2, TRUE, $3 FROM clients WHERE number=$1
	`, number, date, proofRef)
	return err
}

func (r *Ledger) SetSuspended(ctx context.Context, number string, suspended bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE clients SET suspended=$2 WHERE number=$1`, number, suspended)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Ledger) BindChat(ctx context.Context, number string, chatID int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE clients SET chat_id=$2 WHERE number=$1`, number, chatID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Ledger) FindByChat(ctx context.Context, chatID int64) (domain.Client, error) {
	if chatID == 0 {
		return domain.Client{}, store.ErrNotFound
	}
	var number string
	err := r.pool.QueryRow(ctx, `SELECT number FROM clients WHERE chat_id=$1 LIMIT 1`, chatID).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Client{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Client{}, err
	}
	return r.Get(ctx, number)
}

func (r *Ledger) payments(ctx context.Context, number string) ([]domain.Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT amount, date, confirmed, proof_ref
		FROM payments WHERE client_number=$1 ORDER BY id
	`, number)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if e := rows.Scan(&p.Amount, &p.Date, &p.Confirmed, &p.ProofRef); e != nil {
			return nil, e
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Ledger) exists(ctx context.Context, number string) error {
	var ok bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM clients WHERE number=$1)`, number).Scan(&ok); err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
