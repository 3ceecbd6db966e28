package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Richetti123/CashFlow/internal/domain"
	"github.com/Richetti123/CashFlow/internal/store"
)

type UserStates struct{ pool *pgxpool.Pool }

func NewUserStates(p *pgxpool.Pool) *UserStates { return &UserStates{pool: p} }

// GetOrCreate leans on ON CONFLICT so two racing first contacts from
// one sender collapse into a single row.
func (r *UserStates) GetOrCreate(ctx context.Context, id string) (domain.UserState, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_states(id) VALUES($1)
		ON CONFLICT (id) DO NOTHING
	`, id)
	if err != nil {
		return domain.UserState{}, err
	}

	var st domain.UserState
	st.ID = id
	err = r.pool.QueryRow(ctx, `
		SELECT awaiting, client_name, client_number FROM user_states WHERE id=$1
	`, id).Scan(&st.AwaitingPaymentResponse, &st.PendingClientName, &st.PendingClientNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserState{}, store.ErrNotFound
	}
	return st, err
}

func (r *UserStates) Update(ctx context.Context, id string, awaiting bool, clientName, clientNumber string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE user_states SET awaiting=$2, client_name=$3, client_number=$4 WHERE id=$1
	`, id, awaiting, clientName, clientNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
