package jsonfile

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/Richetti123/CashFlow/internal/domain"
	"github.com/Richetti123/CashFlow/internal/store"
)

// UserStates persists one record per sender in usuarios.json.
type UserStates struct {
	mu    sync.Mutex
	path  string
	users map[string]domain.UserState
}

func NewUserStates(dir string) (*UserStates, error) {
	u := &UserStates{
		path:  filepath.Join(dir, "usuarios.json"),
		users: make(map[string]domain.UserState),
	}
	if err := loadDoc(u.path, &u.users); err != nil {
		return nil, err
	}
	return u, nil
}

// GetOrCreate holds the lock across the lookup and the insert, so two
// interleaved first contacts from one sender yield a single record.
func (u *UserStates) GetOrCreate(ctx context.Context, id string) (domain.UserState, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if st, ok := u.users[id]; ok {
		st.ID = id
		return st, nil
	}
	st := domain.UserState{}
	u.users[id] = st
	if err := saveDoc(u.path, u.users); err != nil {
		delete(u.users, id)
		return domain.UserState{}, err
	}
	st.ID = id
	return st, nil
}

func (u *UserStates) Update(ctx context.Context, id string, awaiting bool, clientName, clientNumber string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	prev, ok := u.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.users[id] = domain.UserState{
		AwaitingPaymentResponse: awaiting,
		PendingClientName:       clientName,
		PendingClientNumber:     clientNumber,
	}
	if err := saveDoc(u.path, u.users); err != nil {
		u.users[id] = prev
		return err
	}
	return nil
}
