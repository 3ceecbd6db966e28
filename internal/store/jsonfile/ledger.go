package jsonfile

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/Richetti123/CashFlow/internal/domain"
	"github.com/Richetti123/CashFlow/internal/store"
)

// Ledger keeps the client map in memory and rewrites pagos.json on each
// mutation. The mutex serializes every read-modify-write section, which
// also covers the per-key ordering the workflows rely on.
type Ledger struct {
	mu      sync.Mutex
	path    string
	clients map[string]domain.Client
}

func NewLedger(dir string) (*Ledger, error) {
	l := &Ledger{
		path:    filepath.Join(dir, "pagos.json"),
		clients: make(map[string]domain.Client),
	}
	if err := loadDoc(l.path, &l.clients); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) Register(ctx context.Context, c domain.Client) error {
	if err := domain.ValidateNumber(c.Number); err != nil {
		return err
	}
	if err := domain.ValidateBillingDay(c.BillingDay); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.clients[c.Number]; ok {
		return store.ErrDuplicate
	}
	l.clients[c.Number] = c
	if err := l.save(); err != nil {
		delete(l.clients, c.Number)
		return err
	}
	return nil
}

func (l *Ledger) Get(ctx context.Context, number string) (domain.Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.clients[number]
	if !ok {
		return domain.Client{}, store.ErrNotFound
	}
	c.Number = number
	return c, nil
}

func (l *Ledger) List(ctx context.Context) ([]domain.Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Client, 0, len(l.clients))
	for num, c := range l.clients {
		c.Number = num
		out = append(out, c)
	}
	return out, nil
}

func (l *Ledger) Remove(ctx context.Context, number string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev, ok := l.clients[number]
	if !ok {
		return store.ErrNotFound
	}
	delete(l.clients, number)
	if err := l.save(); err != nil {
		l.clients[number] = prev
		return err
	}
	return nil
}

func (l *Ledger) AppendPayment(ctx context.Context, number string, p domain.Payment) error {
	return l.mutate(number, func(c *domain.Client) {
		c.Payments = append(c.Payments, p)
	})
}

func (l *Ledger) ConfirmPayment(ctx context.Context, number, proofRef, date string) error {
	return l.mutate(number, func(c *domain.Client) {
		if i := c.LastUnconfirmed(); i >= 0 {
			c.Payments[i].Confirmed = true
			c.Payments[i].ProofRef = proofRef
			return
		}
		c.Payments = append(c.Payments, domain.Payment{
			Amount:    c.Amount,
			Date:      date,
			Confirmed: true,
			ProofRef:  proofRef,
		})
	})
}

func (l *Ledger) SetSuspended(ctx context.Context, number string, suspended bool) error {
	return l.mutate(number, func(c *domain.Client) { c.Suspended = suspended })
}

func (l *Ledger) BindChat(ctx context.Context, number string, chatID int64) error {
	return l.mutate(number, func(c *domain.Client) { c.ChatID = chatID })
}

func (l *Ledger) FindByChat(ctx context.Context, chatID int64) (domain.Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for num, c := range l.clients {
		if c.ChatID == chatID && chatID != 0 {
			c.Number = num
			return c, nil
		}
	}
	return domain.Client{}, store.ErrNotFound
}

func (l *Ledger) mutate(number string, fn func(*domain.Client)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev, ok := l.clients[number]
	if !ok {
		return store.ErrNotFound
	}
	c := prev
	c.Payments = append([]domain.Payment(nil), prev.Payments...)
	fn(&c)
	l.clients[number] = c
	if err := l.save(); err != nil {
		l.clients[number] = prev
		return err
	}
	return nil
}

func (l *Ledger) save() error {
	return saveDoc(l.path, l.clients)
}
