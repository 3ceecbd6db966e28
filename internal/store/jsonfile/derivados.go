package jsonfile

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Richetti123/CashFlow/internal/domain"
	"github.com/Richetti123/CashFlow/internal/store"
)

// Derivados persists the grouping references in derivados.json, keyed
// by lowercase name.
type Derivados struct {
	mu   sync.Mutex
	path string
	refs map[string]domain.Derivado
}

func NewDerivados(dir string) (*Derivados, error) {
	d := &Derivados{
		path: filepath.Join(dir, "derivados.json"),
		refs: make(map[string]domain.Derivado),
	}
	if err := loadDoc(d.path, &d.refs); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Derivados) Add(ctx context.Context, name string) error {
	key := strings.ToLower(strings.TrimSpace(name))
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.refs[key]; ok {
		return store.ErrDuplicate
	}
	d.refs[key] = domain.Derivado{
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().Format("2006-01-02"),
		Clients:   []string{},
	}
	if err := saveDoc(d.path, d.refs); err != nil {
		delete(d.refs, key)
		return err
	}
	return nil
}

func (d *Derivados) Remove(ctx context.Context, name string) error {
	key := strings.ToLower(strings.TrimSpace(name))
	d.mu.Lock()
	defer d.mu.Unlock()
	prev, ok := d.refs[key]
	if !ok {
		return store.ErrNotFound
	}
	delete(d.refs, key)
	if err := saveDoc(d.path, d.refs); err != nil {
		d.refs[key] = prev
		return err
	}
	return nil
}

func (d *Derivados) List(ctx context.Context) ([]domain.Derivado, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.Derivado, 0, len(d.refs))
	for _, r := range d.refs {
		out = append(out, r)
	}
	return out, nil
}
