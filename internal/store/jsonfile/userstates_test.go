package jsonfile

import (
	"context"
	"sync"
	"testing"
)

func TestUserStatesGetOrCreate(t *testing.T) {
	ctx := context.Background()
	u, err := NewUserStates(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	st, err := u.GetOrCreate(ctx, "12345")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if st.AwaitingPaymentResponse || st.PendingClientName != "" || st.PendingClientNumber != "" {
		t.Errorf("new state not zero-valued: %+v", st)
	}

	if err := u.Update(ctx, "12345", true, "Victoria", "+569292929292"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	st, _ = u.GetOrCreate(ctx, "12345")
	if !st.AwaitingPaymentResponse || st.PendingClientName != "Victoria" {
		t.Errorf("state after update = %+v", st)
	}
}

func TestUserStatesConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	u, err := NewUserStates(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := u.GetOrCreate(ctx, "777"); err != nil {
				t.Errorf("GetOrCreate: %v", err)
			}
		}()
	}
	wg.Wait()

	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.users) != 1 {
		t.Fatalf("concurrent first contact produced %d records, want 1", len(u.users))
	}
}
