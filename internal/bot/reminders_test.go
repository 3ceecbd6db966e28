package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Richetti123/CashFlow/internal/domain"
)

func registerBound(t *testing.T, h *Handler, number string, day int, chatID int64, suspended bool) {
	t.Helper()
	ctx := context.Background()
	c := domain.Client{
		Number:     number,
		Name:       "Cliente" + number,
		BillingDay: day,
		Amount:     "$100",
		Flag:       "🇲🇽",
		Suspended:  suspended,
		ChatID:     chatID,
		Payments:   []domain.Payment{{Amount: "$100", Date: "2026-08-01"}},
	}
	if err := h.ledger.Register(ctx, c); err != nil {
		t.Fatal(err)
	}
}

func TestReminderScan(t *testing.T) {
	// fixed clock: 21 Aug 2026
	now := time.Date(2026, time.August, 21, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		day       int
		suspended bool
		chatID    int64
		wantSends int
		wantText  string
	}{
		{"vence hoy", 21, false, 701, 1, "hoy es tu día de pago"},
		{"vence en 7 días", 28, false, 702, 1, "vence en 7 días"},
		{"vence mañana", 22, false, 703, 1, "vence en 1 días"},
		{"sin coincidencia", 5, false, 704, 0, ""},
		{"suspendido", 21, true, 705, 0, ""},
		{"sin chat vinculado", 21, false, 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, api, _, _ := newTestHandler(t)
			registerBound(t, h, "+5211234567", tt.day, tt.chatID, tt.suspended)

			h.runReminderScan(context.Background(), now)

			msgs := api.messagesTo(tt.chatID)
			if len(msgs) != tt.wantSends {
				t.Fatalf("got %d reminders, want %d", len(msgs), tt.wantSends)
			}
			if tt.wantSends > 0 && !strings.Contains(msgs[0].Text, tt.wantText) {
				t.Errorf("reminder = %q, want %q in it", msgs[0].Text, tt.wantText)
			}
		})
	}
}

func TestReminderScanOnePerClient(t *testing.T) {
	// day 21 with offsets 7,1,0: only the day-0 rule matches on the 21st,
	// and a matching client gets exactly one message per scan
	now := time.Date(2026, time.August, 21, 10, 0, 0, 0, time.UTC)

	h, api, _, _ := newTestHandler(t)
	registerBound(t, h, "+5211234567", 21, 701, false)
	registerBound(t, h, "+5217654321", 28, 702, false)
	registerBound(t, h, "+5219999999", 3, 703, false)

	h.runReminderScan(context.Background(), now)

	if got := len(api.messagesTo(701)); got != 1 {
		t.Errorf("client 701 got %d reminders, want 1", got)
	}
	if got := len(api.messagesTo(702)); got != 1 {
		t.Errorf("client 702 (lead 7) got %d reminders, want 1", got)
	}
	if got := len(api.messagesTo(703)); got != 0 {
		t.Errorf("client 703 got %d reminders, want 0", got)
	}
}

func TestEffectiveBillingDayClamped(t *testing.T) {
	// billing day 31 in a 30-day month fires on the 30th
	sept30 := time.Date(2026, time.September, 30, 9, 0, 0, 0, time.UTC)

	h, api, _, _ := newTestHandler(t)
	registerBound(t, h, "+5211234567", 31, 701, false)

	h.runReminderScan(context.Background(), sept30)

	if got := len(api.messagesTo(701)); got != 1 {
		t.Errorf("clamped billing day: got %d reminders, want 1", got)
	}
}

func TestHandlerClockZone(t *testing.T) {
	// the scan's calendar follows the configured zone; a bad zone name
	// degrades to the server's local one instead of crashing startup
	h, _, _, _ := newTestHandler(t)
	if h.loc == nil {
		t.Fatal("handler has no clock zone")
	}

	cfg := h.cfg
	cfg.Timezone = "no/such-zone"
	bad := NewHandler(h.api, cfg, h.ledger, h.users, h.derivados, h.responder)
	if bad.loc != time.Local {
		t.Errorf("invalid zone resolved to %v, want local fallback", bad.loc)
	}
}
