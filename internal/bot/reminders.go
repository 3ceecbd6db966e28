package bot

import (
	"context"
	"fmt"
	"log"
	"time"
)

// RunReminderWorker scans the ledger once immediately and then on every
// tick, independently of inbound traffic. The scan is stateless across
// runs: nothing tracks "already reminded", so the interval and the lead
// offsets together bound how often a client can be pinged for the same
// billing day (a restart on a billing day can repeat a send).
func (h *Handler) RunReminderWorker(ctx context.Context, every time.Duration) {
	// billing days are calendar days in the configured zone, not the
	// server's
	h.runReminderScan(ctx, time.Now().In(h.loc))

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.runReminderScan(ctx, time.Now().In(h.loc))
		}
	}
}

// runReminderScan sends at most one reminder per matching client. A
// failed send is logged and never aborts the rest of the scan.
func (h *Handler) runReminderScan(ctx context.Context, now time.Time) {
	clients, err := h.ledger.List(ctx)
	if err != nil {
		log.Printf("escaneo de recordatorios: %v", err)
		return
	}

	for _, c := range clients {
		if c.Suspended {
			continue
		}
		if c.ChatID == 0 {
			log.Printf("recordatorio omitido para %s: chat no vinculado", c.Number)
			continue
		}

		for _, offset := range h.cfg.RemindDaysBefore {
			target := now.AddDate(0, 0, offset)
			if target.Day() != effectiveBillingDay(c.BillingDay, target) {
				continue
			}

			var text string
			if offset > 0 {
				text = fmt.Sprintf(
					"⏰ Hola %s, te recordamos que tu pago de %s %s vence en %d días (el día %d). ¡No lo olvides!",
					c.Name, c.Amount, c.Flag, offset, c.BillingDay,
				)
			} else {
				text = fmt.Sprintf(
					"⏰ Hola %s, hoy es tu día de pago. Monto: %s %s. Envía tu comprobante por este chat cuando realices la transferencia. ¡Gracias!",
					c.Name, c.Amount, c.Flag,
				)
			}

			h.reply(c.ChatID, text, false)
			break
		}
	}
}

// effectiveBillingDay clamps a billing day to the length of target's
// month, so day 31 still fires in 30-day months.
func effectiveBillingDay(day int, target time.Time) int {
	last := time.Date(target.Year(), target.Month()+1, 0, 0, 0, 0, 0, target.Location()).Day()
	if day > last {
		return last
	}
	return day
}
