package bot

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Richetti123/CashFlow/internal/store"
)

// HandleCallback resolves the admin's accept/reject verdict on an
// approval request. Callback data: `<verb>:<senderChatID>:<proofRef>`.
func (h *Handler) HandleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	// Telegram requires the callback to be answered either way
	defer func() {
		if _, err := h.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
			log.Printf("responder callback: %v", err)
		}
	}()

	// decisions are admin-only
	if q.From == nil || (q.From.ID != h.cfg.OwnerID && q.From.ID != h.cfg.AdminID) {
		return
	}

	parts := strings.SplitN(q.Data, ":", 3)
	if len(parts) < 2 {
		return
	}
	verb := parts[0]
	senderChatID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || senderChatID == 0 {
		return
	}
	proofRef := ""
	if len(parts) == 3 {
		proofRef = parts[2]
	}

	switch verb {
	case "accept_payment":
		h.acceptPayment(ctx, q, senderChatID, proofRef)
	case "reject_payment":
		h.rejectPayment(ctx, q, senderChatID)
	}
}

func (h *Handler) acceptPayment(ctx context.Context, q *tgbotapi.CallbackQuery, senderChatID int64, proofRef string) {
	verdict := "✅ Transferencia aceptada."
	recorded := false

	c, err := h.ledger.FindByChat(ctx, senderChatID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		verdict = "⚠️ Aceptada, pero el remitente no está vinculado a ningún cliente; no se registró el pago."
	case err != nil:
		log.Printf("buscar cliente del chat %d: %v", senderChatID, err)
		verdict = "⚠️ Aceptada, pero no se pudo registrar el pago."
	default:
		today := time.Now().Format("2006-01-02")
		if err := h.ledger.ConfirmPayment(ctx, c.Number, proofRef, today); err != nil {
			log.Printf("confirmar pago de %s: %v", c.Number, err)
			verdict = "⚠️ Aceptada, pero no se pudo registrar el pago."
		} else {
			recorded = true
		}
	}

	h.clearAwaiting(ctx, senderChatID)
	// the sender only hears "confirmado" once the ledger agrees
	if recorded {
		h.reply(senderChatID, "✅ Tu pago fue confirmado. ¡Gracias por tu puntualidad!", false)
	} else {
		h.reply(senderChatID, "✅ Recibimos tu comprobante. El propietario lo revisará y se pondrá en contacto contigo.", false)
	}
	h.recordVerdict(q, verdict)
}

func (h *Handler) rejectPayment(ctx context.Context, q *tgbotapi.CallbackQuery, senderChatID int64) {
	h.clearAwaiting(ctx, senderChatID)
	h.reply(senderChatID, "❌ Tu comprobante fue rechazado. Verifica los datos de tu pago y envíalo de nuevo, o contacta a soporte.", false)
	h.recordVerdict(q, "❌ Transferencia rechazada.")
}

// clearAwaiting records that the decision for this sender is no longer
// pending.
func (h *Handler) clearAwaiting(ctx context.Context, senderChatID int64) {
	key := strconv.FormatInt(senderChatID, 10)
	if _, err := h.users.GetOrCreate(ctx, key); err != nil {
		log.Printf("user state %s: %v", key, err)
		return
	}
	if err := h.users.Update(ctx, key, false, "", ""); err != nil {
		log.Printf("limpiar estado %s: %v", key, err)
	}
}

// recordVerdict appends the decision to the approval request's caption
// so the admin chat keeps an audit trail.
func (h *Handler) recordVerdict(q *tgbotapi.CallbackQuery, verdict string) {
	if q.Message == nil {
		return
	}
	edit := tgbotapi.NewEditMessageCaption(
		q.Message.Chat.ID,
		q.Message.MessageID,
		strings.TrimSpace(q.Message.Caption+"\n\n"+verdict),
	)
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("editar veredicto: %v", err)
	}
}
