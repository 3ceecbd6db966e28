package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Richetti123/CashFlow/internal/domain"
	"github.com/Richetti123/CashFlow/internal/store"
)

func (h *Handler) handleRegister(ctx context.Context, chatID int64, args string) {
	parts := strings.Fields(args)
	if len(parts) < 5 {
		h.reply(chatID, "*Uso incorrecto del comando:*\nProporciona nombre, número, día de pago, monto y bandera.\nEjemplo: `/registrarpago Victoria +569292929292 21 $3000 🇨🇱`\n\n*Nota:* el día de pago debe ser un número (1-31).", true)
		return
	}

	name := parts[0]
	number := parts[1]
	day, errDay := strconv.Atoi(parts[2])
	amount := parts[3]
	flag := parts[4]

	if err := domain.ValidateNumber(number); err != nil {
		h.reply(chatID, "*Número de teléfono inválido:*\nDebe comenzar con '+' y tener un formato válido.\nEjemplo: `+569292929292`", true)
		return
	}
	if errDay != nil || domain.ValidateBillingDay(day) != nil {
		h.reply(chatID, "*Día de pago inválido:*\nDebe ser un número entre 1 y 31.", true)
		return
	}

	c := domain.Client{
		Number:     number,
		Name:       name,
		BillingDay: day,
		Amount:     amount,
		Flag:       flag,
		Payments: []domain.Payment{{
			Amount: amount,
			Date:   time.Now().Format("2006-01-02"),
		}},
	}

	switch err := h.ledger.Register(ctx, c); {
	case errors.Is(err, store.ErrDuplicate):
		h.reply(chatID, fmt.Sprintf("❌ El cliente con el número `%s` ya existe en la base de datos.", number), true)
	case err != nil:
		h.reply(chatID, "❌ Ocurrió un error interno al intentar añadir el cliente.", false)
	default:
		h.reply(chatID, fmt.Sprintf("✅ Cliente *%s* (%s) añadido exitosamente a la base de datos de pagos.", name, number), true)
	}
}

// handleRegisterBatch commits every valid line and reports the rest,
// never all-or-nothing.
func (h *Handler) handleRegisterBatch(ctx context.Context, chatID int64, args string) {
	var lines []string
	for _, l := range strings.Split(args, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, strings.TrimSpace(l))
		}
	}
	if len(lines) == 0 {
		h.reply(chatID, "*Uso incorrecto del comando:*\nEnvía el comando seguido de la lista de clientes, un cliente por línea.\n\n*Formato por línea:*\n`Nombre +Número Día de cada mes (Monto Bandera)`\n\n*Ejemplo:*\n`/agregarclientes`\n`Victoria +569292929292 21 de cada mes ($3000🇨🇱)`\n`Marcelo +51987654321 10 de cada mes (S/50🇵🇪)`", true)
		return
	}

	var out BatchOutcome
	today := time.Now().Format("2006-01-02")

	for _, line := range lines {
		p, err := ParseBatchLine(line)
		if err != nil {
			out.Failed = append(out.Failed, fmt.Sprintf("%s (%s)", line, err))
			continue
		}
		c := domain.Client{
			Number:     p.Number,
			Name:       p.Name,
			BillingDay: p.Day,
			Amount:     p.Amount,
			Flag:       p.Flag,
			Payments:   []domain.Payment{{Amount: p.Amount, Date: today}},
		}
		switch err := h.ledger.Register(ctx, c); {
		case errors.Is(err, store.ErrDuplicate):
			out.Failed = append(out.Failed, fmt.Sprintf("%s (Cliente ya existente con ese número.)", line))
		case err != nil:
			out.Failed = append(out.Failed, fmt.Sprintf("%s (Error interno al guardar.)", line))
		default:
			out.Added = append(out.Added, p.Name)
		}
	}

	var b strings.Builder
	added := "Ninguno"
	if len(out.Added) > 0 {
		added = strings.Join(out.Added, ", ")
	}
	fmt.Fprintf(&b, "✅ Clientes añadidos exitosamente (%d): %s.\n", len(out.Added), added)
	if len(out.Failed) > 0 {
		fmt.Fprintf(&b, "\n❌ Falló la adición de los siguientes clientes (%d):\n", len(out.Failed))
		for _, f := range out.Failed {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	h.reply(chatID, b.String(), false)
}

func (h *Handler) handleRemove(ctx context.Context, chatID int64, args string) {
	number := strings.TrimSpace(args)
	if number == "" {
		h.reply(chatID, "Usa: `/eliminarcliente <+número>`", true)
		return
	}
	switch err := h.ledger.Remove(ctx, number); {
	case errors.Is(err, store.ErrNotFound):
		h.reply(chatID, fmt.Sprintf("❌ No se encontró ningún cliente con el número `%s`.", number), true)
	case err != nil:
		h.reply(chatID, "❌ No se pudo eliminar el cliente.", false)
	default:
		h.reply(chatID, fmt.Sprintf("✅ Cliente `%s` eliminado exitosamente.", number), true)
	}
}

func (h *Handler) handleList(ctx context.Context, chatID int64) {
	clients, err := h.ledger.List(ctx)
	if err != nil {
		h.reply(chatID, "❌ No se pudo leer la base de datos de pagos.", false)
		return
	}
	if len(clients) == 0 {
		h.reply(chatID, "❌ No hay clientes registrados en la base de datos de pagos.", false)
		return
	}

	var b strings.Builder
	b.WriteString("📊 *Lista de Clientes y Pagos:*\n\n")
	for _, c := range clients {
		fmt.Fprintf(&b, "*👤 Nombre:* %s\n", c.Name)
		fmt.Fprintf(&b, "*📞 Número:* %s\n", c.Number)
		fmt.Fprintf(&b, "*🗓️ Día de Pago:* %d\n", c.BillingDay)
		fmt.Fprintf(&b, "*💰 Monto:* %s\n", c.Amount)
		fmt.Fprintf(&b, "*🌎 Bandera:* %s\n", c.Flag)
		if c.Suspended {
			b.WriteString("*⏸️ Suspendido*\n")
		}
		b.WriteString("----------------------------\n")
	}
	h.reply(chatID, b.String(), true)
}

func (h *Handler) handleHistory(ctx context.Context, chatID int64, args string) {
	number := strings.TrimSpace(args)
	if number == "" {
		h.reply(chatID, "Usa: `/historialpagos <+número>`", true)
		return
	}
	c, err := h.ledger.Get(ctx, number)
	if errors.Is(err, store.ErrNotFound) {
		h.reply(chatID, fmt.Sprintf("❌ No se encontró ningún cliente con el número `%s`.", number), true)
		return
	}
	if err != nil {
		h.reply(chatID, "❌ No se pudo leer la base de datos de pagos.", false)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📜 *Historial de pagos de %s (%s):*\n\n", c.Name, c.Number)
	for i, p := range c.Payments {
		estado := "⏳ pendiente"
		if p.Confirmed {
			estado = "✅ confirmado"
		}
		fmt.Fprintf(&b, "%d) %s — %s — %s", i+1, p.Date, p.Amount, estado)
		if p.ProofRef != "" {
			fmt.Fprintf(&b, " (ref %s)", p.ProofRef)
		}
		b.WriteString("\n")
	}
	h.reply(chatID, b.String(), true)
}

func (h *Handler) handleSuspend(ctx context.Context, chatID int64, args string, suspend bool) {
	number := strings.TrimSpace(args)
	if number == "" {
		h.reply(chatID, "Usa: `/suspendercliente <+número>` o `/activarcliente <+número>`", true)
		return
	}
	switch err := h.ledger.SetSuspended(ctx, number, suspend); {
	case errors.Is(err, store.ErrNotFound):
		h.reply(chatID, fmt.Sprintf("❌ No se encontró ningún cliente con el número `%s`.", number), true)
	case err != nil:
		h.reply(chatID, "❌ No se pudo actualizar el cliente.", false)
	case suspend:
		h.reply(chatID, fmt.Sprintf("⏸️ Recordatorios suspendidos para `%s`.", number), true)
	default:
		h.reply(chatID, fmt.Sprintf("▶️ Recordatorios reactivados para `%s`.", number), true)
	}
}

func (h *Handler) handleDerivados(ctx context.Context, chatID int64, args string) {
	parts := strings.Fields(args)
	sub := ""
	if len(parts) > 0 {
		sub = strings.ToLower(parts[0])
	}

	switch sub {
	case "añadir", "add":
		name := strings.TrimSpace(strings.Join(parts[1:], " "))
		if name == "" {
			h.reply(chatID, "*Uso incorrecto:*\n`/derivados añadir <nombre_del_derivado>`", true)
			return
		}
		switch err := h.derivados.Add(ctx, name); {
		case errors.Is(err, store.ErrDuplicate):
			h.reply(chatID, fmt.Sprintf("❌ El derivado *%s* ya existe.", name), true)
		case err != nil:
			h.reply(chatID, "❌ No se pudo guardar el derivado.", false)
		default:
			h.reply(chatID, fmt.Sprintf("✅ Derivado *%s* añadido exitosamente.", name), true)
		}

	case "eliminar", "del":
		name := strings.TrimSpace(strings.Join(parts[1:], " "))
		if name == "" {
			h.reply(chatID, "*Uso incorrecto:*\n`/derivados eliminar <nombre_del_derivado>`", true)
			return
		}
		switch err := h.derivados.Remove(ctx, name); {
		case errors.Is(err, store.ErrNotFound):
			h.reply(chatID, fmt.Sprintf("❌ El derivado *%s* no se encontró.", name), true)
		case err != nil:
			h.reply(chatID, "❌ No se pudo eliminar el derivado.", false)
		default:
			h.reply(chatID, fmt.Sprintf("✅ Derivado *%s* eliminado exitosamente.", name), true)
		}

	case "ver", "list":
		refs, err := h.derivados.List(ctx)
		if err != nil {
			h.reply(chatID, "❌ No se pudo leer la lista de derivados.", false)
			return
		}
		if len(refs) == 0 {
			h.reply(chatID, "ℹ️ No hay derivados registrados en este momento.", false)
			return
		}
		var b strings.Builder
		b.WriteString("📊 *Lista de Derivados:*\n\n")
		for i, d := range refs {
			fmt.Fprintf(&b, "%d. *%s*\n", i+1, d.Name)
			fmt.Fprintf(&b, "   Fecha de Creación: %s\n", d.CreatedAt)
			fmt.Fprintf(&b, "   Clientes Asociados: %d\n", len(d.Clients))
		}
		h.reply(chatID, b.String(), true)

	default:
		h.reply(chatID, "*Uso correcto de /derivados:*\n`/derivados añadir <nombre>` - Añade un nuevo derivado.\n`/derivados eliminar <nombre>` - Elimina un derivado.\n`/derivados ver` - Muestra todos los derivados registrados.", true)
	}
}

// handleBind lets a client attach their own chat to a registered
// number, so reminders and decisions can reach them.
func (h *Handler) handleBind(ctx context.Context, msg *tgbotapi.Message, args string) {
	number := strings.TrimSpace(args)
	if domain.ValidateNumber(number) != nil {
		h.reply(msg.Chat.ID, "Usa: `/vincular <+número>` con el número con el que fuiste registrado.", true)
		return
	}
	switch err := h.ledger.BindChat(ctx, number, msg.Chat.ID); {
	case errors.Is(err, store.ErrNotFound):
		h.reply(msg.Chat.ID, "❌ Ese número no está registrado. Contacta al propietario.", false)
	case err != nil:
		h.reply(msg.Chat.ID, "❌ No se pudo vincular tu chat. Intenta de nuevo.", false)
	default:
		h.reply(msg.Chat.ID, fmt.Sprintf("✅ Chat vinculado al número `%s`. Recibirás tus recordatorios aquí.", number), true)
	}
}
