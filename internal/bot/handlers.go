package bot

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Richetti123/CashFlow/internal/ai"
	"github.com/Richetti123/CashFlow/internal/config"
	"github.com/Richetti123/CashFlow/internal/domain"
	"github.com/Richetti123/CashFlow/internal/store"
)

// API is the slice of the bot client the handler uses. *tgbotapi.BotAPI
// satisfies it; tests drop in a recorder.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Handler struct {
	api API
	cfg config.Config

	ledger    store.Ledger
	users     store.UserStates
	derivados store.Derivados
	responder *ai.Client

	// reminder scans run on this clock's calendar, not the server's
	loc *time.Location

	// fetches media bytes from the file URL the bot API hands back
	httpc *http.Client
}

func NewHandler(api API, cfg config.Config, l store.Ledger, u store.UserStates, d store.Derivados, resp *ai.Client) *Handler {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("zona horaria %q inválida, usando la local: %v", cfg.Timezone, err)
		loc = time.Local
	}
	return &Handler{
		api:       api,
		cfg:       cfg,
		ledger:    l,
		users:     u,
		derivados: d,
		responder: resp,
		loc:       loc,
		httpc:     &http.Client{Timeout: 60 * time.Second},
	}
}

// HandleUpdate routes one inbound event. Nothing may escape: a failed
// event is logged and abandoned, never allowed to kill the loop.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pánico manejando update: %v", r)
		}
	}()

	if upd.CallbackQuery != nil {
		h.HandleCallback(ctx, upd.CallbackQuery)
		return
	}

	if upd.Message == nil || upd.Message.From == nil {
		return
	}

	msg := upd.Message
	// los comprobantes y comandos sólo viven en el chat privado
	if !msg.Chat.IsPrivate() {
		return
	}

	stateKey := strconv.FormatInt(msg.From.ID, 10)
	st, err := h.users.GetOrCreate(ctx, stateKey)
	if err != nil {
		log.Printf("user state %s: %v", stateKey, err)
		// keep handling with a zero state rather than dropping the event
		st = domain.UserState{ID: stateKey}
	}

	if hasMedia(msg) {
		if IsPaymentProof(msg.Caption) || st.AwaitingPaymentResponse {
			if name, number, handled := h.handleIncomingProof(ctx, msg); handled {
				// a decision is pending now; the correlation tag on the
				// approval request links the admin's verdict back here
				if err := h.users.Update(ctx, stateKey, true, name, number); err != nil {
					log.Printf("marcar pendiente %s: %v", stateKey, err)
				}
			}
			return
		}
		// media without a proof signal: the file itself is dropped, but
		// its caption is ordinary text and gets the responder fallback
		if caption := strings.TrimSpace(msg.Caption); caption != "" && msg.From.ID != h.cfg.OwnerID {
			h.handleFreeText(ctx, msg, caption)
		}
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "/") {
		h.handleCommand(ctx, msg, text)
		return
	}

	// free text goes to the external responder, unless the sender is
	// mid-decision or is the owner talking to their own bot
	if !st.AwaitingPaymentResponse && msg.From.ID != h.cfg.OwnerID {
		h.handleFreeText(ctx, msg, text)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message, text string) {
	fields := strings.Fields(text)
	cmd := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	// argument payload = raw text minus prefix and keyword
	args := strings.TrimSpace(strings.TrimPrefix(text, fields[0]))

	isOwner := msg.From.ID == h.cfg.OwnerID

	switch cmd {
	case "start", "ayuda", "comandos":
		h.reply(msg.Chat.ID, helpText(), true)

	case "vincular":
		h.handleBind(ctx, msg, args)

	case "registrarpago", "agregarcliente":
		if !isOwner {
			h.denyNonOwner(msg.Chat.ID)
			return
		}
		h.handleRegister(ctx, msg.Chat.ID, args)

	case "agregarclientes", "registrarlote":
		if !isOwner {
			h.denyNonOwner(msg.Chat.ID)
			return
		}
		h.handleRegisterBatch(ctx, msg.Chat.ID, args)

	case "limpiarpago", "eliminarcliente":
		if !isOwner {
			h.denyNonOwner(msg.Chat.ID)
			return
		}
		h.handleRemove(ctx, msg.Chat.ID, args)

	case "clientes", "listarpagos":
		if !isOwner {
			h.denyNonOwner(msg.Chat.ID)
			return
		}
		h.handleList(ctx, msg.Chat.ID)

	case "historialpagos":
		if !isOwner {
			h.denyNonOwner(msg.Chat.ID)
			return
		}
		h.handleHistory(ctx, msg.Chat.ID, args)

	case "suspendercliente":
		if !isOwner {
			h.denyNonOwner(msg.Chat.ID)
			return
		}
		h.handleSuspend(ctx, msg.Chat.ID, args, true)

	case "activarcliente":
		if !isOwner {
			h.denyNonOwner(msg.Chat.ID)
			return
		}
		h.handleSuspend(ctx, msg.Chat.ID, args, false)

	case "derivados":
		if !isOwner {
			h.denyNonOwner(msg.Chat.ID)
			return
		}
		h.handleDerivados(ctx, msg.Chat.ID, args)

	default:
		// unknown keyword: stay silent, same as an unrecognized plugin
	}
}

func (h *Handler) handleFreeText(ctx context.Context, msg *tgbotapi.Message, text string) {
	if !h.responder.Enabled() {
		return
	}

	reply, escalate, err := h.responder.Ask(ctx, text)
	if err != nil {
		log.Printf("responder: %v", err)
		return
	}

	h.reply(msg.Chat.ID, reply, false)

	if escalate {
		name := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
		if name == "" {
			name = "Desconocido"
		}
		notice := fmt.Sprintf(
			"❗ *Atención: Consulta Urgente del Chatbot*\n\n"+
				"El chatbot ha derivado una consulta que no pudo resolver.\n\n"+
				"*👤 Usuario:* %s (id %d)\n"+
				"*💬 Última pregunta:* `%s`\n"+
				"*🤖 Respuesta del chatbot:* `%s`\n\n"+
				"Por favor, revisa y contacta al usuario si es necesario.",
			name, msg.From.ID, text, reply,
		)
		h.reply(h.cfg.OwnerID, notice, true)
	}
}

func (h *Handler) denyNonOwner(chatID int64) {
	h.reply(chatID, "❌ Solo el propietario puede usar este comando.", false)
}

func (h *Handler) reply(chatID int64, text string, markdown bool) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markdown {
		msg.ParseMode = "Markdown"
	}
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("enviar a %d: %v", chatID, err)
	}
}

func hasMedia(msg *tgbotapi.Message) bool {
	return len(msg.Photo) > 0 || msg.Document != nil || msg.Video != nil
}

func helpText() string {
	return "👋 *¡Hola! Soy tu bot de pagos y asistencia.*\n\n" +
		"*⚙️ Comandos de propietario:*\n" +
		"  • `/registrarpago <nombre> <+número> <día> <monto> <bandera>`\n" +
		"  • `/agregarclientes` — añade clientes en lote, uno por línea:\n" +
		"    `Victoria +569292929292 21 de cada mes ($3000🇨🇱)`\n" +
		"  • `/eliminarcliente <+número>`\n" +
		"  • `/clientes` — lista de clientes y pagos\n" +
		"  • `/historialpagos <+número>`\n" +
		"  • `/suspendercliente <+número>` / `/activarcliente <+número>`\n" +
		"  • `/derivados añadir|eliminar|ver [nombre]`\n\n" +
		"*✨ Comandos generales:*\n" +
		"  • `/ayuda` — este menú\n" +
		"  • `/vincular <+número>` — vincula este chat a tu registro\n\n" +
		"_También puedes enviarme tu comprobante de pago como foto o documento._"
}
