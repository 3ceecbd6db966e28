package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

const unknownClientName = "Un cliente desconocido"

// handleIncomingProof runs the proof-intake workflow for a media
// message: fetch the bytes, forward an approval request to the admin
// chat and acknowledge the sender. It returns the resolved client name
// and number plus whether the event was consumed; once consumed the
// event never reaches any other handling path, success or not.
func (h *Handler) handleIncomingProof(ctx context.Context, msg *tgbotapi.Message) (clientName, clientNumber string, handled bool) {
	// group chats are out of scope for proof intake
	if !msg.Chat.IsPrivate() {
		return "", "", false
	}

	fileID, fileName, kind := mediaFile(msg)
	if fileID == "" {
		return "", "", false
	}

	displayName := unknownClientName
	senderLabel := fmt.Sprintf("chat %d", msg.Chat.ID)
	if c, err := h.ledger.FindByChat(ctx, msg.Chat.ID); err == nil {
		clientName = c.Name
		clientNumber = c.Number
		displayName = c.Name
		senderLabel = c.Number
	}

	data, err := h.fetchMedia(ctx, fileID)
	if err != nil {
		log.Printf("descargar comprobante de %d: %v", msg.Chat.ID, err)
		h.reply(msg.Chat.ID, "❌ Ocurrió un error procesando tu comprobante. Intenta de nuevo o contacta a soporte.", false)
		return clientName, clientNumber, true
	}

	proofRef := uuid.NewString()

	caption := fmt.Sprintf("✅ Comprobante recibido de *%s* (%s).", escapeMarkdown(displayName), senderLabel)
	if msg.Caption != "" {
		// sender-controlled text: an unbalanced marker would make the
		// API reject the whole send
		caption += fmt.Sprintf("\n\n_Leyenda original: %s_", escapeMarkdown(msg.Caption))
	}

	// the callback data is the only durable link between this pending
	// decision and the sender once the admin responds later
	tag := fmt.Sprintf("%d:%s", msg.Chat.ID, proofRef)
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Aceptar transferencia", "accept_payment:"+tag),
			tgbotapi.NewInlineKeyboardButtonData("❌ Rechazar transferencia", "reject_payment:"+tag),
		),
	)

	if err := h.sendApproval(kind, fileName, data, caption, kb); err != nil {
		log.Printf("reenviar comprobante al admin: %v", err)
		h.reply(msg.Chat.ID, "❌ Ocurrió un error procesando tu comprobante. Intenta de nuevo o contacta a soporte.", false)
		return clientName, clientNumber, true
	}

	h.reply(msg.Chat.ID, "✅ Recibí tu comprobante de pago. Lo estoy verificando. ¡Gracias!", false)
	return clientName, clientNumber, true
}

func (h *Handler) sendApproval(kind, fileName string, data []byte, caption string, kb tgbotapi.InlineKeyboardMarkup) error {
	file := tgbotapi.FileBytes{Name: fileName, Bytes: data}

	switch kind {
	case "document":
		doc := tgbotapi.NewDocument(h.cfg.AdminID, file)
		doc.Caption = caption
		doc.ParseMode = "Markdown"
		doc.ReplyMarkup = kb
		_, err := h.api.Send(doc)
		return err
	case "video":
		vid := tgbotapi.NewVideo(h.cfg.AdminID, file)
		vid.Caption = caption
		vid.ParseMode = "Markdown"
		vid.ReplyMarkup = kb
		_, err := h.api.Send(vid)
		return err
	default:
		photo := tgbotapi.NewPhoto(h.cfg.AdminID, file)
		photo.Caption = caption
		photo.ParseMode = "Markdown"
		photo.ReplyMarkup = kb
		_, err := h.api.Send(photo)
		return err
	}
}

// fetchMedia pulls the raw bytes for fileID. An empty payload counts as
// a failed download.
func (h *Handler) fetchMedia(ctx context.Context, fileID string) ([]byte, error) {
	url, err := h.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("descarga devolvió estado %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("el archivo está vacío o falló la descarga")
	}
	return data, nil
}

// escapeMarkdown neutralizes the markers legacy-Markdown parsing cares
// about.
func escapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}

var mdEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// mediaFile picks the file reference out of a media message. Stickers
// and audio are deliberately not matched.
func mediaFile(msg *tgbotapi.Message) (fileID, fileName, kind string) {
	switch {
	case len(msg.Photo) > 0:
		return msg.Photo[len(msg.Photo)-1].FileID, "comprobante.jpg", "photo"
	case msg.Document != nil:
		name := msg.Document.FileName
		if name == "" {
			name = "comprobante.pdf"
		}
		return msg.Document.FileID, name, "document"
	case msg.Video != nil:
		return msg.Video.FileID, "comprobante.mp4", "video"
	}
	return "", "", ""
}
