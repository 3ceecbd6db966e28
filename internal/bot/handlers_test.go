package bot

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Richetti123/CashFlow/internal/ai"
	"github.com/Richetti123/CashFlow/internal/config"
	"github.com/Richetti123/CashFlow/internal/domain"
	"github.com/Richetti123/CashFlow/internal/store/jsonfile"
)

const (
	testOwnerID int64 = 1
	testAdminID int64 = 99
)

// fakeAPI records outbound traffic instead of talking to Telegram.
type fakeAPI struct {
	sent    []tgbotapi.Chattable
	fileURL string
	fileErr error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return f.fileURL, f.fileErr
}

// messagesTo filters plain-text sends addressed to chatID.
func (f *fakeAPI) messagesTo(chatID int64) []tgbotapi.MessageConfig {
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok && m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func newTestHandler(t *testing.T) (*Handler, *fakeAPI, *jsonfile.Ledger, *jsonfile.UserStates) {
	t.Helper()
	dir := t.TempDir()
	ledger, err := jsonfile.NewLedger(dir)
	if err != nil {
		t.Fatal(err)
	}
	users, err := jsonfile.NewUserStates(dir)
	if err != nil {
		t.Fatal(err)
	}
	derivados, err := jsonfile.NewDerivados(dir)
	if err != nil {
		t.Fatal(err)
	}

	api := &fakeAPI{}
	cfg := config.Config{
		OwnerID:          testOwnerID,
		AdminID:          testAdminID,
		RemindDaysBefore: []int{7, 1, 0},
	}
	h := NewHandler(api, cfg, ledger, users, derivados, ai.NewClient(""))
	return h, api, ledger, users
}

func testClient(number string) domain.Client {
	return domain.Client{
		Number:     number,
		Name:       "Victoria",
		BillingDay: 21,
		Amount:     "$3000",
		Flag:       "🇨🇱",
		Payments:   []domain.Payment{{Amount: "$3000", Date: "2026-08-01"}},
	}
}

func textUpdate(from, chat int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: from},
		Chat: &tgbotapi.Chat{ID: chat, Type: "private"},
		Text: text,
	}}
}

func TestCommandsAreOwnerGated(t *testing.T) {
	commands := []string{
		"/registrarpago Victoria +569292929292 21 $3000 🇨🇱",
		"/agregarclientes\nVictoria +569292929292 21 de cada mes ($3000🇨🇱)",
		"/eliminarcliente +569292929292",
		"/clientes",
		"/historialpagos +569292929292",
		"/suspendercliente +569292929292",
		"/activarcliente +569292929292",
		"/derivados ver",
	}

	for _, cmd := range commands {
		t.Run(strings.Fields(cmd)[0], func(t *testing.T) {
			h, api, ledger, _ := newTestHandler(t)
			h.HandleUpdate(context.Background(), textUpdate(42, 42, cmd))

			msgs := api.messagesTo(42)
			if len(msgs) != 1 {
				t.Fatalf("got %d replies, want 1 denial", len(msgs))
			}
			if !strings.Contains(msgs[0].Text, "Solo el propietario") {
				t.Errorf("reply = %q, want owner denial", msgs[0].Text)
			}
			if clients, _ := ledger.List(context.Background()); len(clients) != 0 {
				t.Errorf("non-owner mutated the ledger")
			}
		})
	}
}

func TestRegisterCommand(t *testing.T) {
	ctx := context.Background()
	h, api, ledger, _ := newTestHandler(t)

	h.HandleUpdate(ctx, textUpdate(testOwnerID, testOwnerID, "/registrarpago Victoria +569292929292 21 $3000 🇨🇱"))

	clients, _ := ledger.List(ctx)
	if len(clients) != 1 {
		t.Fatalf("registered %d clients, want 1", len(clients))
	}
	c := clients[0]
	if c.Name != "Victoria" || c.BillingDay != 21 || c.Amount != "$3000" {
		t.Errorf("client = %+v", c)
	}
	if len(c.Payments) != 1 || c.Payments[0].Confirmed {
		t.Errorf("payments = %+v, want one unconfirmed entry", c.Payments)
	}

	msgs := api.messagesTo(testOwnerID)
	if len(msgs) != 1 || !strings.Contains(msgs[0].Text, "añadido exitosamente") {
		t.Errorf("replies = %+v", msgs)
	}

	// duplicate rejected, ledger unchanged
	h.HandleUpdate(ctx, textUpdate(testOwnerID, testOwnerID, "/registrarpago Victoria +569292929292 21 $3000 🇨🇱"))
	if clients, _ := ledger.List(ctx); len(clients) != 1 {
		t.Errorf("duplicate register changed the ledger")
	}
	msgs = api.messagesTo(testOwnerID)
	if len(msgs) != 2 || !strings.Contains(msgs[1].Text, "ya existe") {
		t.Errorf("duplicate reply = %+v", msgs)
	}
}

func TestRegisterBatchPartialSuccess(t *testing.T) {
	ctx := context.Background()
	h, api, ledger, _ := newTestHandler(t)

	batch := "/agregarclientes\n" +
		"Victoria +569292929292 21 de cada mes ($3000🇨🇱)\n" +
		"línea sin formato\n" +
		"Marcelo +51987654321 10 de cada mes (S/50🇵🇪)\n" +
		"Pedro +5491122334455 40 de cada mes ($200🇦🇷)"

	h.HandleUpdate(ctx, textUpdate(testOwnerID, testOwnerID, batch))

	clients, _ := ledger.List(ctx)
	if len(clients) != 2 {
		t.Fatalf("committed %d clients, want 2 (partial success)", len(clients))
	}

	msgs := api.messagesTo(testOwnerID)
	if len(msgs) != 1 {
		t.Fatalf("got %d replies, want 1", len(msgs))
	}
	reply := msgs[0].Text
	if !strings.Contains(reply, "(2)") {
		t.Errorf("reply does not report 2 added: %q", reply)
	}
	if !strings.Contains(reply, "Falló la adición") || strings.Count(reply, "\n- ") != 2 {
		t.Errorf("reply does not report 2 failures: %q", reply)
	}
}

func TestVincularBindsChat(t *testing.T) {
	ctx := context.Background()
	h, api, ledger, _ := newTestHandler(t)

	h.HandleUpdate(ctx, textUpdate(testOwnerID, testOwnerID, "/registrarpago Victoria +569292929292 21 $3000 🇨🇱"))
	h.HandleUpdate(ctx, textUpdate(77, 77, "/vincular +569292929292"))

	c, err := ledger.FindByChat(ctx, 77)
	if err != nil {
		t.Fatalf("FindByChat after vincular: %v", err)
	}
	if c.Number != "+569292929292" {
		t.Errorf("bound client = %+v", c)
	}
	msgs := api.messagesTo(77)
	if len(msgs) != 1 || !strings.Contains(msgs[0].Text, "vinculado") {
		t.Errorf("replies = %+v", msgs)
	}
}

func TestGroupMessagesIgnored(t *testing.T) {
	h, api, _, users := newTestHandler(t)

	upd := tgbotapi.Update{Message: &tgbotapi.Message{
		From:    &tgbotapi.User{ID: 42},
		Chat:    &tgbotapi.Chat{ID: -100500, Type: "group"},
		Photo:   []tgbotapi.PhotoSize{{FileID: "f1"}},
		Caption: "comprobante de pago",
	}}
	h.HandleUpdate(context.Background(), upd)

	if len(api.sent) != 0 {
		t.Errorf("group message produced %d sends", len(api.sent))
	}
	st, _ := users.GetOrCreate(context.Background(), "42")
	if st.AwaitingPaymentResponse {
		t.Error("group message flipped awaitingPaymentResponse")
	}
}
