// Package ai wraps the external free-text responder behind a narrow
// prompt-in / reply-out interface. The responder's internals are opaque
// to the bot; only the reply text and an escalation signal come back.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const personaPrompt = "Eres un amable y eficiente asistente virtual de pagos. " +
	"Tu objetivo es ayudar a los usuarios a entender y agilizar sus procesos de pago, " +
	"respondiendo de forma servicial, profesional y concisa. Si no puedes resolver " +
	"una duda, indica al usuario que contacte al propietario."

// Phrases that mean the responder deflected the question back to a
// human; any of these in a reply triggers an owner escalation.
var deflectionPhrases = []string{
	"contacta al propietario",
	"necesitas hablar con el propietario",
	"no puedo ayudarte con eso",
	"supera mi capacidad",
	"no tengo información detallada sobre eso",
	"no puedo resolver eso directamente",
	"lo siento, no tengo esa información",
	"para casos específicos",
	"requiere la atención del propietario",
	"no puedo proporcionar esa información",
	"fuera de mi alcance",
	"no tengo acceso a esa información",
	"necesitarías contactar directamente",
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether a responder endpoint is configured.
func (c *Client) Enabled() bool { return c != nil && c.baseURL != "" }

type apiResponse struct {
	Status   bool   `json:"status"`
	Response string `json:"response"`
}

// Ask sends the user's text to the responder. escalate is true when the
// reply contains a deflection phrase.
func (c *Client) Ask(ctx context.Context, text string) (reply string, escalate bool, err error) {
	q := url.Values{}
	q.Set("content", personaPrompt)
	q.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("responder status %d", resp.StatusCode)
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, err
	}
	if !out.Status || out.Response == "" {
		return "", false, fmt.Errorf("responder returned no answer")
	}
	return out.Response, IsDeflection(out.Response), nil
}

// IsDeflection reports whether reply punts the question to a human.
func IsDeflection(reply string) bool {
	low := strings.ToLower(reply)
	for _, p := range deflectionPhrases {
		if strings.Contains(low, p) {
			return true
		}
	}
	return false
}
