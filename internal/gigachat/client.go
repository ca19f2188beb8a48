// ABOUTME: GigaChat chat-completion client used to answer free-text study questions
// ABOUTME: Attaches cached bearer token plus per-request correlation headers

package gigachat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrCompletion is returned when the completion call fails. The caller gets
// FallbackAnswer alongside it and should log the error rather than surface it.
var ErrCompletion = errors.New("completion request failed")

// FallbackAnswer is the fixed user-facing reply when the model cannot be reached.
const FallbackAnswer = "Извините, я не смог обработать ваш запрос в данный момент."

// systemPrompt pins the assistant persona on every completion request.
const systemPrompt = "Ты умный помощник в учебе."

// TokenSource provides a currently valid bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client calls the GigaChat completion endpoint.
type Client struct {
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	tokens      TokenSource
	clientID    string
	httpc       *http.Client
	logger      *slog.Logger
}

// NewClient creates a completion client. tokens is consulted before every
// request; the client never caches tokens itself.
func NewClient(baseURL, model string, maxTokens int, temperature float64, tokens TokenSource, timeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		tokens:      tokens,
		clientID:    uuid.NewString(),
		httpc:       &http.Client{Timeout: timeout},
		logger:      slog.Default().With("component", "gigachat"),
	}
}

// Ask sends the user's question to the model and returns the first completion's
// text, trimmed of surrounding whitespace. On any failure (token issuance,
// transport, non-2xx, malformed response) it returns FallbackAnswer together
// with the underlying error: the answer is always safe to show the user, the
// error is for the operator log. There is no automatic retry.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return FallbackAnswer, err
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: question},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return FallbackAnswer, fmt.Errorf("%w: encoding request: %v", ErrCompletion, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return FallbackAnswer, fmt.Errorf("%w: building request: %v", ErrCompletion, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Client-ID", c.clientID)
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("X-Session-ID", uuid.NewString())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return FallbackAnswer, fmt.Errorf("%w: %v", ErrCompletion, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return FallbackAnswer, fmt.Errorf("%w: completion endpoint returned %d: %s", ErrCompletion, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return FallbackAnswer, fmt.Errorf("%w: decoding response: %v", ErrCompletion, err)
	}
	if len(cr.Choices) == 0 {
		return FallbackAnswer, fmt.Errorf("%w: response contained no choices", ErrCompletion)
	}

	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
