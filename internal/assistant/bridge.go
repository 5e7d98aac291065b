// Package assistant answers free-text questions about the current stock by
// forwarding them, together with a snapshot of the catalog, to a hosted
// text-generation model.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/keapril/webinventory/internal/model"
)

// Fixed replies used instead of a model answer.
const (
	NoCredentialMessage = "尚未設定 AI 服務金鑰，智慧助理目前無法使用。請設定 GEMINI_API_KEY 後再試。"
	FailureMessage      = "抱歉，AI 服務暫時無法回應，請稍後再試。"
)

// DefaultNoCredentialDelay is how long the bridge waits before answering
// with NoCredentialMessage.
const DefaultNoCredentialDelay = 600 * time.Millisecond

var (
	// ErrBusy is returned while another question is being answered.
	ErrBusy = errors.New("assistant is busy")
	// ErrEmptyQuestion is returned for blank input.
	ErrEmptyQuestion = errors.New("empty question")
	// ErrNoCredential is returned by a Generator that has no API key.
	ErrNoCredential = errors.New("no API credential configured")
)

// Role tags a transcript message.
type Role string

// Transcript roles.
const (
	RoleOperator  Role = "operator"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the transcript.
type Message struct {
	Role Role
	Text string
	At   time.Time
}

// Generator produces a reply for a question under a system instruction.
type Generator interface {
	Generate(ctx context.Context, systemInstruction, question string) (string, error)
}

// Bridge keeps the transcript and allows one outstanding question at a time.
// Earlier turns are shown to the operator but not sent to the model.
type Bridge struct {
	gen   Generator
	delay time.Duration
	now   func() time.Time

	busy atomic.Bool

	mu         sync.Mutex
	transcript []Message
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithNoCredentialDelay overrides DefaultNoCredentialDelay.
func WithNoCredentialDelay(d time.Duration) BridgeOption {
	return func(b *Bridge) { b.delay = d }
}

// WithClock sets the time source for message timestamps.
func WithClock(now func() time.Time) BridgeOption {
	return func(b *Bridge) { b.now = now }
}

// NewBridge creates a bridge. A nil gen behaves like a generator without a
// credential.
func NewBridge(gen Generator, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		gen:   gen,
		delay: DefaultNoCredentialDelay,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Busy reports whether a question is outstanding.
func (b *Bridge) Busy() bool {
	return b.busy.Load()
}

// Transcript returns a copy of all turns so far, oldest first.
func (b *Bridge) Transcript() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.transcript)
}

// Ask records question, asks the model about items and records the reply.
// Model failures are answered with FailureMessage and do not return an
// error; ErrBusy and ErrEmptyQuestion do, and leave the transcript alone.
func (b *Bridge) Ask(ctx context.Context, question string, items []model.CatalogItem) (Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Message{}, ErrEmptyQuestion
	}
	if !b.busy.CompareAndSwap(false, true) {
		return Message{}, ErrBusy
	}
	defer b.busy.Store(false)

	b.append(Message{Role: RoleOperator, Text: question, At: b.now()})

	text := b.answer(ctx, question, items)
	reply := Message{Role: RoleAssistant, Text: text, At: b.now()}
	b.append(reply)
	return reply, nil
}

func (b *Bridge) answer(ctx context.Context, question string, items []model.CatalogItem) string {
	if b.gen == nil {
		return b.noCredential(ctx)
	}

	system, err := SystemInstruction(items)
	if err != nil {
		slog.Warn("failed to build assistant context", "error", err)
		return FailureMessage
	}

	start := time.Now()
	text, err := b.gen.Generate(ctx, system, question)
	if errors.Is(err, ErrNoCredential) {
		return b.noCredential(ctx)
	}
	if err != nil {
		slog.Warn("assistant request failed", "error", err, "duration", time.Since(start))
		return FailureMessage
	}
	slog.Info("assistant answered", "items", len(items), "duration", time.Since(start))
	return text
}

func (b *Bridge) noCredential(ctx context.Context) string {
	t := time.NewTimer(b.delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
	return NoCredentialMessage
}

func (b *Bridge) append(m Message) {
	b.mu.Lock()
	b.transcript = append(b.transcript, m)
	b.mu.Unlock()
}

type contextItem struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Stock    int    `json:"stock"`
	Location string `json:"location"`
}

// SystemInstruction embeds a snapshot of items in the assistant persona.
func SystemInstruction(items []model.CatalogItem) (string, error) {
	snapshot := make([]contextItem, 0, len(items))
	for _, item := range items {
		snapshot = append(snapshot, contextItem{
			SKU:      item.SKU,
			Name:     item.Name,
			Stock:    item.Stock,
			Location: item.Location,
		})
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("encoding inventory snapshot: %w", err)
	}
	return "你是 WebInventory 的庫存管理助理。請使用繁體中文，簡潔專業地回答。" +
		"只根據以下目前庫存資料回答；資料中沒有的內容請直接說明無法得知。\n" +
		"目前庫存資料 (JSON)：" + string(data), nil
}
