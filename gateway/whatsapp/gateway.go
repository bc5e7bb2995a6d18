// Package whatsapp adapts the WhatsApp transport (via whatsmeow) to the
// orchestrator: it owns the session lifecycle and pairing, filters inbound
// events, and exposes delivery guarded by a readiness flag.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

var ErrNotReady = errors.New("whatsapp gateway is not ready")

type Config struct {
	// DBPath locates the sqlite database holding the WhatsApp session keys.
	DBPath string `envconfig:"DB_PATH" split_words:"true" default:"safiri-session.db"`
}

// Handler receives every inbound direct text message that passed filtering.
// It is invoked on a fresh goroutine per message.
type Handler func(ctx context.Context, senderID, text string)

type Gateway struct {
	cli     *whatsmeow.Client
	handler Handler
	ready   atomic.Bool
}

func New(cfg Config) (*Gateway, error) {
	dbPath := strings.TrimSpace(cfg.DBPath)
	if dbPath == "" {
		return nil, errors.New("whatsapp session db path is required")
	}

	container, err := sqlstore.New(context.Background(), "sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", dbPath), waLog.Noop)
	if err != nil {
		return nil, fmt.Errorf("open whatsapp session store: %w", err)
	}
	device, err := container.GetFirstDevice(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load whatsapp device: %w", err)
	}

	g := &Gateway{
		cli: whatsmeow.NewClient(device, waLog.Noop),
	}
	g.cli.AddEventHandler(g.handleEvent)
	return g, nil
}

// OnMessage registers the inbound handler. Must be called before Connect.
func (g *Gateway) OnMessage(h Handler) {
	g.handler = h
}

// Connect starts the session. An unpaired device prints QR pairing codes to
// the log; reconnect-with-backoff after a drop is whatsmeow's own behavior.
func (g *Gateway) Connect(ctx context.Context) error {
	if g.cli.Store.ID == nil {
		qrChan, err := g.cli.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("open qr channel: %w", err)
		}
		if err := g.cli.Connect(); err != nil {
			return fmt.Errorf("connect whatsapp: %w", err)
		}
		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					log.Info().Str("code", evt.Code).Msg("scan this code with WhatsApp to pair")
					continue
				}
				log.Info().Str("event", evt.Event).Msg("whatsapp pairing update")
			}
		}()
		return nil
	}
	if err := g.cli.Connect(); err != nil {
		return fmt.Errorf("connect whatsapp: %w", err)
	}
	return nil
}

// Ready reports whether the session is connected and able to send.
func (g *Gateway) Ready() bool {
	return g.ready.Load()
}

// Deliver sends a text message to a user. It fails fast with ErrNotReady
// when the connection is down instead of queueing.
func (g *Gateway) Deliver(ctx context.Context, senderID, text string) error {
	if !g.ready.Load() {
		return ErrNotReady
	}

	senderID = strings.TrimSpace(senderID)
	if senderID == "" {
		return errors.New("sender id is empty")
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("message text is empty")
	}

	jid := types.NewJID(senderID, types.DefaultUserServer)
	if _, err := g.cli.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(text),
	}); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (g *Gateway) Close() {
	g.cli.Disconnect()
}

func (g *Gateway) handleEvent(evt any) {
	switch v := evt.(type) {
	case *events.Connected:
		g.ready.Store(true)
		log.Info().Msg("whatsapp connected")
	case *events.Disconnected:
		g.ready.Store(false)
		log.Warn().Msg("whatsapp disconnected")
	case *events.StreamReplaced:
		g.ready.Store(false)
		log.Warn().Msg("whatsapp stream replaced by another session")
	case *events.LoggedOut:
		g.ready.Store(false)
		log.Warn().Msg("whatsapp logged out, re-pairing required")
	case *events.Message:
		g.handleInbound(v)
	}
}

func (g *Gateway) handleInbound(v *events.Message) {
	if !shouldHandle(v.Info) {
		return
	}
	text := extractText(v.Message)
	if text == "" {
		return
	}
	if g.handler == nil {
		return
	}
	go g.handler(context.Background(), v.Info.Sender.User, text)
}

// shouldHandle filters out self-originated and group-chat messages; the
// orchestrator only ever sees direct messages from other users.
func shouldHandle(info types.MessageInfo) bool {
	return !info.IsFromMe && !info.IsGroup
}

// extractText pulls the text body out of the supported message shapes.
// Media-only messages yield "" and are dropped.
func extractText(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}
	if text := strings.TrimSpace(msg.GetConversation()); text != "" {
		return text
	}
	return strings.TrimSpace(msg.GetExtendedTextMessage().GetText())
}
