package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/dkimathi/safiri/agent/agents/orchestrator"
	llmx "github.com/dkimathi/safiri/agent/llm"
	profilex "github.com/dkimathi/safiri/agent/profile"
	toolx "github.com/dkimathi/safiri/agent/tool"
	"github.com/dkimathi/safiri/gateway/whatsapp"
	completionx "github.com/dkimathi/safiri/pkg/completion"
	configx "github.com/dkimathi/safiri/pkg/config"
	logx "github.com/dkimathi/safiri/pkg/logger"
	tavilyx "github.com/dkimathi/safiri/pkg/tavily"
)

type AppConfig struct {
	HistoryWindow int    `envconfig:"HISTORY_WINDOW" split_words:"true" default:"5"`
	StoreBackend  string `envconfig:"STORE_BACKEND" split_words:"true" default:"file"`
	ProfileDir    string `envconfig:"PROFILE_DIR" split_words:"true" default:"profiles"`
	PostgresDSN   string `envconfig:"POSTGRES_DSN" split_words:"true"`
}

func main() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))

	appCfg := configx.MustNew[AppConfig]("SAFIRI")

	completer := completionx.MustNew(*configx.MustNew[completionx.Config]("OPENAI"))
	searcher := tavilyx.MustNew(*configx.MustNew[tavilyx.Config]("TAVILY"))
	llmCfg := configx.MustNew[llmx.Config]("LLM")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := newProfileStore(ctx, appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize profile store")
	}
	defer cleanup()

	catalog, err := toolx.DefaultCatalog(searcher)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build tool catalog")
	}

	orch, err := orchestrator.New(store, completer, catalog, orchestrator.Config{
		HistoryWindow: appCfg.HistoryWindow,
		LLM:           *llmCfg,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize orchestrator")
	}

	gw, err := whatsapp.New(*configx.MustNew[whatsapp.Config]("WA"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize whatsapp gateway")
	}

	gw.OnMessage(func(ctx context.Context, senderID, text string) {
		resp, err := orch.HandleMessage(ctx, senderID, text)
		reply := resp.Message
		if err != nil {
			log.Error().Err(err).Str("user", senderID).Msg("message processing failed")
			reply = "Sorry, I ran into a problem handling that. Please try again."
		}
		if err := gw.Deliver(ctx, senderID, reply); err != nil {
			log.Error().Err(err).Str("user", senderID).Msg("reply delivery failed")
		}
	})

	if err := gw.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to connect whatsapp gateway")
	}
	log.Info().Msg("safiri is running")

	<-ctx.Done()
	log.Info().Msg("shutting down")
	gw.Close()
}

func newProfileStore(ctx context.Context, cfg *AppConfig) (profilex.Store, func(), error) {
	switch strings.TrimSpace(strings.ToLower(cfg.StoreBackend)) {
	case "", "file":
		store, err := profilex.NewFileStore(cfg.ProfileDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "postgres":
		store, err := profilex.NewBunStore(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Init(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, errInvalidBackend(cfg.StoreBackend)
	}
}

type errInvalidBackend string

func (e errInvalidBackend) Error() string {
	return "unknown store backend: " + string(e)
}
