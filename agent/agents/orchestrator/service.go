package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/dkimathi/safiri/agent/contract"
	llmx "github.com/dkimathi/safiri/agent/llm"
	nodex "github.com/dkimathi/safiri/agent/nodes"
	profilex "github.com/dkimathi/safiri/agent/profile"
	promptx "github.com/dkimathi/safiri/agent/prompt"
	toolx "github.com/dkimathi/safiri/agent/tool"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidUser    = nodex.ErrInvalidUser
)

const defaultHistoryWindow = 5

type Config struct {
	// HistoryWindow is the number of recent turns rendered into prompts.
	HistoryWindow int
	LLM           llmx.Config
}

// Orchestrator runs the full per-message pipeline: selection, extraction,
// sequential tool execution, synthesis, and persistence. One message is
// processed end to end with no internal parallelism; concurrent messages
// for different users may run in parallel on the caller's goroutines.
type Orchestrator struct {
	store     profilex.Store
	completer contractx.Completer
	catalog   *toolx.Catalog
	prompts   promptx.PromptSet
	llmCfg    llmx.Config

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	historyWindow int
	now           func() time.Time
}

func New(
	store profilex.Store,
	completer contractx.Completer,
	catalog *toolx.Catalog,
	cfg Config,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("profile store is required")
	}
	if completer == nil {
		return nil, errors.New("completion client is required")
	}
	if catalog == nil {
		return nil, errors.New("tool catalog is required")
	}

	historyWindow := cfg.HistoryWindow
	if historyWindow <= 0 {
		historyWindow = defaultHistoryWindow
	}

	o := &Orchestrator{
		store:         store,
		completer:     completer,
		catalog:       catalog,
		prompts:       promptx.LoadPromptSet(),
		llmCfg:        cfg.LLM,
		historyWindow: historyWindow,
		now:           time.Now,
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

func (o *Orchestrator) HandleMessage(ctx context.Context, userID string, text string) (contractx.AgentResponse, error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		UserID: userID,
		Text:   text,
	})
	if err != nil {
		return contractx.AgentResponse{}, err
	}
	return out.Response, nil
}
