package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/dkimathi/safiri/agent/nodes"
)

func (o *Orchestrator) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_or_create_profile",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadOrCreateProfile(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_or_create_profile: %w", err)
	}

	if err := graph.AddLambdaNode("build_context",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.BuildContext(in, o.historyWindow)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node build_context: %w", err)
	}

	if err := graph.AddLambdaNode("select_tools",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SelectTools(ctx, in, o.completer, o.prompts.SelectTools, o.llmCfg, o.catalog)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node select_tools: %w", err)
	}

	if err := graph.AddLambdaNode("extract_params",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExtractParams(ctx, in, o.completer, o.prompts.ExtractParams, o.llmCfg)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_params: %w", err)
	}

	if err := graph.AddLambdaNode("execute_tools",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExecuteTools(ctx, in, o.catalog)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_tools: %w", err)
	}

	if err := graph.AddLambdaNode("synthesize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SynthesizeReply(ctx, in, o.completer, o.prompts, o.llmCfg)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node synthesize_reply: %w", err)
	}

	if err := graph.AddLambdaNode("append_history",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.AppendHistory(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node append_history: %w", err)
	}

	if err := graph.AddLambdaNode("save_profile",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SaveProfile(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_profile: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_or_create_profile"},
		{"load_or_create_profile", "build_context"},
		{"build_context", "select_tools"},
		{"select_tools", "extract_params"},
		{"extract_params", "execute_tools"},
		{"execute_tools", "synthesize_reply"},
		{"synthesize_reply", "append_history"},
		{"append_history", "save_profile"},
		{"save_profile", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
