package contract

import (
	"context"

	completionx "github.com/dkimathi/safiri/pkg/completion"
	tavilyx "github.com/dkimathi/safiri/pkg/tavily"
)

type Completer interface {
	Complete(ctx context.Context, req completionx.Request) (completionx.Response, error)
}

type Searcher interface {
	Search(ctx context.Context, req tavilyx.Request) (*tavilyx.Response, error)
}
