package tool

import (
	"context"
	"fmt"

	completionx "github.com/dkimathi/safiri/pkg/completion"
	tavilyx "github.com/dkimathi/safiri/pkg/tavily"
)

type completerCall struct {
	resp completionx.Response
	err  error
}

// fakeCompleter replays scripted responses in call order.
type fakeCompleter struct {
	script   []completerCall
	calls    int
	requests []completionx.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req completionx.Request) (completionx.Response, error) {
	f.requests = append(f.requests, req)
	idx := f.calls
	f.calls++
	if idx >= len(f.script) {
		return completionx.Response{}, fmt.Errorf("unscripted completion call %d", idx)
	}
	return f.script[idx].resp, f.script[idx].err
}

type fakeSearcher struct {
	resp     *tavilyx.Response
	err      error
	calls    int
	requests []tavilyx.Request
}

func (f *fakeSearcher) Search(_ context.Context, req tavilyx.Request) (*tavilyx.Response, error) {
	f.requests = append(f.requests, req)
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &tavilyx.Response{}, nil
}
