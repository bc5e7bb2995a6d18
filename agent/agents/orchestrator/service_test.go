package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	nodex "github.com/dkimathi/safiri/agent/nodes"
	profilex "github.com/dkimathi/safiri/agent/profile"
	toolx "github.com/dkimathi/safiri/agent/tool"
	completionx "github.com/dkimathi/safiri/pkg/completion"
	tavilyx "github.com/dkimathi/safiri/pkg/tavily"
)

type fakeStore struct {
	loadProfile *profilex.UserProfile
	loadErr     error
	saveErr     error
	saved       []*profilex.UserProfile
}

func (f *fakeStore) Load(ctx context.Context, userID string) (*profilex.UserProfile, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.loadProfile == nil {
		return nil, profilex.ErrProfileNotFound
	}
	return cloneProfile(f.loadProfile), nil
}

func (f *fakeStore) Save(ctx context.Context, p *profilex.UserProfile) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, cloneProfile(p))
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, userID string) error {
	return nil
}

func cloneProfile(p *profilex.UserProfile) *profilex.UserProfile {
	raw, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	var clone profilex.UserProfile
	if err := json.Unmarshal(raw, &clone); err != nil {
		panic(err)
	}
	return &clone
}

type completerCall struct {
	resp completionx.Response
	err  error
}

type fakeCompleter struct {
	script   []completerCall
	calls    int
	requests []completionx.Request
}

func (f *fakeCompleter) Complete(ctx context.Context, req completionx.Request) (completionx.Response, error) {
	f.requests = append(f.requests, req)
	idx := f.calls
	f.calls++
	if idx >= len(f.script) {
		return completionx.Response{}, fmt.Errorf("no scripted response left at call=%d", f.calls)
	}
	return f.script[idx].resp, f.script[idx].err
}

type fakeSearcher struct {
	resp     *tavilyx.Response
	err      error
	calls    int
	requests []tavilyx.Request
}

func (f *fakeSearcher) Search(ctx context.Context, req tavilyx.Request) (*tavilyx.Response, error) {
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

func newTestOrchestrator(t *testing.T, store *fakeStore, completer *fakeCompleter, searcher *fakeSearcher) *Orchestrator {
	t.Helper()

	catalog, err := toolx.DefaultCatalog(searcher)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	orch, err := New(store, completer, catalog, Config{})
	if err != nil {
		t.Fatalf("build orchestrator: %v", err)
	}
	return orch
}

func TestHandleMessageRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	orch := newTestOrchestrator(t, &fakeStore{}, &fakeCompleter{}, &fakeSearcher{})

	_, err := orch.HandleMessage(context.Background(), "   ", "find hotels")
	if !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}

	_, err = orch.HandleMessage(context.Background(), "254712345678", "  \n ")
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestHandleMessageHotelSearchSuccess(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	completer := &fakeCompleter{script: []completerCall{
		{resp: completionx.Response{Content: `["profile","search"]`}},
		{resp: completionx.Response{Content: `{"query":"hotels in Mombasa","category":"hotels","location":"Mombasa"}`}},
		{resp: completionx.Response{Content: "I found a few great beach hotels in Mombasa for you!"}},
	}}
	searcher := &fakeSearcher{resp: &tavilyx.Response{
		Answer: "Serena Beach Resort is highly rated.",
		Results: []tavilyx.Result{
			{Title: "Serena Beach Resort", URL: "https://booking.com/serena"},
		},
	}}
	orch := newTestOrchestrator(t, store, completer, searcher)

	resp, err := orch.HandleMessage(context.Background(), "254712345678", "Find me a hotel in Mombasa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Message != "I found a few great beach hotels in Mombasa for you!" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if resp.Confidence != nodex.ConfidenceNormal {
		t.Fatalf("confidence = %v, want %v", resp.Confidence, nodex.ConfidenceNormal)
	}
	if len(resp.ToolsUsed) != 2 || resp.ToolsUsed[0] != toolx.ToolProfile || resp.ToolsUsed[1] != toolx.ToolSearch {
		t.Fatalf("unexpected tools used: %v", resp.ToolsUsed)
	}

	if completer.calls != 3 {
		t.Fatalf("expected 3 completion calls (select, extract, synthesize), got %d", completer.calls)
	}
	if searcher.calls != 1 {
		t.Fatalf("expected one search call, got %d", searcher.calls)
	}
	if searcher.requests[0].Query != "best hotels in Mombasa" {
		t.Fatalf("unexpected search query: %q", searcher.requests[0].Query)
	}

	if len(store.saved) != 1 {
		t.Fatalf("expected one profile save, got %d", len(store.saved))
	}
	saved := store.saved[0]
	if saved.ID != "254712345678" {
		t.Fatalf("unexpected saved profile id: %q", saved.ID)
	}
	if len(saved.History) != 1 {
		t.Fatalf("expected one history turn, got %d", len(saved.History))
	}
	if saved.History[0].User != "Find me a hotel in Mombasa" {
		t.Fatalf("history should keep the user text verbatim, got %q", saved.History[0].User)
	}
	if saved.History[0].Bot != resp.Message {
		t.Fatalf("history should keep the reply verbatim, got %q", saved.History[0].Bot)
	}
}

func TestHandleMessageSelectionFallback(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	// Selection and extraction both fail; the pipeline still answers through
	// the default selection and the keyword heuristic.
	completer := &fakeCompleter{script: []completerCall{
		{err: errors.New("selection timeout")},
		{err: errors.New("extraction timeout")},
		{resp: completionx.Response{Content: "The visa process is straightforward."}},
	}}
	searcher := &fakeSearcher{resp: &tavilyx.Response{Answer: "eVisa applies."}}
	orch := newTestOrchestrator(t, store, completer, searcher)

	resp, err := orch.HandleMessage(context.Background(), "254712345678", "what are the visa rules for Tanzania")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Confidence != nodex.ConfidenceNormal {
		t.Fatalf("confidence = %v, want %v", resp.Confidence, nodex.ConfidenceNormal)
	}
	if searcher.calls != 1 {
		t.Fatalf("expected one search call, got %d", searcher.calls)
	}
	if searcher.requests[0].Query != "what are the visa rules for Tanzania" {
		t.Fatalf("heuristic should search the raw message, got %q", searcher.requests[0].Query)
	}
}

func TestHandleMessageDegradedSearch(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	completer := &fakeCompleter{script: []completerCall{
		{resp: completionx.Response{Content: `["profile","search"]`}},
		{resp: completionx.Response{Content: `{"query":"hotels in Mombasa","category":"hotels","location":"Mombasa"}`}},
	}}
	searcher := &fakeSearcher{err: errors.New("status=503")}
	orch := newTestOrchestrator(t, store, completer, searcher)

	resp, err := orch.HandleMessage(context.Background(), "254712345678", "Find me a hotel in Mombasa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := toolx.FallbackMessage + "\n\n" + toolx.CategoryMenuPrompt
	if resp.Message != want {
		t.Fatalf("degraded reply must be the pre-written fallback:\ngot  %q\nwant %q", resp.Message, want)
	}
	if resp.Confidence != nodex.ConfidenceDegraded {
		t.Fatalf("confidence = %v, want %v", resp.Confidence, nodex.ConfidenceDegraded)
	}
	// The synthesis call is skipped entirely on the degraded path.
	if completer.calls != 2 {
		t.Fatalf("expected 2 completion calls, got %d", completer.calls)
	}

	// The failed turn is still recorded.
	if len(store.saved) != 1 || len(store.saved[0].History) != 1 {
		t.Fatalf("degraded turn should still be persisted: %+v", store.saved)
	}
}

func TestHandleMessageSynthesisFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	completer := &fakeCompleter{script: []completerCall{
		{resp: completionx.Response{Content: `["profile","search"]`}},
		{resp: completionx.Response{Content: `{"query":"hotels in Mombasa","category":"hotels","location":"Mombasa"}`}},
		{err: errors.New("model overloaded")},
	}}
	searcher := &fakeSearcher{resp: &tavilyx.Response{Answer: "Serena is nice."}}
	orch := newTestOrchestrator(t, store, completer, searcher)

	resp, err := orch.HandleMessage(context.Background(), "254712345678", "Find me a hotel in Mombasa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Message != nodex.ApologyMessage {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if resp.Confidence != nodex.ConfidenceFailure {
		t.Fatalf("confidence = %v, want %v", resp.Confidence, nodex.ConfidenceFailure)
	}
	if len(resp.ToolsUsed) != 0 {
		t.Fatalf("apology floor reports no tools, got %v", resp.ToolsUsed)
	}
	if len(store.saved) != 1 || len(store.saved[0].History) != 1 {
		t.Fatalf("apology turn should still be persisted: %+v", store.saved)
	}
}

func TestHandleMessageSkipsUnknownSelectedTool(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	completer := &fakeCompleter{script: []completerCall{
		{resp: completionx.Response{Content: `["profile","weather","search"]`}},
		{resp: completionx.Response{Content: `{"query":"nairobi weekend","category":"general"}`}},
		{resp: completionx.Response{Content: "Here are some ideas for the weekend."}},
	}}
	searcher := &fakeSearcher{resp: &tavilyx.Response{}}
	orch := newTestOrchestrator(t, store, completer, searcher)

	resp, err := orch.HandleMessage(context.Background(), "254712345678", "things to do this weekend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range resp.ToolsUsed {
		if name == "weather" {
			t.Fatalf("unknown tool must not be reported as used: %v", resp.ToolsUsed)
		}
	}
	if len(resp.ToolsUsed) != 2 {
		t.Fatalf("expected the two known tools to run, got %v", resp.ToolsUsed)
	}
}

func TestHandleMessageUsesExistingProfile(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	existing := profilex.NewUserProfile("254712345678", now)
	existing.Name = "Wanjiku"
	existing.AppendTurn("hi", "Karibu!", now)

	store := &fakeStore{loadProfile: existing}
	completer := &fakeCompleter{script: []completerCall{
		{resp: completionx.Response{Content: `["profile"]`}},
		{resp: completionx.Response{Content: "Of course, Wanjiku!"}},
	}}
	orch := newTestOrchestrator(t, store, completer, &fakeSearcher{})

	resp, err := orch.HandleMessage(context.Background(), "254712345678", "what do you know about me?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Confidence != nodex.ConfidenceNormal {
		t.Fatalf("confidence = %v, want %v", resp.Confidence, nodex.ConfidenceNormal)
	}

	// Profile-only selection never runs extraction, so the synthesis prompt
	// is the second and final completion call.
	if completer.calls != 2 {
		t.Fatalf("expected 2 completion calls, got %d", completer.calls)
	}
	synthesis := completer.requests[1]
	prompt := synthesis.Messages[len(synthesis.Messages)-1].Content
	if !strings.Contains(prompt, "Name: Wanjiku") {
		t.Fatalf("synthesis prompt should carry the profile summary:\n%s", prompt)
	}
	if !strings.Contains(prompt, "User: hi") {
		t.Fatalf("synthesis prompt should carry recent history:\n%s", prompt)
	}

	if len(store.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(store.saved))
	}
	if got := len(store.saved[0].History); got != 2 {
		t.Fatalf("expected history to grow to 2, got %d", got)
	}
}

func TestHandleMessageStoreFailuresPropagate(t *testing.T) {
	t.Parallel()

	loadErr := errors.New("disk on fire")
	orch := newTestOrchestrator(t, &fakeStore{loadErr: loadErr}, &fakeCompleter{}, &fakeSearcher{})

	if _, err := orch.HandleMessage(context.Background(), "254712345678", "hello"); !errors.Is(err, loadErr) {
		t.Fatalf("expected load error to propagate, got %v", err)
	}

	saveErr := errors.New("disk still on fire")
	store := &fakeStore{saveErr: saveErr}
	completer := &fakeCompleter{script: []completerCall{
		{resp: completionx.Response{Content: `["profile"]`}},
		{resp: completionx.Response{Content: "Karibu!"}},
	}}
	orch = newTestOrchestrator(t, store, completer, &fakeSearcher{})

	if _, err := orch.HandleMessage(context.Background(), "254712345678", "hello"); !errors.Is(err, saveErr) {
		t.Fatalf("expected save error to propagate, got %v", err)
	}
}

func TestNewValidatesDependencies(t *testing.T) {
	t.Parallel()

	catalog, err := toolx.DefaultCatalog(&fakeSearcher{})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	if _, err := New(nil, &fakeCompleter{}, catalog, Config{}); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := New(&fakeStore{}, nil, catalog, Config{}); err == nil {
		t.Fatal("expected error for nil completer")
	}
	if _, err := New(&fakeStore{}, &fakeCompleter{}, nil, Config{}); err == nil {
		t.Fatal("expected error for nil catalog")
	}
}
