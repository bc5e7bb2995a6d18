package tool

import (
	"context"
	"errors"
	"reflect"
	"testing"

	contractx "github.com/dkimathi/safiri/agent/contract"
	llmx "github.com/dkimathi/safiri/agent/llm"
	completionx "github.com/dkimathi/safiri/pkg/completion"
)

func TestParseToolSelection(t *testing.T) {
	t.Parallel()

	t.Run("plain array", func(t *testing.T) {
		t.Parallel()

		got, err := ParseToolSelection(`["profile","search"]`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got, []string{ToolProfile, ToolSearch}) {
			t.Fatalf("unexpected selection: %v", got)
		}
	})

	t.Run("array wrapped in prose", func(t *testing.T) {
		t.Parallel()

		got, err := ParseToolSelection("I'd use these tools:\n[\" search \", \"\", \"profile\"]\nthanks")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got, []string{ToolSearch, ToolProfile}) {
			t.Fatalf("expected trimmed non-empty names, got %v", got)
		}
	})

	t.Run("no array", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseToolSelection("use the search tool"); !errors.Is(err, contractx.ErrSchemaViolation) {
			t.Fatalf("expected ErrSchemaViolation, got %v", err)
		}
	})

	t.Run("malformed array", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseToolSelection(`["search", 42]`); !errors.Is(err, contractx.ErrSchemaViolation) {
			t.Fatalf("expected ErrSchemaViolation, got %v", err)
		}
	})
}

func TestSelectToolsKeepsModelSelection(t *testing.T) {
	t.Parallel()

	catalog, err := DefaultCatalog(&fakeSearcher{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	completer := &fakeCompleter{script: []completerCall{
		{resp: completionx.Response{Content: `["search"]`}},
	}}

	got := SelectTools(context.Background(), completer, "tools:\n%s\nmessage: %s", llmx.Config{}, catalog, "find hotels")
	if !reflect.DeepEqual(got, []string{ToolSearch}) {
		t.Fatalf("unexpected selection: %v", got)
	}
	if completer.calls != 1 {
		t.Fatalf("expected one completion call, got %d", completer.calls)
	}
}

func TestSelectToolsKeepsUnknownNames(t *testing.T) {
	t.Parallel()

	catalog, err := DefaultCatalog(&fakeSearcher{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	completer := &fakeCompleter{script: []completerCall{
		{resp: completionx.Response{Content: `["weather","search"]`}},
	}}

	got := SelectTools(context.Background(), completer, "tools:\n%s\nmessage: %s", llmx.Config{}, catalog, "forecast please")
	if !reflect.DeepEqual(got, []string{"weather", ToolSearch}) {
		t.Fatalf("selection should pass unknown names through, got %v", got)
	}
}

func TestSelectToolsFallsBackOnCallFailure(t *testing.T) {
	t.Parallel()

	catalog, err := DefaultCatalog(&fakeSearcher{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	completer := &fakeCompleter{script: []completerCall{
		{err: errors.New("timeout")},
	}}

	got := SelectTools(context.Background(), completer, "tools:\n%s\nmessage: %s", llmx.Config{}, catalog, "anything")
	if !reflect.DeepEqual(got, DefaultSelection()) {
		t.Fatalf("expected default selection, got %v", got)
	}
}

func TestSelectToolsFallsBackOnBadOutput(t *testing.T) {
	t.Parallel()

	catalog, err := DefaultCatalog(&fakeSearcher{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	completer := &fakeCompleter{script: []completerCall{
		{resp: completionx.Response{Content: "search and profile sound good"}},
	}}

	got := SelectTools(context.Background(), completer, "tools:\n%s\nmessage: %s", llmx.Config{}, catalog, "anything")
	if !reflect.DeepEqual(got, DefaultSelection()) {
		t.Fatalf("expected default selection, got %v", got)
	}
}
