package whatsapp

import (
	"context"
	"errors"
	"testing"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"
)

func TestDeliverFailsFastWhenNotReady(t *testing.T) {
	t.Parallel()

	// A disconnected gateway must reject sends before touching the client.
	g := &Gateway{}
	if err := g.Deliver(context.Background(), "254712345678", "hello"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestReadyDefaultsToFalse(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	if g.Ready() {
		t.Fatal("gateway should start not ready")
	}
}

func TestShouldHandle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		fromMe   bool
		group    bool
		expected bool
	}{
		{"direct message", false, false, true},
		{"own message", true, false, false},
		{"group message", false, true, false},
		{"own group message", true, true, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			info := types.MessageInfo{
				MessageSource: types.MessageSource{
					IsFromMe: tc.fromMe,
					IsGroup:  tc.group,
				},
			}
			if got := shouldHandle(info); got != tc.expected {
				t.Fatalf("shouldHandle = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestExtractText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		msg  *waE2E.Message
		want string
	}{
		{"nil message", nil, ""},
		{
			"plain conversation",
			&waE2E.Message{Conversation: proto.String("  hi there  ")},
			"hi there",
		},
		{
			"extended text",
			&waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String("quoted reply")}},
			"quoted reply",
		},
		{"media only", &waE2E.Message{}, ""},
		{
			"conversation wins over extended",
			&waE2E.Message{
				Conversation:        proto.String("primary"),
				ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String("secondary")},
			},
			"primary",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := extractText(tc.msg); got != tc.want {
				t.Fatalf("extractText = %q, want %q", got, tc.want)
			}
		})
	}
}
