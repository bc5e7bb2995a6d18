package contract

import (
	profilex "github.com/dkimathi/safiri/agent/profile"
)

// AgentContext is the per-message view handed to tool executors. It is owned
// by the orchestrator for the duration of one request and never persisted.
type AgentContext struct {
	UserID         string
	Text           string
	HistorySummary string
	Profile        *profilex.UserProfile
}

// ToolResult is one entry of the per-request tool invocation accumulation.
// A failed invocation carries Error; the search tool additionally carries
// FallbackMessage so synthesis can short-circuit to the degraded reply.
type ToolResult struct {
	Tool            string `json:"tool"`
	Result          any    `json:"result,omitempty"`
	Error           string `json:"error,omitempty"`
	FallbackMessage string `json:"fallback_message,omitempty"`
}

type AgentResponse struct {
	Message    string   `json:"message"`
	Confidence float64  `json:"confidence"`
	ToolsUsed  []string `json:"tools_used"`
}

// SearchParams is the structured form extracted from free text before
// dispatching to the search tool. Only Query is mandatory.
type SearchParams struct {
	Query       string `json:"query"`
	Category    string `json:"category,omitempty"`
	Location    string `json:"location,omitempty"`
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
	Date        string `json:"date,omitempty"`
	Budget      string `json:"budget,omitempty"`
	Cuisine     string `json:"cuisine,omitempty"`
}
