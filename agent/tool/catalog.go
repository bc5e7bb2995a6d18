package tool

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/dkimathi/safiri/agent/contract"
)

const (
	ToolSearch  = "search"
	ToolProfile = "profile"
)

// Param describes one tool parameter. It is prompt context for the
// selection call only, never executed code.
type Param struct {
	Name     string
	Type     string
	Desc     string
	Required bool
}

// Tool is a named capability the orchestrator can invoke.
type Tool struct {
	Name   string
	Desc   string
	Params []Param
	Exec   Executor
}

type Executor func(ctx context.Context, args map[string]any, ac contractx.AgentContext) (contractx.ToolResult, error)

// Catalog holds the fixed tool set. It is built once at startup and
// read-only afterwards.
type Catalog struct {
	tools map[string]Tool
	order []string
}

func NewCatalog(tools ...Tool) (*Catalog, error) {
	c := &Catalog{
		tools: make(map[string]Tool, len(tools)),
	}
	for _, t := range tools {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, fmt.Errorf("tool name is empty")
		}
		if t.Exec == nil {
			return nil, fmt.Errorf("tool %q has no executor", name)
		}
		if _, exists := c.tools[name]; exists {
			return nil, fmt.Errorf("tool %q is already registered", name)
		}
		c.tools[name] = t
		c.order = append(c.order, name)
	}
	return c, nil
}

// DefaultCatalog builds the shipped tool set: profile first, then search.
func DefaultCatalog(searcher contractx.Searcher) (*Catalog, error) {
	return NewCatalog(NewProfileTool(), NewSearchTool(searcher))
}

// Get looks a tool up by name. Callers must treat a miss as
// skip-with-warning: selection is model output and may reference unknown
// names.
func (c *Catalog) Get(name string) (Tool, bool) {
	t, ok := c.tools[name]
	return t, ok
}

// Names returns tool names in registration order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Describe renders the catalog for the selection prompt.
func (c *Catalog) Describe() string {
	var b strings.Builder
	for i, name := range c.order {
		t := c.tools[name]
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s: %s", t.Name, t.Desc)
		for _, p := range t.Params {
			required := ""
			if p.Required {
				required = ", required"
			}
			fmt.Fprintf(&b, "\n    %s (%s%s): %s", p.Name, p.Type, required, p.Desc)
		}
	}
	return b.String()
}
