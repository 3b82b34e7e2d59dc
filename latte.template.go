package latte

import (
	"context"

	"github.com/lattetex/latte/internal"
)

// Template represents a parsed template that can be rendered multiple times
// with different data. Templates are immutable and safe for concurrent use.
type Template struct {
	source string
	ast    *internal.RootNode
	engine *Engine
}

// newTemplate creates a template bound to its engine (internal use).
func newTemplate(source string, ast *internal.RootNode, engine *Engine) *Template {
	return &Template{
		source: source,
		ast:    ast,
		engine: engine,
	}
}

// Render renders the template with the given data.
// This is a convenience method that creates a Context from the data map.
func (t *Template) Render(ctx context.Context, data map[string]any) (string, error) {
	return t.RenderWithContext(ctx, NewContext(data))
}

// RenderWithContext renders the template with the given execution context.
// Use this when you need control over the context (e.g., parent scoping).
func (t *Template) RenderWithContext(ctx context.Context, execCtx *Context) (string, error) {
	out, err := t.engine.executor.Execute(ctx, t.ast, execCtx)
	if err != nil {
		return "", translateRenderError(err)
	}
	return out, nil
}

// Source returns the original template source string.
func (t *Template) Source() string {
	return t.source
}
