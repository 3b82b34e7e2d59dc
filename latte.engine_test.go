package latte

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	engine, err := New(opts...)
	require.NoError(t, err)
	return engine
}

func TestEngine_Render_Basic(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		source   string
		data     map[string]any
		expected string
	}{
		{
			name:     "greeting",
			source:   `Hello, \VAR{name}!`,
			data:     map[string]any{"name": "World"},
			expected: "Hello, World!",
		},
		{
			name:     "latex passthrough",
			source:   `\section{Intro}\label{sec:intro}`,
			data:     nil,
			expected: `\section{Intro}\label{sec:intro}`,
		},
		{
			name:     "escaped client name",
			source:   `\VAR{client.name | latex_escape}`,
			data:     map[string]any{"client": map[string]any{"name": "Brown & Sons"}},
			expected: `Brown \& Sons`,
		},
		{
			name:     "currency pipeline",
			source:   `Total: \VAR{total | currency}`,
			data:     map[string]any{"total": 1234.5},
			expected: "Total: $1,234.50",
		},
		{
			name:     "conditional with loop",
			source:   `\BLOCK{for item in items}\VAR{item}\BLOCK{if not loop.last}, \BLOCK{endif}\BLOCK{endfor}`,
			data:     map[string]any{"items": []any{"a", "b", "c"}},
			expected: "a, b, c",
		},
		{
			name:     "line statement form",
			source:   "%% if paid\nPAID\n%% endif\n",
			data:     map[string]any{"paid": true},
			expected: "PAID\n",
		},
		{
			name:     "filter in call position",
			source:   `\VAR{default(nickname, 'n/a')}`,
			data:     map[string]any{"name": "World"},
			expected: "n/a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Render(ctx, tt.source, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEngine_Render_Deterministic(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	source := `\BLOCK{for k in m}\VAR{k}=\VAR{m.a};\BLOCK{endfor}`
	data := map[string]any{"m": map[string]any{"c": 1, "a": 2, "b": 3}}

	first, err := engine.Render(ctx, source, data)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		got, err := engine.Render(ctx, source, data)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
	assert.Equal(t, "a=2;b=2;c=2;", first)
}

func TestEngine_Parse(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("valid template reusable", func(t *testing.T) {
		tmpl, err := engine.Parse(`Hi \VAR{name}`)
		require.NoError(t, err)

		got, err := tmpl.Render(context.Background(), map[string]any{"name": "A"})
		require.NoError(t, err)
		assert.Equal(t, "Hi A", got)

		got, err = tmpl.Render(context.Background(), map[string]any{"name": "B"})
		require.NoError(t, err)
		assert.Equal(t, "Hi B", got)
	})

	t.Run("syntax error carries position metadata", func(t *testing.T) {
		_, err := engine.Parse("line one\n" + `\VAR{unterminated`)
		require.Error(t, err)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))

		line, ok := customErr.GetMetadata(MetaKeyLine)
		assert.True(t, ok)
		assert.Equal(t, "2", line)
	})

	t.Run("unclosed block is a parse error", func(t *testing.T) {
		_, err := engine.Parse(`\BLOCK{if x}never closed`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgParseFailed)
	})
}

func TestEngine_Components(t *testing.T) {
	ctx := context.Background()

	t.Run("registration and invocation", func(t *testing.T) {
		engine := newTestEngine(t)
		require.NoError(t, engine.RegisterComponent(ctx, "header", `== \VAR{title} ==`))

		got, err := engine.Render(ctx, `\VAR{component('header', title='Q3 Report')}`, nil)
		require.NoError(t, err)
		assert.Equal(t, "== Q3 Report ==", got)
	})

	t.Run("kwargs only scope", func(t *testing.T) {
		engine := newTestEngine(t)
		require.NoError(t, engine.RegisterComponent(ctx, "probe", `[\VAR{secret}]`))

		got, err := engine.Render(ctx, `\VAR{component('probe')}`, map[string]any{"secret": "outer"})
		require.NoError(t, err)
		assert.Equal(t, "[]", got)
	})

	t.Run("kwargs evaluated in caller scope", func(t *testing.T) {
		engine := newTestEngine(t)
		require.NoError(t, engine.RegisterComponent(ctx, "echo", `\VAR{v}`))

		got, err := engine.Render(ctx, `\VAR{component('echo', v=client.name)}`,
			map[string]any{"client": map[string]any{"name": "ACME"}})
		require.NoError(t, err)
		assert.Equal(t, "ACME", got)
	})

	t.Run("nested components", func(t *testing.T) {
		engine := newTestEngine(t)
		require.NoError(t, engine.RegisterComponent(ctx, "inner", `(\VAR{x})`))
		require.NoError(t, engine.RegisterComponent(ctx, "outer", `[\VAR{component('inner', x=y)}]`))

		got, err := engine.Render(ctx, `\VAR{component('outer', y='deep')}`, nil)
		require.NoError(t, err)
		assert.Equal(t, "[(deep)]", got)
	})

	t.Run("not found names the component", func(t *testing.T) {
		engine := newTestEngine(t)
		require.NoError(t, engine.RegisterComponent(ctx, "known", "x"))

		_, err := engine.Render(ctx, `\VAR{component('ghost')}`, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgComponentNotFound)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))

		name, ok := customErr.GetMetadata(MetaKeyComponent)
		assert.True(t, ok)
		assert.Equal(t, "ghost", name)

		known, ok := customErr.GetMetadata(MetaKeyKnown)
		assert.True(t, ok)
		assert.Contains(t, known, "known")
	})

	t.Run("re-registration overwrites", func(t *testing.T) {
		engine := newTestEngine(t)
		require.NoError(t, engine.RegisterComponent(ctx, "v", "one"))
		require.NoError(t, engine.RegisterComponent(ctx, "v", "two"))

		got, err := engine.Render(ctx, `\VAR{component('v')}`, nil)
		require.NoError(t, err)
		assert.Equal(t, "two", got)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		engine := newTestEngine(t)
		err := engine.RegisterComponent(ctx, "  ", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgComponentName)
	})
}

func TestEngine_StrictMode(t *testing.T) {
	ctx := context.Background()

	t.Run("undefined variable errors", func(t *testing.T) {
		engine := newTestEngine(t, WithStrictMode(true))

		_, err := engine.Render(ctx, `\VAR{missing.path}`, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgVariableUndefined)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))

		path, ok := customErr.GetMetadata(MetaKeyPath)
		assert.True(t, ok)
		assert.Equal(t, "missing.path", path)
	})

	t.Run("conditions stay lenient", func(t *testing.T) {
		engine := newTestEngine(t, WithStrictMode(true))

		got, err := engine.Render(ctx, `\BLOCK{if missing}Y\BLOCK{else}N\BLOCK{endif}`, nil)
		require.NoError(t, err)
		assert.Equal(t, "N", got)
	})

	t.Run("default renders empty without strict", func(t *testing.T) {
		engine := newTestEngine(t)

		got, err := engine.Render(ctx, `[\VAR{missing}]`, nil)
		require.NoError(t, err)
		assert.Equal(t, "[]", got)
	})
}

func TestEngine_RecursionLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("self-referential component", func(t *testing.T) {
		engine := newTestEngine(t, WithMaxDepth(8))
		require.NoError(t, engine.RegisterComponent(ctx, "loop", `\VAR{component('loop')}`))

		_, err := engine.Render(ctx, `\VAR{component('loop')}`, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgRecursionLimit)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))

		limit, ok := customErr.GetMetadata(MetaKeyLimit)
		assert.True(t, ok)
		assert.Equal(t, "8", limit)
	})

	t.Run("mutual recursion", func(t *testing.T) {
		engine := newTestEngine(t, WithMaxDepth(8))
		require.NoError(t, engine.RegisterComponent(ctx, "ping", `\VAR{component('pong')}`))
		require.NoError(t, engine.RegisterComponent(ctx, "pong", `\VAR{component('ping')}`))

		_, err := engine.Render(ctx, `\VAR{component('ping')}`, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgRecursionLimit)
	})

	t.Run("default ceiling allows realistic nesting", func(t *testing.T) {
		engine := newTestEngine(t)

		var sb strings.Builder
		depth := 16
		for i := 0; i < depth; i++ {
			sb.WriteString(`\BLOCK{if true}`)
		}
		sb.WriteString("X")
		for i := 0; i < depth; i++ {
			sb.WriteString(`\BLOCK{endif}`)
		}

		got, err := engine.Render(ctx, sb.String(), nil)
		require.NoError(t, err)
		assert.Equal(t, "X", got)
	})
}

func TestEngine_FormatError(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Render(context.Background(), `\VAR{v | currency}`, map[string]any{"v": "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgFormatFailed)

	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr))

	filter, ok := customErr.GetMetadata(MetaKeyFilter)
	assert.True(t, ok)
	assert.Equal(t, "currency", filter)
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newTestEngine(t)

	err := engine.RegisterFilter("shout", 0, 0, func(value any, _ []any) (any, error) {
		return fmt.Sprintf("%v!!!", value), nil
	})
	require.NoError(t, err)

	got, err := engine.Render(context.Background(), `\VAR{name | shout}`, map[string]any{"name": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi!!!", got)

	assert.Contains(t, engine.Filters(), "shout")
}

func TestEngine_NamedTemplates(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.RegisterTemplate("invoice", `N=\VAR{n}`))

	t.Run("render by name", func(t *testing.T) {
		got, err := engine.RenderTemplate(ctx, "invoice", map[string]any{"n": "42"})
		require.NoError(t, err)
		assert.Equal(t, "N=42", got)
	})

	t.Run("duplicate rejected", func(t *testing.T) {
		err := engine.RegisterTemplate("invoice", "other")
		require.Error(t, err)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := engine.RenderTemplate(ctx, "ghost", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgTemplateNotFound)
	})

	t.Run("list", func(t *testing.T) {
		assert.Equal(t, []string{"invoice"}, engine.ListTemplates())
	})
}

func TestEngine_Accessors(t *testing.T) {
	engine := newTestEngine(t, WithMaxDepth(10), WithStrictMode(true))

	assert.Equal(t, 10, engine.MaxDepth())
	assert.True(t, engine.Strict())
}
