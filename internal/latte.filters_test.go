package internal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builtinRegistry(t *testing.T) *FilterRegistry {
	t.Helper()
	r := NewFilterRegistry()
	RegisterBuiltinFilters(r)
	return r
}

func TestFilterRegistry_Register(t *testing.T) {
	r := NewFilterRegistry()

	err := r.Register(&Filter{Name: "custom", MaxArgs: -1, Fn: func(v any, _ []any) (any, error) {
		return v, nil
	}})
	require.NoError(t, err)
	assert.True(t, r.Has("custom"))
	assert.Equal(t, 1, r.Count())

	t.Run("duplicate rejected", func(t *testing.T) {
		err := r.Register(&Filter{Name: "custom", Fn: func(v any, _ []any) (any, error) {
			return v, nil
		}})
		require.Error(t, err)
	})

	t.Run("list is sorted", func(t *testing.T) {
		require.NoError(t, r.Register(&Filter{Name: "aaa", Fn: func(v any, _ []any) (any, error) {
			return v, nil
		}}))
		assert.Equal(t, []string{"aaa", "custom"}, r.List())
	})
}

func TestFilterRegistry_Call_ArgBounds(t *testing.T) {
	r := builtinRegistry(t)

	t.Run("too many args", func(t *testing.T) {
		_, err := r.Call(FilterNameCurrency, 10, []any{"€", "extra"})
		require.Error(t, err)

		var argErr *FilterArgError
		assert.True(t, errors.As(err, &argErr))
	})

	t.Run("too few args", func(t *testing.T) {
		_, err := r.Call(FilterNameDefault, nil, nil)
		require.Error(t, err)

		var argErr *FilterArgError
		assert.True(t, errors.As(err, &argErr))
	})

	t.Run("unknown filter", func(t *testing.T) {
		_, err := r.Call("nope", 1, nil)
		require.Error(t, err)

		var filterErr *FilterError
		assert.True(t, errors.As(err, &filterErr))
	})
}

func TestFilterLatexEscape(t *testing.T) {
	r := builtinRegistry(t)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "ampersand", input: "Brown & Sons", expected: `Brown \& Sons`},
		{name: "percent", input: "50% off", expected: `50\% off`},
		{name: "dollar and hash", input: "$5 #1", expected: `\$5 \#1`},
		{name: "underscore and braces", input: "a_b {c}", expected: `a\_b \{c\}`},
		{name: "tilde", input: "~me", expected: `\textasciitilde{}me`},
		{name: "caret", input: "x^2", expected: `x\textasciicircum{}2`},
		{name: "backslash first", input: `C:\temp`, expected: `C:\textbackslash\{\}temp`},
		{name: "all clear", input: "plain text", expected: "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Call(FilterNameLatexEscape, tt.input, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("escape alias", func(t *testing.T) {
		got, err := r.Call(FilterNameEscape, "a & b", nil)
		require.NoError(t, err)
		assert.Equal(t, `a \& b`, got)
	})

	t.Run("not idempotent", func(t *testing.T) {
		once, err := r.Call(FilterNameLatexEscape, "A & B", nil)
		require.NoError(t, err)
		assert.Equal(t, `A \& B`, once)

		twice, err := r.Call(FilterNameLatexEscape, once, nil)
		require.NoError(t, err)
		assert.NotEqual(t, once, twice)
		assert.Equal(t, `A \textbackslash\{\}\& B`, twice)
	})
}

func TestFilterCurrency(t *testing.T) {
	r := builtinRegistry(t)

	tests := []struct {
		name     string
		value    any
		args     []any
		expected string
	}{
		{name: "default symbol", value: 1234.5, expected: "$1,234.50"},
		{name: "custom symbol", value: 1234.5, args: []any{"€"}, expected: "€1,234.50"},
		{name: "no grouping under a thousand", value: 999.99, expected: "$999.99"},
		{name: "millions", value: 1234567.891, expected: "$1,234,567.89"},
		{name: "integer value", value: 42, expected: "$42.00"},
		{name: "numeric string", value: "1234.5", expected: "$1,234.50"},
		{name: "negative amount", value: -1234.5, expected: "$-1,234.50"},
		{name: "zero", value: 0.0, expected: "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Call(FilterNameCurrency, tt.value, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("non-numeric value", func(t *testing.T) {
		_, err := r.Call(FilterNameCurrency, "abc", nil)
		require.Error(t, err)

		var valueErr *FilterValueError
		require.True(t, errors.As(err, &valueErr))
		assert.Equal(t, FilterNameCurrency, valueErr.FilterName)
		assert.Equal(t, ExpectedNumeric, valueErr.Expected)
	})
}

func TestFilterDateFormat(t *testing.T) {
	r := builtinRegistry(t)

	tests := []struct {
		name     string
		value    any
		args     []any
		expected string
	}{
		{name: "default layout", value: "2024-01-15", expected: "January 15, 2024"},
		{name: "iso layout", value: "2024-01-15", args: []any{"%Y-%m-%d"}, expected: "2024-01-15"},
		{name: "rfc3339 input", value: "2024-01-15T10:30:00Z", args: []any{"%d.%m.%Y"}, expected: "15.01.2024"},
		{name: "time value", value: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), args: []any{"%Y/%m/%d"}, expected: "2024/03/01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Call(FilterNameDateFormat, tt.value, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("unparseable date", func(t *testing.T) {
		_, err := r.Call(FilterNameDateFormat, "not a date", nil)
		require.Error(t, err)

		var valueErr *FilterValueError
		require.True(t, errors.As(err, &valueErr))
		assert.Equal(t, ExpectedDateString, valueErr.Expected)
	})

	t.Run("non-date type", func(t *testing.T) {
		_, err := r.Call(FilterNameDateFormat, 12345, nil)
		require.Error(t, err)
	})
}

func TestFilterImage(t *testing.T) {
	r := builtinRegistry(t)

	tests := []struct {
		name     string
		value    any
		args     []any
		expected string
	}{
		{name: "plain path", value: "logo.png", expected: `\includegraphics{logo.png}`},
		{name: "with options", value: "logo.png", args: []any{"width=3cm"}, expected: `\includegraphics[width=3cm]{logo.png}`},
		{name: "empty path drops out", value: "", expected: ""},
		{name: "nil drops out", value: nil, expected: ""},
		{name: "windows separators normalized", value: `img\logo.png`, expected: `\includegraphics{img/logo.png}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Call(FilterNameImage, tt.value, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFilterStringHelpers(t *testing.T) {
	r := builtinRegistry(t)

	t.Run("upper", func(t *testing.T) {
		got, err := r.Call(FilterNameUpper, "acme", nil)
		require.NoError(t, err)
		assert.Equal(t, "ACME", got)
	})

	t.Run("lower", func(t *testing.T) {
		got, err := r.Call(FilterNameLower, "ACME", nil)
		require.NoError(t, err)
		assert.Equal(t, "acme", got)
	})

	t.Run("trim", func(t *testing.T) {
		got, err := r.Call(FilterNameTrim, "  x  ", nil)
		require.NoError(t, err)
		assert.Equal(t, "x", got)
	})

	t.Run("join default separator", func(t *testing.T) {
		got, err := r.Call(FilterNameJoin, []any{"a", "b"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "a, b", got)
	})

	t.Run("join custom separator", func(t *testing.T) {
		got, err := r.Call(FilterNameJoin, []string{"a", "b"}, []any{" / "})
		require.NoError(t, err)
		assert.Equal(t, "a / b", got)
	})

	t.Run("length", func(t *testing.T) {
		got, err := r.Call(FilterNameLength, []any{1, 2, 3}, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, got)
	})

	t.Run("default on nil", func(t *testing.T) {
		got, err := r.Call(FilterNameDefault, nil, []any{"n/a"})
		require.NoError(t, err)
		assert.Equal(t, "n/a", got)
	})

	t.Run("default passthrough", func(t *testing.T) {
		got, err := r.Call(FilterNameDefault, "set", []any{"n/a"})
		require.NoError(t, err)
		assert.Equal(t, "set", got)
	})
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "nil", value: nil, expected: ""},
		{name: "string", value: "x", expected: "x"},
		{name: "whole float", value: float64(42), expected: "42"},
		{name: "fractional float", value: 3.14, expected: "3.14"},
		{name: "bool", value: true, expected: "true"},
		{name: "int", value: 7, expected: "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Stringify(tt.value))
		})
	}
}
