// Package latte renders LaTeX documents from JSON-shaped data.
//
// Templates are ordinary LaTeX files with three directive forms chosen so
// they never collide with document markup: \VAR{expr} interpolates a value,
// \BLOCK{...} opens control structures (if/elif/else/endif, for/endfor), and
// \#{...} is a comment. A line starting with %% is a line statement holding a
// single block directive.
//
// Basic usage:
//
//	engine := latte.MustNew()
//	out, err := engine.Render(ctx, `Hello, \VAR{name | latex_escape}!`, map[string]any{
//		"name": "World & Co",
//	})
//
// Reusable snippets are registered as named components and invoked from
// templates with component("name", key=value, ...). A component renders in an
// isolated context that contains exactly the keyword arguments of its call,
// never the caller's variables.
//
// Components can live in memory, in a directory of .tex files, or in
// PostgreSQL; see ComponentStore.
package latte
