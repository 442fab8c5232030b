// Package jsengine runs search definitions written in TypeScript or JavaScript.
// Source is transpiled with esbuild and evaluated in an embedded goja runtime.
package jsengine

import (
	"fmt"
	"path"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/standardbeagle/jsps/internal/debug"
)

// CompileError describes the first problem esbuild reported
type CompileError struct {
	File   string
	Line   int
	Column int
	Text   string
	Count  int
}

func (e *CompileError) Error() string {
	var b strings.Builder
	if e.File != "" {
		fmt.Fprintf(&b, "%s:%d:%d: ", e.File, e.Line, e.Column)
	}
	b.WriteString(e.Text)
	if e.Count > 1 {
		fmt.Fprintf(&b, " (and %d more)", e.Count-1)
	}
	return b.String()
}

// Compiler transpiles definitions to CommonJS
type Compiler struct {
	target api.Target
}

// NewCompiler creates a compiler targeting a language level goja understands
func NewCompiler() *Compiler {
	return &Compiler{target: api.ES2017}
}

// Compile transpiles source. Files ending in .js or .mjs skip type stripping;
// everything else is treated as TypeScript.
func (c *Compiler) Compile(name, source string) (string, error) {
	result := api.Transform(source, api.TransformOptions{
		Loader:     loaderFor(name),
		Format:     api.FormatCommonJS,
		Target:     c.target,
		Sourcefile: name,
	})

	if len(result.Errors) > 0 {
		first := result.Errors[0]
		compileErr := &CompileError{Text: first.Text, Count: len(result.Errors)}
		if first.Location != nil {
			compileErr.File = first.Location.File
			compileErr.Line = first.Location.Line
			compileErr.Column = first.Location.Column
		}
		return "", compileErr
	}

	for _, warning := range result.Warnings {
		debug.LogLoad("esbuild warning in %s: %s", name, warning.Text)
	}
	return string(result.Code), nil
}

func loaderFor(name string) api.Loader {
	switch strings.ToLower(path.Ext(name)) {
	case ".js", ".mjs", ".cjs":
		return api.LoaderJS
	default:
		return api.LoaderTS
	}
}
