package run

import (
	"github.com/standardbeagle/jsps/internal/config"
	"github.com/standardbeagle/jsps/internal/definition"
	"github.com/standardbeagle/jsps/internal/jsengine"
	"github.com/standardbeagle/jsps/internal/scan"
)

// OptionsFromConfig maps the run section of a config onto Options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ConfirmThreshold:  cfg.Run.ConfirmThreshold,
		ProbeMessageLimit: cfg.Run.ProbeMessageLimit,
		Workers:           cfg.Run.Workers,
	}
}

// NewWalker builds the file enumerator for cfg's project root
func NewWalker(cfg *config.Config) *scan.Walker {
	return scan.NewWalker(scan.Options{
		Root:             cfg.Project.Root,
		RespectGitignore: cfg.Files.RespectGitignore,
		SkipBinary:       cfg.Files.SkipBinary,
		ExtraIncludes:    cfg.Include,
		ExtraExcludes:    cfg.Exclude,
	})
}

// NewLoader builds the TypeScript definition loader
func NewLoader() *definition.Loader {
	return definition.NewLoader(jsengine.NewCompiler(), jsengine.NewHost())
}

// FromConfig wires an Orchestrator that loads TypeScript definitions and
// searches the real filesystem under cfg's project root
func FromConfig(cfg *config.Config) *Orchestrator {
	return New(NewLoader(), NewWalker(cfg), nil, OptionsFromConfig(cfg))
}
