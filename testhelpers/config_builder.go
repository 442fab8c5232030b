// Package testhelpers provides shared utilities for testing jsps
package testhelpers

import (
	"github.com/standardbeagle/jsps/internal/config"
	"github.com/standardbeagle/jsps/internal/types"
)

// TestConfigBuilder provides a fluent API for building test configs with safe defaults.
// Usage:
//
//	cfg := testhelpers.NewTestConfigBuilder(projectPath).
//		WithExclusions("**/vendor/**").
//		WithConfirmThreshold(2).
//		Build()
type TestConfigBuilder struct {
	projectRoot      string
	exclusions       []string
	inclusions       []string
	confirmThreshold int
	workers          int
	assumeYes        bool
	gitignore        bool
}

// NewTestConfigBuilder creates a config builder for a project path
func NewTestConfigBuilder(projectRoot string) *TestConfigBuilder {
	return &TestConfigBuilder{
		projectRoot:      projectRoot,
		exclusions:       []string{"**/.git/**"},
		confirmThreshold: types.DefaultConfirmThreshold,
		workers:          2,
	}
}

// WithExclusions adds exclusion patterns
func (b *TestConfigBuilder) WithExclusions(patterns ...string) *TestConfigBuilder {
	b.exclusions = append(b.exclusions, patterns...)
	return b
}

// WithIncludePatterns sets the extra include patterns
func (b *TestConfigBuilder) WithIncludePatterns(patterns ...string) *TestConfigBuilder {
	b.inclusions = patterns
	return b
}

// WithConfirmThreshold sets the candidate count that needs confirmation
func (b *TestConfigBuilder) WithConfirmThreshold(n int) *TestConfigBuilder {
	b.confirmThreshold = n
	return b
}

// WithWorkers sets the worker count
func (b *TestConfigBuilder) WithWorkers(n int) *TestConfigBuilder {
	b.workers = n
	return b
}

// WithAssumeYes answers every confirmation with yes
func (b *TestConfigBuilder) WithAssumeYes() *TestConfigBuilder {
	b.assumeYes = true
	return b
}

// WithGitignore honours the root .gitignore
func (b *TestConfigBuilder) WithGitignore() *TestConfigBuilder {
	b.gitignore = true
	return b
}

// Build creates the final test config
func (b *TestConfigBuilder) Build() *config.Config {
	return &config.Config{
		Version: 1,
		Project: config.Project{Root: b.projectRoot},
		Run: config.Run{
			ConfirmThreshold:  b.confirmThreshold,
			Workers:           b.workers,
			AssumeYes:         b.assumeYes,
			ProbeMessageLimit: types.DefaultProbeMessageLimit,
		},
		Files: config.Files{
			RespectGitignore: b.gitignore,
		},
		Watch:   config.Watch{DebounceMs: 20},
		Include: append([]string{}, b.inclusions...),
		Exclude: append([]string{}, b.exclusions...),
	}
}
