package config

import (
	"os"

	"github.com/standardbeagle/jsps/internal/types"
)

// ConfigFileName is looked up in the home directory and in the project root
const ConfigFileName = ".jsps.kdl"

type Config struct {
	Version int
	Project Project
	Run     Run
	Files   Files
	Watch   Watch
	Include []string // added to the definition's include patterns
	Exclude []string // added to the definition's exclude patterns
}

type Project struct {
	Root string
}

type Run struct {
	ConfirmThreshold  int  // candidate count above which a run needs confirmation
	Workers           int  // 0 = auto-detect (NumCPU-1)
	AssumeYes         bool // answer every confirmation with yes
	ProbeMessageLimit int  // characters of probe failure shown when asking to continue
}

type Files struct {
	RespectGitignore   bool // prune paths matched by the root .gitignore
	ExcludeBuildOutput bool // exclude output dirs declared by package.json, tsconfig.json, Cargo.toml, ...
	SkipBinary         bool // skip files whose extension marks them as binary
}

type Watch struct {
	DebounceMs int
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return defaultWithRoot(cwd)
}

func defaultWithRoot(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Run: Run{
			ConfirmThreshold:  types.DefaultConfirmThreshold,
			Workers:           0,
			AssumeYes:         false,
			ProbeMessageLimit: types.DefaultProbeMessageLimit,
		},
		Files: Files{
			RespectGitignore:   false,
			ExcludeBuildOutput: false,
			SkipBinary:         false,
		},
		Watch:   Watch{DebounceMs: 300},
		Include: []string{},
		Exclude: []string{"**/.git/**"},
	}
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot loads ~/.jsps.kdl and <rootDir>/.jsps.kdl and merges them.
// The path argument is an explicit config file that replaces the project file.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	// Step 1: global base config
	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	// Step 2: project config, or the explicit file
	var projectConfig *Config
	var err error
	if path != "" {
		projectConfig, err = LoadKDLFile(path, searchDir)
	} else {
		projectConfig, err = LoadKDL(searchDir)
	}
	if err != nil {
		return nil, err
	}

	// Step 3: project overrides base, exclusions are unioned
	var cfg *Config
	switch {
	case baseConfig != nil && projectConfig != nil:
		cfg = mergeConfigs(baseConfig, projectConfig)
	case projectConfig != nil:
		cfg = projectConfig
	case baseConfig != nil:
		baseConfig.Project.Root = absOr(searchDir)
		cfg = baseConfig
	default:
		cfg = defaultWithRoot(absOr(searchDir))
	}

	if cfg.Files.ExcludeBuildOutput {
		cfg.EnrichExclusionsWithBuildArtifacts()
	}
	return cfg, nil
}

// mergeConfigs merges a base config with a project config.
// Project config takes precedence, but base exclusions are preserved.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		merged.Exclude = DeduplicatePatterns(append(append([]string{}, base.Exclude...), project.Exclude...))
	}

	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	return &merged
}

// EnrichExclusionsWithBuildArtifacts adds build output directories declared
// by the project's language tooling to the exclusion list
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.Project.Root == "" {
		return
	}

	detected := NewBuildArtifactDetector(c.Project.Root).DetectOutputDirectories()
	if len(detected) > 0 {
		c.Exclude = DeduplicatePatterns(append(c.Exclude, detected...))
	}
}

// DeduplicatePatterns removes duplicate patterns, keeping first occurrences in order
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if !seen[pattern] {
			seen[pattern] = true
			result = append(result, pattern)
		}
	}
	return result
}
