// Build output detection from language tooling files.
// Reads package.json, tsconfig.json, vite configs, Cargo.toml and pyproject.toml.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/jsps/internal/debug"
)

// BuildArtifactDetector finds build output directories declared by a project
type BuildArtifactDetector struct {
	projectRoot string
}

// outputSource reads one tooling file and returns output directory names
type outputSource struct {
	file  string
	parse func(data []byte) []string
}

var outputSources = []outputSource{
	{file: "package.json", parse: packageJSONOutputs},
	{file: "tsconfig.json", parse: tsconfigOutputs},
	{file: "vite.config.js", parse: viteOutputs},
	{file: "vite.config.ts", parse: viteOutputs},
	{file: "Cargo.toml", parse: cargoOutputs},
	{file: "pyproject.toml", parse: pyprojectOutputs},
}

// NewBuildArtifactDetector creates a detector rooted at projectRoot
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

// DetectOutputDirectories returns exclusion globs such as "**/dist/**"
func (d *BuildArtifactDetector) DetectOutputDirectories() []string {
	var patterns []string
	for _, src := range outputSources {
		data, err := os.ReadFile(filepath.Join(d.projectRoot, src.file))
		if err != nil {
			continue
		}
		for _, dir := range src.parse(data) {
			dir = strings.Trim(strings.TrimPrefix(strings.TrimSpace(dir), "./"), "/")
			if dir == "" || dir == "." {
				continue
			}
			debug.LogScan("%s declares output directory %s", src.file, dir)
			patterns = append(patterns, "**/"+dir+"/**")
		}
	}
	return DeduplicatePatterns(patterns)
}

func packageJSONOutputs(data []byte) []string {
	var pkg struct {
		Scripts map[string]string `json:"scripts"`
		Build   struct {
			OutDir string `json:"outDir"`
		} `json:"build"`
	}
	if json.Unmarshal(data, &pkg) != nil {
		return nil
	}

	var dirs []string
	for _, script := range pkg.Scripts {
		fields := strings.Fields(script)
		for i, field := range fields {
			if (field == "--outDir" || field == "-outDir") && i+1 < len(fields) {
				dirs = append(dirs, strings.Trim(fields[i+1], `"'`))
			}
		}
	}
	if pkg.Build.OutDir != "" {
		dirs = append(dirs, pkg.Build.OutDir)
	}
	return dirs
}

func tsconfigOutputs(data []byte) []string {
	var tsconfig struct {
		CompilerOptions struct {
			OutDir string `json:"outDir"`
		} `json:"compilerOptions"`
	}
	if json.Unmarshal(data, &tsconfig) != nil || tsconfig.CompilerOptions.OutDir == "" {
		return nil
	}
	return []string{tsconfig.CompilerOptions.OutDir}
}

// viteOutputs looks for `outDir: 'dist'` without evaluating the config
func viteOutputs(data []byte) []string {
	content := string(data)
	idx := strings.Index(content, "outDir")
	if idx == -1 {
		return nil
	}
	rest := content[idx+len("outDir"):]
	colon := strings.Index(rest, ":")
	if colon == -1 {
		return nil
	}
	rest = strings.TrimSpace(rest[colon+1:])
	if rest == "" || (rest[0] != '\'' && rest[0] != '"') {
		return nil
	}
	quote := rest[0]
	end := strings.IndexByte(rest[1:], quote)
	if end == -1 {
		return nil
	}
	return []string{rest[1 : end+1]}
}

func cargoOutputs(data []byte) []string {
	var cargo struct {
		Build struct {
			TargetDir string `toml:"target-dir"`
		} `toml:"build"`
		Profile map[string]struct {
			TargetDir string `toml:"target-dir"`
		} `toml:"profile"`
	}
	if toml.Unmarshal(data, &cargo) != nil {
		return nil
	}

	dirs := []string{"target"}
	if cargo.Build.TargetDir != "" {
		dirs = append(dirs, cargo.Build.TargetDir)
	}
	for _, profile := range cargo.Profile {
		if profile.TargetDir != "" {
			dirs = append(dirs, profile.TargetDir)
		}
	}
	return dirs
}

func pyprojectOutputs(data []byte) []string {
	var pyproject struct {
		Tool struct {
			Poetry struct {
				Build struct {
					TargetDir string `toml:"target-dir"`
				} `toml:"build"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if toml.Unmarshal(data, &pyproject) != nil {
		return nil
	}

	dirs := []string{"dist"}
	if dir := pyproject.Tool.Poetry.Build.TargetDir; dir != "" {
		dirs = append(dirs, dir)
	}
	return dirs
}
