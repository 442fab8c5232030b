package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL loads <dir>/.jsps.kdl. A missing file yields a nil config and no error.
func LoadKDL(dir string) (*Config, error) {
	kdlPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadKDLFile(kdlPath, dir)
}

// LoadKDLFile loads a config file. A relative project root inside it is
// resolved against dir.
func LoadKDLFile(kdlPath, dir string) (*Config, error) {
	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", kdlPath, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kdlPath, err)
	}

	if cfg.Project.Root != "" && !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(dir, cfg.Project.Root))
	} else if cfg.Project.Root == "" {
		cfg.Project.Root = absOr(dir)
	}
	return cfg, nil
}

func parseKDL(content string) (*Config, error) {
	cfg := defaultWithRoot("")

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
			}
		case "run":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "confirm_threshold":
					if v, ok := firstIntArg(cn); ok {
						cfg.Run.ConfirmThreshold = v
					}
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Run.Workers = v
					}
				case "assume_yes":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Run.AssumeYes = b
					}
				case "probe_message_limit":
					if v, ok := firstIntArg(cn); ok {
						cfg.Run.ProbeMessageLimit = v
					}
				default:
					log.Printf("WARNING: unknown setting 'run.%s' in KDL config", nodeName(cn))
				}
			}
		case "files":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Files.RespectGitignore = b
					}
				case "exclude_build_output":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Files.ExcludeBuildOutput = b
					}
				case "skip_binary":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Files.SkipBinary = b
					}
				default:
					log.Printf("WARNING: unknown setting 'files.%s' in KDL config", nodeName(cn))
				}
			}
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			// An exclude block replaces the default exclusions
			cfg.Exclude = collectStringArgs(n)
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		log.Printf("WARNING: invalid integer value for '%s' in KDL config, got %T", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs accepts both `exclude "a" "b"` and the block form
// `exclude { "a"; "b" }`, where each string is a child node name.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

func absOr(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
