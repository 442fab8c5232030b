package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/jsps/internal/debug"
	"github.com/standardbeagle/jsps/internal/definition"
	jspserrors "github.com/standardbeagle/jsps/internal/errors"
	"github.com/standardbeagle/jsps/internal/run"
	"github.com/standardbeagle/jsps/internal/sink"
	"github.com/standardbeagle/jsps/internal/types"
	"github.com/standardbeagle/jsps/pkg/pathutil"
)

const defaultMaxResults = 200

// SearchParams are the arguments of the search tool
type SearchParams struct {
	Definition             string `json:"definition,omitempty"`
	DefinitionPath         string `json:"definition_path,omitempty"`
	Root                   string `json:"root,omitempty"`
	ConfirmLarge           bool   `json:"confirm_large,omitempty"`
	ContinueOnProbeFailure bool   `json:"continue_on_probe_failure,omitempty"`
	MaxResults             *int   `json:"max_results,omitempty"`
}

// SearchResponse is the search tool's result
type SearchResponse struct {
	Success   bool          `json:"success"`
	RunID     string        `json:"run_id"`
	Summary   SearchSummary `json:"summary"`
	Results   []FileResult  `json:"results"`
	Failures  []FileFailure `json:"failures,omitempty"`
	Truncated bool          `json:"truncated,omitempty"`
}

type SearchSummary struct {
	Candidates int     `json:"candidates"`
	Reported   int     `json:"reported"`
	Failed     int     `json:"failed"`
	Skipped    int     `json:"skipped"`
	ElapsedMs  float64 `json:"elapsed_ms"`
	Cancelled  bool    `json:"cancelled,omitempty"`
}

type FileResult struct {
	FilePath      string            `json:"file_path"`
	MatchesByFile bool              `json:"matches_by_file"`
	Lines         []types.LineMatch `json:"lines,omitempty"`
}

type FileFailure struct {
	FilePath string `json:"file_path"`
	Error    string `json:"error"`
}

func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params SearchParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("search", fmt.Errorf("invalid parameters: %w", err), nil)
	}

	name, source, err := resolveDefinition(params)
	if err != nil {
		return createErrorResponse("search", err, nil)
	}

	cfg := *s.cfg
	if params.Root != "" {
		root, err := filepath.Abs(params.Root)
		if err != nil {
			return createErrorResponse("search", err, nil)
		}
		cfg.Project.Root = root
	}
	if info, err := os.Stat(cfg.Project.Root); err != nil || !info.IsDir() {
		return createErrorResponse("search", fmt.Errorf("root %q is not a directory", cfg.Project.Root), nil)
	}

	confirmer := run.Static{
		Scale:        params.ConfirmLarge || cfg.Run.AssumeYes,
		ProbeFailure: params.ContinueOnProbeFailure || cfg.Run.AssumeYes,
	}
	collector := sink.NewCollector()
	rc := run.NewRunContext(ctx, collector, nil, confirmer)

	debug.LogMCP("search %s (run %s) under %s", name, rc.ID, cfg.Project.Root)
	stats, err := run.FromConfig(&cfg).Run(rc, name, source)
	if err != nil {
		return createErrorResponse("search", err, errorHints(err))
	}

	limit := defaultMaxResults
	if params.MaxResults != nil {
		limit = *params.MaxResults
	}
	return createJSONResponse(buildSearchResponse(stats, collector.Snapshot(), cfg.Project.Root, limit))
}

func resolveDefinition(params SearchParams) (name, source string, err error) {
	switch {
	case params.Definition != "" && params.DefinitionPath != "":
		return "", "", errors.New("pass either definition or definition_path, not both")
	case params.Definition != "":
		return "definition.jsps.ts", params.Definition, nil
	case params.DefinitionPath != "":
		data, err := os.ReadFile(params.DefinitionPath)
		if err != nil {
			return "", "", fmt.Errorf("cannot read definition: %w", err)
		}
		return filepath.Base(params.DefinitionPath), string(data), nil
	default:
		return "", "", errors.New("definition or definition_path is required")
	}
}

func errorHints(err error) map[string]interface{} {
	switch {
	case errors.Is(err, jspserrors.ErrDeclined):
		return map[string]interface{}{
			"hint": "set confirm_large to search many files, or continue_on_probe_failure to continue after the first file failed",
		}
	case errors.Is(err, jspserrors.ErrNoFilesMatched):
		return map[string]interface{}{
			"hint": "check includeFilePatterns and excludeFilePatterns in getSettings, and the root directory",
		}
	}
	var loadErr *jspserrors.LoadError
	if errors.As(err, &loadErr) {
		return map[string]interface{}{
			"kind": loadErr.Kind.String(),
			"hint": "call the template tool for a valid definition",
		}
	}
	return nil
}

func buildSearchResponse(stats types.RunStats, snap sink.Snapshot, root string, limit int) *SearchResponse {
	resp := &SearchResponse{
		Success: true,
		RunID:   stats.RunID,
		Summary: SearchSummary{
			Candidates: stats.Candidates,
			Reported:   stats.Reported,
			Failed:     stats.Failed,
			Skipped:    stats.Skipped,
			ElapsedMs:  float64(stats.Elapsed.Microseconds()) / 1000,
			Cancelled:  stats.Reason == "cancelled",
		},
		Results: []FileResult{},
	}

	results := pathutil.ToRelativeOutcomes(snap.Results, root)
	sort.Slice(results, func(i, j int) bool { return results[i].FilePath < results[j].FilePath })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
		resp.Truncated = true
	}
	for _, o := range results {
		resp.Results = append(resp.Results, FileResult{
			FilePath:      o.FilePath,
			MatchesByFile: o.MatchesByFile,
			Lines:         o.SortedLineMatches(),
		})
	}

	failures := pathutil.ToRelativeOutcomes(snap.Failures, root)
	sort.Slice(failures, func(i, j int) bool { return failures[i].FilePath < failures[j].FilePath })
	for _, o := range failures {
		resp.Failures = append(resp.Failures, FileFailure{FilePath: o.FilePath, Error: o.Err.Error()})
	}
	return resp
}

func (s *Server) handleTemplate(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: definition.Template()},
		},
	}, nil
}
