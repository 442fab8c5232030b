// Package mcp exposes jsps searches as Model Context Protocol tools over stdio.
package mcp

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/jsps/internal/config"
	"github.com/standardbeagle/jsps/internal/debug"
	"github.com/standardbeagle/jsps/internal/version"
)

// Server is the jsps MCP server
type Server struct {
	cfg    *config.Config
	server *mcp.Server
}

// NewServer creates a server whose searches default to cfg's settings
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "jsps-mcp-server",
		Version: version.Version,
	}, nil)
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name: "search",
		Description: "Run a search definition (a TypeScript or JavaScript module exporting getSettings, " +
			"searchByFile and searchByLine) over every file under root. Use 'template' to get a starting definition.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"definition": {
					Type:        "string",
					Description: "Definition source text. Either this or definition_path is required.",
				},
				"definition_path": {
					Type:        "string",
					Description: "Path to a definition file (.ts or .js)",
				},
				"root": {
					Type:        "string",
					Description: "Directory to search (default: the server's project root)",
				},
				"confirm_large": {
					Type:        "boolean",
					Description: "Continue when more files match than the confirm threshold",
				},
				"continue_on_probe_failure": {
					Type:        "boolean",
					Description: "Continue when the definition fails or is too slow on the first file",
				},
				"max_results": {
					Type:        "integer",
					Description: "Maximum matching files returned (default 200, 0 for all)",
				},
			},
		},
	}, s.handleSearch)

	s.server.AddTool(&mcp.Tool{
		Name:        "template",
		Description: "Get the documented search definition template",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleTemplate)
}

// Start serves over stdio until ctx ends or the client disconnects
func (s *Server) Start(ctx context.Context) error {
	debug.LogMCP("starting MCP server with stdio transport, root %s", s.cfg.Project.Root)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
