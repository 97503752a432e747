package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/adapters/driving/mcp"
	"github.com/custodia-labs/lexis/internal/core/domain"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Expose Lexis to AI assistants over the Model Context Protocol.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server.

Tools:     upload, analyze, question, generate_prompts, health
Resources: lexis://documents, lexis://documents/{id},
           lexis://documents/{id}/analysis, lexis://documents/{id}/conversation

The server speaks JSON-RPC over stdio unless --port is given, in which
case it serves streamable HTTP on --host (loopback by default, since
uploaded documents are readable through the resources).

Examples:
  lexis mcp serve
  lexis mcp serve --port 8080

Assistant configuration:
  {"mcpServers": {"lexis": {"command": "/path/to/lexis", "args": ["mcp", "serve"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "127.0.0.1", "interface to bind in HTTP mode")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("%w: port %d out of range", domain.ErrInvalidInput, mcpPort)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Document:       documentService,
		Analysis:       analysisService,
		QA:             qaService,
		Suggestion:     suggestionService,
		Health:         healthService,
		MaxUploadBytes: uploadLimit(),
	})
	if err != nil {
		return err
	}

	if mcpPort == 0 {
		return server.Run(cmd.Context())
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.Printf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
