package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/davetashner/drydock/internal/clone"
	"github.com/davetashner/drydock/internal/config"
	"github.com/davetashner/drydock/internal/output"
	"github.com/davetashner/drydock/internal/report"
	"github.com/davetashner/drydock/internal/scan"
	"github.com/davetashner/drydock/internal/state"
	"github.com/davetashner/drydock/internal/whitelist"
)

// ScanInput is the input schema for the drydock scan MCP tool.
type ScanInput struct {
	Path      string   `json:"path,omitempty" jsonschema:"Base directory; relative paths, project identifiers and config are resolved against it (defaults to current directory)"`
	Paths     []string `json:"paths,omitempty" jsonschema:"Directories, files, or glob patterns to scan (default: the base directory)"`
	MinLines  int      `json:"min_lines,omitempty" jsonschema:"Skip files shorter than this many lines"`
	Whitelist string   `json:"whitelist,omitempty" jsonschema:"Whitelist file of accepted fingerprints (default: .drydockwhitelist in the base directory)"`
	Format    string   `json:"format,omitempty" jsonschema:"Output format: json, text, markdown, csv, sarif, junit (default: json)"`
}

// TrendInput is the input schema for the drydock trend MCP tool.
type TrendInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Base directory for relative report paths (defaults to current directory)"`
	Old    string `json:"old" jsonschema:"Earlier report JSON file"`
	New    string `json:"new,omitempty" jsonschema:"Later report JSON file (default: drydock-report.json)"`
	Format string `json:"format,omitempty" jsonschema:"Output format: json or text (default: json)"`
}

// boolPtr returns a pointer to a bool.
func boolPtr(b bool) *bool { return &b }

// registerTools adds all drydock tools to the MCP server.
func registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "scan",
		Description: "Scan directories for duplicated code. Returns internal duplicates and cross-project leakage ranked by score.",
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:    true,
			DestructiveHint: boolPtr(false),
			OpenWorldHint:   boolPtr(false),
		},
	}, handleScan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "trend",
		Description: "Compare two saved scan reports. Returns new, resolved and remaining cross-project leaks and the score change.",
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:    true,
			DestructiveHint: boolPtr(false),
			OpenWorldHint:   boolPtr(false),
		},
	}, handleTrend)
}

func handleScan(ctx context.Context, _ *mcp.CallToolRequest, input ScanInput) (*mcp.CallToolResult, any, error) {
	pathInfo, err := ResolvePath(input.Path)
	if err != nil {
		return nil, nil, err
	}

	// Default to json for MCP consumers.
	format := "json"
	if input.Format != "" {
		format = input.Format
	}
	formatter, err := output.GetFormatter(format)
	if err != nil {
		return nil, nil, fmt.Errorf("unsupported format %q", format)
	}
	if input.MinLines < 0 {
		return nil, nil, fmt.Errorf("min_lines must be non-negative, got %d", input.MinLines)
	}

	cfgDir := configDir(pathInfo)
	fileCfg, err := config.LoadEffective(cfgDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(fileCfg); err != nil {
		return nil, nil, err
	}
	settings := config.Merge(fileCfg, config.Settings{
		MinLines:  input.MinLines,
		Whitelist: input.Whitelist,
	})

	wlPath := settings.Whitelist
	if wlPath != "" && !filepath.IsAbs(wlPath) {
		wlPath = filepath.Join(pathInfo.AbsPath, wlPath)
	}
	wl, err := whitelist.LoadDefault(cfgDir, wlPath)
	if err != nil {
		return nil, nil, err
	}

	paths := input.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	r, stats, err := scan.New().Run(ctx, paths, scan.Options{
		MinLines:      settings.MinLines,
		Workers:       settings.Workers,
		Whitelist:     wl,
		Enrich:        settings.EnrichEnabled(),
		EnrichWorkers: settings.EnrichWorkers,
		ScoreExponent: settings.ScoreExponent,
		BaseDir:       pathInfo.AbsPath,
		Ignore:        settings.ScanIgnore(pathInfo.AbsPath),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan failed: %w", err)
	}
	slog.Debug("mcp scan complete", "files", stats.Files, "leaks", len(r.CrossProjectLeakage))

	var buf bytes.Buffer
	if err := formatter.Format(r, &buf); err != nil {
		return nil, nil, fmt.Errorf("formatting output: %w", err)
	}
	return textResult(buf.String()), nil, nil
}

func handleTrend(_ context.Context, _ *mcp.CallToolRequest, input TrendInput) (*mcp.CallToolResult, any, error) {
	pathInfo, err := ResolvePath(input.Path)
	if err != nil {
		return nil, nil, err
	}
	if input.Old == "" {
		return nil, nil, errors.New("old report path is required")
	}
	newPath := input.New
	if newPath == "" {
		newPath = state.DefaultReportFile
	}

	older, err := loadReport(pathInfo.AbsPath, input.Old)
	if err != nil {
		return nil, nil, err
	}
	newer, err := loadReport(pathInfo.AbsPath, newPath)
	if err != nil {
		return nil, nil, err
	}
	trend := state.AnalyzeTrend(older, newer)

	var buf bytes.Buffer
	switch input.Format {
	case "", "json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(trend); err != nil {
			return nil, nil, fmt.Errorf("encoding trend: %w", err)
		}
	case "text":
		if err := report.Trend(&buf, trend); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("unsupported format %q (available: json, text)", input.Format)
	}
	return textResult(buf.String()), nil, nil
}

// loadReport reads a report relative to base. A missing file is an error.
func loadReport(base, path string) (*clone.Report, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	r, err := state.LoadReport(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if r == nil {
		return nil, fmt.Errorf("report %q does not exist", path)
	}
	return r, nil
}

// configDir is the base directory when it holds a config file, otherwise
// the enclosing git root.
func configDir(info *PathInfo) string {
	if _, err := os.Stat(filepath.Join(info.AbsPath, config.FileName)); err == nil {
		return info.AbsPath
	}
	if _, err := os.Stat(filepath.Join(info.GitRoot, config.FileName)); err == nil {
		return info.GitRoot
	}
	return info.AbsPath
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
