package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/text/language"

	"github.com/a3tai/pdf-annotations/internal/config"
	"github.com/a3tai/pdf-annotations/internal/descriptions"
	"github.com/a3tai/pdf-annotations/internal/i18n"
	"github.com/a3tai/pdf-annotations/internal/pdf"
	"github.com/a3tai/pdf-annotations/internal/pdf/security"
	"github.com/a3tai/pdf-annotations/internal/pdf/wrapper"
)

// Tool names
const (
	ToolExtractAnnotations = "pdf_extract_annotations"
	ToolListAnnotations    = "pdf_list_annotations"
	ToolDetectPageOffset   = "pdf_detect_page_offset"
	ToolServerInfo         = "pdf_server_info"
)

const (
	endpointPath      = "/mcp"
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second

	// Directory scan limits for pdf_server_info
	scanMaxDepth  = 5
	scanFileLimit = 100
	scanTimeLimit = 3 * time.Second
	scanCacheTTL  = 5 * time.Minute
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	paths      *security.PathValidator
	scanner    *pdf.DirectoryScanner
	mcpServer  *server.MCPServer

	stdin  io.Reader
	stdout io.Writer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	paths, err := security.NewPathValidator(cfg.PDFDirectory)
	if err != nil {
		return nil, fmt.Errorf("invalid PDF directory: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		paths:      paths,
		scanner:    pdf.NewDirectoryScanner(scanMaxDepth, scanFileLimit, scanTimeLimit, scanCacheTTL),
		mcpServer:  mcpServer,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	pathArg := mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the PDF file, absolute or relative to the configured directory"),
	)
	offsetArg := mcp.WithNumber("offset",
		mcp.Description("Page offset (internal page = physical page + offset); -1 detects it"),
		mcp.DefaultNumber(pdf.AutoDetectOffset),
	)
	labelsArg := mcp.WithBoolean("page_labels",
		mcp.Description("Derive the offset from the document's embedded page labels when present"),
	)
	langArg := mcp.WithString("lang",
		mcp.Description("Language of page labels and report headings: en, de or tr"),
	)

	extractTool := mcp.NewTool(
		ToolExtractAnnotations,
		mcp.WithDescription(descriptions.ExtractAnnotationsDescription),
		pathArg,
		offsetArg,
		mcp.WithString("output",
			mcp.Description("Report path inside the configured directory (default <name>_annotations.md next to the PDF)"),
		),
		mcp.WithString("format",
			mcp.Description("Report format"),
			mcp.Enum(string(pdf.FormatMarkdown), string(pdf.FormatHTML)),
			mcp.DefaultString(string(pdf.FormatMarkdown)),
		),
		labelsArg,
		langArg,
	)
	s.mcpServer.AddTool(extractTool, s.handleExtractAnnotations)

	listTool := mcp.NewTool(
		ToolListAnnotations,
		mcp.WithDescription(descriptions.ListAnnotationsDescription),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		pathArg,
		offsetArg,
		labelsArg,
		langArg,
	)
	s.mcpServer.AddTool(listTool, s.handleListAnnotations)

	detectTool := mcp.NewTool(
		ToolDetectPageOffset,
		mcp.WithDescription(descriptions.DetectPageOffsetDescription),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		pathArg,
		labelsArg,
	)
	s.mcpServer.AddTool(detectTool, s.handleDetectPageOffset)

	infoTool := mcp.NewTool(
		ToolServerInfo,
		mcp.WithDescription(descriptions.ServerInfoDescription),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithBoolean("refresh",
			mcp.Description("Rescan the directory instead of using the cached listing"),
		),
	)
	s.mcpServer.AddTool(infoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleExtractAnnotations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.inputPath(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	format, err := pdf.ParseReportFormat(request.GetString("format", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	output := request.GetString("output", "")
	if output != "" {
		if output, err = s.paths.Resolve(output); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	messages, err := s.messages(request.GetString("lang", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Extract(ctx, pdf.ExtractRequest{
		Path:          path,
		Offset:        request.GetInt("offset", pdf.AutoDetectOffset),
		OutputPath:    output,
		Format:        format,
		UsePageLabels: request.GetBool("page_labels", s.config.UsePageLabels),
		Messages:      messages,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatExtractResult(result)), nil
}

func (s *Server) handleListAnnotations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.inputPath(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	messages, err := s.messages(request.GetString("lang", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ListAnnotations(ctx, pdf.ListAnnotationsRequest{
		Path:          path,
		Offset:        request.GetInt("offset", pdf.AutoDetectOffset),
		UsePageLabels: request.GetBool("page_labels", s.config.UsePageLabels),
		Messages:      messages,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body, err := json.MarshalIndent(newAnnotationList(result), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode annotations: %v", err)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func (s *Server) handleDetectPageOffset(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.inputPath(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.DetectOffset(pdf.DetectOffsetRequest{
		Path:          path,
		UsePageLabels: request.GetBool("page_labels", s.config.UsePageLabels),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatDetectOffsetResult(result)), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if request.GetBool("refresh", false) {
		s.scanner.ClearCache()
	}

	scan, err := s.scanner.Scan(ctx, s.paths.Root())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to scan %s: %v", s.paths.Root(), err)), nil
	}

	body, err := json.MarshalIndent(s.newServerInfo(scan), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode server info: %v", err)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

// inputPath reads the required path argument and confines it to the configured directory
func (s *Server) inputPath(request mcp.CallToolRequest) (string, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return "", err
	}
	return s.paths.Resolve(path)
}

// messages returns the localizer for a request; the server default applies
// when lang is empty, English when neither is set
func (s *Server) messages(lang string) (pdf.Messages, error) {
	if lang == "" {
		lang = s.config.Language
	}

	tag := language.English
	if lang != "" {
		parsed, err := i18n.ParseLanguage(lang)
		if err != nil {
			return nil, err
		}
		tag = parsed
	}

	localizer, err := i18n.NewLocalizer(tag)
	if err != nil {
		return nil, err
	}
	return localizer, nil
}

// annotationView adds parsed timestamps to a record
type annotationView struct {
	pdf.AnnotationRecord
	Created  string `json:"created,omitempty"`
	Modified string `json:"modified,omitempty"`
}

type annotationList struct {
	Path         string           `json:"path"`
	TotalPages   int              `json:"total_pages"`
	Offset       int              `json:"offset"`
	OffsetSource pdf.OffsetSource `json:"offset_source"`
	Count        int              `json:"count"`
	Annotations  []annotationView `json:"annotations"`
	Warnings     []string         `json:"warnings,omitempty"`
}

func newAnnotationList(result *pdf.ListAnnotationsResult) annotationList {
	list := annotationList{
		Path:         result.Path,
		TotalPages:   result.TotalPages,
		Offset:       result.Offset,
		OffsetSource: result.OffsetSource,
		Count:        len(result.Annotations),
		Annotations:  make([]annotationView, 0, len(result.Annotations)),
		Warnings:     result.Warnings,
	}
	for _, record := range result.Annotations {
		list.Annotations = append(list.Annotations, annotationView{
			AnnotationRecord: record,
			Created:          formatPDFDate(record.CreationDate),
			Modified:         formatPDFDate(record.ModifiedDate),
		})
	}
	return list
}

// formatPDFDate returns the RFC 3339 form of a PDF date, or "" if it does not parse
func formatPDFDate(raw string) string {
	if raw == "" {
		return ""
	}
	date, err := wrapper.ParsePDFDate(raw)
	if err != nil {
		return ""
	}
	return date.Format(time.RFC3339)
}

// serverInfo is the JSON body of pdf_server_info
type serverInfo struct {
	ServerName  string         `json:"server_name"`
	Version     string         `json:"version"`
	Directory   string         `json:"directory"`
	MaxFileSize int64          `json:"max_file_size"`
	Formats     []string       `json:"formats"`
	Languages   []string       `json:"languages"`
	Tools       []string       `json:"tools"`
	Files       []pdf.FileInfo `json:"files"`
	Truncated   bool           `json:"truncated,omitempty"`
	FromCache   bool           `json:"from_cache,omitempty"`
}

func (s *Server) newServerInfo(scan *pdf.ScanResult) serverInfo {
	info := serverInfo{
		ServerName:  s.config.ServerName,
		Version:     s.config.Version,
		Directory:   s.paths.Root(),
		MaxFileSize: s.pdfService.GetMaxFileSize(),
		Formats:     []string{string(pdf.FormatMarkdown), string(pdf.FormatHTML)},
		Tools:       []string{ToolExtractAnnotations, ToolListAnnotations, ToolDetectPageOffset, ToolServerInfo},
		Files:       make([]pdf.FileInfo, 0, len(scan.Files)),
		Truncated:   scan.Truncated,
		FromCache:   scan.FromCache,
	}
	for _, tag := range i18n.SupportedLanguages() {
		info.Languages = append(info.Languages, tag.String())
	}

	// Relative paths can be passed straight back as the path argument
	for _, file := range scan.Files {
		if rel, err := filepath.Rel(scan.Root, file.Path); err == nil {
			file.Path = rel
		}
		info.Files = append(info.Files, file)
	}
	return info
}

// Formatting methods
func (s *Server) formatExtractResult(result *pdf.ExtractResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Exported %d annotation(s) from %s\n", result.AnnotationCount, result.Path)
	fmt.Fprintf(&b, "Report: %s (%s)\n", result.OutputPath, result.Format)
	fmt.Fprintf(&b, "Total pages: %d\n", result.TotalPages)
	fmt.Fprintf(&b, "Offset: %d (%s), page numbering starts at %d\n",
		result.Offset, result.OffsetSource, 1+result.Offset)

	if len(result.Warnings) > 0 {
		fmt.Fprintf(&b, "\nWarnings (%d):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	return b.String()
}

func (s *Server) formatDetectOffsetResult(result *pdf.DetectOffsetResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Page offset for %s: %d (%s)\n", result.Path, result.Offset, result.OffsetSource)
	fmt.Fprintf(&b, "Page numbering starts at: %d\n", result.StartsAt)
	fmt.Fprintf(&b, "Total pages: %d\n", result.TotalPages)

	if len(result.PageLabels) > 0 {
		b.WriteString("\nFirst pages:\n")
		for _, label := range result.PageLabels {
			fmt.Fprintf(&b, "  %s\n", label)
		}
	}
	return b.String()
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	switch {
	case s.config.IsServerMode():
		return s.runServerMode(ctx)
	case s.config.IsStdioMode():
		return s.runStdioMode(ctx)
	default:
		return fmt.Errorf("unsupported mode for MCP server: %s", s.config.Mode)
	}
}

// runStdioMode serves JSON-RPC over stdin/stdout until the input ends or ctx is done
func (s *Server) runStdioMode(ctx context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting PDF annotations MCP server in stdio mode")
		log.Printf("PDF directory: %s", s.paths.Root())
	}

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(os.Stderr, "", log.LstdFlags))

	err := stdio.Listen(ctx, s.stdin, s.stdout)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves the streamable HTTP transport on host:port and shuts
// it down when ctx is done
func (s *Server) runServerMode(ctx context.Context) error {
	mux := http.NewServeMux()
	httpServer := &http.Server{
		Addr:              s.config.Address(),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	streamable := server.NewStreamableHTTPServer(s.mcpServer, server.WithStreamableHTTPServer(httpServer))
	mux.Handle(endpointPath, streamable)

	log.Printf("Starting PDF annotations MCP server on http://%s%s", s.config.Address(), endpointPath)
	if s.config.IsDebug() {
		log.Printf("PDF directory: %s", s.paths.Root())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- streamable.Start(s.config.Address())
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve HTTP: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := streamable.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}
