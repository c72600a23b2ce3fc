package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/pdf-annotations/internal/config"
	"github.com/a3tai/pdf-annotations/internal/i18n"
	"github.com/a3tai/pdf-annotations/internal/mcp"
	"github.com/a3tai/pdf-annotations/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the run mode
func setupLogging(cfg *config.Config) {
	switch {
	case cfg.IsStdioMode():
		// stdout carries the MCP protocol
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(io.Discard)
		}
	case cfg.IsServerMode():
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	default:
		log.SetOutput(os.Stderr)
		log.SetFlags(0)
		if cfg.IsDebug() {
			log.SetFlags(log.Ltime | log.Lshortfile)
		}
	}
}

// newLocalizer picks the message language from --lang or the environment
func newLocalizer(cfg *config.Config) (*i18n.Localizer, error) {
	tag := i18n.DetectLanguage()
	if cfg.Language != "" {
		parsed, err := i18n.ParseLanguage(cfg.Language)
		if err != nil {
			return nil, err
		}
		tag = parsed
	}
	return i18n.NewLocalizer(tag)
}

// runCLI exports the annotations of every input and returns the exit code.
// Progress goes to stderr, report paths to stdout.
func runCLI(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) int {
	localizer, err := newLocalizer(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	service := pdf.NewService(cfg.MaxFileSize)
	service.SetDebug(cfg.IsDebug())

	failed := 0
	for _, input := range cfg.Inputs {
		result, err := service.Extract(ctx, pdf.ExtractRequest{
			Path:          input,
			Offset:        cfg.Offset,
			OutputPath:    cfg.OutputPath,
			Format:        pdf.ReportFormat(cfg.Format),
			UsePageLabels: cfg.UsePageLabels,
			Messages:      localizer,
			Progress: func(message string) {
				if cfg.IsDebug() {
					fmt.Fprintln(stderr, message)
				}
			},
		})
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			failed++
			continue
		}

		for _, warning := range result.Warnings {
			fmt.Fprintln(stderr, warning)
		}
		fmt.Fprintln(stdout, result.OutputPath)
		if cfg.IsDebug() {
			log.Printf("%s: %d annotation(s), offset %d (%s)",
				input, result.AnnotationCount, result.Offset, result.OffsetSource)
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, server *mcp.Server) {
	// The parent process controls our lifecycle; Run returns when stdin closes
	if err := server.Run(ctx); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsCLIMode() {
		code := runCLI(ctx, cfg, os.Stdout, os.Stderr)
		cancel()
		os.Exit(code)
	}

	pdfService := pdf.NewService(cfg.MaxFileSize)
	pdfService.SetDebug(cfg.IsDebug())

	server, err := mcp.NewServer(cfg, pdfService)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server)
	} else {
		runStdioMode(ctx, server)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("PDF Annotations\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
