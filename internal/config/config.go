package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/pdf-annotations/internal/pdf"
)

const (
	// Mode constants
	ModeCLI    = "cli"
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultOffset      = pdf.AutoDetectOffset
	DefaultFormat      = string(pdf.FormatMarkdown)

	// Directory permissions
	DefaultDirPerm = 0o750

	// EnvPrefix is prepended to every environment variable
	EnvPrefix = "PDF_ANNOTS"
)

// ErrVersionRequested is returned by LoadFromFlags when --version is passed
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the annotation exporter
type Config struct {
	// Mode is "cli", "stdio" or "server"
	Mode string
	Host string
	Port int

	// PDFDirectory confines MCP requests; the CLI ignores it
	PDFDirectory string

	// Export configuration
	Inputs        []string // positional PDF paths (cli mode)
	Offset        int      // -1 detects the offset
	OutputPath    string   // only valid with a single input
	Format        string   // "markdown" or "html"
	Language      string   // empty detects from the environment
	UsePageLabels bool

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:         ModeCLI,
		Host:         DefaultHost,
		Port:         DefaultPort,
		PDFDirectory: currentDir,
		Offset:       DefaultOffset,
		Format:       DefaultFormat,
		Version:      "1.0.0",
		ServerName:   "pdf-annotations",
		LogLevel:     DefaultLogLevel,
		MaxFileSize:  DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)
	cfg.Inputs = pflag.Args()

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("offset", cfg.Offset)
	viper.SetDefault("output", cfg.OutputPath)
	viper.SetDefault("format", cfg.Format)
	viper.SetDefault("lang", cfg.Language)
	viper.SetDefault("page-labels", cfg.UsePageLabels)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'cli' to export files, 'stdio' for MCP standard I/O, 'server' for MCP over HTTP")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.PDFDirectory, "Directory MCP requests are confined to")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.IntP("offset", "o", cfg.Offset, "Page offset (internal = physical + offset); -1 detects it")
	pflag.String("output", cfg.OutputPath, "Report path (single input only; default <input>_annotations.md)")
	pflag.String("format", cfg.Format, "Report format: markdown or html")
	pflag.String("lang", cfg.Language, "Message language (en, de, tr); default from LC_ALL/LC_MESSAGES/LANG")
	pflag.Bool("page-labels", cfg.UsePageLabels, "Derive the offset from embedded page labels when present")
}

var flagKeys = []string{
	"mode", "host", "port", "dir", "loglevel", "maxfilesize",
	"offset", "output", "format", "lang", "page-labels",
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, key := range flagKeys {
		_ = viper.BindPFlag(key, pflag.Lookup(key))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF Annotations - export highlights and comments from PDF files\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s paper.pdf                        # writes paper_annotations.md\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --offset=-2 --format=html book.pdf # fixed offset, HTML report\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --dir=/path/to/pdfs  # MCP over standard I/O\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --port=8081         # MCP over HTTP\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		for _, key := range flagKeys {
			fmt.Fprintf(os.Stderr, "  %s\n", EnvVar(key))
		}
	}
}

// EnvVar returns the environment variable that sets key
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.Offset = viper.GetInt("offset")
	cfg.OutputPath = viper.GetString("output")
	cfg.Format = viper.GetString("format")
	cfg.Language = viper.GetString("lang")
	cfg.UsePageLabels = viper.GetBool("page-labels")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeCLI, ModeStdio, ModeServer:
	default:
		return errors.New("mode must be one of 'cli', 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if _, err := pdf.ParseReportFormat(c.Format); err != nil {
		return fmt.Errorf("invalid format: %s (must be markdown or html)", c.Format)
	}

	if c.Mode == ModeCLI {
		return c.validateCLI()
	}
	return c.validateDirectory()
}

func (c *Config) validateCLI() error {
	if len(c.Inputs) == 0 {
		return errors.New("at least one PDF file is required")
	}
	if c.OutputPath != "" && len(c.Inputs) > 1 {
		return errors.New("--output can only be used with a single input file")
	}
	return nil
}

// validateDirectory checks the MCP root directory, creating it if missing
func (c *Config) validateDirectory() error {
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}
	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, "+
		"Offset: %d, Format: %s, Language: %s, UsePageLabels: %t, Inputs: %d}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel, c.MaxFileSize,
		c.Offset, c.Format, c.Language, c.UsePageLabels, len(c.Inputs))
}

// IsCLIMode returns true if the tool exports the positional inputs and exits
func (c *Config) IsCLIMode() bool {
	return c.Mode == ModeCLI
}

// IsServerMode returns true if the MCP server runs over HTTP
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the MCP server runs over standard I/O
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
