package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	// Packages
	kong "github.com/alecthomas/kong"
	download "github.com/dragon84867/qwen-code-examples/pkg/download"
	generate "github.com/dragon84867/qwen-code-examples/pkg/generate"
	opt "github.com/dragon84867/qwen-code-examples/pkg/opt"
	dashscope "github.com/dragon84867/qwen-code-examples/pkg/provider/dashscope"
	store "github.com/dragon84867/qwen-code-examples/pkg/store"
	console "github.com/dragon84867/qwen-code-examples/pkg/ui/console"
	version "github.com/dragon84867/qwen-code-examples/pkg/version"
	godotenv "github.com/joho/godotenv"
	client "github.com/mutablelogic/go-client"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Globals struct {
	// Debugging
	Debug   bool `name:"debug" help:"Enable debug logging and HTTP tracing"`
	Verbose bool `name:"verbose" help:"Include request and response bodies in HTTP traces"`
	Version bool `name:"version" help:"Print version information and exit"`

	// Configuration
	Config       string        `name:"config" type:"path" help:"YAML defaults file (default: $XDG_CONFIG_HOME/imagegen/config.yaml)"`
	OtelEndpoint string        `name:"otel-endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" help:"OTLP/HTTP endpoint for traces"`
	Timeout      time.Duration `name:"timeout" help:"Timeout for each HTTP request (default: none)"`

	// DashScope
	DashScope `embed:"" help:"DashScope configuration"`
}

type DashScope struct {
	APIKey   string `name:"api-key" env:"DASHSCOPE_API_KEY" help:"DashScope API key"`
	Endpoint string `name:"endpoint" env:"DASHSCOPE_ENDPOINT" help:"DashScope compatible-mode endpoint"`
}

type CLI struct {
	Globals

	// Generation
	Prompt     string   `arg:"" optional:"" help:"Text prompt describing the image"`
	Model      string   `name:"model" env:"IMAGEGEN_MODEL" help:"Model name"`
	Modalities []string `name:"modalities" help:"Requested output modalities (text, image)"`
	System     string   `name:"system" help:"System instruction sent with the prompt"`
	Output     string   `name:"output" short:"o" type:"path" env:"IMAGEGEN_OUTPUT" help:"Output directory (default: current directory)"`
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	exitOK    = 0
	exitUsage = 1
)

////////////////////////////////////////////////////////////////////////////////
// MAIN

func main() {
	// Variables from a .env file never override the environment
	envErr := loadEnv()

	// Create a cli parser
	cli := CLI{}
	kong.Parse(&cli,
		kong.Name(execName()),
		kong.Description("Generate an image from a text prompt with DashScope"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	if envErr != nil {
		slog.Warn("ignoring .env file", "error", envErr)
	}

	// Create a context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, &cli, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// run performs one generation and returns the exit status. Only missing or
// invalid configuration is a failure; the outcome of the run itself is
// reported and the process exits normally.
func run(ctx context.Context, cli *CLI, stdout, stderr io.Writer) int {
	if cli.Version {
		fmt.Fprintln(stdout, string(version.JSON(execName())))
		return exitOK
	}

	// Logging
	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Resolve configuration
	config, err := LoadConfig(cli.Config)
	if err != nil {
		return usage(stderr, err)
	}
	config.Merge(cli)
	if err := config.Validate(); err != nil {
		return usage(stderr, err)
	}

	// Tracing
	tracer, shutdown, err := newTracer(ctx, cli.OtelEndpoint)
	if err != nil {
		return usage(stderr, err)
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("trace shutdown", "error", err)
		}
	}()

	// Client options
	clientopts := []client.ClientOpt{client.OptUserAgent(version.UserAgent())}
	if cli.Debug || cli.Verbose {
		clientopts = append(clientopts, client.OptTrace(stderr, cli.Verbose))
	}
	if cli.OtelEndpoint != "" {
		clientopts = append(clientopts, client.OptTracer(tracer))
	}
	if config.Timeout > 0 {
		clientopts = append(clientopts, client.OptTimeout(config.Timeout))
	}

	// Create the clients, the store and the runner
	apiopts := clientopts
	if config.Endpoint != "" {
		apiopts = append(append([]client.ClientOpt{}, clientopts...), client.OptEndpoint(config.Endpoint))
	}
	generator, err := dashscope.New(config.APIKey, apiopts...)
	if err != nil {
		return usage(stderr, err)
	}
	output, err := store.New(config.Output)
	if err != nil {
		return usage(stderr, err)
	}
	runner, err := generate.New(
		generate.WithGenerator(generator),
		generate.WithDownloader(download.New(clientopts...)),
		generate.WithStore(output),
		generate.WithReporter(console.New(stdout, stderr)),
		generate.WithTracer(tracer),
		generate.WithLogger(logger),
	)
	if err != nil {
		return usage(stderr, err)
	}

	// Generation options
	opts := []opt.Opt{dashscope.WithModel(config.Model)}
	if len(config.Modalities) > 0 {
		opts = append(opts, dashscope.WithModalities(config.Modalities...))
	}
	if config.System != "" {
		opts = append(opts, dashscope.WithSystemPrompt(config.System))
	}

	// Run. The outcome has already been reported
	result, err := runner.Run(ctx, config.Prompt, opts...)
	if result == nil && err != nil {
		return usage(stderr, err)
	}
	logger.Debug("exit", "id", result.ID, "state", result.State.String())
	return exitOK
}

// loadEnv sets variables from the .env files which are not already set in
// the environment. Missing files are skipped.
func loadEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// usage prints the diagnostic and a usage line, and returns the exit status
func usage(w io.Writer, err error) int {
	fmt.Fprintln(w, "Error:", err)
	fmt.Fprintf(w, "Usage: DASHSCOPE_API_KEY=<key> %s \"your prompt\"\n", execName())
	return exitUsage
}

func execName() string {
	// The name of the executable
	name, err := os.Executable()
	if err != nil {
		return version.Name
	}
	return filepath.Base(name)
}
