package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ironsheep/logoforge-mcp/internal/config"
	"github.com/ironsheep/logoforge-mcp/internal/httpapi"
	"github.com/ironsheep/logoforge-mcp/internal/inference"
	"github.com/ironsheep/logoforge-mcp/internal/ocr"
	"github.com/ironsheep/logoforge-mcp/internal/server"
	"github.com/ironsheep/logoforge-mcp/internal/studio"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const shutdownGrace = 15 * time.Second

func main() {
	args := os.Args[1:]
	mode := "mcp"
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Printf("logoforge %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			if v := ocr.Version(); v != "" {
				fmt.Printf("  Tesseract:  %s\n", v)
			}
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "serve":
			mode = "serve"
			args = args[1:]
		}
	}

	fs := flag.NewFlagSet("logoforge", flag.ExitOnError)
	configPath := fs.String("config", os.Getenv(config.EnvConfig), "path to a YAML config file")
	addr := fs.String("addr", "", "HTTP listen address (serve mode)")
	_ = fs.Parse(args)

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	debug := cfg.LogLevel == config.LogLevelDebug
	if debug {
		log.Printf("logoforge v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	client := inference.New(cfg.Inference())
	if !client.Configured() {
		log.Printf("%s is not set; generation and descriptions will fail", config.EnvAPIKey)
	}

	var opts []studio.Option
	if cfg.OCR.Enabled {
		if ocr.Available() {
			opts = append(opts, studio.WithTextHinter(&ocr.Engine{
				Language:       cfg.OCR.Language,
				TessdataPrefix: cfg.OCR.TessdataPrefix,
				MinConfidence:  cfg.OCR.MinConfidence,
			}))
		} else {
			log.Printf("OCR hints disabled: %v", ocr.ErrUnavailable)
		}
	}
	svc := studio.New(cfg, client, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case "serve":
		err = httpapi.ListenAndServe(ctx, cfg.HTTP.Addr, httpapi.NewRouter(svc), shutdownGrace)
	default:
		err = server.New(svc, server.WithVersion(Version), server.WithDebug(debug)).Run(ctx)
	}
	if err != nil && err != context.Canceled {
		log.Fatalf("Server error: %v", err)
	}
}

func printHelp() {
	fmt.Println("logoforge - logo generation, SVG conversion and product descriptions")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  logoforge [--config file]                    MCP server over stdin/stdout")
	fmt.Println("  logoforge serve [--config file] [--addr a]   HTTP API")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s          Hugging Face inference token\n", config.EnvAPIKey)
	fmt.Printf("  %s          HTTP listen address (default :8080)\n", config.EnvHTTPAddr)
	fmt.Printf("  %s          Set to debug to enable debug logging\n", config.EnvLogLevel)
	fmt.Printf("  %s             Path to a YAML config file\n", config.EnvConfig)
	fmt.Println()
	fmt.Println("Without a subcommand the server speaks MCP over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
