package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"regvm/api"
	"regvm/assembler"
	"regvm/config"
	"regvm/repl"
	"regvm/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		replMode    = flag.Bool("repl", false, "Start the line-mode REPL")
		tuiMode     = flag.Bool("tui", false, "Start the full-screen TUI REPL")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode")
		apiPort     = flag.Int("port", 8080, "API server port (used with -api-server)")
		configPath  = flag.String("config", "", "Config file path (default: platform config dir)")
		maxSteps    = flag.Uint64("max-steps", 0, "Maximum steps before a run aborts (0: use config default)")
		dumpSymbols = flag.Bool("dump-symbols", false, "Assemble the entry source, dump its symbol table, and exit")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("regvm %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *maxSteps != 0 {
		cfg.Execution.MaxSteps = *maxSteps
	}

	if *apiServer {
		runAPIServer(*apiPort, cfg)
		return
	}

	entrySource := cfg.Execution.DefaultEntrySource
	if flag.NArg() > 0 {
		entrySource = flag.Arg(0)
	}

	if *dumpSymbols {
		if entrySource == "" {
			fmt.Fprintln(os.Stderr, "Error: -dump-symbols requires an entry source file or execution.default_entry_source in config")
			os.Exit(1)
		}
		if err := dumpSymbolTable(entrySource); err != nil {
			fmt.Fprintf(os.Stderr, "Error dumping symbols: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *tuiMode {
		runTUI(cfg)
		return
	}
	if *replMode || entrySource == "" {
		runREPL(cfg)
		return
	}
	runOnceShot(entrySource, cfg)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func runREPL(cfg *config.Config) {
	r := repl.New(cfg, os.Stdout)
	if err := r.Run(os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "REPL error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg *config.Config) {
	r := repl.New(cfg, os.Stdout)
	t := repl.NewTUI(r)
	if err := t.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		os.Exit(1)
	}
}

// runOnceShot assembles an entire source file and runs it to completion,
// the non-interactive counterpart to the REPL's line-at-a-time loop.
func runOnceShot(path string, cfg *config.Config) {
	source, err := os.ReadFile(path) // #nosec G304 -- user-specified source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
		os.Exit(1)
	}

	code, err := assembler.ParseProgram(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Assembly error:\n%v\n", err)
		os.Exit(1)
	}

	machine := vm.New()
	machine.MaxSteps = cfg.Execution.MaxSteps
	if cfg.Execution.InitialHeapCapacity > 0 {
		machine.Heap = make([]byte, 0, vm.HeapCapacity(cfg.Execution.InitialHeapCapacity))
	}
	machine.Append(code)

	outcome, err := machine.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error at pc=%d: %v\n", machine.PC, err)
		os.Exit(1)
	}

	switch outcome {
	case vm.StepIllegal:
		fmt.Fprintf(os.Stderr, "illegal instruction at pc=%d\n", machine.PC)
		os.Exit(1)
	default:
		fmt.Printf("halted after %d steps\n", machine.StepCount)
	}
}

func runAPIServer(port int, cfg *config.Config) {
	server := api.NewServer(port, cfg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nShutting down API server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("API server stopped")
			os.Exit(0)
		})
	}

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	performShutdown()
}

// dumpSymbolTable assembles path and prints its symbol table in
// declaration order.
func dumpSymbolTable(path string) error {
	source, err := os.ReadFile(path) // #nosec G304 -- user-specified source path
	if err != nil {
		return err
	}

	a := assembler.NewAssembler()
	if _, err := a.Assemble(string(source)); err != nil {
		return err
	}

	names := a.Symbols.Names()
	if len(names) == 0 {
		fmt.Println("No symbols defined")
		return nil
	}

	fmt.Println("Symbol Table")
	fmt.Println("============")
	for _, name := range names {
		bytes, _ := a.Symbols.Get(name)
		fmt.Printf("%-30s % X\n", name, bytes)
	}
	fmt.Printf("\nTotal symbols: %d\n", len(names))
	return nil
}

func printHelp() {
	fmt.Printf(`regvm %s

Usage: regvm [options] <assembly-file>
       regvm -repl
       regvm -tui
       regvm -api-server [-port N]

Options:
  -help              Show this help message
  -version           Show version information
  -repl              Start the line-mode REPL
  -tui               Start the full-screen TUI REPL
  -api-server        Start HTTP API server mode
  -port N            API server port (default: 8080, used with -api-server)
  -config PATH       Config file path (default: platform config dir)
  -max-steps N       Maximum steps before a run aborts (default: config's execution.max_steps)
  -dump-symbols      Assemble the entry source, dump its symbol table, and exit

Examples:
  # Run a program to completion
  regvm program.s

  # Start the line-mode REPL
  regvm -repl

  # Start the full-screen TUI
  regvm -tui

  # Start the HTTP/WebSocket API for external front ends
  regvm -api-server -port 3000

  # Dump the symbol table produced by assembling a file
  regvm -dump-symbols program.s
`, Version)
}
