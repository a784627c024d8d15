package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tinytelemetry/tally/internal/calc"
	"github.com/tinytelemetry/tally/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var skin string
	var evalKeys string
	var trace bool
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/tally/config.yml)")
	flag.StringVar(&skin, "skin", "", "override keypad skin")
	flag.StringVar(&evalKeys, "eval", "", `press keys without the keypad, e.g. -eval "7 + 3 =", and print the display`)
	flag.BoolVar(&trace, "trace", false, "with -eval, print the display after every key")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Tally - Keypad Calculator\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	evalMode := evalKeys != "" || flag.NArg() > 0
	if err := checkEvalFlags(evalMode, trace); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	if evalMode {
		line := strings.TrimSpace(evalKeys + " " + strings.Join(flag.Args(), " "))
		if err := runEval(os.Stdout, line, trace); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if skin != "" {
		cfg.Skin = skin
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var errTraceWithoutEval = errors.New("-trace needs -eval or keys on the command line")

// checkEvalFlags rejects batch-only flags when the keypad would start.
func checkEvalFlags(evalMode, trace bool) error {
	if trace && !evalMode {
		return errTraceWithoutEval
	}
	return nil
}

// runEval presses the keys in line on a fresh engine and writes the
// final display, or every intermediate display when trace is set.
func runEval(w io.Writer, line string, trace bool) error {
	keys, err := calc.ParseKeys(line)
	if err != nil {
		return err
	}

	engine := calc.New()
	for _, k := range keys {
		display := engine.Apply(k)
		if trace {
			fmt.Fprintf(w, "%s\t%s\n", k.Label(), display)
		}
	}
	if !trace {
		fmt.Fprintln(w, engine.Display())
	}
	return nil
}

func runTUI(cfg cliConfig) error {
	if err := tui.InitializeSkin(cfg.Skin, cfg.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load skin '%s': %v (using default)\n", cfg.Skin, err)
	}

	app := tui.NewApp(tui.NewKeypadPage(calc.New()))

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
