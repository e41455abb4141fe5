package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	pithon "github.com/pithon-lang/pithon"
)

const (
	appName     = "pithon"
	historyFile = ".pithon_history"
	promptMain  = ">>> "
	promptCont  = "... "
)

var banner = fmt.Sprintf("Pithon %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", pithon.Version)

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		os.Exit(cmdRepl())
	}

	switch cmd := os.Args[1]; cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl())
	case "version":
		fmt.Println(pithon.Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Pithon %s

Usage:
  %s run <file.py>     Run a script.
  %s repl              Start the REPL (default with no arguments).
  %s version           Print the version.

`, pithon.Version, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.py>\n", appName)
		return 2
	}
	file := args[0]
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	ip := pithon.NewInterpreter()
	program, perr := pithon.Parse(string(src))
	if perr != nil {
		fmt.Fprintln(os.Stderr, pithon.WrapErrorWithName(perr, file, string(src)).Error())
		return 1
	}
	if _, err := pithon.Evaluate(program, pithon.NewEnv(ip.Global)); err != nil {
		fmt.Fprintln(os.Stderr, pithon.WrapErrorWithName(err, file, string(src)).Error())
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl() int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ip := pithon.NewInterpreter()

	for {
		code, ok := readBlock(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		v, err := ip.EvalPersistentSource(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(pithon.WrapErrorWithName(err, "<repl>", code).Error()))
			continue
		}
		if v.Tag != pithon.VTNone {
			fmt.Println(blue(pithon.FormatValue(v)))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readBlock reads one REPL unit. A line that parses on its own evaluates
// immediately; input that ends mid-construct (or an indented block) keeps
// reading continuation lines until a blank line closes the block.
func readBlock(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true // Ctrl+C: drop the partial input
		}

		multi := b.Len() > 0
		if multi {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		src := b.String()

		if incompleteInput(src) {
			continue
		}
		if multi && strings.TrimSpace(line) != "" {
			continue // inside a block; a blank line ends it
		}
		return src, true
	}
}

func incompleteInput(src string) bool {
	_, err := pithon.Parse(src)
	var perr *pithon.ParseError
	return errors.As(err, &perr) && perr.Incomplete
}
