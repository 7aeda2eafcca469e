package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xplshn/glex/pkg/cli"
	"github.com/xplshn/glex/pkg/codegen"
	"github.com/xplshn/glex/pkg/config"
	"github.com/xplshn/glex/pkg/lexer"
	"github.com/xplshn/glex/pkg/lexfile"
	"github.com/xplshn/glex/pkg/util"
)

func main() {
	app := cli.NewApp("glex")
	app.Synopsis = "[options] <spec.lex> [input ...]"
	app.Description = "Compiles a prioritized list of token definitions into a table-driven lexer. The longest match wins, and among equally long matches the token declared first."
	app.Authors = []string{"xplshn"}
	app.Repository = "<https://github.com/xplshn/glex>"
	app.Since = 2025

	var (
		outFile   string
		target    string
		pkgName   string
		lexName   string
		maxRepeat int
		maxStates int
		tokens    bool
		quiet     bool
		ignored   []string
		defines   []string
	)

	fs := app.FlagSet
	fs.String(&outFile, "output", "o", "", "Place the output into <file> instead of stdout.", "file")
	fs.String(&target, "target", "t", "go", "Set the output backend (go, dot, nfa, json).", "backend")
	fs.String(&pkgName, "package", "p", "lexer", "Package name of the generated Go file.", "name")
	fs.String(&lexName, "name", "n", "Lexer", "Prefix of the generated Go identifiers.", "name")
	fs.Int(&maxRepeat, "max-repeat", "", config.DefaultMaxRepeat, "Largest bound accepted in {m,n}.", "n")
	fs.Int(&maxStates, "max-states", "", config.DefaultMaxStates, "Refuse definitions whose DFA needs more states.", "n")
	fs.Bool(&tokens, "tokens", "k", false, "Tokenize the inputs (or stdin) and print the tokens instead of generating.")
	fs.Bool(&quiet, "quiet", "q", false, "Do not print progress information.")
	fs.List(&ignored, "ignore", "i", nil, "Ignore the named token as if it were declared with '-'.", "name")
	fs.Special(&defines, "D", "Declare an extra token after those of the file.", "NAME=PATTERN")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)

	app.Action = func(args []string) error {
		cfg.ApplyFlagGroups(warningFlags, featureFlags)
		cfg.MaxRepeat, cfg.MaxStates = maxRepeat, maxStates
		cfg.Backend, cfg.PackageName, cfg.LexerName = target, pkgName, lexName
		if err := cfg.Validate(); err != nil {
			util.Fatal(app.Name, "%v", err)
		}
		if len(args) == 0 {
			util.Fatal(app.Name, "no definition file specified.")
		}

		specPath := args[0]
		content, err := os.ReadFile(specPath)
		if err != nil {
			util.Fatal(app.Name, "could not read file '%s': %v", specPath, err)
		}
		defs, err := lexfile.Parse(bytes.NewReader(content))
		if err != nil {
			util.Fatal(app.Name, "%s: %v", specPath, err)
		}
		if defs, err = extendDefinitions(defs, defines, ignored); err != nil {
			util.Fatal(app.Name, "%v", err)
		}

		rep := util.NewReporter(os.Stderr)
		lx, ds := lexer.Build(defs, cfg)
		rep.Diagnostics(util.SourceFileRecord{Name: specPath, Content: content}, ds)
		if lx == nil {
			os.Exit(1)
		}
		if !quiet {
			rep.Info(app.Name, "%d token(s), %d DFA state(s)", lx.Registry().Len(), lx.Table().NumStates())
		}

		if tokens {
			if tokenizeInputs(lx, cfg, rep, args[1:]) {
				os.Exit(1)
			}
			return nil
		}

		backend, err := codegen.Select(cfg.Backend)
		if err != nil {
			util.Fatal(app.Name, "%v", err)
		}
		out, err := backend.Generate(lx, cfg)
		if err != nil {
			util.Fatal(app.Name, "backend '%s' failed: %v", cfg.Backend, err)
		}
		if err := writeOutput(outFile, out.Bytes()); err != nil {
			util.Fatal(app.Name, "%v", err)
		}
		if !quiet && outFile != "" {
			rep.Info(app.Name, "wrote '%s'", outFile)
		}
		return nil
	}

	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// tokenizeInputs prints the tokens of every input and reports whether any
// input held unrecognized bytes.
func tokenizeInputs(lx *lexer.Lexer, cfg *config.Config, rep *util.Reporter, paths []string) (failed bool) {
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	if len(paths) == 0 {
		paths = []string{"-"}
	}
	for _, path := range paths {
		var content []byte
		var err error
		if path == "-" {
			content, err = io.ReadAll(os.Stdin)
			path = "<stdin>"
		} else {
			content, err = os.ReadFile(path)
		}
		if err != nil {
			util.Fatal("glex", "could not read file '%s': %v", path, err)
		}

		stream := lx.Tokenize(content, path)
		for _, tok := range stream.Tokens {
			fmt.Fprintf(w, "%s:%d:%d\t%s\t%q\n", path, tok.Line, tok.Column, lx.TokenName(tok.ID), tok.Lexeme)
		}
		if stream.HasErrors() {
			failed = true
			if cfg.IsWarningEnabled(config.WarnUnmatched) {
				w.Flush()
				rep.LexicalErrors(util.SourceFileRecord{Name: path, Content: content}, stream)
			}
		}
	}
	return failed
}

// extendDefinitions appends the -D definitions and applies --ignore.
func extendDefinitions(defs []lexer.Definition, defines, ignored []string) ([]lexer.Definition, error) {
	for _, d := range defines {
		name, pattern, ok := strings.Cut(d, "=")
		if !ok {
			return nil, fmt.Errorf("-D%s: want NAME=PATTERN", d)
		}
		defs = append(defs, lexer.Definition{Name: name, Pattern: pattern})
	}
	for _, name := range ignored {
		found := false
		for i := range defs {
			if defs[i].Name == name {
				defs[i].Ignore, found = true, true
			}
		}
		if !found {
			return nil, fmt.Errorf("--ignore: no token named '%s'", name)
		}
	}
	return defs, nil
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return nil
}
