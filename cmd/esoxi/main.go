/*
Esoxi starts an interactive analysis session.

It builds a frontend from a language definition file and then reads source
text from stdin line by line, printing the parse tree of each line along with
any lexical or syntax errors found while recognizing it. If no language file
is given, a small built-in array-initializer language is used, and each
recognized initializer is additionally translated to a compact string form.

Usage:

	esoxi [flags]

The flags are:

	-v, --version
		Give the current version of esoxi and then exit.

	-L, --lang FILE
		Build the frontend from the provided ESOX language definition file
		instead of the built-in demonstration language.

	-t, --tree
		Print the full leveled parse tree of each line instead of the
		single-line form.

	-T, --tokens
		Print each token as it is lexed, before the parse tree.

	--sets
		Print the grammar's prediction sets before starting the session.

	-c, --config FILE
		Read session settings (prompt text, history file) from the provided
		TOML config file.

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines for reading input even if launched in a tty
		with stdin and stdout.

To exit the session, type Ctrl-D at an empty prompt.
*/
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dekarrin/esox"
	"github.com/dekarrin/esox/internal/input"
	"github.com/dekarrin/esox/internal/langdef"
	"github.com/dekarrin/esox/internal/version"
	"github.com/dekarrin/esox/lex"
	"github.com/dekarrin/esox/parse"
	"github.com/dekarrin/esox/walk"
	"github.com/spf13/pflag"
)

const (

	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitSessionError indicates an unsuccessful program execution due to a
	// problem during the session.
	ExitSessionError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue building the frontend.
	ExitInitError
)

var (
	returnCode = ExitSuccess

	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of esoxi and then exit.")
	flagLang    = pflag.StringP("lang", "L", "", "Build the frontend from the given ESOX language definition file.")
	flagTree    = pflag.BoolP("tree", "t", false, "Print the full leveled parse tree of each line.")
	flagTokens  = pflag.BoolP("tokens", "T", false, "Print each token as it is lexed, before the parse tree.")
	flagSets    = pflag.Bool("sets", false, "Print the grammar's prediction sets before starting the session.")
	flagConfig  = pflag.StringP("config", "c", "", "Read session settings from the given TOML config file.")
	flagDirect  = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible.")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic("unrecoverable panic occured")
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg, err := loadConfig(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	var lang langdef.Language
	if *flagLang != "" {
		lang, err = langdef.LoadFile(*flagLang)
	} else {
		lang, err = builtinLanguage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	fmt.Println(sessionBanner(lang.Frontend))

	if *flagSets {
		fmt.Println(lang.Grammar.Analyze().DescribeSets())
	}

	if *flagTokens {
		lang.Frontend.Lexer.RegisterTokenListener(func(tok lex.Token) {
			fmt.Printf("  %d:%d %s\n", tok.Line(), tok.LinePos(), tok.String())
		})
	}

	lineReader, err := makeLineReader(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer lineReader.Close()

	if runErr := runSession(lang, lineReader); runErr != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", runErr.Error())
		returnCode = ExitSessionError
		return
	}
}

func makeLineReader(cfg sessionConfig) (input.LineReader, error) {
	if !*flagDirect {
		ilr, err := input.NewInteractiveReader(cfg.Prompt, cfg.History)
		if err == nil {
			return ilr, nil
		}
		// fall through to direct mode; err here just means no usable tty.
	}
	return input.NewDirectReader(os.Stdin), nil
}

// sessionBanner describes the loaded frontend in one line.
func sessionBanner(fe esox.Frontend) string {
	banner := fmt.Sprintf("esoxi v%s, language %s", version.Current, fe.Language)
	if fe.Version != "" {
		banner += " v" + fe.Version
	}
	return banner
}

func runSession(lang langdef.Language, lines input.LineReader) error {
	for {
		line, err := lines.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		tree, errs := lang.Frontend.AnalyzeString(line)
		for _, analysisErr := range errs {
			fmt.Println(fullMessageOf(analysisErr))
		}
		if tree == nil {
			continue
		}

		if *flagTree {
			fmt.Println(tree.String())
		} else {
			fmt.Println(tree.SExpr())
		}

		if lang.Name == builtinLanguageName && len(errs) == 0 {
			fmt.Printf("translated: %s\n", translateInit(tree))
		}
	}
}

// fullMessageOf uses the richer multi-line rendering for the error types
// that have one.
func fullMessageOf(err error) string {
	switch e := err.(type) {
	case parse.SyntaxError:
		return e.FullMessage()
	case interface{ FullMessage() string }:
		return e.FullMessage()
	}
	return err.Error()
}

// translateInit rewrites an array initializer tree as string-literal text
// whose characters are the initializer's integers, each spelled as a \uXXXX
// escape. Every initializer contributes a pair of double quotes, so nested
// initializers become nested quoted strings.
func translateInit(tree *parse.Tree) string {
	var out strings.Builder

	w := walk.New(tree)
	w.Walk(walk.Listener{
		Enter: walk.HookMap{
			builtinRuleInit: func(node *parse.Tree) {
				out.WriteRune('"')
			},
		},
		Exit: walk.HookMap{
			builtinRuleInit: func(node *parse.Tree) {
				out.WriteRune('"')
			},
		},
		Terminal: func(node *parse.Tree) {
			if node.Value == builtinTermInt && node.Source != nil {
				var n int
				fmt.Sscanf(node.Source.Lexeme(), "%d", &n)
				fmt.Fprintf(&out, `\u%04x`, n)
			}
		},
	})

	return out.String()
}
