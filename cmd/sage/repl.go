package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/sagelang/sage"
	"github.com/sagelang/sage/pkg/sage/natives"
)

const prompt = "sage> "
const continuationPrompt = "   .. "

// completionWords seeds tab completion with Sage's reserved identifiers
// plus every documented native, grounded on the teacher's repl.go
// completionWords list, trimmed to this language's own keyword set.
var completionWords = []string{
	"LET", "DEF", "IF", "ELSE", "FOR", "IN", "DO", "END", "RETURN",
	"TRUE", "FALSE", "NIL", "AND", "OR", "OBJECT",
	"Nil", "Boolean", "Integer", "Decimal", "String", "Character",
	"Any", "Equatable", "Comparable", "Iterable",
}

func init() {
	completionWords = append(completionWords, natives.Names()...)
	sort.Strings(completionWords)
}

// runREPL evaluates one statement (or run of statements, for multi-line
// OBJECT/DEF/IF/FOR bodies) at a time against a value scope that
// persists across the session — trimmed from the teacher's
// pkg/parsley/repl/repl.go to evaluate-and-print, with no module/import
// system to wire up.
func runREPL() {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		var matches []string
		upper := strings.ToUpper(partial)
		for _, w := range completionWords {
			if strings.HasPrefix(strings.ToUpper(w), upper) {
				matches = append(matches, w)
			}
		}
		return matches
	})

	historyFile := filepath.Join(os.TempDir(), ".sage_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	logger := sage.StdoutLogger()
	scope := sage.NewValueScope(logger)

	fmt.Printf("sage %s — type ':help' for REPL commands, 'exit' or Ctrl+D to quit\n", Version)

	var buffer strings.Builder
	for {
		p := prompt
		if buffer.Len() > 0 {
			p = continuationPrompt
		}
		input, err := line.Prompt(p)
		if err != nil {
			if err == liner.ErrPromptAborted {
				buffer.Reset()
				fmt.Println("^C")
				continue
			}
			if err == io.EOF {
				fmt.Println()
				return
			}
			fmt.Fprintln(os.Stderr, "sage:", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if buffer.Len() == 0 {
			switch trimmed {
			case "exit", "quit":
				return
			case "":
				continue
			}
			if strings.HasPrefix(trimmed, ":") {
				handleCommand(trimmed)
				continue
			}
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(input)

		if needsMoreInput(buffer.String()) {
			continue
		}

		line.AppendHistory(buffer.String())
		evalAndPrint(buffer.String(), scope, logger)
		buffer.Reset()
	}
}

func evalAndPrint(source string, scope *sage.ValueScope, logger sage.Logger) {
	tokens, err := sage.Lex(source)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return
	}
	tree, err := sage.Parse(tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return
	}
	value, evalErr := sage.Evaluate(tree, scope, logger)
	if evalErr != nil {
		fmt.Fprintln(os.Stderr, evalErr.Error())
		return
	}
	if value != nil {
		fmt.Println(value.Print())
	}
}

// needsMoreInput reports whether input has an unmatched DO…END pair, so
// the REPL can accept DEF/IF/FOR/OBJECT bodies across multiple lines.
func needsMoreInput(input string) bool {
	depth := 0
	for _, word := range strings.Fields(input) {
		switch strings.ToUpper(word) {
		case "DO":
			depth++
		case "END":
			depth--
		}
	}
	return depth > 0
}

func handleCommand(cmd string) {
	switch {
	case cmd == ":help":
		fmt.Println("REPL commands:")
		fmt.Println("  :help              show this help")
		fmt.Println("  :describe <name>   show a native function's signature and summary")
		fmt.Println("  exit, quit         leave the REPL")
	case strings.HasPrefix(cmd, ":describe"):
		name := strings.TrimSpace(strings.TrimPrefix(cmd, ":describe"))
		doc, ok := natives.Describe(name)
		if !ok {
			fmt.Printf("no native function named %q\n", name)
			return
		}
		fmt.Printf("%s(%s) — %s\n", doc.Name, strings.Join(doc.Params, ", "), doc.Summary)
	default:
		fmt.Printf("unknown command %q (try :help)\n", cmd)
	}
}
