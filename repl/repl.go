// Package repl implements the line-oriented collaborator that sits in
// front of a storage.Table: it tokenizes meta-commands and insert/select
// statements, translates parse failures into user-facing messages, and
// drives the table without ever touching a page itself.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"go.uber.org/zap"

	"minidb/record"
	"minidb/storage"
)

// MetaCommandResult reports the outcome of handling a line starting
// with '.'.
type MetaCommandResult int

const (
	MetaCommandSuccess MetaCommandResult = iota
	MetaCommandUnrecognized
	MetaCommandExit
)

// PrepareResult reports the outcome of tokenizing a statement line.
type PrepareResult int

const (
	PrepareSuccess PrepareResult = iota
	PrepareUnrecognizedStatement
	PrepareSyntaxError
	PrepareStringTooLong
	PrepareNegativeID
)

// StatementType distinguishes the two statements this collaborator
// understands.
type StatementType int

const (
	StatementInsert StatementType = iota
	StatementSelect
)

// Statement is a fully parsed, not-yet-executed input line.
type Statement struct {
	Type StatementType
	Row  record.Record
}

var errPrompt = color.New(color.FgRed)

// Run reads lines from in until EOF or a ".exit" meta-command, writing
// prompts, results, and error text to out. It returns nil on a clean
// exit and a non-nil error only for an I/O failure on in.
func Run(t *storage.Table, in io.Reader, out io.Writer) error {
	return RunLogged(t, in, out, zap.NewNop())
}

// RunLogged is Run with an explicit logger for diagnostic events (page
// faults surfaced as storage.ErrNotImplemented, etc).
func RunLogged(t *storage.Table, in io.Reader, out io.Writer, log *zap.Logger) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "db > ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		exit := handleLine(t, out, log, scanner.Text())
		if exit {
			return nil
		}
	}
}

// RunInteractive is the terminal-facing counterpart to Run: it drives
// the same line handling through a chzyer/readline instance, which
// supplies line editing and history instead of a bare scanner loop.
// The prompt and history file are configured on rl by the caller.
func RunInteractive(t *storage.Table, rl *readline.Instance, log *zap.Logger) error {
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return nil
		}
		if handleLine(t, rl.Stdout(), log, line) {
			return nil
		}
	}
}

func handleLine(t *storage.Table, out io.Writer, log *zap.Logger, line string) (exit bool) {
	if line == "" {
		return false
	}

	if strings.HasPrefix(line, ".") {
		switch handleMetaCommand(t, out, line) {
		case MetaCommandExit:
			return true
		case MetaCommandUnrecognized:
			fmt.Fprintf(out, "Unrecognized command %q.\n", line)
		}
		return false
	}

	var stmt Statement
	switch prepareStatement(line, &stmt) {
	case PrepareSyntaxError:
		fmt.Fprintln(out, "Syntax error. Could not parse statement.")
		return false
	case PrepareStringTooLong:
		fmt.Fprintln(out, "String is too long.")
		return false
	case PrepareNegativeID:
		fmt.Fprintln(out, "ID must be positive.")
		return false
	case PrepareUnrecognizedStatement:
		fmt.Fprintf(out, "Unrecognized keyword at start of %q.\n", line)
		return false
	}

	if err := executeStatement(t, out, &stmt); err != nil {
		log.Debug("statement execution failed", zap.Error(err))
	}
	return false
}

func handleMetaCommand(t *storage.Table, out io.Writer, line string) MetaCommandResult {
	switch strings.TrimSpace(line) {
	case ".exit":
		return MetaCommandExit
	case ".btree":
		fmt.Fprintln(out, "Tree:")
		if err := t.PrintTree(out); err != nil {
			fmt.Fprintln(out, errPrompt.Sprintf("Error: %v", err))
		}
		return MetaCommandSuccess
	case ".constants":
		fmt.Fprintln(out, "Constants:")
		storage.PrintConstants(out)
		return MetaCommandSuccess
	default:
		return MetaCommandUnrecognized
	}
}

// prepareStatement tokenizes cmd into stmt. The "insert " prefix
// requires the trailing space explicitly and "select" must be the
// whole line — a bare "selection" or "inserted" must not match.
func prepareStatement(cmd string, stmt *Statement) PrepareResult {
	switch {
	case strings.HasPrefix(cmd, "insert "):
		return prepareInsert(cmd, stmt)
	case cmd == "select":
		stmt.Type = StatementSelect
		return PrepareSuccess
	default:
		return PrepareUnrecognizedStatement
	}
}

func prepareInsert(cmd string, stmt *Statement) PrepareResult {
	stmt.Type = StatementInsert

	fields := strings.Fields(cmd)
	if len(fields) != 4 {
		return PrepareSyntaxError
	}
	idField := fields[1]
	if strings.HasPrefix(idField, "-") {
		return PrepareNegativeID
	}
	id, err := strconv.ParseUint(idField, 10, 32)
	if err != nil {
		return PrepareSyntaxError
	}

	username, email := fields[2], fields[3]
	if len(username) > record.UsernameMaxLen || len(email) > record.EmailMaxLen {
		return PrepareStringTooLong
	}

	stmt.Row = record.Record{Key: uint32(id), Username: username, Email: email}
	return PrepareSuccess
}

func executeStatement(t *storage.Table, out io.Writer, stmt *Statement) error {
	switch stmt.Type {
	case StatementInsert:
		return executeInsert(t, out, stmt)
	case StatementSelect:
		return executeSelect(t, out)
	default:
		return fmt.Errorf("repl: unknown statement type %d", stmt.Type)
	}
}

func executeInsert(t *storage.Table, out io.Writer, stmt *Statement) error {
	err := t.Insert(stmt.Row.Key, stmt.Row)
	switch {
	case err == nil:
		fmt.Fprintln(out, "Executed.")
		return nil
	case errors.Is(err, storage.ErrDuplicateKey):
		fmt.Fprintln(out, errPrompt.Sprint("Error: Duplicate key."))
		return nil
	case errors.Is(err, storage.ErrTableFull):
		fmt.Fprintln(out, errPrompt.Sprint("Error: Table full."))
		return nil
	default:
		fmt.Fprintln(out, errPrompt.Sprintf("Error: %v", err))
		return err
	}
}

func executeSelect(t *storage.Table, out io.Writer) error {
	err := t.Scan(func(key uint32, rec record.Record) error {
		fmt.Fprintf(out, "(%d, %s, %s)\n", key, rec.Username, rec.Email)
		return nil
	})
	if err != nil {
		fmt.Fprintln(out, errPrompt.Sprintf("Error: %v", err))
		return err
	}
	fmt.Fprintln(out, "Executed.")
	return nil
}
