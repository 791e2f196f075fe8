// Command minidb opens a single database file and drives an
// interactive REPL against it until ".exit", EOF, or a terminating
// signal.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"go.uber.org/zap"

	"minidb/repl"
	"minidb/storage"
)

func main() {
	os.Exit(run())
}

func run() int {
	debug := flag.Bool("debug", false, "enable verbose development logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-debug] <path-to-db-file>\n", os.Args[0])
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		return 1
	}
	path := flag.Arg(0)

	log, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "minidb: logger init: %v\n", err)
		return 1
	}
	defer log.Sync()

	table, err := storage.Open(path, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "minidb: open %s: %v\n", path, err)
		return 1
	}

	closeTable := onceCloser(table)
	done := make(chan struct{})
	defer close(done)
	go closeOnSignal(closeTable, done, log)

	prompt := color.New(color.FgCyan, color.Bold).Sprint("db > ")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      prompt,
		HistoryFile: historyPath(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "minidb: readline init: %v\n", err)
		closeTable()
		return 1
	}
	defer rl.Close()

	if err := repl.RunInteractive(table, rl, log); err != nil {
		fmt.Fprintf(os.Stderr, "minidb: %v\n", err)
	}

	if err := closeTable(); err != nil {
		fmt.Fprintf(os.Stderr, "minidb: close: %v\n", err)
		return 1
	}
	return 0
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// onceCloser wraps table.Close so that however many call sites reach
// for it — the normal REPL-exit path and the signal handler both do —
// only the first call actually flushes and closes the pager. Without
// this, a terminating signal arriving around the same time as a
// normal ".exit"/EOF shutdown could run two Close calls concurrently,
// racing on the pager's page array and the underlying file.
func onceCloser(table *storage.Table) func() error {
	var once sync.Once
	var err error
	return func() error {
		once.Do(func() { err = table.Close() })
		return err
	}
}

// closeOnSignal waits for SIGINT/SIGTERM and closes the table before
// exiting the process — the only durability boundary this engine has
// is a clean close, so a bare os.Exit on Ctrl-C would silently drop
// everything still resident in the pager. It exits without acting if
// done is closed first, i.e. the REPL loop already returned and the
// main goroutine is handling (or has handled) the close itself.
func closeOnSignal(closeTable func() error, done <-chan struct{}, log *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutting down on signal", zap.String("signal", sig.String()))
		if err := closeTable(); err != nil {
			log.Error("close on signal failed", zap.Error(err))
			os.Exit(1)
		}
		os.Exit(0)
	case <-done:
		signal.Stop(sigCh)
	}
}

func historyPath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return dir + "/.minidb_history"
}
