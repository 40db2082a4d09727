// Package main implements the taskapp terminal task list.
package main

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nissyi-gh/taskapp/internal/app"
	"github.com/nissyi-gh/taskapp/internal/reminder"
	"github.com/nissyi-gh/taskapp/internal/store"
	"github.com/nissyi-gh/taskapp/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type rootFlags struct {
	db     string
	config string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	cmd := &cobra.Command{
		Use:   "taskapp",
		Short: "A dated task list with category search and reminders",
		Long: `taskapp keeps a list of dated tasks sorted by date.

Run without arguments to open the interactive list. Press / to search by
category, a to add, enter to edit, d to delete.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(&flags)
		},
	}
	cmd.PersistentFlags().StringVar(&flags.db, "db", "", "database path (default $XDG_DATA_HOME/taskapp/taskapp.db)")
	cmd.PersistentFlags().StringVar(&flags.config, "config", "", "config file (default $XDG_CONFIG_HOME/taskapp/config.toml)")

	cmd.AddCommand(
		newAddCmd(&flags),
		newListCmd(&flags),
		newShowCmd(&flags),
		newEditCmd(&flags),
		newDeleteCmd(&flags),
		newImportCmd(&flags),
		newExportCmd(&flags),
		newPromptCmd(&flags),
		newRemindersCmd(&flags),
	)
	return cmd
}

func runTUI(flags *rootFlags) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("standard output is not a terminal; use a subcommand such as list")
	}

	// The program does not exist yet when reminders are wired.
	var program atomic.Pointer[tea.Program]
	notify := func(r reminder.Request) {
		if p := program.Load(); p != nil {
			p.Send(ui.ReminderMsg(r))
		}
	}

	sess, closeLog, err := openSession(flags, notify)
	if err != nil {
		return err
	}
	defer closeLog()
	defer sess.Close()

	p := tea.NewProgram(ui.NewModel(sess), tea.WithAltScreen())
	program.Store(p)

	unsubscribe := sess.Store.Subscribe(func(store.Change) {
		// Subscribers run inside Update; Send would block on the event loop.
		go p.Send(ui.ChangedMsg{})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

// openSession loads the config, opens the log file and opens a session.
// The returned function closes the log file; the caller closes the session.
func openSession(flags *rootFlags, notify func(reminder.Request)) (*app.Session, func() error, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}
	log, closeLog, err := app.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	sess, err := app.Open(app.Options{
		Config: cfg,
		DBPath: flags.db,
		Notify: notify,
		Logger: log,
	})
	if err != nil {
		return nil, nil, errors.Join(err, closeLog())
	}
	return sess, closeLog, nil
}
