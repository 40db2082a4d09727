package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/nissyi-gh/taskapp/internal/app"
	"github.com/nissyi-gh/taskapp/internal/config"
	"github.com/nissyi-gh/taskapp/internal/importer"
	"github.com/nissyi-gh/taskapp/internal/markdown"
	"github.com/nissyi-gh/taskapp/internal/model"
	"github.com/nissyi-gh/taskapp/internal/presenter"
	"github.com/nissyi-gh/taskapp/internal/prompt"
	"github.com/nissyi-gh/taskapp/internal/store"
	"github.com/spf13/cobra"
)

// shortIDLen is how much of an ID the list output shows.
const shortIDLen = 8

func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// withSession opens a session for one command and closes it afterwards.
func withSession(flags *rootFlags, fn func(*app.Session) error) (err error) {
	sess, closeLog, err := openSession(flags, nil)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, sess.Close(), closeLog())
	}()
	return fn(sess)
}

// resolveID returns the ID of the task matching arg exactly or by unique prefix.
func resolveID(sess *app.Session, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("empty task ID")
	}
	if _, err := sess.Store.Get(arg); err == nil {
		return arg, nil
	}

	var matches []string
	for t := range sess.Sorted.All() {
		if strings.HasPrefix(t.ID, arg) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("task %s: %w", arg, store.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("task ID prefix %s is ambiguous (%d matches)", arg, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func newAddCmd(flags *rootFlags) *cobra.Command {
	var title, category, contents, date string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := model.New()
			t.Title = strings.TrimSpace(title)
			t.Category = strings.TrimSpace(category)
			t.Contents = contents
			if date != "" {
				d, err := importer.ParseDate(date)
				if err != nil {
					return err
				}
				t.Date = d
			}
			return withSession(flags, func(sess *app.Session) error {
				created, err := sess.Create(t)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", created.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&category, "category", "c", "", "task category")
	cmd.Flags().StringVar(&contents, "contents", "", "task contents")
	cmd.Flags().StringVarP(&date, "date", "d", "", "task date, YYYY-MM-DD [HH:MM] (default now)")
	return cmd
}

type jsonTask struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Contents string    `json:"contents"`
	Date     time.Time `json:"date"`
}

func newListCmd(flags *rootFlags) *cobra.Command {
	var search string
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks by date",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(flags, func(sess *app.Session) error {
				sess.Presenter.SearchTextChanged(strings.TrimSpace(search))
				rows := sess.Presenter.Rows()
				out := cmd.OutOrStdout()

				if asJSON {
					list := make([]jsonTask, len(rows))
					for i, t := range rows {
						list[i] = jsonTask{ID: t.ID, Title: t.Title, Category: t.Category, Contents: t.Contents, Date: t.Date}
					}
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(list)
				}

				if len(rows) == 0 {
					fmt.Fprintln(out, "no tasks")
					return nil
				}
				return writeTable(out, rows, sess.Config.UI.DateFormat)
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only tasks whose category contains this text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeTable(w io.Writer, rows []model.Task, dateFormat string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tTITLE")
	for _, t := range rows {
		title := t.Title
		if title == "" {
			title = "(no title)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", shortID(t.ID), t.Date.Format(dateFormat), t.Category, title)
	}
	return tw.Flush()
}

func newShowCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(flags, func(sess *app.Session) error {
				id, err := resolveID(sess, args[0])
				if err != nil {
					return err
				}
				t, err := sess.Store.Get(id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "id:       %s\n", t.ID)
				fmt.Fprintf(out, "title:    %s\n", t.Title)
				fmt.Fprintf(out, "category: %s\n", t.Category)
				date := t.Date.Format(sess.Config.UI.DateFormat)
				if sess.Config.UI.ShowRelative {
					date += " (" + humanize.Time(t.Date) + ")"
				}
				fmt.Fprintf(out, "date:     %s\n", date)
				if contents := markdown.Render(80, t.Contents); contents != "" {
					fmt.Fprintf(out, "\n%s\n", contents)
				}
				return nil
			})
		},
	}
}

func newEditCmd(flags *rootFlags) *cobra.Command {
	var title, category, contents, date string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			if !changed("title") && !changed("category") && !changed("contents") && !changed("date") {
				return errors.New("nothing to change: pass --title, --category, --contents or --date")
			}
			return withSession(flags, func(sess *app.Session) error {
				id, err := resolveID(sess, args[0])
				if err != nil {
					return err
				}
				req, err := sess.Presenter.EditTask(id)
				if err != nil {
					return err
				}
				d := presenter.DraftOf(req.Task)
				if changed("title") {
					d.Title = strings.TrimSpace(title)
				}
				if changed("category") {
					d.Category = strings.TrimSpace(category)
				}
				if changed("contents") {
					d.Contents = contents
				}
				if changed("date") {
					if d.Date, err = importer.ParseDate(date); err != nil {
						return err
					}
				}
				saved, err := sess.Presenter.Save(req, d)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", saved.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category")
	cmd.Flags().StringVar(&contents, "contents", "", "new contents")
	cmd.Flags().StringVarP(&date, "date", "d", "", "new date, YYYY-MM-DD [HH:MM]")
	return cmd
}

func newDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(flags, func(sess *app.Session) error {
				id, err := resolveID(sess, args[0])
				if err != nil {
					return err
				}
				if err := sess.Presenter.Delete(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				return nil
			})
		},
	}
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import tasks from YAML (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			return withSession(flags, func(sess *app.Session) error {
				n, err := importer.Import(sess, string(data))
				if n > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "imported %d tasks\n", n)
				}
				return err
			})
		},
	}
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export all tasks as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(flags, func(sess *app.Session) error {
				return importer.Export(cmd.OutOrStdout(), sess.Sorted.All())
			})
		},
	}
}

func newPromptCmd(flags *rootFlags) *cobra.Command {
	var category string
	var toClipboard bool
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print an LLM prompt that produces importable YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(flags, func(sess *app.Session) error {
				text := prompt.GenerateNew()
				if category = strings.TrimSpace(category); category != "" {
					sess.Presenter.SearchTextChanged(category)
					text = prompt.GenerateForCategory(category, sess.Presenter.Rows())
				}
				if toClipboard {
					if err := clipboard.WriteAll(text); err != nil {
						return fmt.Errorf("copy prompt: %w", err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), "copied prompt to clipboard")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "suggest tasks for this category")
	cmd.Flags().BoolVar(&toClipboard, "copy", false, "copy to the clipboard instead of printing")
	return cmd
}

func newRemindersCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reminders",
		Short: "List reminders for upcoming tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(flags, func(sess *app.Session) error {
				out := cmd.OutOrStdout()
				if !sess.Config.Reminder.Enabled {
					fmt.Fprintln(out, "reminders are disabled")
					return nil
				}
				pending := sess.Reminders.Pending()
				if len(pending) == 0 {
					fmt.Fprintln(out, "no pending reminders")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tAT\tTITLE")
				for _, r := range pending {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", shortID(r.ID), r.At.Format(sess.Config.UI.DateFormat), r.Title)
				}
				return tw.Flush()
			})
		},
	}
}
