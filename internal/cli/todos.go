package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/todosync/internal/model"
	"github.com/idilsaglam/todosync/internal/ui"
)

func newListCmd(setup setupFunc) *cobra.Command {
	var (
		filter string
		group  bool
		output string
	)
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List todos",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := model.ParseFilter(filter)
			if err != nil {
				return usageError{err}
			}
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := a.svc.Load(cmd.Context()); err != nil {
				return err
			}
			a.svc.SetFilter(f)
			return printTodos(cmd.OutOrStdout(), a.store.Snapshot().Todos, a.store.Visible(), f, group, output)
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "show all, active or completed todos")
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")
	return cmd
}

func printTodos(w io.Writer, all, visible []model.Todo, f model.Filter, group bool, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(visible)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(visible)
	case "table", "":
	default:
		return usagef("unknown output format %q (want table, json or yaml)", output)
	}

	t := ui.Current()
	d, p := model.Stats(all)
	lines := []string{
		ui.Header(all, f),
		t.Muted.Render(ui.ProgressBar(d, d+p, 28)),
		"",
	}
	if len(visible) == 0 {
		lines = append(lines, t.Muted.Render("No todos found"))
	} else {
		lines = append(lines, ui.ListLines(visible, group)...)
	}
	lines = append(lines, "", t.Muted.Render("Tip: add with `todo add \"Buy milk\"`"))
	_, err := fmt.Fprintln(w, ui.Panel(strings.Join(lines, "\n")))
	return err
}

func newAddCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a new todo (title can be multiple words)",
		Args:  minArgs(1, "usage: todo add <title...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return usagef("add: empty title")
			}
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			t, err := a.svc.Create(cmd.Context(), title)
			if err != nil {
				return err
			}
			ui.OK(fmt.Sprintf("Todo created successfully (#%d)", t.ID))
			return nil
		},
	}
}

func newDoneCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle completion of a todo",
		Args:  exactID("usage: todo done <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := strconv.Atoi(args[0])
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := a.svc.Load(cmd.Context()); err != nil {
				return err
			}
			t, err := a.svc.Toggle(cmd.Context(), id)
			if err != nil {
				return err
			}
			state := "active"
			if t.Completed {
				state = "completed"
			}
			ui.OK(fmt.Sprintf("Todo #%d marked as %s", t.ID, state))
			return nil
		},
	}
}

func newEditCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <title...>",
		Short: "Change the title of a todo",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return usagef("usage: todo edit <id> <title...>")
			}
			return exactID("usage: todo edit <id> <title...>")(cmd, args[:1])
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := strconv.Atoi(args[0])
			title := strings.TrimSpace(strings.Join(args[1:], " "))
			if title == "" {
				return usagef("edit: empty title")
			}
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := a.svc.Load(cmd.Context()); err != nil {
				return err
			}
			if _, err := a.svc.Rename(cmd.Context(), id, title); err != nil {
				return err
			}
			ui.OK("Todo title has been updated successfully")
			return nil
		},
	}
}

func newRemoveCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    exactID("usage: todo rm <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := strconv.Atoi(args[0])
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := a.svc.Delete(cmd.Context(), id); err != nil {
				return err
			}
			ui.OK("Todo has been removed successfully")
			return nil
		},
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("%s takes no arguments", cmd.Name())
	}
	return nil
}

func minArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usagef("%s", usage)
		}
		return nil
	}
}

func exactID(usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return usagef("%s", usage)
		}
		if _, err := strconv.Atoi(args[0]); err != nil {
			return usagef("%s: not a number: %s", cmd.Name(), args[0])
		}
		return nil
	}
}
