package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rogersnm/taskdesk/internal/editor"
	"github.com/rogersnm/taskdesk/internal/form"
	"github.com/rogersnm/taskdesk/internal/id"
	"github.com/rogersnm/taskdesk/internal/markdown"
	"github.com/rogersnm/taskdesk/internal/model"
	"github.com/rogersnm/taskdesk/internal/view"
	"github.com/rogersnm/taskdesk/internal/viewmodel"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vm, err := newListViewModel(printerFor(cmd))
		if err != nil {
			return err
		}

		q := vm.Query()
		if q.Filters, err = filtersFromFlags(cmd); err != nil {
			return err
		}
		q.Search, _ = cmd.Flags().GetString("search")
		if cmd.Flags().Changed("sort") {
			sortStr, _ := cmd.Flags().GetString("sort")
			if q.Sort, err = view.ParseSortSpec(sortStr); err != nil {
				return err
			}
		}
		if desc, _ := cmd.Flags().GetBool("desc"); desc {
			if !q.Sort.Active() {
				q.Sort.Field = view.FieldID
			}
			q.Sort.Order = view.Desc
		}
		vm.SetQuery(q)

		if err := vm.Refresh(cmd.Context()); err != nil {
			return err
		}
		p := vm.Projection()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p.Rows)
		}
		fmt.Fprintln(cmd.OutOrStdout(), markdown.RenderRecordTable(p, q.Sort))
		return nil
	},
}

func filtersFromFlags(cmd *cobra.Command) (view.Filters, error) {
	var f view.Filters
	statusStr, _ := cmd.Flags().GetString("status")
	p, err := model.ParseProcess(statusStr)
	if err != nil {
		return f, err
	}
	priorityStr, _ := cmd.Flags().GetString("priority")
	pr, err := model.ParsePriority(priorityStr)
	if err != nil {
		return f, err
	}
	return view.Filters{Process: p, Priority: pr}, nil
}

var createCmd = &cobra.Command{
	Use:   "create [task]",
	Long:  "Create a task from the argument, from piped stdin, or with a form in a terminal.",
	Short: "Create a new task",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vm, err := newListViewModel(printerFor(cmd))
		if err != nil {
			return err
		}

		var in model.RecordInput
		switch {
		case len(args) == 1:
			in, err = inputFromFlags(cmd, args[0])
		case interactive():
			in, err = form.Run("New task", &form.Values{})
		default:
			in, err = inputFromFlags(cmd, strings.TrimSpace(readStdin(cmd.InOrStdin())))
		}
		if errors.Is(err, viewmodel.ErrCancelled) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
		if err != nil {
			return err
		}

		_, err = vm.Create(cmd.Context(), in)
		return err
	},
}

func inputFromFlags(cmd *cobra.Command, task string) (model.RecordInput, error) {
	f, err := filtersFromFlags(cmd)
	if err != nil {
		return model.RecordInput{}, err
	}
	return model.RecordInput{Task: task, Process: f.Process, Priority: f.Priority}, nil
}

// readStdin returns piped input, or "" when r is a terminal or empty.
func readStdin(r io.Reader) string {
	if f, ok := r.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return ""
		}
		if info.Mode()&os.ModeNamedPipe == 0 && info.Size() == 0 {
			return ""
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return string(data)
}

// loadRecord fetches the snapshot and returns the record named by arg.
func loadRecord(cmd *cobra.Command, vm *viewmodel.ListViewModel, arg string) (model.Record, error) {
	recID, err := id.Parse(arg)
	if err != nil {
		return model.Record{}, err
	}
	if err := vm.Refresh(cmd.Context()); err != nil {
		return model.Record{}, err
	}
	r, ok := vm.Find(recID)
	if !ok {
		return model.Record{}, fmt.Errorf("%w: %s", viewmodel.ErrNotFound, id.Format(recID))
	}
	return r, nil
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vm, err := newListViewModel(printerFor(cmd))
		if err != nil {
			return err
		}
		r, err := loadRecord(cmd, vm, args[0])
		if err != nil {
			return err
		}

		if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
			out, err := markdown.RenderRecord(r)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}
		data, err := markdown.Marshal(r, "")
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vm, err := newListViewModel(printerFor(cmd))
		if err != nil {
			return err
		}

		if useForm, _ := cmd.Flags().GetBool("interactive"); useForm {
			r, err := loadRecord(cmd, vm, args[0])
			if err != nil {
				return err
			}
			in, err := form.Run(fmt.Sprintf("Edit task %s", id.Format(r.ID)), form.FromRecord(r))
			if errors.Is(err, viewmodel.ErrCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			if err != nil {
				return err
			}
			next := r
			next.Task, next.Process, next.Priority = in.Task, in.Process, in.Priority
			return applyPatch(cmd, vm, r.ID, model.Diff(r, next))
		}

		recID, err := id.Parse(args[0])
		if err != nil {
			return err
		}
		patch := model.RecordPatch{}
		if cmd.Flags().Changed("task") {
			task, _ := cmd.Flags().GetString("task")
			patch.Task = &task
		}
		if cmd.Flags().Changed("status") {
			statusStr, _ := cmd.Flags().GetString("status")
			p, err := model.ParseProcess(statusStr)
			if err != nil {
				return err
			}
			patch.Process = &p
		}
		if cmd.Flags().Changed("priority") {
			priorityStr, _ := cmd.Flags().GetString("priority")
			p, err := model.ParsePriority(priorityStr)
			if err != nil {
				return err
			}
			patch.Priority = &p
		}
		if patch.Empty() {
			return fmt.Errorf("at least one update flag is required (--task, --status, --priority, or -i)")
		}
		_, err = vm.Update(cmd.Context(), recID, patch)
		return err
	},
}

func applyPatch(cmd *cobra.Command, vm *viewmodel.ListViewModel, recID int, patch model.RecordPatch) error {
	_, err := vm.Update(cmd.Context(), recID, patch)
	if errors.Is(err, viewmodel.ErrNoChanges) {
		fmt.Fprintln(cmd.OutOrStdout(), "No changes")
		return nil
	}
	return err
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task in $EDITOR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vm, err := newListViewModel(printerFor(cmd))
		if err != nil {
			return err
		}
		r, err := loadRecord(cmd, vm, args[0])
		if err != nil {
			return err
		}
		next, err := editor.EditRecord(r)
		if err != nil {
			return err
		}
		return applyPatch(cmd, vm, r.ID, model.Diff(r, next))
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vm, err := newListViewModel(printerFor(cmd))
		if err != nil {
			return err
		}
		recID, err := id.Parse(args[0])
		if err != nil {
			return err
		}

		confirm := form.Confirmer
		if force, _ := cmd.Flags().GetBool("force"); force {
			confirm = viewmodel.Always
		} else {
			if !interactive() {
				return fmt.Errorf("refusing to delete without confirmation; pass --force")
			}
			// load the snapshot so the prompt can show the task text
			if _, err := loadRecord(cmd, vm, args[0]); err != nil {
				return err
			}
		}

		err = vm.Delete(cmd.Context(), recID, confirm)
		if errors.Is(err, viewmodel.ErrCancelled) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
		return err
	},
}

func init() {
	listCmd.Flags().StringP("status", "s", "", "filter by status (Done, \"In process\", Cancel)")
	listCmd.Flags().StringP("priority", "p", "", "filter by priority (Normal, High, Low)")
	listCmd.Flags().StringP("search", "q", "", "case-insensitive search in task text")
	listCmd.Flags().String("sort", "", "sort column and direction, e.g. task or id:desc")
	listCmd.Flags().Bool("desc", false, "sort descending")
	listCmd.Flags().Bool("json", false, "print rows as JSON")

	createCmd.Flags().StringP("status", "s", "", "status (Done, \"In process\", Cancel)")
	createCmd.Flags().StringP("priority", "p", "", "priority (Normal, High, Low)")

	showCmd.Flags().Bool("pretty", false, "render with ANSI styling")

	updateCmd.Flags().String("task", "", "new task text")
	updateCmd.Flags().StringP("status", "s", "", "new status (empty to clear)")
	updateCmd.Flags().StringP("priority", "p", "", "new priority (empty to clear)")
	updateCmd.Flags().BoolP("interactive", "i", false, "edit in a form")

	deleteCmd.Flags().BoolP("force", "f", false, "skip confirmation")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
}
