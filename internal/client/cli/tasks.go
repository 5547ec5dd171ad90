package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
)

// NewTasksCommand groups the task subcommands. All of them need a session.
func NewTasksCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"t"},
		Short:   "Manage your tasks",
	}

	cmd.AddCommand(newTasksListCommand(root))
	cmd.AddCommand(newTasksAddCommand(root))
	cmd.AddCommand(newTasksShowCommand(root))
	cmd.AddCommand(newTasksEditCommand(root))
	cmd.AddCommand(newTasksSetDoneCommand(root, "done", "Mark a task completed", true))
	cmd.AddCommand(newTasksSetDoneCommand(root, "undo", "Mark a task not completed", false))
	cmd.AddCommand(newTasksRemoveCommand(root))

	return cmd
}

func (o *RootOptions) showTask(cmd *cobra.Command, t *client.Task) error {
	if o.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), t)
	}
	return printTask(cmd.OutOrStdout(), t)
}

func newTasksListCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your tasks, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.authorized(func() error {
				tasks, err := root.api.ListTasks(cmd.Context())
				if err != nil {
					return err
				}
				if root.Format == "json" {
					if tasks == nil {
						tasks = []client.Task{}
					}
					return writeJSON(cmd.OutOrStdout(), tasks)
				}
				return printTasks(cmd.OutOrStdout(), tasks)
			})
		},
	}
}

func newTasksAddCommand(root *RootOptions) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.authorized(func() error {
				t, err := root.api.CreateTask(cmd.Context(), args[0], description)
				if err != nil {
					return err
				}
				return root.showTask(cmd, t)
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	return cmd
}

func newTasksShowCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.authorized(func() error {
				t, err := root.api.GetTask(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return root.showTask(cmd, t)
			})
		},
	}
}

// newTasksEditCommand changes only the fields whose flags were given. The
// server replaces every field on update, so the current task is read first.
func newTasksEditCommand(root *RootOptions) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a task's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			titleSet := cmd.Flags().Changed("title")
			descSet := cmd.Flags().Changed("description")
			if !titleSet && !descSet {
				return fmt.Errorf("nothing to change: pass --title and/or --description")
			}

			return root.authorized(func() error {
				cur, err := root.api.GetTask(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if titleSet {
					cur.Title = title
				}
				if descSet {
					cur.Description = description
				}

				t, err := root.api.UpdateTask(cmd.Context(), cur.ID, cur.Title, cur.Description, cur.Completed)
				if err != nil {
					return err
				}
				return root.showTask(cmd, t)
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func newTasksSetDoneCommand(root *RootOptions, use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.authorized(func() error {
				cur, err := root.api.GetTask(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				t, err := root.api.UpdateTask(cmd.Context(), cur.ID, cur.Title, cur.Description, completed)
				if err != nil {
					return err
				}
				return root.showTask(cmd, t)
			})
		},
	}
}

func newTasksRemoveCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.authorized(func() error {
				if err := root.api.DeleteTask(cmd.Context(), args[0]); err != nil {
					return err
				}
				if root.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), map[string]string{"id": args[0], "message": "Task deleted"})
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return err
			})
		},
	}
}
