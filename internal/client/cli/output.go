package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printMessage writes msg as a line of text, or as {"message": msg} in json
// mode.
func (o *RootOptions) printMessage(cmd *cobra.Command, msg string) error {
	if o.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), msg)
	return err
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func printTasks(w io.Writer, tasks []client.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tTITLE\tCREATED")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, checkbox(t.Completed), t.Title, t.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func printTask(w io.Writer, t *client.Task) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", t.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	if t.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", t.Description)
	}
	fmt.Fprintf(tw, "Done:\t%s\n", checkbox(t.Completed))
	fmt.Fprintf(tw, "Created:\t%s\n", t.CreatedAt.Local().Format(time.DateTime))
	return tw.Flush()
}
