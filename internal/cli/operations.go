package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"live-quiz-service/internal/catalog"
)

// NewOperationsCmd prints every cataloged operation with the roles allowed to invoke it.
func NewOperationsCmd() *cobra.Command {
	var context string
	cmd := &cobra.Command{
		Use:   "operations",
		Short: "List cataloged operations and their roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printOperations(cmd.OutOrStdout(), context, catalog.Quiz(), catalog.Auth(), catalog.User())
		},
	}
	cmd.Flags().StringVar(&context, "context", "", "only print this catalog (quiz, auth, user)")
	return cmd
}

func printOperations(out io.Writer, context string, catalogs ...*catalog.Catalog) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONTEXT\tOPERATION\tTYPE\tROLES")
	found := false
	for _, c := range catalogs {
		if context != "" && c.Context() != context {
			continue
		}
		found = true
		for _, d := range c.Descriptors() {
			roles := make([]string, 0, len(d.Roles))
			for _, r := range d.Roles {
				roles = append(roles, string(r))
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Context(), d.Name, d.Type, strings.Join(roles, ","))
		}
	}
	if !found {
		return fmt.Errorf("unknown catalog %q", context)
	}
	return tw.Flush()
}
