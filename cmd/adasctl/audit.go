package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func newAuditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "List configured data files missing from the corpus",
		Long: `Check that every file referenced by the configuration exists in the data
corpus. File contents are not read. Exits non-zero when files are missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.resolver.Audit(cmd.Context(), a.corpus)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, entry := range result.Missing {
				fmt.Fprintf(out, "missing %s (%s)\n", entry.File, entry.Key())
			}
			fmt.Fprintf(out, "%d files checked, %d entries missing data (%s corpus)\n",
				result.Checked, len(result.Missing), a.corpus.Driver())
			if len(result.Missing) > 0 {
				return errors.Newf("%d entries reference missing files", len(result.Missing))
			}
			return nil
		},
	}
}
