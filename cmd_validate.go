package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"gig-director/catalog"
)

// errRejected makes validate exit non-zero without printing usage
var errRejected = errors.New("catalog has rejected entries")

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a clip catalog",
		Long: `Loads a catalog file (the built-in catalog when no file is given),
lists every entry that would be skipped, and fails when there is one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cat  *catalog.Catalog
				err  error
				name = "built-in catalog"
			)
			if len(args) == 1 {
				name = args[0]
				cat, err = catalog.LoadFile(name, a.logger)
			} else {
				cat = catalog.Default()
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: %d clips, %d overlays\n", name, len(cat.Variants()), len(cat.Overlays()))
			for _, r := range catalog.PerformerRoles {
				legacy := "no legacy fallback"
				if v, ok := cat.Legacy(r); ok {
					legacy = "legacy " + v.ID
				}
				fmt.Fprintf(w, "  %-12s %2d clips, %s\n", r, len(cat.ByRole(r)), legacy)
			}

			rejected := cat.Rejected()
			for _, e := range rejected {
				fmt.Fprintf(w, "  skipped: %v\n", e)
			}
			if len(rejected) > 0 {
				return fmt.Errorf("%w: %d", errRejected, len(rejected))
			}
			fmt.Fprintln(w, "ok")
			return nil
		},
	}
}
