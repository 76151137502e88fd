package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/certifica/internal/catalog"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default course catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, logger, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := catalog.Seed(commandContext(cmd), st.Courses(), logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %d courses, %d already present.\n", res.Created, res.Skipped)
		return nil
	},
}
