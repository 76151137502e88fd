package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/certifica/internal/catalog"
	"github.com/abhisek/certifica/internal/store"
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Manage the course catalog",
}

var courseAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a course",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		description, _ := cmd.Flags().GetString("description")
		hours, _ := cmd.Flags().GetInt("hours")
		price, _ := cmd.Flags().GetInt("price-cents")
		modules, _ := cmd.Flags().GetStringSlice("module")

		c, err := st.Courses().Create(commandContext(cmd), catalog.Custom(store.NewCourse{
			Title:         strings.Join(args, " "),
			Description:   description,
			PriceCents:    price,
			DurationHours: hours,
			Modules:       modules,
		}))
		if err != nil {
			return fmt.Errorf("add course: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Course %d added: %s (%d h)\n", c.ID, c.Title, c.DurationHours)
		return nil
	},
}

var courseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List courses with certificate counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		courses, err := st.Courses().Summaries(commandContext(cmd))
		if err != nil {
			return err
		}
		if len(courses) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No courses. Run: certifica seed")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tHOURS\tPRICE\tCERTIFICATES\tLEARNERS")
		for _, c := range courses {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%d\t%d\n",
				c.ID, c.Title, c.DurationHours, formatCents(c.PriceCents), c.Certificates, c.Learners)
		}
		return w.Flush()
	},
}

var courseDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a course without certificates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid course id %q", args[0])
		}
		st, _, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Courses().Delete(commandContext(cmd), id); err != nil {
			return fmt.Errorf("delete course %d: %w", id, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Course %d deleted.\n", id)
		return nil
	},
}

// formatCents renders a price in reais, e.g. 9990 as "R$ 99,90".
func formatCents(cents int) string {
	return fmt.Sprintf("R$ %d,%02d", cents/100, cents%100)
}

func init() {
	courseAddCmd.Flags().String("description", "", "Description (default \"Certificação profissional em <title>.\")")
	courseAddCmd.Flags().Int("hours", 0, "Workload in hours (default 60)")
	courseAddCmd.Flags().Int("price-cents", 0, "Price in cents")
	courseAddCmd.Flags().StringSlice("module", nil, "Programme module, repeatable")

	courseCmd.AddCommand(courseAddCmd)
	courseCmd.AddCommand(courseListCmd)
	courseCmd.AddCommand(courseDeleteCmd)
}
