package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/certifica/internal/store"
)

// BasicPlan is the plan name written by user renew.
const BasicPlan = "basic"

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage learner credits",
}

var userCreditsCmd = &cobra.Command{
	Use:   "credits <email> <delta>",
	Short: "Add (or with a negative delta remove) credits",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid delta %q", args[1])
		}
		st, _, logger, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := commandContext(cmd)
		u, err := st.Users().ByEmail(ctx, args[0])
		if err != nil {
			return fmt.Errorf("user %s: %w", args[0], err)
		}
		balance, err := st.Users().AdjustCredits(ctx, u.ID, delta)
		if err != nil {
			return fmt.Errorf("adjust credits: %w", err)
		}
		logger.Info("credits adjusted", "user", u.ID, "delta", delta, "balance", balance)
		fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d credits.\n", u.Email, balance)
		return nil
	},
}

var userRenewCmd = &cobra.Command{
	Use:   "renew <email>",
	Short: "Set a learner's credits, creating the account when missing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		credits, _ := cmd.Flags().GetInt("credits")
		if credits < 0 {
			return errors.New("--credits must not be negative")
		}
		name, _ := cmd.Flags().GetString("name")

		st, _, logger, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := commandContext(cmd)
		email := strings.ToLower(strings.TrimSpace(args[0]))
		u, err := st.Users().ByEmail(ctx, email)
		switch {
		case errors.Is(err, store.ErrNotFound):
			if name == "" {
				name, _, _ = strings.Cut(email, "@")
			}
			now := time.Now()
			u, err = st.Users().Create(ctx, store.NewUser{
				Name:            name,
				Email:           email,
				Role:            store.RoleStudent,
				Credits:         credits,
				Plan:            BasicPlan,
				AcceptedTermsAt: &now,
			})
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			logger.Info("user created by renew", "user", u.ID, "credits", credits)
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s with %d credits.\n", u.Email, credits)
			return nil
		case err != nil:
			return fmt.Errorf("user %s: %w", email, err)
		}

		if err := st.Users().SetCredits(ctx, u.ID, credits); err != nil {
			return fmt.Errorf("set credits: %w", err)
		}
		logger.Info("credits renewed", "user", u.ID, "credits", credits)
		fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d credits.\n", u.Email, credits)
		return nil
	},
}

func init() {
	userRenewCmd.Flags().Int("credits", 1, "Credit balance to set")
	userRenewCmd.Flags().String("name", "", "Name for a new account (default: the email's local part)")

	userCmd.AddCommand(userCreditsCmd)
	userCmd.AddCommand(userRenewCmd)
}
