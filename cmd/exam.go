package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/certifica/internal/app"
	"github.com/abhisek/certifica/internal/certificate"
	"github.com/abhisek/certifica/internal/credits"
	"github.com/abhisek/certifica/internal/events"
	"github.com/abhisek/certifica/internal/exam"
	"github.com/abhisek/certifica/internal/server"
	"github.com/abhisek/certifica/internal/store"
)

var examCmd = &cobra.Command{
	Use:   "exam <course title>",
	Short: "Take a course exam in the terminal",
	Long: "Runs the timed exam for a course. With --email the attempt is recorded " +
		"for that learner and a passed exam can be exchanged for a certificate.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logOut := io.Discard
		if path, _ := cmd.Flags().GetString("log-file"); path != "" {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer f.Close()
			logOut = f
		}

		st, cfg, logger, err := openStoreLogging(cmd, logOut)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := commandContext(cmd)
		title := strings.Join(args, " ")
		course, err := st.Courses().ByTitle(ctx, title)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("course %q not found (add it with: certifica course add %q)", title, title)
		}
		if err != nil {
			return err
		}

		opts := app.Options{
			Course: exam.Course{ID: course.ID, Title: course.Title, Duration: course.DurationHours},
			Source: server.NewQuestionSource(ctx, cfg, st.EventRepo(), nil, logger),
			Logger: logger,
		}
		opts.Duration, _ = cmd.Flags().GetInt("duration")

		if email, _ := cmd.Flags().GetString("email"); email != "" {
			u, err := st.Users().ByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("learner %s: %w", email, err)
			}
			opts.UserID = u.ID
			opts.Recorder = credits.Attempts{Repo: st.Attempts()}
			opts.Consumer = credits.NewConsumer(st.Certificates(), events.LogPublisher{Logger: logger}, logger)
			opts.Certificates = func(ctx context.Context, id string) (certificate.View, error) {
				d, err := st.Certificates().Get(ctx, id)
				if err != nil {
					return certificate.View{}, err
				}
				return certificate.FromDetail(&d), nil
			}
		}

		return app.Run(ctx, opts)
	},
}

func init() {
	examCmd.Flags().String("email", "", "Learner email; records the attempt and enables certificates")
	examCmd.Flags().Int("duration", 0, "Time limit in seconds (default one hour)")
	examCmd.Flags().String("log-file", "", "Append logs to this file while the exam runs")
}
