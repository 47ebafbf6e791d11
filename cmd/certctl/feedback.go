package main

import (
	"fmt"
	"strings"

	"certvault/models"

	"github.com/spf13/cobra"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <message>",
	Short: "Send feedback to the certvault team",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		email, _ := cmd.Flags().GetString("email")

		ctx, cancel := newContext(cmd)
		defer cancel()

		err := newClient().Feedback(ctx, models.FeedbackPayload{
			Message:   strings.Join(args, " "),
			Category:  category,
			UserEmail: email,
		})
		if err != nil {
			return fmt.Errorf("send feedback: %w", err)
		}
		fmt.Fprintln(out(cmd), "Thanks for your feedback!")
		return nil
	},
}

func init() {
	feedbackCmd.Flags().String("category", "other", "bug, feature or other")
	feedbackCmd.Flags().String("email", "", "reply address")
	rootCmd.AddCommand(feedbackCmd)
}
