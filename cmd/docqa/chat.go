package main

import (
	"github.com/spf13/cobra"

	"docqa/internal/tui"
)

func newChatCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat interactively in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			a, err := buildApp(logger)
			if err != nil {
				return err
			}
			defer a.close()

			return tui.Run(a.answer, user)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id for the conversation (defaults to a shared local session)")
	return cmd
}
