package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/y2k2/globa/internal/server/events"
)

func newEmitCommand(ctx *commandContext) *cobra.Command {
	var (
		userID   int64
		recordID int64
		message  string
	)

	cmd := &cobra.Command{
		Use:       "emit {success|failed}",
		Short:     "Publish an upload pipeline event",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"success", "failed"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind events.Kind
			switch args[0] {
			case "success":
				kind = events.KindSucceeded
			case "failed":
				kind = events.KindFailed
			default:
				return fmt.Errorf("unknown event %q (want success or failed)", args[0])
			}
			if userID <= 0 || recordID <= 0 {
				return fmt.Errorf("--user and --record must be positive")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			pub := ctx.newPublisher(cfg)
			defer pub.Close()

			ev := events.Event{UserID: userID, RecordID: recordID, Message: message}
			if err := pub.Publish(cmd.Context(), kind, ev); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %s event for record %d (user %d)\n", kind, recordID, userID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "Uploader user id")
	cmd.Flags().Int64Var(&recordID, "record", 0, "Record id")
	cmd.Flags().StringVar(&message, "message", "", "Failure message (failed events only)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}
