package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/y2k2/globa/internal/common"
	"github.com/y2k2/globa/internal/logging"
	"github.com/y2k2/globa/internal/server/config"
	"github.com/y2k2/globa/internal/server/services"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test push notification to a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(cfg *config.Config, db *sql.DB) error {
				user, err := ctx.repomanager.Users(db).FindByID(cmd.Context(), userID)
				if errors.Is(err, common.ErrorNotFound) {
					return fmt.Errorf("user %d not found", userID)
				}
				if err != nil {
					return err
				}

				gateway, err := ctx.newGateway(cmd.Context(), cfg)
				if err != nil {
					return err
				}

				d := services.NewDispatcher(db, ctx.repomanager, gateway, logging.Nop{})
				res := d.NotifyUser(cmd.Context(), "globa", "테스트 알림입니다.", user)
				switch {
				case res.Err != nil:
					return fmt.Errorf("notification not sent: %w", res.Err)
				case res.Skipped:
					fmt.Fprintln(cmd.OutOrStdout(), "Notification not sent (user opted out or has no device)")
				default:
					fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "Recipient user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
