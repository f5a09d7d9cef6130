package main

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/y2k2/globa/internal/server/config"
	"github.com/y2k2/globa/internal/server/models"
	"github.com/y2k2/globa/internal/server/services"
)

func newNotificationsCommand(ctx *commandContext) *cobra.Command {
	var (
		userID int64
		count  int
		page   int
	)

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List a user's notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(_ *config.Config, db *sql.DB) error {
				svc := services.NewNotificationService(db, ctx.repomanager)
				items, err := svc.List(cmd.Context(), userID, count, page)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No notifications")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderNotifications(items))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "Recipient user id")
	cmd.Flags().IntVar(&count, "count", services.DefaultNotificationCount, "Page size")
	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func renderNotifications(items []models.Notification) string {
	headers := []string{"ID", "Type", "From", "Folder", "Record", "Read", "Created"}
	rows := make([][]string, 0, len(items))
	for _, n := range items {
		rows = append(rows, []string{
			strconv.FormatInt(n.ID, 10),
			n.Type.String(),
			strconv.FormatInt(n.FromUserID, 10),
			optionalID(n.FolderID),
			optionalID(n.RecordID),
			strconv.FormatBool(n.IsRead),
			n.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight})
}

func optionalID(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}
