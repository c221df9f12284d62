package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taxpilot-ai/taxpilot/internal/cli"
	"github.com/taxpilot-ai/taxpilot/internal/model"
	"github.com/taxpilot-ai/taxpilot/internal/service"
)

func reviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Inspect and resolve the professional review queue",
	}

	cmd.AddCommand(reviewsListCmd())
	cmd.AddCommand(reviewsResolveCmd())

	return cmd
}

func reviewsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List review items",
		RunE:  runReviewsList,
	}

	cmd.Flags().String("session", "", "filter by session id")
	cmd.Flags().String("status", "", "filter by status (pending, approved, rejected, modified)")
	cmd.Flags().Int("limit", 50, "maximum items to show")

	return cmd
}

func runReviewsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	filter := service.ReviewFilter{}
	filter.SessionID, _ = cmd.Flags().GetString("session")
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	if status, _ := cmd.Flags().GetString("status"); status != "" {
		rs := model.ReviewStatus(status)
		if !rs.Valid() {
			return fmt.Errorf("unknown review status %q", status)
		}
		filter.Status = rs
	}

	items, err := store.ListReviewItems(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list review items: %w", err)
	}

	if len(items) == 0 {
		fmt.Println(cli.FormatSuccess("Review queue is empty."))
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Review Queue (%d)", len(items))))

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		id := item.ID
		if item.Status == model.ReviewPending {
			id = cli.FlagIcon + " " + item.ID
		}
		notes := item.ReviewerNotes
		if notes == "" {
			notes = "-"
		}
		rows = append(rows, []string{
			id,
			item.SessionID,
			item.FieldName,
			fmt.Sprintf("%.0f%%", item.Confidence*100),
			string(item.Status),
			item.Reason,
			notes,
		})
	}
	fmt.Println(cli.RenderTable(
		[]string{"ID", "SESSION", "FIELD", "CONFIDENCE", "STATUS", "REASON", "NOTES"},
		rows,
	))

	return nil
}

func reviewsResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <review-id>",
		Short: "Record a reviewer disposition on an item",
		Args:  cobra.ExactArgs(1),
		RunE:  runReviewsResolve,
	}

	cmd.Flags().String("status", "", "disposition (approved, rejected, modified)")
	cmd.Flags().String("notes", "", "reviewer notes")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}

func runReviewsResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	statusStr, _ := cmd.Flags().GetString("status")
	notes, _ := cmd.Flags().GetString("notes")

	status := model.ReviewStatus(statusStr)
	if !status.Valid() || !status.Terminal() {
		return fmt.Errorf("status must be one of approved, rejected, modified; got %q", statusStr)
	}

	item, err := store.ResolveReviewItem(ctx, args[0], status, notes)
	if err != nil {
		return fmt.Errorf("failed to resolve review item: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Review %s marked %s.", item.ID, item.Status)))
	return nil
}
