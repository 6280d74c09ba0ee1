package cli

import (
	"fmt"
	"time"

	"imagestudio/internal/core/service"

	"github.com/spf13/cobra"
)

func historyCmd(a *app) *cobra.Command {
	var (
		user  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a user's generated images, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := newRedisStore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			if store == nil {
				return errNoHistoryStore
			}

			records, err := service.NewHistoryService(store).List(cmd.Context(), user)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, a.ui.dim("no images yet"))
				return nil
			}

			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}

			for _, r := range records {
				created := time.UnixMilli(r.CreatedAt).Local().Format(time.DateTime)
				fmt.Fprintf(out, "%s %s %s\n", a.ui.dim(created), a.ui.info(r.Model), r.Prompt)
				fmt.Fprintf(out, "  %s\n", r.ImageURL)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Identity whose history to list")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of records to show (0 for all)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
