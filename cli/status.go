package main

import (
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/awslabs/open-hostfactory-plugin-sub000/domain"
	"github.com/awslabs/open-hostfactory-plugin-sub000/handler/request"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List requests still in flight",
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runtime.Queries.Execute(cmd.Context(), request.ListActiveRequestsQuery{})
		if err != nil {
			return err
		}

		active := result.([]domain.Request)
		if len(active) == 0 {
			cmd.PrintErrln("No active requests")
			return nil
		}
		for _, r := range active {
			cmd.Printf("%s  %-8s  %-10s  %s\n",
				r.CreatedAt.Truncate(time.Second), r.Type, r.Status, color.HiCyanString(r.ID.String()))
		}
		return nil
	},
}
