package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/awslabs/open-hostfactory-plugin-sub000/domain"
	"github.com/awslabs/open-hostfactory-plugin-sub000/handler/request"
)

var requestCount int

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Submit and track capacity requests",
}

var requestSubmitCmd = &cobra.Command{
	Use:   "submit TEMPLATE",
	Short: "Request machines from a template",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runtime.Commands.Execute(cmd.Context(), request.SubmitRequestCommand{
			TemplateID: args[0],
			Count:      requestCount,
		})
		if err != nil {
			return err
		}

		id := result.(domain.RequestID)
		cmd.PrintErrln(color.HiGreenString("Submitted request '%s'", id))

		rendered, err := runtime.Queries.Execute(cmd.Context(), request.GetRequestStatusQuery{RequestID: id})
		if err != nil {
			return err
		}
		cmd.Println(rendered.(string))
		return nil
	},
}

var requestStatusCmd = &cobra.Command{
	Use:   "status REQUEST",
	Short: "Show the status of a request",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		rendered, err := runtime.Queries.Execute(cmd.Context(), request.GetRequestStatusQuery{
			RequestID: domain.RequestID(args[0]),
		})
		if err != nil {
			return err
		}
		cmd.Println(rendered.(string))
		return nil
	},
}

var requestCancelCmd = &cobra.Command{
	Use:   "cancel REQUEST",
	Short: "Cancel a running request and release its machines",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := runtime.Commands.Execute(cmd.Context(), request.CancelRequestCommand{
			RequestID: domain.RequestID(args[0]),
		}); err != nil {
			return err
		}
		cmd.PrintErrln(color.HiGreenString("Cancelled request '%s'", args[0]))
		return nil
	},
}

func init() {
	requestCmd.AddCommand(requestSubmitCmd)
	requestCmd.AddCommand(requestStatusCmd)
	requestCmd.AddCommand(requestCancelCmd)

	requestSubmitCmd.Flags().IntVarP(&requestCount, "count", "n", 1, "number of machines to request")
}
