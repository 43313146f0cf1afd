package main

import (
	"time"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/awslabs/open-hostfactory-plugin-sub000/domain"
	"github.com/awslabs/open-hostfactory-plugin-sub000/handler/machine"
	"github.com/awslabs/open-hostfactory-plugin-sub000/handler/request"
)

var machinesRequestID string

var machinesCmd = &cobra.Command{
	Use:   "machines",
	Short: "List and return machines",
}

var machinesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List machines",
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runtime.Queries.Execute(cmd.Context(), machine.ListMachinesQuery{
			RequestID: domain.RequestID(machinesRequestID),
		})
		if err != nil {
			return err
		}

		for _, m := range result.([]domain.Machine) {
			launched := "unknown             "
			if !m.LaunchedAt.IsZero() {
				launched = m.LaunchedAt.Truncate(time.Second).String()
			}
			cmd.Printf("%s  %-12s  %-10s  %s\n", launched, m.RequestID, m.Status, color.HiCyanString(m.ID.String()))
		}
		return nil
	},
}

var machinesReturnCmd = &cobra.Command{
	Use:   "return MACHINE...",
	Short: "Return machines to their provider",
	Args:  cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runtime.Commands.Execute(cmd.Context(), request.ReturnMachinesCommand{
			MachineIDs: lo.Map(args, func(arg string, _ int) domain.MachineID { return domain.MachineID(arg) }),
		})
		if err != nil {
			return err
		}
		cmd.PrintErrln(color.HiGreenString("Returned %d machine(s) as request '%s'", len(args), result.(domain.RequestID)))
		return nil
	},
}

func init() {
	machinesCmd.AddCommand(machinesListCmd)
	machinesCmd.AddCommand(machinesReturnCmd)

	machinesListCmd.Flags().StringVarP(&machinesRequestID, "request", "r", "", "only machines of this request")
}
