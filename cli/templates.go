package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/awslabs/open-hostfactory-plugin-sub000/domain"
	"github.com/awslabs/open-hostfactory-plugin-sub000/handler/template"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect the machine templates available to the scheduler",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runtime.Queries.Execute(cmd.Context(), template.ListTemplatesQuery{})
		if err != nil {
			return err
		}

		rendered, err := runtime.Formatter.FormatTemplates(result.([]domain.Template))
		if err != nil {
			return err
		}
		cmd.Println(rendered)
		return nil
	},
}

var templatesGetCmd = &cobra.Command{
	Use:   "get TEMPLATE",
	Short: "Show one template",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runtime.Queries.Execute(cmd.Context(), template.GetTemplateQuery{TemplateID: args[0]})
		if err != nil {
			return err
		}

		rendered, err := runtime.Formatter.FormatTemplates([]domain.Template{result.(domain.Template)})
		if err != nil {
			return err
		}
		cmd.Println(rendered)
		return nil
	},
}

var templatesValidateCmd = &cobra.Command{
	Use:   "validate TEMPLATE",
	Short: "Validate a template against the available providers",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runtime.Queries.Execute(cmd.Context(), template.ValidateTemplateQuery{TemplateID: args[0]})
		if err != nil {
			return err
		}

		validation := result.(template.ValidationResult)
		if !validation.Valid {
			return fmt.Errorf("template '%s' is invalid: %s", validation.TemplateID, validation.Reason)
		}
		cmd.PrintErrln(color.HiGreenString("Template '%s' is valid", validation.TemplateID))
		return nil
	},
}

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesGetCmd)
	templatesCmd.AddCommand(templatesValidateCmd)
}
