// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"carrier-matching/internal/common/errors"
	"carrier-matching/internal/common/validation"
	"carrier-matching/pkg/registry"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var registryPath string
	cmd := &cobra.Command{
		Use:           "registry-updater",
		Short:         "Inspect and maintain the activity registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&registryPath, "path", "configs/activity-registry.json", "Path to registry file")

	cmd.AddCommand(
		newValidateCommand(&registryPath),
		newUpdateCommand(&registryPath),
		newCheckInputCommand(&registryPath),
	)
	return cmd
}

func newValidateCommand(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry file",
		Long: `Validate the registry structure, compile every input schema and check
that declared error codes are ones the workers can raise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := validateRegistry(reg); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	}
}

func validateRegistry(reg *registry.ActivityRegistry) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	for _, activity := range reg.Activities {
		if len(activity.InputSchema) > 0 {
			if _, err := validation.NewValidator(activity.InputSchema); err != nil {
				return fmt.Errorf("activity %s: input schema: %w", activity.ID, err)
			}
		}
		for _, code := range activity.ErrorCodes {
			if !knownErrorCode(code) {
				return fmt.Errorf("activity %s: unknown error code %s", activity.ID, code)
			}
		}
	}
	return nil
}

func knownErrorCode(code string) bool {
	for _, bpmnCode := range errors.BPMNErrorMapping {
		if bpmnCode == code {
			return true
		}
	}
	return false
}

func newUpdateCommand(path *string) *cobra.Command {
	var id, field, value string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update an existing activity's field",
		Example: `  registry-updater update --id freight.carrier.match --field status --value verified
  registry-updater update --id freight.carrier.match --field retries --value 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := updateActivity(reg, id, field, value); err != nil {
				return err
			}
			if err := reg.Save(*path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", id, field, value)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Activity ID to update")
	cmd.Flags().StringVar(&field, "field", "", "Field to update (status, version, displayName, description, timeout, retries)")
	cmd.Flags().StringVar(&value, "value", "", "New value for the field")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("field")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func updateActivity(reg *registry.ActivityRegistry, id, field, value string) error {
	var activity *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == id {
			activity = &reg.Activities[i]
			break
		}
	}
	if activity == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		if !registry.ValidStatus(value) {
			return fmt.Errorf("invalid status: %q", value)
		}
		activity.ImplementationStatus = value
	case "version":
		activity.Version = value
	case "displayName":
		activity.DisplayName = value
	case "description":
		activity.Description = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %q", value)
		}
		activity.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil || retries < 0 {
			return fmt.Errorf("invalid retries value: %q", value)
		}
		activity.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

func newCheckInputCommand(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-input <taskType> <variables.json>",
		Short: "Validate job variables against an activity's input schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			activity, ok := reg.Find(args[0])
			if !ok {
				return errors.NewActivityNotRegisteredError(args[0])
			}
			v, err := validation.NewValidator(activity.InputSchema)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			var doc map[string]interface{}
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("parse %s: %w", args[1], err)
			}

			result, err := v.Validate(doc)
			if err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("input is invalid:\n  %s", strings.Join(result.GetErrorMessages(), "\n  "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Input is valid.")
			return nil
		},
	}
}
