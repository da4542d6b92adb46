// Package consistency implements the diagnostic check and repair command.
package consistency

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devicehub/devicehub/internal/application/association/dto"
	httpapi "github.com/devicehub/devicehub/internal/interfaces/http"
	"github.com/devicehub/devicehub/internal/interfaces/cli/bootstrap"
)

var (
	env        string
	configPath string
	repair     bool
	format     string
	xlsxPath   string
	strict     bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consistency",
		Short: "Device and product association consistency tools",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	check := &cobra.Command{
		Use:   "check",
		Short: "Scan every device and product for association violations",
		Long: `Run a full consistency check. With --repair the repairable violations are fixed
and the store is checked again.`,
		RunE: runCheck,
	}
	check.Flags().BoolVar(&repair, "repair", false, "Repair repairable violations and re-check")
	check.Flags().StringVarP(&format, "format", "f", FormatText, "Output format (text, json, yaml)")
	check.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the final report to this xlsx file")
	check.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when violations remain")

	cmd.AddCommand(check)
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Load(env, configPath, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	// the loop belongs to the server and worker
	rt.Config.Consistency.ReconcileEnabled = false

	container, err := httpapi.NewContainer(rt.DB, rt.Config, rt.Logger)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	defer container.Shutdown()

	result, runErr := container.Reconcile().Execute(cmd.Context(), repair)
	if result == nil {
		return runErr
	}

	run := dto.ToReconcileDTO(result.Before, result.Repair, result.After)
	if err := Render(cmd.OutOrStdout(), format, run); err != nil {
		return err
	}

	if xlsxPath != "" {
		data, err := BuildReportXLSX(run)
		if err != nil {
			return fmt.Errorf("failed to build xlsx: %w", err)
		}
		if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", xlsxPath, err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if final := result.Final(); strict && !final.Consistent() {
		return fmt.Errorf("%d violations remain", len(final.Violations))
	}
	return nil
}
