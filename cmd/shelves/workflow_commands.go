package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"shelves/internal/workflow"
)

func newWorkflowCommand(ctx *commandContext) *cobra.Command {
	workflowCmd := &cobra.Command{
		Use:   "workflow",
		Short: "Show or change the two-stage shelf workflow",
	}
	workflowCmd.AddCommand(newWorkflowShowCommand(ctx))
	workflowCmd.AddCommand(newWorkflowSetCommand(ctx))
	return workflowCmd
}

func newWorkflowShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the workflow settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(_ context.Context, a *app) error {
				cfg := a.engine.Config()
				if jsonOut {
					return writeJSON(cmd, cfg)
				}
				rows := [][]string{
					{"Enabled", yesNo(cfg.Enabled)},
					{"Stage 1", cfg.Stage1},
					{"Stage 2", cfg.Stage2},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, rows))
				if cfg.Enabled {
					for _, stage := range []string{cfg.Stage1, cfg.Stage2} {
						if !a.registry.Contains(stage) {
							fmt.Fprintf(cmd.OutOrStdout(), "Warning: stage shelf %s is not a known shelf\n", stage)
						}
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newWorkflowSetCommand(ctx *commandContext) *cobra.Command {
	var enable, disable bool
	var stage1, stage2 string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the workflow settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if enable && disable {
				return errors.New("--enable and --disable are mutually exclusive")
			}
			return ctx.withApp(cmd, func(runCtx context.Context, a *app) error {
				next := a.engine.Config()
				if enable {
					next.Enabled = true
				}
				if disable {
					next.Enabled = false
				}
				if cmd.Flags().Changed("stage1") {
					next.Stage1 = stage1
				}
				if cmd.Flags().Changed("stage2") {
					next.Stage2 = stage2
				}
				next = next.Normalized()
				if err := next.Validate(); err != nil {
					return err
				}
				a.engine.Set(next)
				if err := a.persist(runCtx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Workflow %s: %s -> %s\n", enabledLabel(next), next.Stage1, next.Stage2)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&enable, "enable", false, "Enable the workflow transition")
	cmd.Flags().BoolVar(&disable, "disable", false, "Disable the workflow transition")
	cmd.Flags().StringVar(&stage1, "stage1", "", "Shelf files start on")
	cmd.Flags().StringVar(&stage2, "stage2", "", "Shelf files move to when saved")
	return cmd
}

func enabledLabel(cfg workflow.Config) string {
	if cfg.Enabled {
		return "enabled"
	}
	return "disabled"
}
