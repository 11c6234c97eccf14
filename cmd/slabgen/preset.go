package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/SlabGen/internal/model"
	"github.com/piwi3910/SlabGen/internal/project"
)

func newPresetCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage named request presets",
	}
	cmd.AddCommand(newPresetSaveCmd(c), newPresetListCmd(c), newPresetDeleteCmd(c))
	return cmd
}

func newPresetSaveCmd(c *cli) *cobra.Command {
	var (
		rf          requestFlags
		sf          settingsFlags
		description string
	)
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a request and its settings under a name",
		Long:  `Saves the request flags and settings flags as a preset. Saving an existing name replaces it.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			settings := model.DefaultSettings()
			cfg.ApplyToSettings(&settings)
			sf.apply(cmd.Flags(), &settings)
			if !cmd.Flags().Changed("padding") {
				rf.padding = cfg.DefaultPadding
			}
			req, err := rf.request(cmd.Flags(), nil)
			if err != nil {
				return err
			}

			path := c.presetPath()
			store, err := project.LoadPresets(path)
			if err != nil {
				return fmt.Errorf("failed to load presets: %w", err)
			}
			store.Put(model.NewPreset(args[0], description, req, settings))
			if err := project.SavePresets(path, store); err != nil {
				return fmt.Errorf("failed to save presets: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %q\n", args[0])
			return nil
		},
	}
	rf.register(cmd.Flags())
	sf.register(cmd.Flags())
	cmd.Flags().StringVar(&description, "description", "", "Preset description")
	return cmd
}

func newPresetListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := project.LoadPresets(c.presetPath())
			if err != nil {
				return fmt.Errorf("failed to load presets: %w", err)
			}
			if len(store.Presets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No presets saved")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMILLER\tTHICKNESS\tWIDTH\tDEPTH\tPADDING\tFORMATS\tDESCRIPTION")
			for _, p := range store.Presets {
				r := p.Request
				fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\t%g\t%v\t%s\n",
					p.Name, r.Miller, r.Thickness, r.Width, r.Depth, r.Padding, p.Settings.Formats, p.Description)
			}
			return tw.Flush()
		},
	}
}

func newPresetDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.presetPath()
			store, err := project.LoadPresets(path)
			if err != nil {
				return fmt.Errorf("failed to load presets: %w", err)
			}
			p := store.FindByName(args[0])
			if p == nil {
				return fmt.Errorf("preset %q not found", args[0])
			}
			store.Remove(p.ID)
			if err := project.SavePresets(path, store); err != nil {
				return fmt.Errorf("failed to save presets: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %q\n", args[0])
			return nil
		},
	}
}
