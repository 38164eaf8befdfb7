package cmd

import (
	"fmt"

	"milestones/internal/milestone"
	"milestones/pkg/logging"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var levels bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the execution order again whenever the projects file changes",
		Long: `Watch the projects file of the file store and print the project's
execution order every time the file is changed, for example by another
milestones process or an editor. Stops on Ctrl-C.

Only available with the file store driver.

Examples:
  milestones watch -p 7
  milestones watch -p 7 --levels`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireProject(cmd); err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			env, err := setup(ctx, cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			fileStore, ok := env.store.(*milestone.MemoryStore)
			if !ok || fileStore.Path() == "" {
				return fmt.Errorf("watch requires the %q store driver, configured driver is %q", "file", env.config.Store.Driver)
			}

			out := cmd.OutOrStdout()
			if err := renderOrder(ctx, out, env.service, levels); err != nil {
				return err
			}

			watcher := milestone.NewFileWatcher(fileStore, func() {
				env.service.InvalidateAll()
				fmt.Fprintln(out)
				if err := renderOrder(ctx, out, env.service, levels); err != nil {
					logging.Error("CLI", err, "Failed to order project %d", projectID)
				}
			})
			return watcher.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&levels, "levels", false, "Group milestones into waves of independent milestones")
	return cmd
}

func init() {
	rootCmd.AddCommand(newWatchCmd())
}
