package cli

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/evtracker/internal/backup"
	"github.com/spf13/cobra"
)

func newExportCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write a snapshot of all data to the export directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app().manager.Export(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(app().out, path)
			return err
		},
	}
}

func newImportCommand(app func() *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all data with the snapshot in file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ok, err := a.confirmReplace(yes, args[0])
			if err != nil || !ok {
				if err == nil {
					_, err = fmt.Fprintln(a.out, "Import cancelled")
				}
				return err
			}
			if err := a.manager.Import(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, "Import finished")
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newListCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List exports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app().manager.ListExports(cmd.Context())
			if err != nil {
				return err
			}
			return printDescriptors(app().out, list)
		},
	}
}

func newSafetyCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "safety",
		Short: "Inspect the backups taken before each import",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List safety backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app().manager.ListSafetyBackups(cmd.Context())
			if err != nil {
				return err
			}
			return printDescriptors(app().out, list)
		},
	})
	return cmd
}

func newRemoteCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage remote backups",
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Check that the remote location can be used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app().manager.CheckRemoteAvailability(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(app().out, "Remote backups available")
			return err
		},
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Upload a snapshot and apply retention",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app().manager.CreateRemoteBackup(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(app().out, d)
			return err
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List remote backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app().manager.ListRemoteBackups(cmd.Context())
			if err != nil {
				return err
			}
			return printDescriptors(app().out, list)
		},
	}

	var yes bool
	restore := &cobra.Command{
		Use:   "restore <name>",
		Short: "Replace all data with a remote backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ok, err := a.confirmReplace(yes, args[0])
			if err != nil || !ok {
				if err == nil {
					_, err = fmt.Fprintln(a.out, "Restore cancelled")
				}
				return err
			}
			if err := a.manager.RestoreRemoteBackup(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, "Restore finished")
			return err
		},
	}
	restore.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete one remote backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().manager.DeleteRemoteBackup(cmd.Context(), args[0])
		},
	}

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete remote backups beyond the retention limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := app().manager.PruneRemoteBackups(cmd.Context())
			if perr := printDescriptors(app().out, deleted); perr != nil && err == nil {
				err = perr
			}
			return err
		},
	}

	cmd.AddCommand(check, create, list, restore, del, prune)
	return cmd
}

func printDescriptors(w io.Writer, list []backup.Descriptor) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No backups")
		return err
	}
	for _, d := range list {
		if _, err := fmt.Fprintln(w, d); err != nil {
			return err
		}
	}
	return nil
}
