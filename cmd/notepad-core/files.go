package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"notepad-core/internal/service"
)

// withFiles loads the configuration and builds the text file service for one-shot commands.
func withFiles(cmd *cobra.Command, fn func(ctx context.Context, svc *service.DefaultTextFileService) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, "stderr")
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.OperationTimeout())
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	return fn(ctx, a.files)
}

func newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <path>",
		Short: "Print the contents of a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFiles(cmd, func(ctx context.Context, svc *service.DefaultTextFileService) error {
				content, err := svc.ReadTextFile(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), content)
				return err
			})
		},
	}
}

func newWriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write <path>",
		Short: "Replace the contents of a text file with --content or standard input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := cmd.Flags().GetString("content")
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("content") {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read standard input: %w", err)
				}
				content = string(data)
			}
			return withFiles(cmd, func(ctx context.Context, svc *service.DefaultTextFileService) error {
				if err := svc.WriteTextFile(ctx, args[0], content); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d bytes)\n", color.GreenString("wrote"), args[0], len(content))
				return nil
			})
		},
	}
	cmd.Flags().String("content", "", "New file contents (read from standard input when omitted)")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <dir>",
		Short: "List the md, markdown and txt files of a directory, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFiles(cmd, func(ctx context.Context, svc *service.DefaultTextFileService) error {
				files, err := svc.ListTextFiles(ctx, args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, f := range files {
					modified := time.UnixMilli(f.ModifiedMillis).Local().Format("2006-01-02 15:04")
					fmt.Fprintf(w, "%s\t%s\t%s\n", color.CyanString(modified), f.Name, f.Path)
				}
				return w.Flush()
			})
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFiles(cmd, func(ctx context.Context, svc *service.DefaultTextFileService) error {
				if err := svc.DeleteFile(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.YellowString("deleted"), args[0])
				return nil
			})
		},
	}
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old-path> <new-path>",
		Short: "Rename a file, refusing to replace an existing one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFiles(cmd, func(ctx context.Context, svc *service.DefaultTextFileService) error {
				if err := svc.RenameFile(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", color.GreenString("renamed"), args[0], args[1])
				return nil
			})
		},
	}
}

func newGreetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "greet <name>",
		Short: "Print the backend greeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFiles(cmd, func(ctx context.Context, svc *service.DefaultTextFileService) error {
				fmt.Fprintln(cmd.OutOrStdout(), svc.Greet(args[0]))
				return nil
			})
		},
	}
}
