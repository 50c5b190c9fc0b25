package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cv-image-editor/internal/io"
)

var infoCmd = &cobra.Command{
	Use:   "info <input>",
	Short: "Print the dimensions and content digest of an image",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	logger, _, err := newLogger()
	if err != nil {
		return err
	}

	path := args[0]
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	buf, err := io.NewImageLoader(logger).LoadFile(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  File:        %s\n", filepath.Base(path))
	fmt.Fprintf(out, "  Size:        %s\n", formatBytes(stat.Size()))
	fmt.Fprintf(out, "  Image:       %s\n", buf.Dimensions())
	fmt.Fprintf(out, "  Digest:      %016x\n", buf.Digest())
	fmt.Fprintln(out)
	return nil
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[imgedit] "+format+"\n", args...)
	}
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
