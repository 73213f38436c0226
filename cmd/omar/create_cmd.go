// cmd/omar/create_cmd.go

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/osmora/go-omar/pkg/archive"
)

func createCmd() *cobra.Command {
	var inputPath, outputPath string
	var useGitignore bool
	var dryRun bool
	var verbose bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an OMAR archive from a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Add .omar extension if missing
			if outputPath != "" && !strings.HasSuffix(outputPath, ".omar") {
				outputPath += ".omar"
			}

			opts := &archive.Options{
				InputPath:    inputPath,
				OutputPath:   outputPath,
				UseGitignore: useGitignore,
				DryRun:       dryRun,
				Verbose:      verbose,
				Quiet:        quiet,
			}

			if err := opts.Validate(); err != nil {
				return err
			}

			// Logging helper
			log := func(format string, args ...interface{}) {
				if !quiet {
					fmt.Printf(format+"\n", args...)
				}
			}

			log("Creating archive...")
			log("  Input:  %s", opts.InputPath)
			log("  Output: %s", opts.OutputPath)
			if useGitignore {
				log("  Mode:   respecting .gitignore")
			}
			if dryRun {
				log("  Mode:   DRY-RUN (no data written)")
			}
			log("")

			var overallBar *pb.ProgressBar
			if !quiet {
				overallBar = pb.New(0) // Total set once the pre-scan reports it
				overallBar.SetTemplateString(`{{counters .}} {{bar .}} {{percent . | green}} | {{etime .}}`)
				overallBar.SetMaxWidth(80)
			}

			progressCb := func(event archive.ProgressEvent) {
				if quiet {
					return
				}

				switch event.Type {
				case archive.EventStart:
					if overallBar != nil {
						overallBar.SetTotal(event.Total)
						overallBar.Start()
					}

				case archive.EventEntry:
					if overallBar != nil {
						overallBar.Increment()
					}
					if verbose {
						kind := "file"
						if event.Dir {
							kind = "dir "
						}
						fmt.Printf("  %s %s (%d bytes)\n", kind, event.EntryName, event.EntryBytes)
					}

				case archive.EventError:
					if verbose {
						fmt.Fprintf(os.Stderr, "  Error on %s\n", event.EntryName)
					}

				case archive.EventComplete:
					// Summary printed after Create() returns
				}
			}

			result, err := archive.Create(opts, progressCb)

			if overallBar != nil {
				overallBar.Finish()
			}

			if err != nil {
				return err
			}

			fmt.Printf("\nSummary:\n")
			fmt.Printf("  Entries written:  %d / %d (%d files, %d dirs)\n",
				result.EntriesWritten, result.EntriesTotal, result.FilesWritten, result.DirsWritten)
			fmt.Printf("  Source size:      %.2f MiB\n", float64(result.SourceBytes)/1024/1024)
			fmt.Printf("  Archive size:     %.2f MiB\n", float64(result.BytesWritten)/1024/1024)
			fmt.Printf("  Padding overhead: %.1f%%\n", result.Overhead())
			if result.Digest != "" {
				fmt.Printf("  BLAKE3:           %s\n", result.Digest)
			}

			if dryRun {
				fmt.Println("\nDry run complete - no archive written.")
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input directory (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output archive file")
	cmd.Flags().BoolVar(&useGitignore, "gitignore", false, "Exclude paths matched by .gitignore files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate without writing anything")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show detailed output")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Minimal output (overrides verbose)")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}
