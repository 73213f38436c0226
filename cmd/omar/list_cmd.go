// cmd/omar/list_cmd.go

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osmora/go-omar/pkg/inspect"
)

func listCmd() *cobra.Command {
	var inputPath string
	var long bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the entries of an OMAR archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &inspect.Options{
				InputPath: inputPath,
			}

			progressCb := func(e *inspect.Entry) {
				if quiet {
					return
				}
				if long {
					kind := "f"
					if e.Dir {
						kind = "d"
					}
					fmt.Printf("%s %10d  %s\n", kind, e.Size, e.Name)
				} else {
					fmt.Println(e.Name)
				}
			}

			result, err := inspect.Inspect(opts, progressCb)
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Printf("\nSummary:\n")
				fmt.Printf("  Entries:      %d (%d files, %d dirs)\n",
					result.EntryCount, result.FileCount, result.DirCount)
				fmt.Printf("  Content size: %d bytes\n", result.DataBytes)
				fmt.Printf("  Padding:      %d bytes\n", result.PaddingBytes)
				fmt.Printf("  Archive size: %d bytes\n", result.ArchiveSize)
				fmt.Printf("  BLAKE3:       %s\n", result.Digest)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Archive file (required)")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show entry kind and size")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress per-entry output")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}
