// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"syncbin-cli/internal/caesar"

	"github.com/spf13/cobra"
)

func newCaesarCommand(app *App) *cobra.Command {
	var offset int
	cmd := &cobra.Command{
		Use:   "caesar",
		Short: "Rotate the letters of each input line",
		Long: `Read lines from standard input and print every Caesar rotation of each,
one per line, or only the rotation given by --offset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hasOffset := cmd.Flags().Changed("offset")
			r := bufio.NewReader(app.stdin)
			for {
				line, err := r.ReadString('\n')
				if line != "" {
					line = strings.TrimSuffix(line, "\n")
					if hasOffset {
						fmt.Fprintln(app.stdout, caesar.Rotate(line, offset))
					} else {
						for _, rotated := range caesar.All(line) {
							fmt.Fprintln(app.stdout, rotated)
						}
					}
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().IntVarP(&offset, "offset", "o", 0, "print only this rotation")
	return addVersionFlag(cmd)
}
