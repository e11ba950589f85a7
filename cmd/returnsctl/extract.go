package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/refset/returns-assistant/internal/policy"
)

func newExtractCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "extract <policy-file|->",
		Short: "Extract structured rules from a free-text return policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPolicy(cmd, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			fmt.Fprint(out, policy.Compact(p))
			fmt.Fprintf(out, "# tokens: %d -> %d (ratio %.2f)\n",
				p.OriginalTokenCount, p.CompressedTokenCount, p.CompressionRatio())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full policy as JSON")
	return cmd
}
