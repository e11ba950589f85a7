// Command returnsctl exercises the returns assistant from a terminal: extract
// a policy, evaluate a claim against it, or chat with the router.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/refset/returns-assistant/internal/logger"
	"github.com/refset/returns-assistant/internal/policy"
	"github.com/refset/returns-assistant/internal/returns"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cliSellerID stands in for a seller when policies come from local files
const cliSellerID = "cli"

type rootOptions struct {
	logLevel string
	now      string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "returnsctl",
		Short:        "Returns assistant developer tool",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log := logger.NewLogger(&logger.Config{
				Level:      logger.LogLevel(opts.logLevel),
				Output:     cmd.ErrOrStderr(),
				TimeFormat: "15:04:05",
			})
			cmd.SetContext(logger.ContextWithLogger(cmd.Context(), log))
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.now, "now", "", "evaluate as of this date (YYYY-MM-DD), default today")

	root.AddCommand(newExtractCmd(), newEvaluateCmd(opts), newChatCmd(opts))
	return root
}

func (o *rootOptions) clock() (func() time.Time, error) {
	if o.now == "" {
		return time.Now, nil
	}
	t, err := time.Parse(time.DateOnly, o.now)
	if err != nil {
		return nil, fmt.Errorf("--now: %w", err)
	}
	return func() time.Time { return t }, nil
}

// readPolicy extracts a policy from path, or stdin when path is "-"
func readPolicy(cmd *cobra.Command, path string) (*returns.StructuredPolicy, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	name := "stdin"
	if path != "-" {
		name = filepath.Base(path)
	}
	p := policy.Parse(string(data), cliSellerID, name, time.Now())
	logger.FromContext(cmd.Context()).Debug("Extracted policy",
		"path", path,
		"window_days", p.ReturnWindowDays,
		"original_tokens", p.OriginalTokenCount,
		"compressed_tokens", p.CompressedTokenCount)
	return &p, nil
}
