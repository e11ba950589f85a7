package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/refset/returns-assistant/internal/claims"
	"github.com/refset/returns-assistant/internal/dialogue"
	"github.com/refset/returns-assistant/internal/eligibility"
	"github.com/refset/returns-assistant/internal/logger"
	"github.com/refset/returns-assistant/internal/returns"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var threshold float64
	flags := &claimFlags{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the returns assistant, one message per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := opts.clock()
			if err != nil {
				return err
			}
			state := returns.NewConversation(claims.NewID("conv"), now())
			if flags.policyPath != "" {
				if state.Policy, err = readPolicy(cmd, flags.policyPath); err != nil {
					return err
				}
			}
			if flags.req.PurchaseDate != "" {
				if state.Claim, err = flags.build(opts); err != nil {
					return err
				}
			}
			router := dialogue.NewRouter(
				dialogue.WithEscalationThreshold(threshold),
				dialogue.WithEvaluator(eligibility.New(eligibility.WithClock(now))),
				dialogue.WithClock(now),
			)
			log := logger.FromContext(cmd.Context())

			out := cmd.OutOrStdout()
			in := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "you> ")
				if !in.Scan() {
					fmt.Fprintln(out)
					return in.Err()
				}
				text := strings.TrimSpace(in.Text())
				switch text {
				case "":
					continue
				case "quit", "exit":
					return nil
				}
				var reply dialogue.Reply
				reply, state = router.Handle(state, text)
				log.Debug("Routed message",
					"intent", reply.Intent,
					"sentiment", state.Sentiment,
					"frustration", state.FrustrationLevel)
				fmt.Fprintf(out, "assistant> %s\n", reply.Text)
				if reply.Escalated {
					fmt.Fprintf(out, "[escalated: %s]\n", state.EscalationReason)
				}
			}
		},
	}
	flags.register(cmd)
	cmd.Flags().Float64Var(&threshold, "threshold", dialogue.DefaultEscalationThreshold, "frustration level that triggers a hand-off")
	return cmd
}
