package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/refset/returns-assistant/internal/claims"
	"github.com/refset/returns-assistant/internal/eligibility"
	"github.com/refset/returns-assistant/internal/returns"
)

type claimFlags struct {
	policyPath string
	req        claims.Request
}

func (f *claimFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.policyPath, "policy", "", "seller return policy text file, - for stdin")
	fs.StringVar(&f.req.ProductName, "product", "", "product name")
	fs.StringVar(&f.req.Category, "category", "", "product category")
	fs.Float64Var(&f.req.Price, "price", 0, "purchase price")
	fs.StringVar(&f.req.PurchaseDate, "purchase-date", "", "purchase date (YYYY-MM-DD or RFC 3339)")
	fs.StringVar(&f.req.Condition, "condition", "", "item condition")
	fs.StringVar(&f.req.Reason, "reason", "", "return reason, e.g. defective or CHANGED_MIND")
	fs.StringVar(&f.req.Description, "description", "", "free-text description")
}

func (f *claimFlags) build(opts *rootOptions) (*returns.ReturnClaim, error) {
	now, err := opts.clock()
	if err != nil {
		return nil, err
	}
	req := f.req
	req.SellerID = cliSellerID
	return claims.NewBuilder(now).Build(req)
}

type evaluation struct {
	Claim        *returns.ReturnClaim       `json:"claim"`
	Verdict      returns.EligibilityVerdict `json:"verdict"`
	RefundAmount float64                    `json:"refund_amount"`
	RefundReason string                     `json:"refund_reason"`
	NextSteps    []string                   `json:"next_steps"`
}

func newEvaluateCmd(opts *rootOptions) *cobra.Command {
	flags := &claimFlags{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Check a return claim against a seller policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := readPolicy(cmd, flags.policyPath)
			if err != nil {
				return err
			}
			claim, err := flags.build(opts)
			if err != nil {
				return err
			}
			now, _ := opts.clock()
			e := eligibility.New(eligibility.WithClock(now))

			res := evaluation{Claim: claim, Verdict: e.Evaluate(p, claim)}
			res.RefundAmount, res.RefundReason = e.Refund(p, claim)
			res.NextSteps = eligibility.NextSteps(p, &res.Verdict)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("policy")
	_ = cmd.MarkFlagRequired("purchase-date")
	return cmd
}
