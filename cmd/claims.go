package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/verity-group/claimcheck/internal/model"
	"github.com/verity-group/claimcheck/internal/store"
)

var (
	claimsLanguage string
	claimsType     string
	claimsVerdict  string
	claimsLimit    int
)

var claimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "Inspect stored claims and verdicts",
}

// claimListing pairs a stored claim with its latest verdict, if any.
type claimListing struct {
	Claim   model.Claim    `json:"claim"`
	Verdict *model.Verdict `json:"verdict,omitempty"`
}

var claimsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored claims with their latest verdicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		claims, err := st.ListClaims(ctx, store.ClaimFilter{
			Language: claimsLanguage,
			Type:     model.ClaimType(claimsType),
			Limit:    claimsLimit,
		})
		if err != nil {
			return eris.Wrap(err, "list claims")
		}

		listings := make([]claimListing, 0, len(claims))
		for _, c := range claims {
			v, err := st.GetVerdictBySignature(ctx, c.Signature)
			if err != nil {
				return eris.Wrap(err, "load verdict")
			}
			if claimsVerdict != "" && (v == nil || string(v.Label) != claimsVerdict) {
				continue
			}
			listings = append(listings, claimListing{Claim: c, Verdict: v})
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	},
}

func init() {
	claimsListCmd.Flags().StringVar(&claimsLanguage, "language", "", "filter by language")
	claimsListCmd.Flags().StringVar(&claimsType, "type", "", "filter by claim type")
	claimsListCmd.Flags().StringVar(&claimsVerdict, "verdict", "", "filter by verdict label")
	claimsListCmd.Flags().IntVar(&claimsLimit, "limit", 50, "maximum claims to list")
	claimsCmd.AddCommand(claimsListCmd)
	rootCmd.AddCommand(claimsCmd)
}
