package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pageza/nutrichat/backend/internal/app"
)

const missingInputPrompt = "Please select a condition and ask a question."

var errMissingInput = errors.New("condition and question are required")

var (
	askCondition string
	askJSON      bool
)

var conditionsCmd = &cobra.Command{
	Use:   "conditions",
	Short: "List the conditions in the knowledge table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := app.LoadKnowledge(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		for _, c := range store.DistinctConditions() {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask whether a food suits a condition",
	Long: `Finds the food mentioned in the question, looks up the curated
recommendation for the chosen condition and has the model explain it.

Example:
  nutrichat ask --condition Hypertension "Can I eat apples?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		condition := strings.TrimSpace(askCondition)
		if condition == "" || query == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), missingInputPrompt)
			return errMissingInput
		}

		a, err := app.Build(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		res := a.Advisor.Answer(cmd.Context(), condition, query)
		out := cmd.OutOrStdout()
		if askJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		fmt.Fprintln(out, res.Render())
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Build(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Serve(cmd.Context())
	},
}

func init() {
	askCmd.Flags().StringVarP(&askCondition, "condition", "c", "", "Health condition, e.g. Hypertension")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the full result as JSON")
}
