package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

var (
	askContext string
	askRaw     bool
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask the knowledge base a question",
	Long: `Searches the knowledge base for the query and prints a distilled answer.

The query is reduced to keywords, searched, chunked and ranked. The best
chunks are summarized within a token budget chosen from the kind of
question (simple, code example, complex). Use --raw to skip
summarization and print every ranked chunk.

Examples:
  kbrag ask "how do I run the tests"
  kbrag ask "example of a retry wrapper" --context "internal/http/client.go"
  kbrag ask database --raw --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askContext, "context", "c", "", "extra context such as the current file or topic")
	askCmd.Flags().BoolVar(&askRaw, "raw", false, "print ranked chunks without summarization")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

// askResult is the JSON rendering of an answer.
type askResult struct {
	Answer      string   `json:"answer"`
	Intent      string   `json:"intent,omitempty"`
	TokenBudget int      `json:"token_budget,omitempty"`
	Cached      bool     `json:"cached"`
	Degraded    bool     `json:"degraded"`
	Partial     bool     `json:"partial"`
	Sources     []string `json:"sources"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	answer, err := a.Knowledge.Ask(cmd.Context(), query, domain.AskOptions{
		Context: askContext,
		Raw:     askRaw,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, answer)
	}
	outputAskText(cmd, answer)
	return nil
}

func outputAskJSON(cmd *cobra.Command, answer *domain.Answer) error {
	result := askResult{
		Answer:      answer.Text,
		Intent:      string(answer.Intent),
		TokenBudget: answer.TokenBudget,
		Cached:      answer.Cached,
		Degraded:    answer.Degraded,
		Partial:     answer.Partial,
		Sources:     answer.Sources,
	}
	if result.Sources == nil {
		result.Sources = []string{}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAskText(cmd *cobra.Command, answer *domain.Answer) {
	st := newStyles(cmd.OutOrStdout())

	cmd.Println(answer.Text)

	if answer.Partial {
		cmd.Println()
		cmd.Println(st.Warn("Search timed out; results may be incomplete."))
	}
	if answer.Degraded {
		cmd.Println()
		cmd.Println(st.Warn("Summarization unavailable; showing the best matching chunks."))
	}

	if footer := answerFooter(answer); footer != "" {
		cmd.Println()
		cmd.Println(st.Muted(footer))
	}
}

// answerFooter summarises how an answer was produced, e.g.
// "intent: simple | budget: 1000 tokens | cached | 2 sources".
func answerFooter(answer *domain.Answer) string {
	var parts []string
	if answer.Intent != "" {
		parts = append(parts, "intent: "+string(answer.Intent))
	}
	if answer.TokenBudget > 0 {
		parts = append(parts, fmt.Sprintf("budget: %d tokens", answer.TokenBudget))
	}
	if answer.Cached {
		parts = append(parts, "cached")
	}
	switch n := len(answer.Sources); n {
	case 0:
	case 1:
		parts = append(parts, "1 source")
	default:
		parts = append(parts, fmt.Sprintf("%d sources", n))
	}
	return strings.Join(parts, " | ")
}
