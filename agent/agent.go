// Package agent is the AI assistant behind the assist subcommand: it reads
// the log of a failed rebuild pass and suggests remediation steps.
package agent

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/finlog/ledger"
	"github.com/finlog/ledger/docs"
)

const model = "gemini-2.5-pro"

const systemInstruction = `
You assist the user of a personal finance ledger. Journal records replay into
cash balances, FIFO cost-basis lots and realized deals; a rebuild pass halts
on the first record it cannot apply and reports a blocking error.

You are given the log of the last rebuild pass and the documentation of the
error taxonomy. Explain in plain words what blocked the pass and list the
concrete steps (reference data to create, records to fix, commands to run)
that let the next pass complete. Be brief and concrete.
`

// Assistant wraps a Gemini chat primed on the error taxonomy docs.
type Assistant struct {
	client *genai.Client
	chat   *genai.Chat
}

// New creates an assistant. The client reads its API key from the
// environment (GEMINI_API_KEY).
func New(ctx context.Context) (*Assistant, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create genai client: %w", err)
	}

	topics, err := docs.GetTopics("errors", "rebuild", "corporate-actions")
	if err != nil {
		return nil, err
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{
			{Text: systemInstruction},
			{Text: "Documentation:\n\n" + topics},
		}},
	}
	chat, err := client.Chats.Create(ctx, model, config, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot start chat: %w", err)
	}
	return &Assistant{client: client, chat: chat}, nil
}

// Explain asks for remediation steps for a failed pass. It returns markdown.
func (a *Assistant) Explain(ctx context.Context, entries []ledger.Entry, replayErr *ledger.ReplayError) (string, error) {
	var b strings.Builder
	fmt.Fprintln(&b, "The last rebuild pass failed.")
	if replayErr != nil {
		fmt.Fprintf(&b, "Blocking error: %s\n", replayErr)
	}
	fmt.Fprintln(&b, "Pass log:")
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s\n", e)
	}
	fmt.Fprintln(&b, "What should I do?")

	content, err := a.ask(ctx, b.String())
	if err != nil {
		return "", err
	}
	return content, nil
}

// Ask forwards a free-form question, keeping the chat context from previous
// exchanges.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	return a.ask(ctx, question)
}

func (a *Assistant) ask(ctx context.Context, text string) (string, error) {
	resp, err := a.chat.Send(ctx, &genai.Part{Text: text})
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from assistant")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
