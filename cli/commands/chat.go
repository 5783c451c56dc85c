package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	kafeido "github.com/kafeido/kafeido-go"
	"github.com/kafeido/kafeido-go/core"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitAPI        = 2
	ExitNetwork    = 3
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) ExitCode() int { return e.code }
func (e *exitError) Unwrap() error { return e.err }

func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func (a *App) newChatCommand() *cobra.Command {
	var (
		prompt       string
		system       string
		temperature  float64
		maxTokens    int
		stream       bool
		waitForReady bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send a chat completion request",
		Long: `Send a chat completion request.

Examples:
  kafeido chat --model gpt-oss-20b --prompt "Hello"
  kafeido chat --prompt "Hello" --stream
  kafeido chat --prompt "Hello" --wait-ready --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.model == "" {
				return exitWithCode(ExitValidation, fmt.Errorf("model required: use --model flag or set default_model in config"))
			}

			client, err := a.newClient()
			if err != nil {
				return exitWithCode(ExitValidation, err)
			}

			params := kafeido.ChatCompletionNewParams{
				Model:        a.model,
				WaitForReady: waitForReady,
			}
			if system != "" {
				params.Messages = append(params.Messages, kafeido.ChatCompletionMessageParam{
					Role: kafeido.RoleSystem, Content: system,
				})
			}
			params.Messages = append(params.Messages, kafeido.ChatCompletionMessageParam{
				Role: kafeido.RoleUser, Content: prompt,
			})
			if temperature > 0 {
				params.Temperature = kafeido.Ptr(temperature)
			}
			if maxTokens > 0 {
				params.MaxTokens = kafeido.Ptr(maxTokens)
			}

			ctx := cmd.Context()
			if stream {
				return a.runStreamingChat(ctx, client, params, prompt)
			}
			return a.runBlockingChat(ctx, client, params, prompt)
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "User message (required)")
	cmd.Flags().StringVar(&system, "system", "", "System message")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Temperature (0 = use default)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Max tokens (0 = use default)")
	cmd.Flags().BoolVar(&stream, "stream", false, "Enable streaming output")
	cmd.Flags().BoolVar(&waitForReady, "wait-ready", false, "Wait for model warmup before sending")

	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func (a *App) runBlockingChat(ctx context.Context, client *kafeido.Client, params kafeido.ChatCompletionNewParams, prompt string) error {
	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return a.handleAPIError(err)
	}

	if a.jsonOutput {
		return a.outputJSON(completion)
	}

	fmt.Fprintf(a.stdout, "> %s\n", prompt)
	for _, choice := range completion.Choices {
		fmt.Fprintln(a.stdout, choice.Message.Content)
	}
	if a.verbose && completion.Usage != nil {
		fmt.Fprintf(a.stderr, "Usage: %d prompt + %d completion = %d total tokens\n",
			completion.Usage.PromptTokens,
			completion.Usage.CompletionTokens,
			completion.Usage.TotalTokens)
	}
	return nil
}

func (a *App) runStreamingChat(ctx context.Context, client *kafeido.Client, params kafeido.ChatCompletionNewParams, prompt string) error {
	stream, err := client.Chat.Completions.NewStreaming(ctx, params)
	if err != nil {
		return a.handleAPIError(err)
	}
	defer stream.Close()

	if !a.jsonOutput {
		fmt.Fprintf(a.stdout, "> %s\n", prompt)
	}

	var chunks []kafeido.ChatCompletionChunk
	for stream.Next() {
		chunk := stream.Current()
		if a.jsonOutput {
			chunks = append(chunks, chunk)
			continue
		}
		for _, choice := range chunk.Choices {
			fmt.Fprint(a.stdout, choice.Delta.Content)
		}
	}
	if err := stream.Err(); err != nil {
		return a.handleAPIError(err)
	}

	if a.jsonOutput {
		return a.outputJSON(chunks)
	}
	fmt.Fprintln(a.stdout)
	return nil
}

// handleAPIError maps client errors onto exit codes.
func (a *App) handleAPIError(err error) error {
	switch {
	case errors.Is(err, core.ErrConnection), errors.Is(err, core.ErrTimeout):
		return exitWithCode(ExitNetwork, err)
	default:
		return exitWithCode(ExitAPI, err)
	}
}

func (a *App) outputJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
