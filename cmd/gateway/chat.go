package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"agentic/gateway/pkg/cli"
	"agentic/gateway/pkg/client"
	"agentic/gateway/pkg/providers"
	"agentic/gateway/pkg/relay"
)

var chatFlags struct {
	url          string
	apiKey       string
	systemPrompt string
	stream       bool
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a running gateway",
	Long: `Open a session on a running gateway and chat from the terminal.

Each line is sent as one message. Type /history to print the conversation
and /exit (or end input) to leave; the session is deleted on exit.

The API key is taken from --api-key, or from ANTHROPIC_API_KEY when the flag
is empty.

Examples:
  gateway chat --url http://localhost:8080
  gateway chat --stream=false --system "Answer in one sentence."`,
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey := chatFlags.apiKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return cli.NewCommandError("chat", errors.New("an API key is required (--api-key or ANTHROPIC_API_KEY)"))
		}

		c := client.New(chatFlags.url, client.WithUserAgent("gateway-cli/"+Version))
		opts := chatOptions{systemPrompt: chatFlags.systemPrompt, stream: chatFlags.stream}
		if err := runChat(cli.SetupSignalHandler(), c, apiKey, opts, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
			return cli.NewCommandError("chat", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatFlags.url, "url", "http://localhost:8080", "gateway base URL")
	chatCmd.Flags().StringVar(&chatFlags.apiKey, "api-key", "", "provider API key for the session")
	chatCmd.Flags().StringVar(&chatFlags.systemPrompt, "system", "", "system prompt sent with every message")
	chatCmd.Flags().BoolVar(&chatFlags.stream, "stream", true, "stream replies over Server-Sent Events")
}

type chatOptions struct {
	systemPrompt string
	stream       bool
}

// runChat drives one interactive session until in is exhausted, the user
// exits, or ctx is cancelled.
func runChat(ctx context.Context, c *client.Client, apiKey string, opts chatOptions, in io.Reader, out io.Writer) error {
	id, err := c.CreateSession(ctx, apiKey)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	defer func() {
		// ctx may already be cancelled by Ctrl+C.
		_ = c.DeleteSession(context.WithoutCancel(ctx), id)
	}()

	fmt.Fprintf(out, "Connected to %s (session %s)\n", c.BaseURL(), id)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/history":
			if err := printHistory(ctx, c, id, out); err != nil {
				return err
			}
			continue
		}

		if opts.stream {
			err = streamReply(ctx, c, id, line, opts.systemPrompt, out)
		} else {
			err = sendReply(ctx, c, id, line, opts.systemPrompt, out)
		}
		if client.IsSessionNotFound(err) {
			return errors.New("session expired")
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}

func sendReply(ctx context.Context, c *client.Client, id, message, systemPrompt string, out io.Writer) error {
	reply, err := c.SendMessage(ctx, id, message, systemPrompt)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, reply.Response)
	return nil
}

func streamReply(ctx context.Context, c *client.Client, id, message, systemPrompt string, out io.Writer) error {
	err := c.StreamMessage(ctx, id, message, systemPrompt, func(f relay.Frame) error {
		switch f.Type {
		case providers.KindText:
			fmt.Fprint(out, f.Content)
		case providers.KindToolUse:
			fmt.Fprintf(out, "\n[tool %s %s]\n", f.ToolName, f.ToolInput)
		case providers.KindToolResult:
			fmt.Fprintf(out, "\n[tool result %s]\n", f.ToolResult)
		case providers.KindError:
			fmt.Fprintf(out, "\nError: %s", f.Content)
		}
		return nil
	})
	fmt.Fprintln(out)
	return err
}

func printHistory(ctx context.Context, c *client.Client, id string, out io.Writer) error {
	history, err := c.GetHistory(ctx, id)
	if err != nil {
		return fmt.Errorf("get history: %w", err)
	}
	for _, turn := range history {
		fmt.Fprintf(out, "%s: %s\n", turn.Role, turn.Content)
	}
	return nil
}
