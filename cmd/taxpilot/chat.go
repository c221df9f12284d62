package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/taxpilot-ai/taxpilot/internal/cli"
	"github.com/taxpilot-ai/taxpilot/internal/model"
)

// chatEngine is the slice of the engine the chat loop needs.
type chatEngine interface {
	HandleMessage(ctx context.Context, sessionID, utterance string) (*model.ChatResponse, error)
}

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive filing conversation",
		RunE:  runChat,
	}

	cmd.Flags().String("session", "", "resume an existing session id")

	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	eng := buildEngine(store)

	sessionID, _ := cmd.Flags().GetString("session")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	fmt.Println(cli.FormatTitle("TaxPilot"))
	fmt.Println(cli.SubtleStyle.Render("Session " + sessionID))
	fmt.Println(cli.SubtleStyle.Render("Type your message, or 'quit' to exit."))
	fmt.Println()

	// Kick off with a greeting so the assistant speaks first.
	if err := exchange(ctx, eng, sessionID, "hello"); err != nil {
		return err
	}

	reader := cli.NewNonBlockingReader(os.Stdin)
	for {
		fmt.Print(cli.FormatPrompt("you"))

		line, err := reader.ReadLine(ctx)
		if errors.Is(err, cli.ErrInputCancelled) || errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}

		if err := exchange(ctx, eng, sessionID, line); err != nil {
			return err
		}
	}
}

func exchange(ctx context.Context, eng chatEngine, sessionID, message string) error {
	resp, err := eng.HandleMessage(ctx, sessionID, message)
	if err != nil {
		return fmt.Errorf("failed to process message: %w", err)
	}

	fmt.Println(cli.AssistantStyle.Render(resp.Message))
	for _, card := range resp.Cards {
		fmt.Println(cli.RenderCard(card))
	}
	if resp.State.NeedsReview {
		fmt.Println(cli.FormatWarning("Some items are flagged for review by a licensed preparer."))
	}
	fmt.Println()

	return nil
}
