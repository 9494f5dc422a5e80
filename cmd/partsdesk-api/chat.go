package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/PabloGalante/partsdesk/internal/app/conversation"
	"github.com/PabloGalante/partsdesk/internal/domain"
	"github.com/PabloGalante/partsdesk/internal/observability"
)

var chatConversationID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the agent from the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// keep the prompt readable
		observability.Configure(os.Stderr, "error")

		app, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		id := chatConversationID
		if id == "" {
			id = "cli-" + uuid.NewString()
		}
		return runChat(cmd.Context(), app.Conversations, domain.ConversationID(id), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatConversationID, "conversation", "", "conversation id to continue (a new one is created by default)")
}

func runChat(ctx context.Context, svc *conversation.Service, id domain.ConversationID, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "PartsDesk chat (%s). Type \"exit\" to quit.\n", id)

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
		case "exit", "quit":
			return nil
		}

		res, err := svc.ProcessMessage(ctx, conversation.ProcessMessageInput{
			ConversationID: id,
			Message:        line,
		})
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		fmt.Fprintf(out, "\n%s\n", res.Text)
		for _, c := range res.ProductCards {
			fmt.Fprintf(out, "  [%s] %s  %s  %s\n", c.PartNumber, c.Name, c.Price, c.BuyLink)
		}
		fmt.Fprintln(out)
	}
}
