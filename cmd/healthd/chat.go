package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var chatUserID string

// chatCmd runs an interactive session against the turn engine without the
// HTTP layer in between. Useful for local testing.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat session against the local turn engine",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatUserID, "user", "u", "local", "user ID for the session")
}

func runChat(cmd *cobra.Command, args []string) error {
	engine, st, _, err := buildEngine()
	if err != nil {
		return err
	}
	defer st.Close()

	fmt.Println("healthd chat - type 'exit' to quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "exit" || message == "quit" {
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.TurnTimeoutDuration())
		result := engine.HandleTurn(ctx, chatUserID, message)
		cancel()

		fmt.Println(result.Reply)
		for _, rec := range result.ToolCalls {
			status := "ok"
			if rec.Err != "" {
				status = "failed: " + rec.Err
			}
			fmt.Printf("  [%s %s]\n", rec.Tool, status)
		}
	}
	return scanner.Err()
}
