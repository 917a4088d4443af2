package main

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"langbot-backend/internal/models"
	"langbot-backend/internal/store"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const previewLength = 60

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= previewLength {
		return s
	}
	return string([]rune(s)[:previewLength]) + "..."
}

func newUsersCmd(opts *cliOptions) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect user accounts",
	}
	usersCmd.AddCommand(&cobra.Command{
		Use:   "show <email>",
		Short: "Show one user by email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.ToLower(strings.TrimSpace(args[0]))
			return withStore(cmd.Context(), func(st store.Store) error {
				user, err := st.GetUserByEmail(cmd.Context(), email)
				if err != nil {
					return fmt.Errorf("failed to get user %s: %w", email, err)
				}
				resp := models.NewUserResponse(user)
				return render(cmd.OutOrStdout(), opts.output, resp,
					[]string{"ID", "Email", "Name", "Preferred Language", "Created At"},
					[][]string{{user.ID.String(), user.Email, user.Name, user.PreferredLanguage, formatTime(user.CreatedAt)}})
			})
		},
	})
	return usersCmd
}

func newConversationsCmd(opts *cliOptions) *cobra.Command {
	conversationsCmd := &cobra.Command{
		Use:   "conversations",
		Short: "Inspect stored conversations",
	}
	conversationsCmd.AddCommand(&cobra.Command{
		Use:   "list <email>",
		Short: "List a user's conversations, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.ToLower(strings.TrimSpace(args[0]))
			return withStore(cmd.Context(), func(st store.Store) error {
				user, err := st.GetUserByEmail(cmd.Context(), email)
				if err != nil {
					return fmt.Errorf("failed to get user %s: %w", email, err)
				}
				convs, err := st.ListConversationsByUser(cmd.Context(), user.ID)
				if err != nil {
					return fmt.Errorf("failed to list conversations: %w", err)
				}

				resp := models.ListConversationsResponse{Conversations: []models.ConversationResponse{}}
				rows := [][]string{}
				for _, c := range convs {
					resp.Conversations = append(resp.Conversations, models.ConversationResponse{
						ID: c.ID, UserID: c.UserID, Language: c.Language, Title: c.Title,
						CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
					})
					rows = append(rows, []string{c.ID.String(), c.Title, c.Language, formatTime(c.CreatedAt), formatTime(c.UpdatedAt)})
				}
				return render(cmd.OutOrStdout(), opts.output, resp,
					[]string{"ID", "Title", "Language", "Created At", "Updated At"}, rows)
			})
		},
	})
	return conversationsCmd
}

func newMessagesCmd(opts *cliOptions) *cobra.Command {
	messagesCmd := &cobra.Command{
		Use:   "messages",
		Short: "Inspect stored messages",
	}
	messagesCmd.AddCommand(&cobra.Command{
		Use:   "list <conversation-id>",
		Short: "List a conversation's messages in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conversationID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid conversation id %q: %w", args[0], err)
			}
			return withStore(cmd.Context(), func(st store.Store) error {
				if _, err := st.GetConversationByID(cmd.Context(), conversationID); err != nil {
					return fmt.Errorf("failed to get conversation %s: %w", conversationID, err)
				}
				msgs, err := st.ListMessagesByConversation(cmd.Context(), conversationID)
				if err != nil {
					return fmt.Errorf("failed to list messages: %w", err)
				}

				resp := models.ListMessagesResponse{Messages: []models.MessageResponse{}}
				rows := [][]string{}
				for _, m := range msgs {
					resp.Messages = append(resp.Messages, models.MessageResponse{
						ID: m.ID, ConversationID: m.ConversationID, Sender: m.Sender,
						Content: m.Content, Timestamp: m.Timestamp,
					})
					rows = append(rows, []string{formatTime(m.Timestamp), m.Sender, preview(m.Content)})
				}
				return render(cmd.OutOrStdout(), opts.output, resp,
					[]string{"Timestamp", "Sender", "Content"}, rows)
			})
		},
	})
	return messagesCmd
}
