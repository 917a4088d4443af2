package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"langbot-backend/internal/models"
	"langbot-backend/internal/store/sqlite"

	"github.com/google/uuid"
)

type seeded struct {
	user *models.User
	conv *models.Conversation
}

func seedStore(t *testing.T) seeded {
	t.Helper()
	path := filepath.Join(t.TempDir(), "langbot.db")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_PATH", path)

	st, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()
	ctx := context.Background()

	user := &models.User{Email: "ana@x.com", HashedPassword: "hash", Name: "Ana", PreferredLanguage: "en"}
	if err := st.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	conv := &models.Conversation{UserID: user.ID, Language: "Italian", Title: "Italian Chat"}
	if err := st.CreateConversation(ctx, conv); err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	for _, m := range []struct{ sender, content string }{
		{models.SenderUser, "Ciao"},
		{models.SenderAI, "Ciao! Come stai? (Hi! How are you?)"},
	} {
		if err := st.AppendMessage(ctx, &models.Message{ConversationID: conv.ID, Sender: m.sender, Content: m.content}); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}
	return seeded{user: user, conv: conv}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "fresh", "langbot.db"))
	out, err := run(t, "migrate")
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out, "up to date") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestUsersShow(t *testing.T) {
	s := seedStore(t)

	out, err := run(t, "users", "show", "ANA@x.com")
	if err != nil {
		t.Fatalf("users show failed: %v", err)
	}
	if !strings.Contains(out, s.user.ID.String()) || !strings.Contains(out, "Preferred Language") {
		t.Errorf("unexpected table output:\n%s", out)
	}

	out, err = run(t, "users", "show", "ana@x.com", "-o", "json")
	if err != nil {
		t.Fatalf("users show json failed: %v", err)
	}
	var resp models.UserResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if resp.Email != "ana@x.com" || resp.Name != "Ana" {
		t.Errorf("unexpected user %+v", resp)
	}

	if _, err := run(t, "users", "show", "nobody@x.com"); err == nil {
		t.Error("expected error for unknown user")
	}
}

func TestConversationsAndMessagesList(t *testing.T) {
	s := seedStore(t)

	out, err := run(t, "conversations", "list", "ana@x.com", "--output", "json")
	if err != nil {
		t.Fatalf("conversations list failed: %v", err)
	}
	var convs models.ListConversationsResponse
	if err := json.Unmarshal([]byte(out), &convs); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if len(convs.Conversations) != 1 || convs.Conversations[0].ID != s.conv.ID {
		t.Fatalf("unexpected conversations %+v", convs)
	}

	out, err = run(t, "messages", "list", s.conv.ID.String())
	if err != nil {
		t.Fatalf("messages list failed: %v", err)
	}
	if !strings.Contains(out, "Ciao! Come stai?") || !strings.Contains(out, "Sender") {
		t.Errorf("unexpected messages table:\n%s", out)
	}

	if _, err := run(t, "messages", "list", "not-a-uuid"); err == nil {
		t.Error("expected error for malformed id")
	}
	if _, err := run(t, "messages", "list", uuid.NewString()); err == nil {
		t.Error("expected error for unknown conversation")
	}
}

func TestRejectsUnknownOutput(t *testing.T) {
	seedStore(t)
	if _, err := run(t, "users", "show", "ana@x.com", "-o", "yaml"); err == nil {
		t.Error("expected error for unsupported output format")
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("ab ", 40)
	got := preview(long)
	if !strings.HasSuffix(got, "...") || len([]rune(got)) != previewLength+3 {
		t.Errorf("unexpected preview %q", got)
	}
	if preview("a\n b") != "a b" {
		t.Errorf("expected whitespace to be collapsed")
	}
}
