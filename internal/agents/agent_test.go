package agents

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type stubModel struct {
	reply    string
	err      error
	lastSeen []*schema.Message
}

func (s *stubModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	s.lastSeen = input
	if s.err != nil {
		return nil, s.err
	}
	return schema.AssistantMessage(s.reply, nil), nil
}

func TestAgentRunBuildsMessages(t *testing.T) {
	m := &stubModel{reply: "looks bullish"}
	a := NewAgent("news_analyst", "an equity news analyst", "summarize news", "you read everything", m)

	out, err := a.Run(context.Background(), "summarize these headlines")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "looks bullish" {
		t.Fatalf("got reply %q", out)
	}
	if len(m.lastSeen) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(m.lastSeen))
	}
	if m.lastSeen[0].Role != schema.System {
		t.Fatalf("first message role = %v", m.lastSeen[0].Role)
	}
	if !strings.Contains(m.lastSeen[0].Content, "an equity news analyst") {
		t.Fatalf("system prompt missing role: %q", m.lastSeen[0].Content)
	}
	if m.lastSeen[1].Content != "summarize these headlines" {
		t.Fatalf("user prompt = %q", m.lastSeen[1].Content)
	}
}

func TestAgentRunPropagatesModelError(t *testing.T) {
	wantErr := errors.New("rate limited")
	a := NewAgent("x", "r", "g", "b", &stubModel{err: wantErr})

	if _, err := a.Run(context.Background(), "p"); !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped model error, got %v", err)
	}
}

func TestTaskExecuteWritesReport(t *testing.T) {
	dir := t.TempDir()
	m := &stubModel{reply: "# Report\nall good"}
	a := NewAgent("n", "r", "g", "b", m)
	task := &Task{
		Name:        "news_summary",
		Description: "Today is {today_str}. Summarize {headlines}.",
		OutputFile:  "news_summary_report.md",
		Agent:       a,
	}

	out, err := task.Execute(context.Background(), dir, map[string]string{
		"today_str": "2026-08-26",
		"headlines": "AAPL up",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out != "# Report\nall good" {
		t.Fatalf("got report %q", out)
	}

	prompt := m.lastSeen[1].Content
	if strings.Contains(prompt, "{today_str}") || strings.Contains(prompt, "{headlines}") {
		t.Fatalf("placeholders not interpolated: %q", prompt)
	}
	if !strings.Contains(prompt, "2026-08-26") || !strings.Contains(prompt, "AAPL up") {
		t.Fatalf("inputs missing from prompt: %q", prompt)
	}

	data, err := os.ReadFile(filepath.Join(dir, "news_summary_report.md"))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if string(data) != out {
		t.Fatalf("file content %q != returned report %q", data, out)
	}
}

func TestTaskExecuteAgentFailure(t *testing.T) {
	dir := t.TempDir()
	a := NewAgent("n", "r", "g", "b", &stubModel{err: errors.New("boom")})
	task := &Task{Name: "t", Description: "d", OutputFile: "r.md", Agent: a}

	if _, err := task.Execute(context.Background(), dir, nil); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(filepath.Join(dir, "r.md")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("report should not exist after failure, stat err = %v", err)
	}
}
