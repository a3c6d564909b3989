package agents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModel is the narrow slice of the eino model surface the agents need.
// *openai.ChatModel satisfies it; tests substitute a stub.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Agent is one analyst persona bound to a chat model.
type Agent struct {
	Name      string
	Role      string
	Goal      string
	Backstory string

	model ChatModel
}

func NewAgent(name, role, goal, backstory string, m ChatModel) *Agent {
	return &Agent{
		Name:      name,
		Role:      role,
		Goal:      goal,
		Backstory: backstory,
		model:     m,
	}
}

func (a *Agent) systemPrompt() string {
	return fmt.Sprintf("You are %s. %s\nYour goal: %s", a.Role, a.Backstory, a.Goal)
}

// Run sends one task prompt through the agent's model and returns the
// completion text.
func (a *Agent) Run(ctx context.Context, taskPrompt string) (string, error) {
	if a.model == nil {
		return "", fmt.Errorf("agent %s has no chat model", a.Name)
	}

	msg, err := a.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(a.systemPrompt()),
		schema.UserMessage(taskPrompt),
	})
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", a.Name, err)
	}
	return msg.Content, nil
}

// Task is one unit of analyst work: a templated description executed by its
// agent, with the result persisted as a report file.
type Task struct {
	Name           string
	Description    string
	ExpectedOutput string
	OutputFile     string
	Agent          *Agent
}

// Execute interpolates {placeholder} values into the task description, runs
// the agent and writes the report into outputDir. Returns the report text.
func (t *Task) Execute(ctx context.Context, outputDir string, inputs map[string]string) (string, error) {
	if t.Agent == nil {
		return "", fmt.Errorf("task %s has no agent", t.Name)
	}

	prompt := interpolate(t.Description, inputs)
	if t.ExpectedOutput != "" {
		prompt += "\n\nExpected output: " + interpolate(t.ExpectedOutput, inputs)
	}

	report, err := t.Agent.Run(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("task %s: %w", t.Name, err)
	}

	if t.OutputFile != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return "", fmt.Errorf("task %s: create output dir: %w", t.Name, err)
		}
		path := filepath.Join(outputDir, t.OutputFile)
		if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
			return "", fmt.Errorf("task %s: write report: %w", t.Name, err)
		}
	}
	return report, nil
}

func interpolate(template string, inputs map[string]string) string {
	if len(inputs) == 0 {
		return template
	}
	pairs := make([]string, 0, len(inputs)*2)
	for k, v := range inputs {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
