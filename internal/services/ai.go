package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/team-task-api/internal/models"
)

// TaskGenerator turns free text into task drafts.
type TaskGenerator interface {
	GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error)
}

// GeneratedTask is a task draft suggested by the model. Drafts are never persisted.
type GeneratedTask struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
}

type AIService struct {
	client *openai.Client
	model  string
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

const taskExtractionPrompt = `You extract actionable tasks for a team task tracker.

Current time: %s

Text:
%s

Reply with a JSON object of the form:
{
  "tasks": [
    {
      "title": "short task title",
      "description": "what needs to be done",
      "priority": "one of low, medium, high, urgent",
      "due_date": "RFC3339 timestamp such as 2025-10-28T23:59:59Z, or null when no deadline is given"
    }
  ]
}

Rules:
- Return {"tasks": []} when the text contains no tasks
- Resolve relative deadlines ("tomorrow", "next week") against the current time
- Reply with JSON only`

// GenerateTasksFromText analyzes text and extracts tasks using OpenAI GPT
func (s *AIService) GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(taskExtractionPrompt, time.Now().Format(time.RFC3339), text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseGeneratedTasks(resp.Choices[0].Message.Content)
}

func parseGeneratedTasks(content string) ([]GeneratedTask, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var envelope struct {
		Tasks []GeneratedTask `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	tasks := make([]GeneratedTask, 0, len(envelope.Tasks))
	for _, t := range envelope.Tasks {
		t.Title = strings.TrimSpace(t.Title)
		if t.Title == "" {
			continue
		}
		if !t.Priority.Valid() {
			t.Priority = models.TaskPriorityMedium
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
