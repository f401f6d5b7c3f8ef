package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"medintake/internal/intake"
	"medintake/internal/models"
)

// Client calls the OpenAI API for persona replies and structured record
// extraction. It implements intake.AgentClient.
type Client struct {
	client          *openai.Client
	chatModel       string
	extractionModel string
}

// NewClient constructs an OpenAI-backed agent client.
func NewClient(apiKey, chatModel, extractionModel string) *Client {
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}
	if extractionModel == "" {
		extractionModel = chatModel
	}
	return &Client{
		client:          openai.NewClient(apiKey),
		chatModel:       chatModel,
		extractionModel: extractionModel,
	}
}

// GenerateReply produces the next assistant message in the voice of the given
// persona, with the collected record summarized into the system prompt.
func (c *Client) GenerateReply(ctx context.Context, role models.AgentRole, history []models.Message, record models.MedicalRecord) (string, error) {
	prompt, ok := personaPrompts[role]
	if !ok {
		return "", fmt.Errorf("no persona prompt for role %q", role)
	}

	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt + "\n\nRecord collected so far:\n" + recordContext(record)},
	}
	msgs = append(msgs, toChatMessages(history)...)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    msgs,
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// ExtractRecordUpdates asks the extraction model for the structured updates
// learned this turn and parses its JSON answer.
func (c *Client) ExtractRecordUpdates(ctx context.Context, history []models.Message, record models.MedicalRecord) (intake.RecordUpdate, error) {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return intake.RecordUpdate{}, err
	}

	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: extractionPrompt},
		{Role: openai.ChatMessageRoleSystem, Content: "Record already collected: " + string(recordJSON)},
	}
	msgs = append(msgs, toChatMessages(history)...)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.extractionModel,
		Messages:    msgs,
		Temperature: 0,
	})
	if err != nil {
		return intake.RecordUpdate{}, err
	}
	if len(resp.Choices) == 0 {
		return intake.RecordUpdate{}, errors.New("empty extraction response")
	}

	var update intake.RecordUpdate
	raw := stripCodeFence(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &update); err != nil {
		return intake.RecordUpdate{}, fmt.Errorf("failed to parse extraction output: %w", err)
	}
	return update, nil
}

func toChatMessages(history []models.Message) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == models.MessageRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return msgs
}

// recordContext renders the record for the persona prompt; personas see what
// is known so they do not re-ask for it.
func recordContext(record models.MedicalRecord) string {
	var b strings.Builder
	if record.Vitals.Temperature != nil {
		fmt.Fprintf(&b, "- temperature: %.1f %s\n", record.Vitals.Temperature.Value, record.Vitals.Temperature.Unit)
	}
	if record.Vitals.Weight != nil {
		fmt.Fprintf(&b, "- weight: %.1f %s\n", record.Vitals.Weight.Value, record.Vitals.Weight.Unit)
	}
	if bp := record.Vitals.BloodPressure; bp != nil {
		b.WriteString("- blood pressure: ")
		if bp.Systolic != nil {
			fmt.Fprintf(&b, "%d", *bp.Systolic)
		} else {
			b.WriteString("?")
		}
		b.WriteString("/")
		if bp.Diastolic != nil {
			fmt.Fprintf(&b, "%d", *bp.Diastolic)
		} else {
			b.WriteString("?")
		}
		b.WriteString("\n")
	}
	if record.Vitals.CurrentStatus != "" {
		fmt.Fprintf(&b, "- current status: %s\n", record.Vitals.CurrentStatus)
	}
	if record.Vitals.StageCompleted {
		fmt.Fprintf(&b, "- triage decision: %s (%s)\n", record.Vitals.TriageDecision, record.Vitals.TriageReason)
	}
	if record.ChiefComplaint != "" {
		fmt.Fprintf(&b, "- chief complaint: %s\n", record.ChiefComplaint)
	}
	if record.HPI != "" {
		fmt.Fprintf(&b, "- history of present illness: %s\n", record.HPI)
	}
	if record.RecordsCheckCompleted {
		b.WriteString("- records check: done\n")
	}
	if len(record.Medications) > 0 {
		fmt.Fprintf(&b, "- medications: %s\n", strings.Join(record.Medications, ", "))
	}
	if len(record.Allergies) > 0 {
		fmt.Fprintf(&b, "- allergies: %s\n", strings.Join(record.Allergies, ", "))
	}
	if len(record.PastMedicalHistory) > 0 {
		fmt.Fprintf(&b, "- past medical history: %s\n", strings.Join(record.PastMedicalHistory, ", "))
	}
	if b.Len() == 0 {
		return "(nothing collected yet)"
	}
	return b.String()
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
