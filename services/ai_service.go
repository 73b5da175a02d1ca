package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const openAIChatURL = "https://api.openai.com/v1/chat/completions"

type AIService struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *zap.SugaredLogger
}

func NewAIService(apiKey, model string, logger *zap.SugaredLogger) *AIService {
	if model == "" {
		model = "gpt-4o"
	}
	return &AIService{
		apiKey:  apiKey,
		model:   model,
		baseURL: openAIChatURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a chat completion request and returns the first choice.
func (s *AIService) Complete(ctx context.Context, messages []chatMessage, temperature float64, maxTokens int) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("openai api key not configured")
	}
	body, err := json.Marshal(chatRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices (status %d)", resp.StatusCode)
	}
	return parsed.Choices[0].Message.Content, nil
}

// MealAnalysis is the structured result for both photo and text analysis.
type MealAnalysis struct {
	Description string   `json:"description"`
	Calories    float64  `json:"calories"`
	Protein     float64  `json:"protein"`
	Carbs       float64  `json:"carbs"`
	Fat         float64  `json:"fat"`
	Fiber       float64  `json:"fiber"`
	Sodium      float64  `json:"sodium"`
	Ingredients []string `json:"ingredients"`
	MealType    string   `json:"meal_type"`
	Confidence  float64  `json:"confidence"`
}

const mealAnalysisInstruction = `You are a nutrition analyst. Identify the meal and estimate its nutrition. Respond with JSON only, no markdown, no prose, using exactly these keys: description (string), calories, protein, carbs, fat, fiber, sodium (numbers; sodium in mg, others in g except calories in kcal), ingredients (array of strings), meal_type (breakfast|lunch|dinner|snack), confidence (0-1).`

// AnalyzeMealPhoto sends a base64 data URI to the vision endpoint and parses
// the structured estimate out of the reply.
func (s *AIService) AnalyzeMealPhoto(ctx context.Context, imageDataURI string) (*MealAnalysis, error) {
	messages := []chatMessage{
		{Role: "system", Content: mealAnalysisInstruction},
		{Role: "user", Content: []map[string]any{
			{"type": "text", "text": "Analyze this meal photo."},
			{"type": "image_url", "image_url": map[string]string{"url": imageDataURI}},
		}},
	}
	reply, err := s.Complete(ctx, messages, 0.0, 500)
	if err != nil {
		return nil, err
	}
	return parseMealAnalysis(reply)
}

// ParseMealText turns a free-text meal description into a structured estimate.
func (s *AIService) ParseMealText(ctx context.Context, description string) (*MealAnalysis, error) {
	messages := []chatMessage{
		{Role: "system", Content: mealAnalysisInstruction},
		{Role: "user", Content: "Meal: " + description},
	}
	reply, err := s.Complete(ctx, messages, 0.0, 400)
	if err != nil {
		return nil, err
	}
	return parseMealAnalysis(reply)
}

func parseMealAnalysis(reply string) (*MealAnalysis, error) {
	jsonPart, ok := extractJSON(reply)
	if !ok {
		return nil, fmt.Errorf("no json object in model reply")
	}
	var analysis MealAnalysis
	if err := json.Unmarshal([]byte(jsonPart), &analysis); err != nil {
		return nil, fmt.Errorf("parse meal analysis: %w", err)
	}
	return &analysis, nil
}

// MealFeedback gives a one-or-two sentence comment on a just-logged meal.
// Failure degrades to a neutral canned line rather than an error.
func (s *AIService) MealFeedback(ctx context.Context, mealDescription string, calories float64, goals *UserGoals) string {
	goalLine := ""
	if goals != nil {
		goalLine = fmt.Sprintf(" The user's daily calorie goal is %.0f kcal.", goals.CalorieGoal)
	}
	messages := []chatMessage{
		{Role: "system", Content: "You are a friendly nutrition coach. Give brief, encouraging feedback on a logged meal in one or two sentences. No lists, no markdown."},
		{Role: "user", Content: fmt.Sprintf("Meal: %s (%.0f kcal).%s", mealDescription, calories, goalLine)},
	}
	reply, err := s.Complete(ctx, messages, 0.7, 150)
	if err != nil {
		s.logger.Warnw("meal feedback fallback", "error", err)
		return "Nice job logging your meal! Keep tracking to stay on top of your goals."
	}
	return strings.TrimSpace(reply)
}

// DailyTip returns a short tip informed by the user's goal.
func (s *AIService) DailyTip(ctx context.Context, goal string) string {
	messages := []chatMessage{
		{Role: "system", Content: "You are a nutrition coach. Give one practical, specific nutrition tip in at most two sentences. No lists, no markdown."},
		{Role: "user", Content: "My goal is: " + goal},
	}
	reply, err := s.Complete(ctx, messages, 0.7, 120)
	if err != nil {
		s.logger.Warnw("daily tip fallback", "error", err)
		return "Aim to include a source of protein with every meal to stay full longer."
	}
	return strings.TrimSpace(reply)
}

// CoachAnswer answers a free-form question grounded in a context summary of
// the user's recent logs.
func (s *AIService) CoachAnswer(ctx context.Context, question, contextSummary string) (string, error) {
	messages := []chatMessage{
		{Role: "system", Content: "You are a supportive nutrition and wellness coach. Answer the user's question using their recent data where relevant. Be concise and practical. You are not a doctor; suggest professional care for medical concerns."},
		{Role: "user", Content: fmt.Sprintf("My recent data:\n%s\n\nQuestion: %s", contextSummary, question)},
	}
	reply, err := s.Complete(ctx, messages, 0.7, 500)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// extractJSON pulls the substring between the first '{' and the last '}' so
// replies wrapped in markdown fences still parse.
func extractJSON(reply string) (string, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return reply[start : end+1], true
}
