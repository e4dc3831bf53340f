package gateway

// ImageGenerationRequest is the body of POST /v1/images/generations.
type ImageGenerationRequest struct {
	Model          string  `json:"model" validate:"required"`
	Prompt         string  `json:"prompt" validate:"required"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Ratio          string  `json:"ratio,omitempty"`
	Resolution     string  `json:"resolution,omitempty" validate:"resolution_tier"`
	Seed           int64   `json:"seed,omitempty"`
	SampleStrength float64 `json:"sample_strength,omitempty"`
	Count          int     `json:"count,omitempty"`
}

// ImageCompositionRequest is the body of POST /v1/images/compositions. Images
// are data-URI or raw base64-encoded source image bytes.
type ImageCompositionRequest struct {
	Model          string   `json:"model" validate:"required"`
	Prompt         string   `json:"prompt" validate:"required"`
	NegativePrompt string   `json:"negative_prompt,omitempty"`
	Images         []string `json:"images" validate:"required,min=1"`
	Resolution     string   `json:"resolution,omitempty" validate:"resolution_tier"`
	Seed           int64    `json:"seed,omitempty"`
	SampleStrength float64  `json:"sample_strength,omitempty"`
}

// VideoGenerationRequest is the body of POST /v1/videos/generations.
type VideoGenerationRequest struct {
	Model           string   `json:"model" validate:"required"`
	Prompt          string   `json:"prompt" validate:"required"`
	NegativePrompt  string   `json:"negative_prompt,omitempty"`
	Images          []string `json:"images" validate:"required,min=1"`
	DurationSeconds int      `json:"duration_seconds,omitempty"`
	Seed            int64    `json:"seed,omitempty"`
}

// ChatMessage is one OpenAI-shaped chat message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the body of POST /v1/chat/completions, a
// passthrough surface that treats the content of the last message (whatever
// its role) as a text-to-image prompt (spec.md §6).
type ChatCompletionRequest struct {
	Model    string        `json:"model" validate:"required"`
	Messages []ChatMessage `json:"messages" validate:"required,min=1"`
}

// AsyncSubmitRequest enqueues a task. TaskType selects which operation the
// worker runs; the remaining fields mirror the corresponding sync request.
type AsyncSubmitRequest struct {
	TaskType        string   `json:"task_type" validate:"required,task_type"`
	Priority        int      `json:"priority,omitempty"`
	Model           string   `json:"model" validate:"required"`
	Prompt          string   `json:"prompt" validate:"required"`
	NegativePrompt  string   `json:"negative_prompt,omitempty"`
	Ratio           string   `json:"ratio,omitempty"`
	Resolution      string   `json:"resolution,omitempty" validate:"resolution_tier"`
	Images          []string `json:"images,omitempty"`
	DurationSeconds int      `json:"duration_seconds,omitempty"`
	Seed            int64    `json:"seed,omitempty"`
	SampleStrength  float64  `json:"sample_strength,omitempty"`
	Count           int      `json:"count,omitempty"`
}

// BatchSubmitRequest enqueues several jobs in one call.
type BatchSubmitRequest struct {
	Jobs []AsyncSubmitRequest `json:"jobs" validate:"required,min=1"`
}

// BatchCancelRequest cancels several tasks in one call.
type BatchCancelRequest struct {
	TaskIDs []string `json:"task_ids" validate:"required,min=1"`
}

// TaskResponse is the task representation returned by the async surface.
type TaskResponse struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Status      string      `json:"status"`
	Progress    int         `json:"progress"`
	Result      interface{} `json:"result,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   string      `json:"created_at"`
	UpdatedAt   string      `json:"updated_at"`
	StartedAt   *string     `json:"started_at,omitempty"`
	CompletedAt *string     `json:"completed_at,omitempty"`
}

// ModelInfo describes one available model for GET /v1/models.
type ModelInfo struct {
	ID     string `json:"id"`
	Region string `json:"region"`
}

// UsageResponse answers GET /usage/{session}.
type UsageResponse struct {
	SessionID string          `json:"session_id"`
	History   []UsageDayEntry `json:"history"`
}

// UsageDayEntry is one day's usage counters for a session.
type UsageDayEntry struct {
	Date        string `json:"date"`
	ImageCount  int    `json:"image_count"`
	VideoCount  int    `json:"video_count"`
	AvatarCount int    `json:"avatar_count"`
}
