package types

// InferRequest is the body of POST /infer. Both fields are optional and
// default to the empty string when omitted.
type InferRequest struct {
	// Instructions prepended to the prompt under the System-Prompt label.
	// example: You are a terse assistant.
	SystemPrompt string `json:"system_prompt,omitempty" example:"You are a terse assistant."`
	// The user's question or instruction.
	// example: Write a haiku about the ocean.
	UserPrompt string `json:"user_prompt,omitempty" example:"Write a haiku about the ocean."`
}

// InferResponse wraps the decoded generation. The text includes the echoed
// prompt; the decode step does not strip the input portion.
type InferResponse struct {
	// Full decoded output, prompt included.
	Response string `json:"response"`
}

// TokenizeRequest is the body of POST /tokenize.
type TokenizeRequest struct {
	// Text to tokenize.
	// example: hello world
	Content string `json:"content,omitempty" example:"hello world"`
}

// TokenizeResponse is returned by POST /tokenize.
type TokenizeResponse struct {
	// Token ids in model vocabulary order.
	Tokens []int32 `json:"tokens"`
	// Number of tokens.
	// example: 2
	Count int `json:"count" example:"2"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Identifier of the checkpoint this process serves.
	// example: smollm2-135m-instruct
	ModelID string `json:"model_id" example:"smollm2-135m-instruct"`
	// Absolute path of the resolved model artifact.
	// example: /home/user/.cache/inferd/smollm2-135m-instruct-q8_0.gguf
	ModelPath string `json:"model_path" example:"/home/user/.cache/inferd/smollm2-135m-instruct-q8_0.gguf"`
	// Lifecycle state of the engine (loading, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Last error observed by the engine (if any).
	LastError string `json:"last_error,omitempty"`
	// Number of requests waiting for admission.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Requests currently generating (0 or 1; generation is serialized).
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Maximum queued requests before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Total completed generations since start.
	// example: 12
	GenerationsTotal uint64 `json:"generations_total" example:"12"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
