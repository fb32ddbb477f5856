package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelect Action = "select"
	ActionSubmit Action = "submit"
	ActionRetake Action = "retake"
	ActionPing   Action = "ping"
)

// RequestPayload is every client message. Index and Answer are only read
// for select.
type RequestPayload struct {
	Action Action `json:"action"`
	Index  *int   `json:"index,omitempty"`
	Answer string `json:"ans,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventSuccess Event = "success"
	EventGraded  Event = "graded"
	EventPong    Event = "pong"
)

// SuccessResponse acknowledges select and retake with the current answers.
type SuccessResponse struct {
	Event   Event    `json:"event"`
	State   string   `json:"state"`
	Answers []string `json:"answers"`
}

// GradedResponse reports a submission. Persisted is false when the score
// could not be written to history.
type GradedResponse struct {
	Event         Event  `json:"event"`
	Score         int    `json:"score"`
	Total         int    `json:"total"`
	AttemptNumber int    `json:"attempt_number"`
	Correct       []bool `json:"correct"`
	Persisted     bool   `json:"persisted"`
	Warning       string `json:"warning,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
