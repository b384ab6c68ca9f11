package domain

// SubmissionState mirrors the host platform's submission lifecycle.
type SubmissionState string

const (
	StateSubmitted SubmissionState = "submitted"
	StateAccepted  SubmissionState = "accepted"
	StateConfirmed SubmissionState = "confirmed"
	StateRejected  SubmissionState = "rejected"
	StateCanceled  SubmissionState = "canceled"
	StateWithdrawn SubmissionState = "withdrawn"
	StateDraft     SubmissionState = "draft"
)

type Event struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type Track struct {
	ID      int64  `json:"id"`
	EventID int64  `json:"event_id"`
	Name    string `json:"name"`
	Color   string `json:"color,omitempty"`
}

type SubmissionType struct {
	ID      int64  `json:"id"`
	EventID int64  `json:"event_id"`
	Name    string `json:"name"`
}

type Submission struct {
	ID               int64           `json:"id"`
	EventID          int64           `json:"event_id"`
	Code             string          `json:"code"`
	Title            string          `json:"title"`
	Abstract         string          `json:"abstract,omitempty"`
	Description      string          `json:"description,omitempty"`
	ImageURL         string          `json:"image_url,omitempty"`
	State            SubmissionState `json:"state"`
	TrackID          *int64          `json:"track_id,omitempty"`
	SubmissionTypeID int64           `json:"submission_type_id"`
	Speakers         []string        `json:"speakers,omitempty"`
}
