package events

// Event types follow the format: domain.action

// Poll events
const (
	EventTypePollCreated       = "poll.created"
	EventTypePollDeleted       = "poll.deleted"
	EventTypePollOptionAdded   = "poll.option_added"
	EventTypePollVoted         = "poll.voted"
	EventTypePollVoteRetracted = "poll.vote_retracted"
)

const AggregateTypePoll = "poll"

// PollPayload is carried by poll.created and poll.deleted.
type PollPayload struct {
	PollID    int64  `json:"poll_id"`
	Question  string `json:"question,omitempty"`
	CreatorID int64  `json:"creator_id,omitempty"`
}

// OptionPayload is carried by poll.option_added.
type OptionPayload struct {
	PollID            int64  `json:"poll_id"`
	OptionID          int64  `json:"option_id"`
	Caption           string `json:"caption"`
	PresentationOrder int    `json:"presentation_order"`
}

// VotePayload is carried by poll.voted and poll.vote_retracted.
type VotePayload struct {
	PollID   int64 `json:"poll_id"`
	VoteID   int64 `json:"vote_id"`
	OptionID int64 `json:"option_id"`
	UserID   int64 `json:"user_id,omitempty"`
}
