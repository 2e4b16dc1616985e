package httpdto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"pollapp/internal/domain/poll"
)

// ID is an entity identifier. It encodes as a JSON number and decodes from
// either a number or a numeric string.
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*id = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", s)
		}
		*id = ID(v)
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*id = ID(v)
	return nil
}

// Ref is a reference to another entity by id. Any other fields the client
// sends alongside the id are ignored.
type Ref struct {
	ID ID `json:"id"`
}

func refID(r *Ref) int64 {
	if r == nil {
		return 0
	}
	return int64(r.ID)
}

// CreateUserRequest is used for POST /users
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (r CreateUserRequest) ToDomain() poll.User {
	return poll.User{Username: r.Username, Email: r.Email}
}

// CreatePollRequest is used for POST /polls
type CreatePollRequest struct {
	Question    string                    `json:"question"`
	PublishedAt string                    `json:"publishedAt"`
	ValidUntil  string                    `json:"validUntil"`
	Creator     *Ref                      `json:"creator"`
	VoteOptions []CreateVoteOptionRequest `json:"voteOptions"`
}

// ToDomain returns the poll and the embedded option drafts.
func (r CreatePollRequest) ToDomain() (poll.Poll, []poll.VoteOption) {
	p := poll.Poll{
		Question:    r.Question,
		PublishedAt: r.PublishedAt,
		ValidUntil:  r.ValidUntil,
		CreatorID:   refID(r.Creator),
	}
	var drafts []poll.VoteOption
	for _, o := range r.VoteOptions {
		drafts = append(drafts, o.ToDomain())
	}
	return p, drafts
}

// CreateVoteOptionRequest is used for POST /voteoptions. A presentationOrder
// sent by the client is ignored; the store assigns it.
type CreateVoteOptionRequest struct {
	Caption           string `json:"caption"`
	PresentationOrder int    `json:"presentationOrder"`
	Poll              *Ref   `json:"poll"`
}

func (r CreateVoteOptionRequest) ToDomain() poll.VoteOption {
	return poll.VoteOption{Caption: r.Caption, PollID: refID(r.Poll)}
}

// CreateVoteRequest is used for POST /votes
type CreateVoteRequest struct {
	User       *Ref `json:"user"`
	VoteOption *Ref `json:"voteOption"`
}

func (r CreateVoteRequest) ToDomain() poll.Vote {
	return poll.Vote{UserID: refID(r.User), VoteOptionID: refID(r.VoteOption)}
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// VoteOptionDTO represents an option in API responses
type VoteOptionDTO struct {
	ID                int64  `json:"id"`
	Caption           string `json:"caption"`
	PresentationOrder int    `json:"presentationOrder"`
	PollID            *int64 `json:"pollId,omitempty"`
}

// PollDTO represents a poll in API responses. Options are listed in
// presentation order.
type PollDTO struct {
	ID          int64           `json:"id"`
	Question    string          `json:"question"`
	PublishedAt string          `json:"publishedAt"`
	ValidUntil  string          `json:"validUntil"`
	Creator     *UserDTO        `json:"creator"`
	VoteOptions []VoteOptionDTO `json:"voteOptions"`
}

// VoteDTO represents a vote in API responses
type VoteDTO struct {
	ID          int64          `json:"id"`
	PublishedAt string         `json:"publishedAt"`
	User        *UserDTO       `json:"user"`
	VoteOption  *VoteOptionDTO `json:"voteOption"`
}

// FromUser converts a domain user to UserDTO
func FromUser(u poll.User) UserDTO {
	return UserDTO{ID: u.ID, Username: u.Username, Email: u.Email}
}

// FromUserSlice converts a slice of domain users to UserDTO slice
func FromUserSlice(users []poll.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = FromUser(u)
	}
	return dtos
}

// FromVoteOption converts a domain option to VoteOptionDTO
func FromVoteOption(o poll.VoteOption) VoteOptionDTO {
	dto := VoteOptionDTO{
		ID:                o.ID,
		Caption:           o.Caption,
		PresentationOrder: o.PresentationOrder,
	}
	if o.PollID != 0 {
		pollID := o.PollID
		dto.PollID = &pollID
	}
	return dto
}

// FromVoteOptionSlice converts a slice of domain options to VoteOptionDTO slice
func FromVoteOptionSlice(options []poll.VoteOption) []VoteOptionDTO {
	dtos := make([]VoteOptionDTO, len(options))
	for i, o := range options {
		dtos[i] = FromVoteOption(o)
	}
	return dtos
}

// FromPoll converts a domain poll together with its resolved creator and options
func FromPoll(p poll.Poll, creator *poll.User, options []poll.VoteOption) PollDTO {
	dto := PollDTO{
		ID:          p.ID,
		Question:    p.Question,
		PublishedAt: p.PublishedAt,
		ValidUntil:  p.ValidUntil,
		VoteOptions: FromVoteOptionSlice(options),
	}
	if creator != nil {
		u := FromUser(*creator)
		dto.Creator = &u
	}
	return dto
}

// FromVote converts a domain vote together with its resolved user and option
func FromVote(v poll.Vote, user *poll.User, option *poll.VoteOption) VoteDTO {
	dto := VoteDTO{ID: v.ID, PublishedAt: v.PublishedAt}
	if user != nil {
		u := FromUser(*user)
		dto.User = &u
	}
	if option != nil {
		o := FromVoteOption(*option)
		dto.VoteOption = &o
	}
	return dto
}

// FromVoteCounts renders option id -> count with string keys, as JSON
// objects require.
func FromVoteCounts(counts map[int64]int) map[string]int {
	out := make(map[string]int, len(counts))
	for optionID, n := range counts {
		out[strconv.FormatInt(optionID, 10)] = n
	}
	return out
}
