package services

import (
	"context"
	"encoding/json"

	"pollapp/internal/domain/poll"
	"pollapp/internal/events"
	"pollapp/internal/store"
	poll_errors "pollapp/pkg/errors"
	"pollapp/pkg/logger"
)

// PollService is the entry point of the HTTP layer into the store. It turns
// absence into ErrNotFound and announces changes on the poll's channel.
// Publishing is best effort and never fails a mutation.
type PollService struct {
	store     *store.Store
	results   *ResultsService
	publisher events.Publisher
	logger    *logger.Logger
}

func NewPollService(st *store.Store, results *ResultsService, publisher events.Publisher, l *logger.Logger) *PollService {
	return &PollService{store: st, results: results, publisher: publisher, logger: l}
}

// --- Users ---

func (s *PollService) CreateUser(ctx context.Context, u poll.User) poll.User {
	return s.store.CreateUser(u)
}

func (s *PollService) ListUsers(ctx context.Context) []poll.User {
	return s.store.ListUsers()
}

func (s *PollService) GetUser(ctx context.Context, id int64) (poll.User, error) {
	u, ok := s.store.GetUser(id)
	if !ok {
		return poll.User{}, poll_errors.ErrNotFound
	}
	return u, nil
}

func (s *PollService) DeleteUser(ctx context.Context, id int64) {
	u, ok := s.store.GetUser(id)
	if !ok {
		return
	}
	s.store.DeleteUser(id)

	for _, pollID := range u.CreatedPollIDs {
		s.publish(ctx, pollID, events.EventTypePollDeleted, events.PollPayload{PollID: pollID})
	}
}

// --- Polls ---

func (s *PollService) CreatePoll(ctx context.Context, p poll.Poll, drafts []poll.VoteOption) poll.Poll {
	created := s.store.CreatePoll(p, drafts)
	if len(drafts) > 0 {
		s.logger.WithContext(ctx).Debugf("poll %d: %d embedded options not persisted", created.ID, len(drafts))
	}
	s.publish(ctx, created.ID, events.EventTypePollCreated, events.PollPayload{
		PollID:    created.ID,
		Question:  created.Question,
		CreatorID: created.CreatorID,
	})
	return created
}

func (s *PollService) ListPolls(ctx context.Context) []poll.Poll {
	return s.store.ListPolls()
}

func (s *PollService) GetPoll(ctx context.Context, id int64) (poll.Poll, error) {
	p, ok := s.store.GetPoll(id)
	if !ok {
		return poll.Poll{}, poll_errors.ErrNotFound
	}
	return p, nil
}

func (s *PollService) PollOptions(ctx context.Context, id int64) ([]poll.VoteOption, error) {
	options, ok := s.store.PollOptions(id)
	if !ok {
		return nil, poll_errors.ErrNotFound
	}
	return options, nil
}

func (s *PollService) DeletePoll(ctx context.Context, id int64) {
	if _, ok := s.store.GetPoll(id); !ok {
		return
	}
	s.store.DeletePoll(id)
	s.publish(ctx, id, events.EventTypePollDeleted, events.PollPayload{PollID: id})
}

// --- Vote options ---

func (s *PollService) CreateVoteOption(ctx context.Context, o poll.VoteOption) poll.VoteOption {
	created := s.store.CreateVoteOption(o)
	if created.PollID != 0 {
		s.publish(ctx, created.PollID, events.EventTypePollOptionAdded, events.OptionPayload{
			PollID:            created.PollID,
			OptionID:          created.ID,
			Caption:           created.Caption,
			PresentationOrder: created.PresentationOrder,
		})
	}
	return created
}

func (s *PollService) ListVoteOptions(ctx context.Context) []poll.VoteOption {
	return s.store.ListVoteOptions()
}

func (s *PollService) GetVoteOption(ctx context.Context, id int64) (poll.VoteOption, error) {
	o, ok := s.store.GetVoteOption(id)
	if !ok {
		return poll.VoteOption{}, poll_errors.ErrNotFound
	}
	return o, nil
}

// --- Votes ---

// CreateVote stores the vote; the store invalidates the poll's cached
// results. Earlier votes of the same user are kept.
func (s *PollService) CreateVote(ctx context.Context, v poll.Vote) poll.Vote {
	created, pollID := s.store.CreateVote(ctx, v)
	if pollID != 0 {
		s.publish(ctx, pollID, events.EventTypePollVoted, events.VotePayload{
			PollID:   pollID,
			VoteID:   created.ID,
			OptionID: created.VoteOptionID,
			UserID:   created.UserID,
		})
	}
	return created
}

func (s *PollService) ListVotes(ctx context.Context) []poll.Vote {
	return s.store.ListVotes()
}

func (s *PollService) GetVote(ctx context.Context, id int64) (poll.Vote, error) {
	v, ok := s.store.GetVote(id)
	if !ok {
		return poll.Vote{}, poll_errors.ErrNotFound
	}
	return v, nil
}

// DeleteVote removes a vote. Cached results of its poll are not
// invalidated and may report the vote until they expire.
func (s *PollService) DeleteVote(ctx context.Context, id int64) {
	v, ok := s.store.GetVote(id)
	if !ok {
		return
	}
	pollID, hasPoll := s.store.PollOfVoteOption(v.VoteOptionID)
	s.store.DeleteVote(id)

	if hasPoll {
		s.publish(ctx, pollID, events.EventTypePollVoteRetracted, events.VotePayload{
			PollID:   pollID,
			VoteID:   v.ID,
			OptionID: v.VoteOptionID,
			UserID:   v.UserID,
		})
	}
}

// --- Results ---

func (s *PollService) VoteCounts(ctx context.Context, pollID int64) map[int64]int {
	return s.results.GetVoteCounts(ctx, pollID)
}

func (s *PollService) publish(ctx context.Context, pollID int64, eventType string, payload any) {
	if s.publisher == nil {
		return
	}
	env, err := events.NewEnvelope(eventType, events.AggregateTypePoll, pollID, payload)
	if err != nil {
		s.logger.WithContext(ctx).Warnf("build %s event: %v", eventType, err)
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		s.logger.WithContext(ctx).Warnf("marshal %s event: %v", eventType, err)
		return
	}
	if err := s.publisher.Publish(ctx, events.PollChannel(pollID), data); err != nil {
		s.logger.WithContext(ctx).Warnf("publish %s for poll %d: %v", eventType, pollID, err)
	}
}
