// Package store is the in-memory entity store of the poll service.
//
// Users, polls, vote options and votes live in flat maps keyed by id. The
// relationships between them are id lists on both sides and are only ever
// changed by the store's own create and delete paths, under one lock.
package store

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"pollapp/internal/domain/poll"
)

// Invalidator is told about polls whose cached results went stale.
type Invalidator interface {
	Invalidate(ctx context.Context, pollID int64)
}

// Store holds every entity of the process. The zero value is not usable,
// construct it with New.
type Store struct {
	mu sync.RWMutex

	users   map[int64]*poll.User
	polls   map[int64]*poll.Poll
	options map[int64]*poll.VoteOption
	votes   map[int64]*poll.Vote

	userSeq   int64
	pollSeq   int64
	optionSeq int64
	voteSeq   int64

	invalidator Invalidator
	now         func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:   make(map[int64]*poll.User),
		polls:   make(map[int64]*poll.Poll),
		options: make(map[int64]*poll.VoteOption),
		votes:   make(map[int64]*poll.Vote),
		now:     time.Now,
	}
}

// SetInvalidator registers the component notified after a vote lands on a poll.
func (s *Store) SetInvalidator(inv Invalidator) {
	s.mu.Lock()
	s.invalidator = inv
	s.mu.Unlock()
}

// --- Users ---

// CreateUser assigns a fresh id and indexes the user. Caller supplied
// back references are discarded.
func (s *Store) CreateUser(u poll.User) poll.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userSeq++
	u.ID = s.userSeq
	u.CreatedPollIDs = []int64{}
	u.VoteIDs = []int64{}

	stored := u
	s.users[u.ID] = &stored
	return stored.Clone()
}

func (s *Store) GetUser(id int64) (poll.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return poll.User{}, false
	}
	return u.Clone(), true
}

// ListUsers returns a copy of every user ordered by id.
func (s *Store) ListUsers() []poll.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.users, poll.User.Clone)
}

// --- Polls ---

// CreatePoll assigns a fresh id and indexes the poll. When CreatorID names
// an existing user the poll is linked into that user's created polls,
// otherwise CreatorID is cleared. Embedded option drafts get their PollID
// pointed at the new poll but are not stored; options are only persisted
// through CreateVoteOption, so the returned poll never lists them.
func (s *Store) CreatePoll(p poll.Poll, drafts []poll.VoteOption) poll.Poll {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pollSeq++
	p.ID = s.pollSeq
	p.OptionIDs = []int64{}

	if creator, ok := s.users[p.CreatorID]; ok && p.CreatorID != 0 {
		creator.CreatedPollIDs = append(creator.CreatedPollIDs, p.ID)
	} else {
		p.CreatorID = 0
	}

	for i := range drafts {
		drafts[i].PollID = p.ID
	}

	stored := p
	s.polls[p.ID] = &stored
	return stored.Clone()
}

func (s *Store) GetPoll(id int64) (poll.Poll, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.polls[id]
	if !ok {
		return poll.Poll{}, false
	}
	return p.Clone(), true
}

// ListPolls returns a copy of every poll ordered by id.
func (s *Store) ListPolls() []poll.Poll {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.polls, poll.Poll.Clone)
}

// --- Vote options ---

// CreateVoteOption assigns a fresh id and indexes the option. If PollID
// resolves, the option is appended to the poll and its presentation order
// is the number of options the poll had before. An unresolved option keeps
// PollID and PresentationOrder at zero.
func (s *Store) CreateVoteOption(o poll.VoteOption) poll.VoteOption {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.optionSeq++
	o.ID = s.optionSeq
	o.PresentationOrder = 0

	if p, ok := s.polls[o.PollID]; ok && o.PollID != 0 {
		if p.OptionIDs == nil {
			p.OptionIDs = []int64{}
		}
		o.PresentationOrder = len(p.OptionIDs)
		p.OptionIDs = append(p.OptionIDs, o.ID)
	} else {
		o.PollID = 0
	}

	stored := o
	s.options[o.ID] = &stored
	return stored
}

func (s *Store) GetVoteOption(id int64) (poll.VoteOption, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.options[id]
	if !ok {
		return poll.VoteOption{}, false
	}
	return *o, true
}

// ListVoteOptions returns a copy of every option ordered by id.
func (s *Store) ListVoteOptions() []poll.VoteOption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.options, identity[poll.VoteOption])
}

// PollOptions returns the options of a poll in presentation order.
func (s *Store) PollOptions(pollID int64) ([]poll.VoteOption, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.polls[pollID]
	if !ok {
		return nil, false
	}
	out := make([]poll.VoteOption, 0, len(p.OptionIDs))
	for _, id := range p.OptionIDs {
		if o, ok := s.options[id]; ok {
			out = append(out, *o)
		}
	}
	return out, true
}

// --- Votes ---

// CreateVote assigns a fresh id and a publishedAt of the current time in
// epoch milliseconds. The user and option references are resolved
// independently; an unresolved reference is cleared. When the option
// belongs to a poll the invalidator is told after the lock is released, and
// that poll's id is returned (0 otherwise). A user may hold any number of
// votes, also on the same poll.
func (s *Store) CreateVote(ctx context.Context, v poll.Vote) (poll.Vote, int64) {
	s.mu.Lock()

	s.voteSeq++
	v.ID = s.voteSeq
	v.PublishedAt = strconv.FormatInt(s.now().UnixMilli(), 10)

	if u, ok := s.users[v.UserID]; ok && v.UserID != 0 {
		u.VoteIDs = append(u.VoteIDs, v.ID)
	} else {
		v.UserID = 0
	}

	var pollID int64
	if o, ok := s.options[v.VoteOptionID]; ok && v.VoteOptionID != 0 {
		pollID = o.PollID
	} else {
		v.VoteOptionID = 0
	}

	stored := v
	s.votes[v.ID] = &stored
	inv := s.invalidator
	s.mu.Unlock()

	if pollID != 0 && inv != nil {
		inv.Invalidate(ctx, pollID)
	}
	return stored, pollID
}

func (s *Store) GetVote(id int64) (poll.Vote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.votes[id]
	if !ok {
		return poll.Vote{}, false
	}
	return *v, true
}

// ListVotes returns a copy of every vote ordered by id.
func (s *Store) ListVotes() []poll.Vote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.votes, identity[poll.Vote])
}

// PollOfVoteOption reports the poll an option belongs to.
func (s *Store) PollOfVoteOption(optionID int64) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.options[optionID]
	if !ok || o.PollID == 0 {
		return 0, false
	}
	return o.PollID, true
}

// TallyVotes counts the votes of a poll per option id with a full scan of
// the vote index. Options without votes are absent from the result.
func (s *Store) TallyVotes(pollID int64) map[int64]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int)
	for _, v := range s.votes {
		o, ok := s.options[v.VoteOptionID]
		if !ok || o.PollID != pollID {
			continue
		}
		counts[o.ID]++
	}
	return counts
}

func snapshot[T any](m map[int64]*T, clone func(T) T) []T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, clone(*m[id]))
	}
	return out
}

func identity[T any](v T) T { return v }
