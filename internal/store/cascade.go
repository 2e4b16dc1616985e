package store

import "slices"

// DeleteUser removes a user together with every poll it created (and
// everything those polls own) and every vote it cast. Unknown ids are a no-op.
func (s *Store) DeleteUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteUser(id)
}

// DeletePoll removes a poll, its options and every vote on those options.
// Cached results of the poll are left to expire. Unknown ids are a no-op.
func (s *Store) DeletePoll(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletePoll(id)
}

// DeleteVote removes a single vote. It does not touch cached results.
// Unknown ids are a no-op.
func (s *Store) DeleteVote(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteVote(id)
}

// Polls go first: deletePoll reads the creator entry to unlink itself.
func (s *Store) deleteUser(id int64) {
	u, ok := s.users[id]
	if !ok {
		return
	}

	for _, pollID := range slices.Clone(u.CreatedPollIDs) {
		s.deletePoll(pollID)
	}
	for _, voteID := range slices.Clone(u.VoteIDs) {
		s.deleteVote(voteID)
	}

	delete(s.users, id)
}

// Votes go before options since they point at them.
func (s *Store) deletePoll(id int64) {
	p, ok := s.polls[id]
	if !ok {
		return
	}

	if creator, ok := s.users[p.CreatorID]; ok {
		creator.CreatedPollIDs = removeID(creator.CreatedPollIDs, id)
	}

	owned := make(map[int64]struct{}, len(p.OptionIDs))
	for _, optionID := range p.OptionIDs {
		owned[optionID] = struct{}{}
	}

	var doomed []int64
	for voteID, v := range s.votes {
		if _, hit := owned[v.VoteOptionID]; hit {
			doomed = append(doomed, voteID)
		}
	}
	for _, voteID := range doomed {
		s.deleteVote(voteID)
	}

	for optionID := range owned {
		delete(s.options, optionID)
	}

	delete(s.polls, id)
}

func (s *Store) deleteVote(id int64) {
	v, ok := s.votes[id]
	if !ok {
		return
	}

	if u, ok := s.users[v.UserID]; ok {
		u.VoteIDs = removeID(u.VoteIDs, id)
	}

	delete(s.votes, id)
}

func removeID(ids []int64, id int64) []int64 {
	return slices.DeleteFunc(ids, func(x int64) bool { return x == id })
}
