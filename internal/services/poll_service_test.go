package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"pollapp/internal/domain/poll"
	"pollapp/internal/events"
	pollredis "pollapp/internal/redis"
	"pollapp/internal/store"
	poll_errors "pollapp/pkg/errors"
	"pollapp/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	channel  string
	envelope events.Envelope
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{channel: channel, envelope: env})
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.msgs))
	for i, m := range p.msgs {
		out[i] = m.envelope.EventType
	}
	return out
}

func newPollService(t *testing.T, cache CountCache) (*PollService, *store.Store, *recordingPublisher) {
	t.Helper()
	st := store.New()
	results := NewResultsService(st, cache, DefaultResultsConfig(), logger.NewNop())
	st.SetInvalidator(results)
	pub := &recordingPublisher{}
	return NewPollService(st, results, pub, logger.NewNop()), st, pub
}

func TestPollServiceGettersReportNotFound(t *testing.T) {
	svc, _, _ := newPollService(t, nil)
	ctx := context.Background()

	_, err := svc.GetUser(ctx, 1)
	assert.ErrorIs(t, err, poll_errors.ErrNotFound)
	_, err = svc.GetPoll(ctx, 1)
	assert.ErrorIs(t, err, poll_errors.ErrNotFound)
	_, err = svc.PollOptions(ctx, 1)
	assert.ErrorIs(t, err, poll_errors.ErrNotFound)
	_, err = svc.GetVoteOption(ctx, 1)
	assert.ErrorIs(t, err, poll_errors.ErrNotFound)
	_, err = svc.GetVote(ctx, 1)
	assert.ErrorIs(t, err, poll_errors.ErrNotFound)
}

func TestPollServicePublishesPollEvents(t *testing.T) {
	svc, _, pub := newPollService(t, nil)
	ctx := context.Background()

	alice := svc.CreateUser(ctx, poll.User{Username: "alice"})
	p := svc.CreatePoll(ctx, poll.Poll{Question: "Favorite color?", CreatorID: alice.ID}, nil)
	red := svc.CreateVoteOption(ctx, poll.VoteOption{Caption: "Red", PollID: p.ID})
	v := svc.CreateVote(ctx, poll.Vote{UserID: alice.ID, VoteOptionID: red.ID})
	svc.DeleteVote(ctx, v.ID)
	svc.DeletePoll(ctx, p.ID)

	assert.Equal(t, []string{
		events.EventTypePollCreated,
		events.EventTypePollOptionAdded,
		events.EventTypePollVoted,
		events.EventTypePollVoteRetracted,
		events.EventTypePollDeleted,
	}, pub.types())

	for _, m := range pub.msgs {
		assert.Equal(t, events.PollChannel(p.ID), m.channel)
		assert.Equal(t, events.AggregateTypePoll, m.envelope.AggregateType)
		assert.Equal(t, p.ID, m.envelope.AggregateID)
		assert.NotEmpty(t, m.envelope.ID)
	}

	var voted events.VotePayload
	require.NoError(t, json.Unmarshal(pub.msgs[2].envelope.Payload, &voted))
	assert.Equal(t, events.VotePayload{PollID: p.ID, VoteID: v.ID, OptionID: red.ID, UserID: alice.ID}, voted)
}

func TestPollServiceSkipsEventsWithoutPoll(t *testing.T) {
	svc, _, pub := newPollService(t, nil)
	ctx := context.Background()

	svc.CreateVoteOption(ctx, poll.VoteOption{Caption: "stray", PollID: 42})
	svc.CreateVote(ctx, poll.Vote{UserID: 1, VoteOptionID: 1})
	svc.DeletePoll(ctx, 42)
	svc.DeleteVote(ctx, 42)
	svc.DeleteUser(ctx, 42)

	assert.Empty(t, pub.types())
}

func TestPollServiceDeleteUserAnnouncesCreatedPolls(t *testing.T) {
	svc, _, pub := newPollService(t, nil)
	ctx := context.Background()

	alice := svc.CreateUser(ctx, poll.User{Username: "alice"})
	p1 := svc.CreatePoll(ctx, poll.Poll{Question: "one", CreatorID: alice.ID}, nil)
	p2 := svc.CreatePoll(ctx, poll.Poll{Question: "two", CreatorID: alice.ID}, nil)
	pub.msgs = nil

	svc.DeleteUser(ctx, alice.ID)

	require.Len(t, pub.msgs, 2)
	assert.Equal(t, events.PollChannel(p1.ID), pub.msgs[0].channel)
	assert.Equal(t, events.PollChannel(p2.ID), pub.msgs[1].channel)
	assert.Empty(t, svc.ListPolls(ctx))
}

func TestPollServicePublishFailureDoesNotFailMutation(t *testing.T) {
	svc, _, pub := newPollService(t, nil)
	pub.err = errors.New("broker down")
	ctx := context.Background()

	p := svc.CreatePoll(ctx, poll.Poll{Question: "q"}, nil)

	got, err := svc.GetPoll(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "q", got.Question)
}

func TestPollServiceWithoutPublisher(t *testing.T) {
	st := store.New()
	results := NewResultsService(st, nil, DefaultResultsConfig(), logger.NewNop())
	svc := NewPollService(st, results, nil, logger.NewNop())

	assert.NotPanics(t, func() {
		svc.CreatePoll(context.Background(), poll.Poll{Question: "q"}, nil)
	})
}

func TestPollServiceColorPollScenario(t *testing.T) {
	svc, _, _ := newPollService(t, nil)
	ctx := context.Background()

	alice := svc.CreateUser(ctx, poll.User{Username: "alice", Email: "alice@example.com"})
	bob := svc.CreateUser(ctx, poll.User{Username: "bob", Email: "bob@example.com"})
	p := svc.CreatePoll(ctx, poll.Poll{Question: "Favorite color?", CreatorID: alice.ID}, nil)
	red := svc.CreateVoteOption(ctx, poll.VoteOption{Caption: "Red", PollID: p.ID})
	blue := svc.CreateVoteOption(ctx, poll.VoteOption{Caption: "Blue", PollID: p.ID})

	svc.CreateVote(ctx, poll.Vote{UserID: bob.ID, VoteOptionID: red.ID})
	assert.Equal(t, map[int64]int{red.ID: 1}, svc.VoteCounts(ctx, p.ID))

	svc.CreateVote(ctx, poll.Vote{UserID: bob.ID, VoteOptionID: blue.ID})
	assert.Equal(t, map[int64]int{red.ID: 1, blue.ID: 1}, svc.VoteCounts(ctx, p.ID))

	svc.DeletePoll(ctx, p.ID)
	assert.Empty(t, svc.VoteCounts(ctx, p.ID))
	assert.Empty(t, svc.ListVotes(ctx))
	assert.Len(t, svc.ListUsers(ctx), 2)
}

func TestPollServiceVoteCountsThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc, _, _ := newPollService(t, pollredis.NewVoteCountCache(client))
	ctx := context.Background()

	bob := svc.CreateUser(ctx, poll.User{Username: "bob"})
	p := svc.CreatePoll(ctx, poll.Poll{Question: "q"}, nil)
	red := svc.CreateVoteOption(ctx, poll.VoteOption{Caption: "Red", PollID: p.ID})
	blue := svc.CreateVoteOption(ctx, poll.VoteOption{Caption: "Blue", PollID: p.ID})

	key := pollredis.VoteCountKey(p.ID)
	assert.Empty(t, svc.VoteCounts(ctx, p.ID))
	assert.False(t, mr.Exists(key), "empty tallies are not cached")

	svc.CreateVote(ctx, poll.Vote{UserID: bob.ID, VoteOptionID: red.ID})
	assert.Equal(t, map[int64]int{red.ID: 1}, svc.VoteCounts(ctx, p.ID))
	require.True(t, mr.Exists(key))
	assert.Equal(t, "1", mr.HGet(key, "1"))
	assert.Equal(t, 60*time.Second, mr.TTL(key))

	svc.CreateVote(ctx, poll.Vote{UserID: bob.ID, VoteOptionID: blue.ID})
	assert.False(t, mr.Exists(key), "a new vote drops the cached tally")
	assert.Equal(t, map[int64]int{red.ID: 1, blue.ID: 1}, svc.VoteCounts(ctx, p.ID))

	mr.Close()
	assert.Equal(t, map[int64]int{red.ID: 1, blue.ID: 1}, svc.VoteCounts(ctx, p.ID))
}
