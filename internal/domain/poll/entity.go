package poll

// User represents a registered voter. CreatedPollIDs and VoteIDs are the
// back references kept in sync by the store.
type User struct {
	ID             int64
	Username       string
	Email          string
	CreatedPollIDs []int64
	VoteIDs        []int64
}

// Poll represents a question with an ordered list of options.
// CreatorID is zero until the creator reference resolves.
type Poll struct {
	ID          int64
	Question    string
	PublishedAt string
	ValidUntil  string
	CreatorID   int64
	OptionIDs   []int64
}

// VoteOption represents one selectable answer of a poll.
type VoteOption struct {
	ID                int64
	Caption           string
	PresentationOrder int
	PollID            int64
}

// Vote represents one ballot cast by a user for an option.
type Vote struct {
	ID           int64
	PublishedAt  string
	UserID       int64
	VoteOptionID int64
}

// Clone returns a copy that shares no slices with u.
func (u User) Clone() User {
	u.CreatedPollIDs = cloneIDs(u.CreatedPollIDs)
	u.VoteIDs = cloneIDs(u.VoteIDs)
	return u
}

// Clone returns a copy that shares no slices with p.
func (p Poll) Clone() Poll {
	p.OptionIDs = cloneIDs(p.OptionIDs)
	return p
}

func cloneIDs(ids []int64) []int64 {
	if ids == nil {
		return nil
	}
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}
