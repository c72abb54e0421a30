package game

import (
	"errors"
	"sync"
)

var (
	ErrRoomNotFound           = errors.New("room not found")
	ErrRoomExists             = errors.New("room already exists")
	ErrRoomInProgress         = errors.New("room in progress")
	ErrInvalidStageTransition = errors.New("invalid stage for action")
	ErrUnknownConnection      = errors.New("unknown connection")
	ErrBadSnapshot            = errors.New("snapshot does not match room membership")
)

// ResetPolicy decides when a room's in-progress gate reopens after a game
// reaches Complete.
type ResetPolicy string

const (
	// ResetOnEmpty keeps the gate set until the last member leaves.
	ResetOnEmpty ResetPolicy = "on-empty"
	// ResetOnComplete reopens the room for a new game as soon as the
	// story is saved.
	ResetOnComplete ResetPolicy = "on-complete"
)

// Room holds the authoritative state for one game session. All methods
// take the room's own lock for the full read-modify-snapshot sequence, so
// two actions from different participants in the same room never observe
// a half-applied update, while unrelated rooms proceed independently.
type Room struct {
	Code string

	mu           sync.Mutex
	participants []*Participant
	inProgress   bool
	stage        Stage
	story        *Story
	stageIx      int
	promptIx     int
	reset        ResetPolicy
}

func newRoom(code string, reset ResetPolicy) *Room {
	return &Room{Code: code, stage: StageLobby, reset: reset}
}

// Join appends p to the member list. A gated room rejects the join with
// ErrRoomInProgress and leaves both the room and p untouched.
func (r *Room) Join(p *Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inProgress {
		return ErrRoomInProgress
	}
	p.Room = r.Code
	r.participants = append(r.participants, p)
	r.applyHostRule()
	return nil
}

// Leave removes the participant with the given connection id. It reports
// whether anyone was removed and is idempotent for repeated ids. The last
// member leaving tears the game down: gate reopened, stage back to Lobby,
// story dropped.
func (r *Room) Leave(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := false
	for i, q := range r.participants {
		if q.ID == id {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		return false
	}
	if len(r.participants) == 0 {
		r.inProgress = false
		r.stage = StageLobby
		r.story = nil
		r.stageIx, r.promptIx = 0, 0
		return true
	}
	r.applyHostRule()
	return true
}

// ReplaceParticipants installs a client-submitted reordering of the member
// list (the change-host flow). The snapshot must name exactly the current
// members; anything else is rejected with ErrBadSnapshot.
func (r *Room) ReplaceParticipants(list []Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replaceLocked(list)
}

// StartGame moves the room from Lobby to Authoring: gate set, story seeded
// from the supplied start text and prompt set, every submission reset to
// the sentinel, and the host marked raconteur.
func (r *Room) StartGame(start string, prompts StoryPrompts, list []Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stage != StageLobby {
		return ErrInvalidStageTransition
	}
	if err := r.replaceLocked(list); err != nil {
		return err
	}
	r.inProgress = true
	r.stage = StageAuthoring
	r.story = (&Story{Start: start, Text: start, Prompts: prompts}).Clone()
	r.stageIx, r.promptIx = 0, 0
	for i, p := range r.participants {
		p.CurrentSentence = SentinelSentence
		p.Raconteur = i == 0
	}
	return nil
}

// SubmitSentences applies an update-sentence snapshot and reports whether
// every member's submission now differs from the sentinel. The check runs
// eagerly on every submission, so it is idempotent and order-independent.
func (r *Room) SubmitSentences(list []Participant) (allIn bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stage != StageAuthoring {
		return false, ErrInvalidStageTransition
	}
	if err := r.replaceLocked(list); err != nil {
		return false, err
	}
	return r.allSubmittedLocked(), nil
}

// AdvanceStory replaces the story text together with its prompt and stage
// pointers as one atomic unit, then resets every submission for the next
// turn. Only valid while Authoring; a Complete room rejects it.
func (r *Room) AdvanceStory(story Story, promptIx, stageIx int, list []Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stage != StageAuthoring {
		return ErrInvalidStageTransition
	}
	if err := r.replaceLocked(list); err != nil {
		return err
	}
	r.story = story.Clone()
	r.promptIx = promptIx
	r.stageIx = stageIx
	for _, p := range r.participants {
		p.CurrentSentence = SentinelSentence
	}
	return nil
}

// BeginVoting moves the room from Authoring to Voting with the submitted
// story and participant snapshot.
func (r *Room) BeginVoting(story Story, list []Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stage != StageAuthoring {
		return ErrInvalidStageTransition
	}
	if err := r.replaceLocked(list); err != nil {
		return err
	}
	r.story = story.Clone()
	r.stage = StageVoting
	return nil
}

// SaveStory moves the room from Voting to Complete. The story is final
// afterwards; whether the gate reopens immediately depends on the room's
// reset policy.
func (r *Room) SaveStory(story Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stage != StageVoting {
		return ErrInvalidStageTransition
	}
	r.story = story.Clone()
	r.stage = StageComplete
	if r.reset == ResetOnComplete {
		r.inProgress = false
		r.stage = StageLobby
		r.stageIx, r.promptIx = 0, 0
		for _, p := range r.participants {
			p.CurrentSentence = SentinelSentence
			p.Raconteur = false
		}
	}
	return nil
}

// Stage returns the room's current lifecycle tag.
func (r *Room) Stage() Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stage
}

func (r *Room) InProgress() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inProgress
}

func (r *Room) setGate(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inProgress = v
}

// Snapshot deep-copies the room state for broadcast.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]Participant, len(r.participants))
	for i, p := range r.participants {
		users[i] = *p
	}
	return Snapshot{
		Room:        r.Code,
		Users:       users,
		InProgress:  r.inProgress,
		Stage:       r.stage,
		Story:       r.story.Clone(),
		PromptIndex: r.promptIx,
		StageIndex:  r.stageIx,
	}
}

// replaceLocked validates a client snapshot structurally (same count, same
// connection ids) and installs it. Callers hold r.mu.
func (r *Room) replaceLocked(list []Participant) error {
	if len(list) != len(r.participants) {
		return ErrBadSnapshot
	}
	current := make(map[string]bool, len(r.participants))
	for _, p := range r.participants {
		current[p.ID] = true
	}
	for _, p := range list {
		if !current[p.ID] {
			return ErrBadSnapshot
		}
		delete(current, p.ID)
	}
	repl := make([]*Participant, len(list))
	for i := range list {
		p := list[i]
		p.Room = r.Code
		repl[i] = &p
	}
	r.participants = repl
	r.applyHostRule()
	return nil
}

// applyHostRule enforces the invariant that the participant at index 0,
// and only that participant, carries the host flag. Callers hold r.mu.
func (r *Room) applyHostRule() {
	for i, p := range r.participants {
		p.Host = i == 0
	}
}

// allSubmittedLocked reports whether every member has replaced the
// sentinel for the current turn. Callers hold r.mu.
func (r *Room) allSubmittedLocked() bool {
	if len(r.participants) == 0 {
		return false
	}
	for _, p := range r.participants {
		if p.CurrentSentence == SentinelSentence {
			return false
		}
	}
	return true
}
