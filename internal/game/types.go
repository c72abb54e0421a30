package game

// Stage tags a room's position in the game lifecycle.
type Stage string

const (
	StageLobby     Stage = "Lobby"
	StageAuthoring Stage = "Authoring"
	StageVoting    Stage = "Voting"
	StageComplete  Stage = "Complete"
)

// SentinelSentence is the placeholder a participant carries until they
// submit a line for the current turn.
const SentinelSentence = ". . ."

type Participant struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Icon            string `json:"icon"`
	Score           int    `json:"score"`
	Raconteur       bool   `json:"raconteur"`
	CurrentSentence string `json:"currentSentence"`
	Host            bool   `json:"host"`
	Room            string `json:"room"`
}

// PromptStage is one named chapter of a story's guided-writing structure
// (backstory, conflict, resolution) with its ordered prompts.
type PromptStage struct {
	Name    string   `json:"name"`
	Prompts []string `json:"prompts"`
}

type StoryPrompts []PromptStage

type Contribution struct {
	Author      string `json:"author"`
	StageIndex  int    `json:"stageIndex"`
	PromptIndex int    `json:"promptIndex"`
	Text        string `json:"text"`
}

type Story struct {
	Start         string         `json:"start"`
	Text          string         `json:"story"`
	Prompts       StoryPrompts   `json:"prompts"`
	Contributions []Contribution `json:"contributions"`
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *Story) Clone() *Story {
	if s == nil {
		return nil
	}
	out := &Story{Start: s.Start, Text: s.Text}
	out.Prompts = make(StoryPrompts, len(s.Prompts))
	for i, ps := range s.Prompts {
		out.Prompts[i] = PromptStage{Name: ps.Name, Prompts: append([]string(nil), ps.Prompts...)}
	}
	out.Contributions = append([]Contribution(nil), s.Contributions...)
	return out
}

// Snapshot is the self-consistent view of a room broadcast to clients
// after every mutation. Clients treat it as read-only until the next
// authoritative update.
type Snapshot struct {
	Room        string        `json:"room"`
	Users       []Participant `json:"users"`
	InProgress  bool          `json:"roomInProgress"`
	Stage       Stage         `json:"gameStage"`
	Story       *Story        `json:"story,omitempty"`
	PromptIndex int           `json:"prompt"`
	StageIndex  int           `json:"stage"`
}
