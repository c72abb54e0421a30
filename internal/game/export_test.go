package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportStory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "stories.txt")
	story := &Story{
		Start:   "Chris and Jordan open a can.",
		Text:    "Chris and Jordan open a can. It hisses ominously.",
		Prompts: testPrompts(),
		Contributions: []Contribution{
			{Author: "alice", StageIndex: 0, PromptIndex: 0, Text: "It hisses ominously."},
		},
	}

	require.NoError(t, ExportStory("room1", story, file))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "room room1")
	assert.Contains(t, out, "Start: Chris and Jordan open a can.")
	assert.Contains(t, out, "alice (backstory 1)")
	assert.Contains(t, out, "It hisses ominously.")

	// second save appends
	require.NoError(t, ExportStory("room1", story, file))
	data, err = os.ReadFile(file)
	require.NoError(t, err)
	assert.Greater(t, len(data), len(out))
}

func TestExportStoryNil(t *testing.T) {
	file := filepath.Join(t.TempDir(), "stories.txt")
	err := ExportStory("room1", nil, file)
	assert.Error(t, err)
	_, statErr := os.Stat(file)
	assert.True(t, os.IsNotExist(statErr))
}
