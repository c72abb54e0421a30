package game

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExportStory appends a completed story to a results text file. It stands
// in for the external story store, which this server only consumes as an
// opaque service.
func ExportStory(roomCode string, story *Story, filename string) error {
	if story == nil {
		return fmt.Errorf("no story to export")
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Story %s - room %s\n", uuid.NewString(), roomCode))
	sb.WriteString(fmt.Sprintf("Saved: %s\n", time.Now().Format("2006-01-02 15:04:05")))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	sb.WriteString(fmt.Sprintf("Start: %s\n\n", story.Start))

	if len(story.Contributions) > 0 {
		sb.WriteString("Contributions:\n")
		for _, c := range story.Contributions {
			stageName := fmt.Sprintf("stage %d", c.StageIndex)
			if c.StageIndex >= 0 && c.StageIndex < len(story.Prompts) {
				stageName = story.Prompts[c.StageIndex].Name
			}
			sb.WriteString(fmt.Sprintf("- %s (%s %d): \"%s\"\n", c.Author, stageName, c.PromptIndex+1, c.Text))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Full text:\n")
	sb.WriteString(story.Text + "\n\n")

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	return nil
}
