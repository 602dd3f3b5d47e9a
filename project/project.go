package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"shapeloop/sequencer"
)

// SaveInfo represents a saved project file (for listing)
type SaveInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// ProjectsDir returns the projects directory path
func ProjectsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "shapeloop", "projects"), nil
}

// ProjectDir returns the path to a specific project
func ProjectDir(projectName string) (string, error) {
	base, err := ProjectsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, projectName), nil
}

// ListProjects returns all project folder names
func ListProjects() ([]string, error) {
	dir, err := ProjectsDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}

	sort.Strings(projects)
	return projects, nil
}

// ListSaves returns timestamped saves for a project, newest first
func ListSaves(projectName string) ([]SaveInfo, error) {
	dir, err := ProjectDir(projectName)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}

		// Parse filename: 2024-01-15_14-30-00.json or 2024-01-15_14-30-00_name.json
		baseName := strings.TrimSuffix(name, ".json")

		// Timestamp is first 19 chars: 2006-01-02_15-04-05
		if len(baseName) < 19 {
			continue
		}

		tsStr := baseName[:19]
		ts, err := time.Parse("2006-01-02_15-04-05", tsStr)
		if err != nil {
			// Not a timestamped file, skip
			continue
		}

		// Check for name after timestamp
		saveName := ""
		if len(baseName) > 20 && baseName[19] == '_' {
			saveName = baseName[20:] // everything after the underscore
		}

		saves = append(saves, SaveInfo{
			Filename:  name,
			Name:      saveName,
			Timestamp: ts,
		})
	}

	// Sort by timestamp, newest first
	sort.Slice(saves, func(i, j int) bool {
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})

	return saves, nil
}

// Save writes the engine's persistable state to the project with a
// timestamped filename, creating the project directory on first save
func Save(projectName string, p sequencer.Persistable) error {
	if projectName == "" {
		projectName = "untitled"
	}

	dir, err := ProjectDir(projectName)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return os.WriteFile(filepath.Join(dir, timestamp+".json"), data, 0644)
}

// Load reads a specific save (or the most recent if filename is empty)
func Load(projectName, filename string) (sequencer.Persistable, error) {
	var p sequencer.Persistable

	dir, err := ProjectDir(projectName)
	if err != nil {
		return p, err
	}

	if filename == "" {
		saves, err := ListSaves(projectName)
		if err != nil || len(saves) == 0 {
			return p, fmt.Errorf("no saves found in project %s", projectName)
		}
		filename = saves[0].Filename // saves are sorted newest first
	}

	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return p, err
	}

	if err := json.Unmarshal(data, &p); err != nil {
		return p, err
	}
	return p, nil
}

// LoadFile reads a save from an explicit path, for headless tools
func LoadFile(path string) (sequencer.Persistable, error) {
	var p sequencer.Persistable
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}

// Create creates a new empty project folder
func Create(name string) error {
	dir, err := ProjectDir(name)
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DeleteSave deletes a specific save file
func DeleteSave(projectName, filename string) error {
	dir, err := ProjectDir(projectName)
	if err != nil {
		return err
	}
	return os.Remove(filepath.Join(dir, filename))
}

// RenameSave renames a save file (changes the name part, keeps timestamp)
func RenameSave(projectName, oldFilename, newName string) error {
	dir, err := ProjectDir(projectName)
	if err != nil {
		return err
	}

	baseName := strings.TrimSuffix(oldFilename, ".json")
	if len(baseName) < 19 {
		return fmt.Errorf("invalid save filename")
	}
	tsStr := baseName[:19]

	var newFilename string
	if newName == "" {
		newFilename = tsStr + ".json"
	} else {
		newFilename = tsStr + "_" + sanitizeFilename(newName) + ".json"
	}

	return os.Rename(filepath.Join(dir, oldFilename), filepath.Join(dir, newFilename))
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	name = strings.ReplaceAll(name, ":", "-")
	for _, c := range []string{"*", "?", "\"", "<", ">", "|"} {
		name = strings.ReplaceAll(name, c, "")
	}
	return name
}

// Delete deletes an entire project folder
func Delete(name string) error {
	dir, err := ProjectDir(name)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

// Rename renames a project folder
func Rename(oldName, newName string) error {
	oldDir, err := ProjectDir(oldName)
	if err != nil {
		return err
	}
	newDir, err := ProjectDir(newName)
	if err != nil {
		return err
	}
	return os.Rename(oldDir, newDir)
}
