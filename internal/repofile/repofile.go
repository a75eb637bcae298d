package repofile

import (
	"os"
	"path/filepath"
	"strings"
)

// FileName links a directory tree to a tasks API base URL.
const FileName = ".taskdesk-api"

// Find walks up from startDir looking for a .taskdesk-api file.
// Returns the API URL and the directory containing the file.
// Returns ("", "", nil) if not found.
func Find(startDir string) (apiURL, dir string, err error) {
	dir = startDir
	for {
		u, err := Read(dir)
		if err != nil {
			return "", "", err
		}
		if u != "" {
			return u, dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", nil
		}
		dir = parent
	}
}

func Write(dir, apiURL string) error {
	return os.WriteFile(filepath.Join(dir, FileName), []byte(apiURL+"\n"), 0644)
}

// Read returns the trimmed first line of dir/.taskdesk-api, or "" if the
// file does not exist.
func Read(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(data)), "\n")
	return strings.TrimSpace(line), nil
}

// Remove deletes dir/.taskdesk-api. A missing file is not an error.
func Remove(dir string) error {
	err := os.Remove(filepath.Join(dir, FileName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
