package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mesh-intelligence/tabledb/internal/fsutil"
	"github.com/mesh-intelligence/tabledb/internal/storage"
	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// Side file names.
const (
	ActiveProjectFile = "active-project"
	ChangeSignalFile  = ".tabledb-changed"
)

// WriteActiveProject records root as the active project in configDir.
func WriteActiveProject(configDir, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	if !storage.Exists(abs) {
		return fmt.Errorf("%w: %s has no %s", types.ErrInvalidProjectDir, abs, storage.ManifestFile)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", configDir, err)
	}
	return fsutil.WriteFile(filepath.Join(configDir, ActiveProjectFile), []byte(abs+"\n"))
}

// ReadActiveProject returns the active project recorded in configDir. It
// fails with types.ErrNoActiveProject when none is recorded or the recorded
// directory no longer holds a project.
func ReadActiveProject(configDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(configDir, ActiveProjectFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", types.ErrNoActiveProject
		}
		return "", fmt.Errorf("reading active project: %w", err)
	}
	dir := strings.TrimSpace(string(data))
	if dir == "" || !storage.Exists(dir) {
		return "", types.ErrNoActiveProject
	}
	return dir, nil
}

// SignalExternalChange stamps the change signal file of the project at root
// with the current time, telling other processes to reload.
func SignalExternalChange(root string) (time.Time, error) {
	now := time.Now().UTC()
	err := fsutil.WriteFile(filepath.Join(root, ChangeSignalFile), []byte(now.Format(time.RFC3339Nano)+"\n"))
	return now, err
}

// ReadChangeSignal returns the last change stamp of the project at root. ok
// is false when no stamp exists or it cannot be parsed.
func ReadChangeSignal(root string) (stamp time.Time, ok bool, err error) {
	data, err := os.ReadFile(filepath.Join(root, ChangeSignalFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("reading change signal: %w", err)
	}
	stamp, perr := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(data)))
	if perr != nil {
		return time.Time{}, false, nil
	}
	return stamp, true, nil
}
