// Package output owns the output root for a run: resolving it according to
// the configured mode, creating it, and (in final mode) swapping a finished
// work directory into place.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/backmassage/polysplit/internal/config"
)

// ErrDestructiveActionRefused is returned when a delete was not confirmed
// or targets a root-like path.
var ErrDestructiveActionRefused = errors.New("destructive action refused")

// TimestampLayout formats the suffix of backup and work directory names.
const TimestampLayout = "20060102-150405"

// Logger is the minimal logging interface needed by Manager.
type Logger interface {
	Info(string, ...any)
	Warn(string, ...any)
	Dry(string, ...any)
}

// State tracks a Root through the run.
type State int

const (
	Requested State = iota
	Resolved
	Populated
	Swapped
)

func (s State) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Populated:
		return "populated"
	case Swapped:
		return "swapped"
	default:
		return "requested"
	}
}

// Root is the resolved output location.
type Root struct {
	Requested string // Path the user asked for.
	Path      string // Where the finished output lives (or will, in final mode).
	Work      string // Final mode only: sibling directory jobs write into.
	State     State

	overwriteConfirmed bool
}

// Target returns the directory jobs write into.
func (r *Root) Target() string {
	if r.Work != "" {
		return r.Work
	}
	return r.Path
}

// Manager applies one output mode. Zero-valued Now defaults to time.Now.
type Manager struct {
	Mode          config.OutputMode
	FinalConflict config.FinalConflict
	DryRun        bool
	AssumeYes     bool
	Confirmer     Confirmer
	Log           Logger
	Now           func() time.Time
}

// NewManager builds a Manager from cfg.
func NewManager(cfg *config.Config, confirmer Confirmer, log Logger) *Manager {
	return &Manager{
		Mode:          cfg.Mode,
		FinalConflict: cfg.FinalConflict,
		DryRun:        cfg.DryRun,
		AssumeYes:     cfg.AssumeYes,
		Confirmer:     confirmer,
		Log:           log,
	}
}

// Prepare resolves requested according to the mode and creates the
// directory jobs will write into. Any refusal happens here, before a single
// job runs.
func (m *Manager) Prepare(requested string) (*Root, error) {
	requested = filepath.Clean(requested)
	root := &Root{Requested: requested, Path: requested}

	exists, err := pathExists(requested)
	if err != nil {
		return nil, err
	}

	switch m.Mode {
	case config.ModeNew:
		if exists {
			if root.Path, err = nextFree(requested); err != nil {
				return nil, err
			}
			m.Log.Info("Output %s exists; using %s", requested, root.Path)
		}

	case config.ModeBackup:
		if exists {
			if err := m.backup(requested); err != nil {
				return nil, err
			}
		}

	case config.ModeOverwrite:
		if exists {
			if err := m.confirmDelete(requested); err != nil {
				return nil, err
			}
			if err := m.remove(requested); err != nil {
				return nil, err
			}
		}

	case config.ModeResume:
		if exists {
			m.Log.Info("Resuming into existing output %s", requested)
		}

	case config.ModeFinal:
		work, err := nextFree(requested + "__work_" + m.stamp())
		if err != nil {
			return nil, err
		}
		root.Work = work
		if exists && m.FinalConflict == config.ConflictOverwrite {
			if err := m.confirmDelete(requested); err != nil {
				return nil, err
			}
			root.overwriteConfirmed = true
		}

	default:
		return nil, fmt.Errorf("%w: unknown output mode %q", config.ErrInvalid, m.Mode)
	}

	if err := m.mkdir(root.Target()); err != nil {
		return nil, err
	}
	root.State = Resolved
	return root, nil
}

// Finalize closes out the run. In final mode a fully successful run
// resolves any existing target by the conflict policy and renames the work
// directory into place; a failed run leaves the work directory for
// inspection and the target untouched.
func (m *Manager) Finalize(root *Root, succeeded bool) error {
	root.State = Populated
	if root.Work == "" {
		return nil
	}
	if !succeeded {
		m.Log.Warn("Run incomplete; %s left untouched, partial output kept in %s", root.Path, root.Work)
		return nil
	}

	exists, err := pathExists(root.Path)
	if err != nil {
		return err
	}
	if exists {
		if m.FinalConflict == config.ConflictOverwrite {
			if !root.overwriteConfirmed && !m.DryRun {
				return fmt.Errorf("%w: %s: replacement was not confirmed", ErrDestructiveActionRefused, root.Path)
			}
			if err := m.remove(root.Path); err != nil {
				return err
			}
		} else if err := m.backup(root.Path); err != nil {
			return err
		}
	}

	if m.DryRun {
		m.Log.Dry("Would move %s to %s", root.Work, root.Path)
	} else if err := os.Rename(root.Work, root.Path); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	root.State = Swapped
	return nil
}

// backup renames path aside to <path>__backup_<timestamp>.
func (m *Manager) backup(path string) error {
	dest, err := nextFree(path + "__backup_" + m.stamp())
	if err != nil {
		return err
	}
	if m.DryRun {
		m.Log.Dry("Would back up %s to %s", path, dest)
		return nil
	}
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("backup %s: %w", path, err)
	}
	m.Log.Info("Backed up %s to %s", path, dest)
	return nil
}

// confirmDelete refuses root-like targets and asks for confirmation unless
// AssumeYes is set. Dry runs only log.
func (m *Manager) confirmDelete(path string) error {
	if m.DryRun {
		m.Log.Dry("Would ask to delete %s", path)
		return nil
	}
	if err := GuardRemoval(path); err != nil {
		return err
	}
	if m.AssumeYes {
		return nil
	}
	if m.Confirmer == nil {
		return fmt.Errorf("%w: %s: no confirmation available (use --yes)", ErrDestructiveActionRefused, path)
	}
	ok, err := m.Confirmer.Confirm(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDestructiveActionRefused, path, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s: not confirmed", ErrDestructiveActionRefused, path)
	}
	return nil
}

func (m *Manager) remove(path string) error {
	if m.DryRun {
		m.Log.Dry("Would delete %s", path)
		return nil
	}
	if err := GuardRemoval(path); err != nil {
		return err
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	m.Log.Info("Deleted %s", path)
	return nil
}

func (m *Manager) mkdir(path string) error {
	if m.DryRun {
		if ok, _ := pathExists(path); !ok {
			m.Log.Dry("Would create %s", path)
		}
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return nil
}

func (m *Manager) stamp() string {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	return now().Format(TimestampLayout)
}

// GuardRemoval refuses to delete an empty path, ".", or a filesystem root.
func GuardRemoval(path string) error {
	if path == "" || path == "." || path == string(filepath.Separator) {
		return fmt.Errorf("%w: refusing to delete %q", ErrDestructiveActionRefused, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDestructiveActionRefused, path, err)
	}
	if filepath.Dir(abs) == abs {
		return fmt.Errorf("%w: refusing to delete filesystem root %q", ErrDestructiveActionRefused, abs)
	}
	return nil
}

// nextFree returns path if nothing exists there, otherwise the first free
// <path>_N for N = 2, 3, ...
func nextFree(path string) (string, error) {
	exists, err := pathExists(path)
	if err != nil || !exists {
		return path, err
	}
	for n := 2; ; n++ {
		candidate := path + "_" + strconv.Itoa(n)
		exists, err := pathExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

func pathExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}
