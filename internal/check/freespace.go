package check

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrInsufficientSpace is returned by EnsureSpace when the estimate does
// not fit.
var ErrInsufficientSpace = errors.New("insufficient free space")

// FreeBytes reports the space available to unprivileged users on the
// filesystem holding path. A path that does not exist yet is measured at
// its nearest existing ancestor.
func FreeBytes(path string) (uint64, error) {
	dir, err := existingAncestor(path)
	if err != nil {
		return 0, err
	}
	return statFree(dir)
}

// EnsureSpace fails when need exceeds the free space at path. An unknown
// free space is not an error.
func EnsureSpace(path string, need int64) error {
	free, err := FreeBytes(path)
	if err != nil || need <= 0 {
		return nil
	}
	if uint64(need) > free {
		return fmt.Errorf("%w at %s: need %d bytes, %d available", ErrInsufficientSpace, path, need, free)
	}
	return nil
}

func existingAncestor(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(abs); err == nil {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("no existing ancestor of %s", path)
		}
		abs = parent
	}
}
