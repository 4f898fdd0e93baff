package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/backmassage/polysplit/internal/config"
)

// Extension of every output file. Outputs are always little-endian PCM WAV.
const Extension = ".wav"

// ErrUnsafeUnitName is returned for a unit name that cannot be used as a
// file name prefix or a directory under the output root.
var ErrUnsafeUnitName = errors.New("unit name is not usable in output paths")

// ValidUnitName rejects names that are empty, "." or "..", start with a
// dot, or contain a path separator. Outputs of such a unit would be hidden
// or land outside the output root.
func ValidUnitName(name string) error {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrUnsafeUnitName, name)
	}
	return nil
}

// ChannelName identifies one output file before it is placed under a root.
type ChannelName struct {
	Unit     string // Source file stem or session name.
	Channel  int    // 1-based.
	Label    string // Normalized label; empty omits the label segment.
	PadWidth int
}

func (n ChannelName) index() string {
	width := n.PadWidth
	if width < 1 {
		width = 1
	}
	return fmt.Sprintf("%0*d", width, n.Channel)
}

// FileName returns the base name for layout.
func (n ChannelName) FileName(layout config.Layout) string {
	core := n.index()
	if n.Label != "" {
		core += "_" + n.Label
	}
	if layout == config.LayoutFolders {
		return core + "_" + n.Unit + Extension
	}
	return n.Unit + "_" + core + Extension
}

// UnitDir returns the directory that holds a unit's outputs.
func UnitDir(outputRoot string, layout config.Layout, unit string) string {
	if layout == config.LayoutFolders {
		return filepath.Join(outputRoot, unit)
	}
	return outputRoot
}

// OutputPath builds the full path of one channel file.
//
//	flat:    <outputRoot>/<unit>_<NN>[_<LABEL>].wav
//	folders: <outputRoot>/<unit>/<NN>[_<LABEL>]_<unit>.wav
func OutputPath(outputRoot string, layout config.Layout, n ChannelName) string {
	return filepath.Join(UnitDir(outputRoot, layout, n.Unit), n.FileName(layout))
}
