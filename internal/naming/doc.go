// Package naming builds per-channel output paths and guards against two
// units of one run claiming the same path.
//
// Layouts:
//
//	flat:    <root>/<name>_<NN>[_<LABEL>].wav
//	folders: <root>/<name>/<NN>[_<LABEL>]_<name>.wav
//
// where <name> is the source file stem or the session directory name and
// NN is the 1-based channel number zero-padded to the configured width.
package naming
