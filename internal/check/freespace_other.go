//go:build !(linux || darwin || freebsd)

package check

import "errors"

func statFree(string) (uint64, error) {
	return 0, errors.ErrUnsupported
}
