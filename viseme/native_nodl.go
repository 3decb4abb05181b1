//go:build !(darwin || linux)

package viseme

import "fmt"

func loadLibrary(path string) (*library, error) {
	return nil, fmt.Errorf("%w: dynamic loading not supported on this platform (%s)", ErrNativeUnavailable, path)
}
