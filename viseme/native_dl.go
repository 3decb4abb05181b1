//go:build darwin || linux

package viseme

import (
	"fmt"

	"github.com/ebitengine/purego"
)

func loadLibrary(path string) (*library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNativeUnavailable, err)
	}
	lib := &library{close: func() error { return purego.Dlclose(handle) }}

	bind := func(fptr any, name string) error {
		sym, err := purego.Dlsym(handle, name)
		if err != nil {
			return fmt.Errorf("%w: missing symbol %s", ErrNativeUnavailable, name)
		}
		purego.RegisterFunc(fptr, sym)
		return nil
	}
	for _, s := range []struct {
		fptr any
		name string
	}{
		{&lib.initialize, "ovrLipSync_Initialize"},
		{&lib.createContext, "ovrLipSync_CreateContext"},
		{&lib.processFrame, "ovrLipSync_ProcessFrame"},
		{&lib.destroyContext, "ovrLipSync_DestroyContext"},
		{&lib.shutdown, "ovrLipSync_Shutdown"},
	} {
		if err := bind(s.fptr, s.name); err != nil {
			_ = purego.Dlclose(handle)
			return nil, err
		}
	}
	return lib, nil
}
