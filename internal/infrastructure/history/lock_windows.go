//go:build windows

package history

import "os"

// Advisory locking is not available; the in-process mutex still serializes writes.
func lockFile(*os.File, bool) error { return nil }

func unlockFile(*os.File) error { return nil }
