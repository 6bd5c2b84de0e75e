package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// AppDirName is the per-user state directory under $HOME.
const AppDirName = ".cmdgen"

// UserHomeDir returns the current user's home directory.
// If the home directory cannot be determined, it returns "." as a fallback.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// AppDir returns ~/.cmdgen.
func AppDir() string {
	return filepath.Join(UserHomeDir(), AppDirName)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		return UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(UserHomeDir(), path[2:])
	}
	return path
}
