package setup

import (
	"errors"
	"os"

	"github.com/mcdonaldj/enginesetup/internal/ports"
)

// ToolPresent reports whether path exists as a directory.
// Only a missing path counts as absent; other stat errors are returned.
// A partially cloned directory is indistinguishable from a complete one.
func ToolPresent(fs ports.FileSystem, path string) (bool, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
