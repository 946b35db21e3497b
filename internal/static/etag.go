package static

import (
	"fmt"
	"os"
)

// strongETag computes a strong ETag from file size and modification time;
// the inode is not included. The value is formatted as `"<hex>"`: the size
// in hex followed by the mtime in nanoseconds as 16 hex digits.
func strongETag(info os.FileInfo) string {
	return fmt.Sprintf(`"%x%016x"`, info.Size(), uint64(info.ModTime().UnixNano()))
}
