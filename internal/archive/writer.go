package archive

import (
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/JaimeStill/voidsort/internal/routing"
)

// Write serializes plan as a zip archive with one level of folders. Each
// folder gets an explicit directory entry ahead of its files.
func Write(w io.Writer, plan Plan) error {
	zw := zip.NewWriter(w)
	modified := time.Now()

	dirs := make(map[string]struct{})
	for _, e := range plan.Entries {
		if e.Folder != routing.FolderRoot {
			if _, ok := dirs[e.Folder]; !ok {
				dirs[e.Folder] = struct{}{}
				if _, err := zw.CreateHeader(&zip.FileHeader{
					Name:     e.Folder + "/",
					Method:   zip.Store,
					Modified: modified,
				}); err != nil {
					return fmt.Errorf("%w: folder %s: %w", ErrBuildFailed, e.Folder, err)
				}
			}
		}

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Path(),
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("%w: entry %s: %w", ErrBuildFailed, e.Path(), err)
		}

		if _, err := fw.Write(e.Content); err != nil {
			return fmt.Errorf("%w: write %s: %w", ErrBuildFailed, e.Path(), err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}
	return nil
}
