// Package media finds candidate video files in a directory.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kartoza/kartoza-loudness/internal/models"
)

// VideoExtensions lists the recognized extensions (lower case)
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".m4v":  true,
	".webm": true,
	".flv":  true,
	".wmv":  true,
	".mpg":  true,
	".mpeg": true,
}

// IsVideoFile reports whether name has a recognized extension (case-insensitive)
func IsVideoFile(name string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(name))]
}

// Discover lists the regular files directly inside dir with a recognized
// extension, sorted by name. Subdirectories are not descended into.
// An existing directory without matches yields an empty slice and no error.
func Discover(dir string) ([]models.MediaFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, models.NewError(models.KindDirectoryNotFound, dir, err)
	}
	if !info.IsDir() {
		return nil, models.NewError(models.KindDirectoryNotFound, dir, fmt.Errorf("not a directory"))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, models.NewError(models.KindDirectoryNotFound, dir, err)
	}

	files := []models.MediaFile{}
	for _, entry := range entries {
		if !IsVideoFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		// Follow symlinks so a link to a regular file counts
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, models.NewMediaFile(path))
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}
