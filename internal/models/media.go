package models

import (
	"path/filepath"
	"strings"
)

// MediaFile is a discovered media file
type MediaFile struct {
	Path string `json:"path"`
	Name string `json:"name"` // Base name including extension
	Ext  string `json:"ext"`  // Extension as found on disk, e.g. ".MP4"
	Stem string `json:"stem"` // Base name without extension
}

// NewMediaFile derives the metadata for a path
func NewMediaFile(path string) MediaFile {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	return MediaFile{
		Path: path,
		Name: name,
		Ext:  ext,
		Stem: strings.TrimSuffix(name, ext),
	}
}

// Dir returns the directory holding the file
func (f MediaFile) Dir() string {
	return filepath.Dir(f.Path)
}
