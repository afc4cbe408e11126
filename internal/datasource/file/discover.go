package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"csvxform/internal/jobs"
)

// Discover lists the regular files directly inside dir whose extension
// matches ext (case-insensitive, leading dot optional) and returns them as
// jobs sorted ascending by size, ties broken by path.
//
// Subdirectories, including the output directory, are never descended into
// or returned. Any listing or stat error aborts discovery; no partial list is
// returned.
func Discover(dir, ext string) ([]jobs.FileJob, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	var out []jobs.FileJob
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if ext != "" && strings.ToLower(filepath.Ext(name)) != ext {
			continue
		}
		path := filepath.Join(dir, name)

		// os.Stat follows symlinks, so a link to a directory is skipped here.
		fi, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		out = append(out, jobs.FileJob{Path: path, Size: fi.Size()})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Size != out[j].Size {
			return out[i].Size < out[j].Size
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

// TotalSize sums the sizes of js.
func TotalSize(js []jobs.FileJob) int64 {
	var n int64
	for _, j := range js {
		n += j.Size
	}
	return n
}
