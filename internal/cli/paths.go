package cli

import (
	"io"
	"os"
	"path/filepath"
)

const appName = "trellis"

// defaultCacheDir returns the linkage cache directory, honoring
// XDG_CACHE_HOME and falling back to ~/.cache/trellis.
func defaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// openOutput opens the output file for writing, or stdout when path is
// empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// outputPath derives the artifact path for a format: the explicit output
// when one format is requested, otherwise base.format beside the input.
func outputPath(output, input, format string, multiple bool) string {
	if output != "" && !multiple {
		return output
	}
	base := output
	if base == "" {
		base = input
	}
	return trimExt(base) + "." + format
}

// trimExt strips the file extension from path.
func trimExt(path string) string {
	return path[:len(path)-len(filepath.Ext(path))]
}
