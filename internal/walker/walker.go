package walker

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMaxFileSize is the maximum source file size to analyse (1 MB).
const DefaultMaxFileSize int64 = 1 << 20

// File describes one source file handed to an analyzer.
type File struct {
	Path     string // Absolute path on disk.
	RelPath  string // Slash-separated path relative to the root.
	Size     int64
	Language Language
	IsTest   bool
}

// Config controls Walk.
type Config struct {
	Root        string
	Languages   []Language // Only files in these languages are returned; empty means any known language.
	Include     []string   // Glob patterns; only matching files are included.
	Exclude     []string   // Glob patterns; matching files are excluded.
	MaxFileSize int64      // 0 uses DefaultMaxFileSize.
	SkipTests   bool
}

// Walk returns every source file under cfg.Root that passes filtering, sorted
// by relative path. Default-excluded directories and .gitignore patterns are
// skipped, as are binary and oversized files.
func Walk(ctx context.Context, cfg Config) ([]File, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("walker: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("walker: %s is not a directory", root)
	}

	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	ignored := loadGitignore(filepath.Join(root, ".gitignore"))

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path != root && shouldExcludeDir(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		lang := DetectLanguage(name)
		if lang == Unknown || !wanted(lang, cfg.Languages) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if matchesGitignore(relPath, ignored) {
			return nil
		}
		if !MatchesInclude(relPath, cfg.Include) || MatchesExclude(relPath, cfg.Exclude) {
			return nil
		}

		isTest := isTestFile(name, relPath)
		if isTest && cfg.SkipTests {
			return nil
		}

		fi, err := d.Info()
		if err != nil || fi.Size() > maxSize {
			return nil
		}
		if isBinary(path) {
			return nil
		}

		files = append(files, File{
			Path:     path,
			RelPath:  filepath.ToSlash(relPath),
			Size:     fi.Size(),
			Language: lang,
			IsTest:   isTest,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

func wanted(lang Language, langs []Language) bool {
	if len(langs) == 0 {
		return true
	}
	for _, l := range langs {
		if l == lang {
			return true
		}
	}
	return false
}

// isBinary checks the first 512 bytes for NUL.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}
	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true
		}
	}
	return false
}

func isTestFile(name, relPath string) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, "_test.go") {
		return true
	}
	if strings.HasSuffix(lower, "test.java") || strings.HasSuffix(lower, "tests.java") {
		return true
	}
	relSlash := filepath.ToSlash(strings.ToLower(relPath))
	return strings.Contains(relSlash, "/test/") || strings.HasPrefix(relSlash, "test/") ||
		strings.Contains(relSlash, "/src/test/") || strings.HasPrefix(relSlash, "src/test/")
}
