package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MatrixSuffixes are the file name endings of case matrix files.
var MatrixSuffixes = []string{".cases.yaml", ".cases.yml"}

// Scanner scans for case matrix files in a directory
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// Scan finds all matrix files in the given root directory
func (s *Scanner) Scan(root string) ([]string, error) {
	var files []string

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("matrix path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("matrix path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if IsMatrixFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files, err
}

// Resolve expands the given sources into matrix files: files are taken as
// they are, directories are scanned. Duplicates are dropped, order is kept.
func (s *Scanner) Resolve(sources []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, src := range sources {
		info, err := os.Stat(src)
		if err != nil {
			return nil, fmt.Errorf("matrix source does not exist: %s", src)
		}
		if !info.IsDir() {
			add(filepath.Clean(src))
			continue
		}
		found, err := s.Scan(src)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no matrix files (%s) under %s", strings.Join(MatrixSuffixes, ", "), src)
		}
		for _, f := range found {
			add(f)
		}
	}
	return files, nil
}

// IsMatrixFile reports whether name looks like a case matrix file.
func IsMatrixFile(name string) bool {
	for _, suffix := range MatrixSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
