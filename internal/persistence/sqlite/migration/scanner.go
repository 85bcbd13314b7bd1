package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// fileNamePattern matches {version}_{description}.sql where version is
// numeric and description uses letters, digits, underscores and hyphens.
var fileNamePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Scanner reads migration files from a file system, typically an embed.FS.
type Scanner struct {
	fsys fs.FS
}

// NewScanner constructs a Scanner over the provided file system.
func NewScanner(fsys fs.FS) *Scanner {
	return &Scanner{fsys: fsys}
}

// Scan collects every migration in the file system root, sorted by numeric
// version ascending. Duplicate versions and malformed file names are errors:
// a skipped migration must never pass silently.
func (s *Scanner) Scan() ([]Migration, error) {
	if s == nil || s.fsys == nil {
		return nil, newError("", "", "scan", fmt.Errorf("no migration file system configured"))
	}

	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, newError("", "", "read directory", err)
	}

	seen := make(map[string]string)
	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		matches := fileNamePattern.FindStringSubmatch(name)
		if matches == nil {
			return nil, newError("", name, "validate file name",
				fmt.Errorf("file %q does not match {version}_{description}.sql", name))
		}
		version, description := matches[1], matches[2]

		if prior, ok := seen[version]; ok {
			return nil, newError(version, name, "validate version",
				fmt.Errorf("duplicate version in %q and %q", prior, name))
		}
		seen[version] = name

		content, err := fs.ReadFile(s.fsys, name)
		if err != nil {
			return nil, newError(version, name, "read file", err)
		}
		if strings.TrimSpace(string(content)) == "" {
			return nil, newError(version, name, "read file", fmt.Errorf("migration file is empty"))
		}

		sum := sha256.Sum256(content)
		migrations = append(migrations, Migration{
			Version:     version,
			Description: strings.ReplaceAll(description, "_", " "),
			SQL:         string(content),
			FileName:    name,
			Checksum:    hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		vi, _ := strconv.Atoi(migrations[i].Version)
		vj, _ := strconv.Atoi(migrations[j].Version)
		return vi < vj
	})
	return migrations, nil
}
