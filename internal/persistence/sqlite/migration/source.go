package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var fileNamePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Load reads every migration file from dir within fsys, sorted by version.
func Load(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("migration: read %s: %w", dir, err)
	}

	migrations := make([]Migration, 0, len(entries))
	seen := make(map[int]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		m, err := parseName(entry.Name())
		if err != nil {
			return nil, err
		}
		if other, ok := seen[m.Version]; ok {
			return nil, &Error{Version: m.Version, Name: m.Name, Operation: "load",
				Err: fmt.Errorf("%w: also used by %s", ErrDuplicateVersion, other)}
		}
		seen[m.Version] = m.Name

		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, wrap(m, "read", err)
		}
		m.SQL = string(content)
		if len(Statements(m.SQL)) == 0 {
			return nil, wrap(m, "load", ErrEmptyMigration)
		}
		sum := sha256.Sum256(content)
		m.Checksum = hex.EncodeToString(sum[:])
		migrations = append(migrations, m)
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

func parseName(name string) (Migration, error) {
	matches := fileNamePattern.FindStringSubmatch(name)
	if matches == nil {
		return Migration{}, &Error{Name: name, Operation: "load",
			Err: fmt.Errorf("%w: expected {version}_{description}.sql", ErrInvalidMigrationFile)}
	}
	version, err := strconv.Atoi(matches[1])
	if err != nil || version <= 0 {
		return Migration{}, &Error{Name: name, Operation: "load",
			Err: fmt.Errorf("%w: version must be a positive number", ErrInvalidMigrationFile)}
	}
	return Migration{
		Version:     version,
		Description: strings.ReplaceAll(matches[2], "_", " "),
		Name:        name,
	}, nil
}

// Statements splits SQL text on semicolons and drops comment-only lines.
func Statements(sql string) []string {
	var out []string
	for _, chunk := range strings.Split(sql, ";") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			out = append(out, strings.Join(lines, "\n"))
		}
	}
	return out
}
