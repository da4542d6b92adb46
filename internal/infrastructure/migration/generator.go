package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/devicehub/devicehub/internal/shared/logger"
)

var scriptNamePattern = regexp.MustCompile(`^(\d+)_.+\.sql$`)

// Generator handles creation of new goose migration files on disk
type Generator struct {
	scriptsPath string
	logger      logger.Interface
}

// NewGenerator creates a generator writing into scriptsPath/<dialect>
func NewGenerator(scriptsPath string, log logger.Interface) *Generator {
	return &Generator{
		scriptsPath: scriptsPath,
		logger:      log.With("component", "migration.generator"),
	}
}

// CreateMigration writes the next sequential script for every dialect and returns the created paths
func (g *Generator) CreateMigration(name string) ([]string, error) {
	name = sanitizeName(name)
	if name == "" {
		return nil, fmt.Errorf("migration name is required")
	}

	var created []string
	for _, dialect := range []string{"mysql", "postgres", "sqlite3"} {
		dir := filepath.Join(g.scriptsPath, dialect)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return created, fmt.Errorf("failed to create scripts directory: %w", err)
		}

		next, err := nextSequence(dir)
		if err != nil {
			return created, err
		}

		file := filepath.Join(dir, fmt.Sprintf("%05d_%s.sql", next, name))
		if err := os.WriteFile(file, []byte(template(name)), 0o644); err != nil {
			return created, fmt.Errorf("failed to write migration file: %w", err)
		}
		created = append(created, file)
	}

	g.logger.Infow("migration files created", "name", name, "files", created)
	return created, nil
}

func nextSequence(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read scripts directory: %w", err)
	}
	highest := 0
	for _, e := range entries {
		m := scriptNamePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

func sanitizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
}

func template(name string) string {
	return fmt.Sprintf(`-- Migration: %s
-- Created: %s

-- +goose Up

-- +goose Down
`, name, time.Now().UTC().Format(time.DateTime))
}
