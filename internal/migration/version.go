package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

// Embedded describes the migrations compiled into the binary.
type Embedded struct {
	Latest   uint
	Checksum string
}

// EmbeddedState returns the highest embedded version and a checksum over
// every up migration, in file name order.
func EmbeddedState() (Embedded, error) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	if err != nil {
		return Embedded{}, fmt.Errorf("list migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	var latest uint
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name())
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		version, ok := parseMigrationVersion(name)
		if !ok {
			return Embedded{}, fmt.Errorf("invalid migration filename: %s", name)
		}
		latest = max(latest, version)
		names = append(names, name)
	}
	if latest == 0 {
		return Embedded{}, errors.New("no embedded migrations found")
	}
	sort.Strings(names)

	hasher := sha256.New()
	for _, name := range names {
		content, err := embeddedMigrations.ReadFile(migrationsDir + "/" + name)
		if err != nil {
			return Embedded{}, fmt.Errorf("read migration %s: %w", name, err)
		}
		_, _ = hasher.Write([]byte(name))
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.Write(content)
		_, _ = hasher.Write([]byte{0})
	}

	return Embedded{Latest: latest, Checksum: hex.EncodeToString(hasher.Sum(nil))}, nil
}

func parseMigrationVersion(name string) (uint, bool) {
	prefix, _, found := strings.Cut(name, "_")
	if !found {
		return 0, false
	}
	parsed, err := strconv.ParseUint(strings.TrimSpace(prefix), 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}
