package migrations

import (
	"fmt"
	"regexp"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var collectionPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidCollection reports whether name is usable as a document table name.
func ValidCollection(name string) bool {
	return collectionPattern.MatchString(name)
}

// Run creates one JSONB document table per collection. Existing tables are left untouched.
func Run(db *gorm.DB, collections ...string) error {
	if db == nil {
		return nil
	}
	for _, name := range collections {
		if !ValidCollection(name) {
			return fmt.Errorf("invalid collection name %q", name)
		}
		table := pq.QuoteIdentifier(name)
		index := pq.QuoteIdentifier("idx_" + name + "_created_at")
		statements := []string{
			`CREATE TABLE IF NOT EXISTS ` + table + ` (
				id         TEXT PRIMARY KEY,
				body       JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS ` + index + ` ON ` + table + ` (created_at)`,
		}
		for _, stmt := range statements {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("migrate collection %s: %w", name, err)
			}
		}
	}
	return nil
}
