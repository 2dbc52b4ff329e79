package database

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo describes one table column.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // Pointer because NULL default is possible
	Extra   string
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_$]+(\.[A-Za-z0-9_$]+)?$`)

// ValidateTableName rejects names that cannot be safely interpolated into a
// schema query.
func ValidateTableName(tableName string) error {
	if !tableNamePattern.MatchString(tableName) {
		return fmt.Errorf("invalid table name %q", tableName)
	}
	return nil
}

// GetTableColumns retrieves the column definitions for a given table, in
// declaration order. An unknown table yields no columns.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	if err := ValidateTableName(tableName); err != nil {
		return nil, err
	}

	var columns []ColumnInfo

	if db.Dialector.Name() == DriverPostgres {
		schema, table := "public", tableName
		if i := strings.IndexByte(tableName, '.'); i >= 0 {
			schema, table = tableName[:i], tableName[i+1:]
		}
		err := db.Raw(
			`SELECT column_name AS field, data_type AS type, is_nullable AS "null", column_default AS "default"
FROM information_schema.columns
WHERE table_schema = ? AND table_name = ?
ORDER BY ordinal_position`, schema, table).Scan(&columns).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		return normalizeColumns(columns), nil
	}

	quoted := strings.ReplaceAll(tableName, ".", "`.`")
	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", quoted)).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	return normalizeColumns(columns), nil
}

func normalizeColumns(columns []ColumnInfo) []ColumnInfo {
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
	}
	return columns
}
