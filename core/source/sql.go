package source

import (
	"context"
	"fmt"

	"collection-reconciler/core/database"
	"collection-reconciler/core/document"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLFetcher reads tables from MySQL or PostgreSQL. Each row becomes a
// document keyed by column name.
type SQLFetcher struct {
	db *gorm.DB
}

// OpenSQL connects with database.Connect.
func OpenSQL(cfg Config) (*SQLFetcher, error) {
	db, err := database.Connect(cfg.DatabaseConfig())
	if err != nil {
		return nil, err
	}
	return NewSQLFetcher(db), nil
}

// NewSQLFetcher wraps an existing connection.
func NewSQLFetcher(db *gorm.DB) *SQLFetcher {
	return &SQLFetcher{db: db}
}

// Name returns the dialect name.
func (f *SQLFetcher) Name() string {
	return f.db.Dialector.Name()
}

// Fetch selects every row of the table. Excluded top-level columns are left
// out of the SELECT list; nested paths are applied to the decoded rows.
func (f *SQLFetcher) Fetch(ctx context.Context, table string, exclude document.ExclusionSet) ([]document.Document, error) {
	db := f.db.WithContext(ctx)

	columns, err := database.GetTableColumns(db, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found or has no columns", table)
	}

	// Columns go through the dialect's quoting so reserved words and
	// mixed-case names survive.
	selected := make([]clause.Column, 0, len(columns))
	for _, col := range columns {
		if !exclude.Contains(col.Field) {
			selected = append(selected, clause.Column{Name: col.Field})
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("every column of table %s is excluded", table)
	}

	var rows []map[string]any
	if err := db.Table(table).Clauses(clause.Select{Columns: selected}).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", table, err)
	}

	docs := make([]document.Document, 0, len(rows))
	for i, row := range rows {
		doc, err := document.NormalizeDocument(row, nil)
		if err != nil {
			return nil, fmt.Errorf("table %s row %d: %w", table, i, err)
		}
		docs = append(docs, exclude.Apply(doc))
	}

	return docs, nil
}

// Ping verifies the connection.
func (f *SQLFetcher) Ping(ctx context.Context) error {
	sqlDB, err := f.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the connection pool.
func (f *SQLFetcher) Close(ctx context.Context) error {
	sqlDB, err := f.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
