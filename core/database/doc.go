// Package database handles SQL connections and schema inspection.
//
// It wraps GORM to configure MySQL and PostgreSQL connections from the
// application's configuration. PostgreSQL connections run on the pgx stdlib
// driver.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns in declaration order. The SQL
// source driver uses it to build an explicit column list so excluded fields
// are never selected.
//
// # Usage
//
//	db, err := database.Connect(cfg)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "users")
package database
