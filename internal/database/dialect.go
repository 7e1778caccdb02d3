package database

import "gorm.io/gorm"

// MonthBucket returns a SQL expression formatting column as YYYY-MM for the
// connection's dialect.
func MonthBucket(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "postgres" {
		return "to_char(" + column + ", 'YYYY-MM')"
	}
	return "strftime('%Y-%m', " + column + ")"
}

// IsSQLite reports whether db talks to sqlite.
func IsSQLite(db *gorm.DB) bool {
	return db.Dialector.Name() == "sqlite"
}
