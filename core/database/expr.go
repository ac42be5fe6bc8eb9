package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Latest returns an update value that keeps the later of the datetime column
// and value.
func Latest(db *gorm.DB, column string, value any) clause.Expr {
	if db.Dialector.Name() == DriverSQLite {
		return gorm.Expr(fmt.Sprintf("MAX(%s, ?)", column), value)
	}
	return gorm.Expr(fmt.Sprintf("GREATEST(%s, CAST(? AS DATETIME(6)))", column), value)
}

// LatestOnConflict returns an upsert assignment that keeps the later of the
// stored and the incoming value of column.
func LatestOnConflict(db *gorm.DB, table, column string) clause.Assignment {
	expr := fmt.Sprintf("GREATEST(%s, VALUES(%s))", column, column)
	if db.Dialector.Name() == DriverSQLite {
		expr = fmt.Sprintf("MAX(%s.%s, excluded.%s)", table, column, column)
	}
	return clause.Assignment{Column: clause.Column{Name: column}, Value: gorm.Expr(expr)}
}
