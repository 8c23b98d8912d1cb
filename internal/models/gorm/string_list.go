package gorm

import (
	"database/sql/driver"

	"github.com/lib/pq"
	gormlib "gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList is an ordered list of strings stored as text[] on Postgres and
// as the array literal text ("{a,b}") on SQLite.
type StringList []string

// Value implements driver.Valuer using the Postgres array encoding
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return pq.StringArray(l).Value()
}

// Scan implements sql.Scanner
func (l *StringList) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*l = StringList(arr)
	return nil
}

// GormDataType lets the schema parser treat the slice as a column rather
// than a relationship
func (StringList) GormDataType() string {
	return "text"
}

// GormDBDataType picks the column type per dialect
func (StringList) GormDBDataType(db *gormlib.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}
