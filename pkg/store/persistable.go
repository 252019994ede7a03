package store

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/richard-senior/podds/internal/logger"
	_ "modernc.org/sqlite"
)

var db *sql.DB

// Persistable is implemented by anything the store can persist. Table
// shape comes from struct tags: column, dbtype, primary, index, and
// persist:"false" to skip a field.
type Persistable interface {
	GetTableName() string
	GetPrimaryKey() map[string]interface{}
	BeforeSave() error
	AfterSave() error
}

// InitDatabase opens (or creates) the sqlite database at the given path.
// Use ":memory:" in tests.
func InitDatabase(path string) error {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := d.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	db = d
	logger.Info("Database initialized", path)
	return nil
}

// CloseDatabase closes the connection if one is open
func CloseDatabase() error {
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

func getDB() (*sql.DB, error) {
	if db == nil {
		return nil, fmt.Errorf("database not initialized, call InitDatabase first")
	}
	return db, nil
}

// executor is the subset of *sql.DB and *sql.Tx the write path needs,
// so saves can run either standalone or inside a transaction
type executor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// column describes one persisted struct field
type column struct {
	name    string
	dbType  string
	primary bool
	indexed bool
	idx     int // field index in the struct
}

// columnsOf walks the struct tags once and returns the persisted columns
// in declaration order
func columnsOf(obj interface{}) []column {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var cols []column
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("persist") == "false" {
			continue
		}
		dbType := f.Tag.Get("dbtype")
		if dbType == "" {
			continue
		}
		name := f.Tag.Get("column")
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		cols = append(cols, column{
			name:    name,
			dbType:  dbType,
			primary: f.Tag.Get("primary") == "true",
			indexed: f.Tag.Get("index") != "",
			idx:     i,
		})
	}
	return cols
}

// CreateTable issues CREATE TABLE IF NOT EXISTS plus any secondary
// indexes for the object's type
func CreateTable(obj Persistable) error {
	d, err := getDB()
	if err != nil {
		return err
	}

	table := obj.GetTableName()
	cols := columnsOf(obj)

	var defs []string
	var primary []string
	for _, c := range cols {
		defs = append(defs, fmt.Sprintf("%s %s", c.name, c.dbType))
		if c.primary {
			primary = append(primary, c.name)
		}
	}
	if len(primary) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primary, ", ")))
	}

	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
	logger.Debug("Creating table with SQL", createSQL)
	if _, err := d.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	for _, c := range cols {
		if !c.indexed {
			continue
		}
		indexSQL := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)", table, c.name, table, c.name)
		if _, err := d.Exec(indexSQL); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}
	return nil
}

// Save inserts the object or updates it if its primary key already exists
func Save(obj Persistable) error {
	d, err := getDB()
	if err != nil {
		return err
	}
	return saveOn(d, obj)
}

func saveOn(ex executor, obj Persistable) error {
	if err := obj.BeforeSave(); err != nil {
		return fmt.Errorf("before save hook failed: %w", err)
	}

	exists, err := existsOn(ex, obj)
	if err != nil {
		return fmt.Errorf("failed to check existence: %w", err)
	}
	if exists {
		err = update(ex, obj)
	} else {
		err = insert(ex, obj)
	}
	if err != nil {
		return err
	}

	if err := obj.AfterSave(); err != nil {
		return fmt.Errorf("after save hook failed: %w", err)
	}
	return nil
}

func insert(ex executor, obj Persistable) error {
	v := reflect.ValueOf(obj).Elem()
	cols := columnsOf(obj)

	var names, placeholders []string
	var values []interface{}
	for _, c := range cols {
		names = append(names, c.name)
		placeholders = append(placeholders, "?")
		values = append(values, v.Field(c.idx).Interface())
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		obj.GetTableName(), strings.Join(names, ", "), strings.Join(placeholders, ", "))
	if _, err := ex.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", obj.GetTableName(), err)
	}
	return nil
}

func update(ex executor, obj Persistable) error {
	v := reflect.ValueOf(obj).Elem()
	var sets []string
	var values []interface{}
	for _, c := range columnsOf(obj) {
		if c.primary {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = ?", c.name))
		values = append(values, v.Field(c.idx).Interface())
	}

	where, whereValues := whereClause(obj.GetPrimaryKey())
	values = append(values, whereValues...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", obj.GetTableName(), strings.Join(sets, ", "), where)
	if _, err := ex.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to update %s: %w", obj.GetTableName(), err)
	}
	return nil
}

// Exists reports whether a row with the object's primary key is present
func Exists(obj Persistable) (bool, error) {
	d, err := getDB()
	if err != nil {
		return false, err
	}
	return existsOn(d, obj)
}

func existsOn(ex executor, obj Persistable) (bool, error) {
	where, values := whereClause(obj.GetPrimaryKey())
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", obj.GetTableName(), where)

	var count int
	if err := ex.QueryRow(query, values...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", obj.GetTableName(), err)
	}
	return count > 0, nil
}

// Delete removes the row matching the object's primary key
func Delete(obj Persistable) error {
	d, err := getDB()
	if err != nil {
		return err
	}

	where, values := whereClause(obj.GetPrimaryKey())
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", obj.GetTableName(), where)
	if _, err := d.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", obj.GetTableName(), err)
	}
	return nil
}

// FindByPrimaryKey loads a single row into obj
func FindByPrimaryKey(obj Persistable, primaryKey map[string]interface{}) error {
	d, err := getDB()
	if err != nil {
		return err
	}

	names, dests := selectData(obj)
	where, values := whereClause(primaryKey)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(names, ", "), obj.GetTableName(), where)
	if err := d.QueryRow(query, values...).Scan(dests...); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("record not found in %s", obj.GetTableName())
		}
		return fmt.Errorf("failed to scan row from %s: %w", obj.GetTableName(), err)
	}
	return nil
}

// FindWhere returns every row of obj's type matching the WHERE clause.
// Results are freshly allocated pointers of obj's concrete type.
func FindWhere(obj Persistable, where string, args ...interface{}) ([]interface{}, error) {
	d, err := getDB()
	if err != nil {
		return nil, err
	}

	names, _ := selectData(obj)
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(names, ", "), obj.GetTableName())
	if where != "" {
		query += " WHERE " + where
	}

	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", obj.GetTableName(), err)
	}
	defer rows.Close()

	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var results []interface{}
	for rows.Next() {
		fresh := reflect.New(t).Interface()
		_, dests := selectData(fresh)
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", obj.GetTableName(), err)
		}
		results = append(results, fresh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", obj.GetTableName(), err)
	}
	return results, nil
}

// FindAll returns every row of obj's type
func FindAll(obj Persistable) ([]interface{}, error) {
	return FindWhere(obj, "")
}

// BulkSave persists a batch inside one transaction. Any failure rolls
// the whole batch back.
func BulkSave(objects []Persistable) error {
	d, err := getDB()
	if err != nil {
		return err
	}

	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, obj := range objects {
		if err := saveOn(tx, obj); err != nil {
			return fmt.Errorf("failed to save object: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func selectData(obj interface{}) ([]string, []interface{}) {
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	var names []string
	var dests []interface{}
	for _, c := range columnsOf(obj) {
		names = append(names, c.name)
		dests = append(dests, v.Field(c.idx).Addr().Interface())
	}
	return names, dests
}

func whereClause(primaryKey map[string]interface{}) (string, []interface{}) {
	var conditions []string
	var values []interface{}
	for col, val := range primaryKey {
		conditions = append(conditions, fmt.Sprintf("%s = ?", col))
		values = append(values, val)
	}
	return strings.Join(conditions, " AND "), values
}
