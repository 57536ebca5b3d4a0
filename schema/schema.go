package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrRegistered a record type can only be registered once per registry
	ErrRegistered = errors.New("record type already registered")
	// ErrUnregistered the record type has no table descriptor
	ErrUnregistered = errors.New("record type not registered")
	// ErrInvalidField a field mapping is wrong
	ErrInvalidField = errors.New("invalid field")
	// ErrUnsupportedModel only structs can be registered
	ErrUnsupportedModel = errors.New("unsupported model")
)

// DefaultTableOptions applies when a table declares no options
const DefaultTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"

// Table describes how a record type maps to a table. It is never modified
// after registration.
type Table struct {
	Name               string
	ModelType          reflect.Type
	Fields             []*Field
	FieldsByName       map[string]*Field
	FieldsByDBName     map[string]*Field
	PrimaryFields      []*Field
	AutoIncrementField *Field
	Options            string
	Indexes            []string
}

func (table *Table) String() string {
	return fmt.Sprintf("%v.%v(%v)", table.ModelType.PkgPath(), table.ModelType.Name(), table.Name)
}

// LookUpField finds a field by column or Go name
func (table *Table) LookUpField(name string) *Field {
	if field, ok := table.FieldsByDBName[name]; ok {
		return field
	}
	if field, ok := table.FieldsByName[name]; ok {
		return field
	}
	return nil
}

// Tabler overrides the table name used by Parse
type Tabler interface {
	TableName() string
}

// TableOptioner supplies table options and index fragments to Parse
type TableOptioner interface {
	TableOptions() string
}

// TableIndexer supplies raw index fragments to Parse
type TableIndexer interface {
	TableIndexes() []string
}

// Registry maps record types to tables
type Registry struct {
	Namer  Namer
	tables sync.Map
}

// NewRegistry returns an empty registry using the default naming strategy
func NewRegistry() *Registry {
	return &Registry{Namer: NamingStrategy{}}
}

// Default is the process wide registry
var Default = NewRegistry()

// Lookup returns the table registered for t
func (r *Registry) Lookup(t reflect.Type) (*Table, bool) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if v, ok := r.tables.Load(t); ok {
		return v.(*Table), true
	}
	return nil, false
}

// Tables returns every registered table ordered by name
func (r *Registry) Tables() []*Table {
	var tables []*Table
	r.tables.Range(func(_, v interface{}) bool {
		tables = append(tables, v.(*Table))
		return true
	})
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables
}

// Lookup returns the table registered for T in reg
func Lookup[T any](reg *Registry) (*Table, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if table, ok := reg.Lookup(t); ok {
		return table, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnregistered, t)
}

type column struct {
	name       string
	dbName     string
	sqlType    string
	constraint string
}

type definition struct {
	columns    []column
	options    string
	hasOptions bool
	indexes    []string
}

// Option configures a table at registration
type Option func(*definition)

// Column maps the Go field name to column with constraint text such as
// "PRIMARY KEY AUTO_INCREMENT"
func Column(name, dbName, constraint string) Option {
	return TypedColumn(name, dbName, "", constraint)
}

// TypedColumn is Column with an explicit SQL type
func TypedColumn(name, dbName, sqlType, constraint string) Option {
	return func(d *definition) {
		d.columns = append(d.columns, column{name: name, dbName: dbName, sqlType: sqlType, constraint: constraint})
	}
}

// WithOptions sets the raw table options and index fragments
func WithOptions(options string, indexes ...string) Option {
	return func(d *definition) {
		d.options = options
		d.hasOptions = true
		d.indexes = append(d.indexes, indexes...)
	}
}

// WithIndexes adds raw index fragments such as "INDEX idx_name (name)"
func WithIndexes(indexes ...string) Option {
	return func(d *definition) {
		d.indexes = append(d.indexes, indexes...)
	}
}

// Register maps T to table in reg
func Register[T any](reg *Registry, table string, opts ...Option) (*Table, error) {
	var def definition
	for _, opt := range opts {
		opt(&def)
	}
	return reg.register(reflect.TypeOf((*T)(nil)).Elem(), table, def)
}

// MustRegister is Register that panics, for package level registration
func MustRegister[T any](reg *Registry, table string, opts ...Option) *Table {
	t, err := Register[T](reg, table, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func (r *Registry) register(modelType reflect.Type, name string, def definition) (*Table, error) {
	for modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v is not a struct", ErrUnsupportedModel, modelType)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: %v has no table name", ErrUnsupportedModel, modelType)
	}
	if len(def.columns) == 0 {
		return nil, fmt.Errorf("%w: %v has no columns", ErrUnsupportedModel, modelType)
	}

	table := &Table{
		Name:           name,
		ModelType:      modelType,
		FieldsByName:   map[string]*Field{},
		FieldsByDBName: map[string]*Field{},
		Options:        DefaultTableOptions,
		Indexes:        def.indexes,
	}
	if def.hasOptions {
		table.Options = def.options
	}

	var autoIncrement []*Field
	for _, col := range def.columns {
		field, err := newField(modelType, col)
		if err != nil {
			return nil, err
		}
		if _, ok := table.FieldsByDBName[field.DBName]; ok {
			return nil, fmt.Errorf("%w: column %v mapped twice in %v", ErrInvalidField, field.DBName, modelType)
		}
		if _, ok := table.FieldsByName[field.Name]; ok {
			return nil, fmt.Errorf("%w: field %v mapped twice in %v", ErrInvalidField, field.Name, modelType)
		}

		table.Fields = append(table.Fields, field)
		table.FieldsByName[field.Name] = field
		table.FieldsByDBName[field.DBName] = field
		if field.PrimaryKey {
			table.PrimaryFields = append(table.PrimaryFields, field)
		}
		if field.AutoIncrement {
			autoIncrement = append(autoIncrement, field)
		}
	}
	if len(autoIncrement) == 1 {
		table.AutoIncrementField = autoIncrement[0]
	}

	if _, loaded := r.tables.LoadOrStore(modelType, table); loaded {
		return nil, fmt.Errorf("%w: %v", ErrRegistered, modelType)
	}
	return table, nil
}

func newField(modelType reflect.Type, col column) (*Field, error) {
	if strings.TrimSpace(col.dbName) == "" {
		return nil, fmt.Errorf("%w: %v.%v has no column name", ErrInvalidField, modelType, col.name)
	}

	structField, ok := modelType.FieldByName(col.name)
	if !ok || !structField.IsExported() {
		return nil, fmt.Errorf("%w: %v has no exported field %v", ErrInvalidField, modelType, col.name)
	}

	dataType, ok := DataTypeOf(structField.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %v.%v has unsupported type %v", ErrInvalidField, modelType, col.name, structField.Type)
	}

	return &Field{
		Name:        col.name,
		DBName:      col.dbName,
		Constraint:  col.constraint,
		SQLType:     col.sqlType,
		DataType:    dataType,
		FieldType:   structField.Type,
		Constraints: ParseConstraints(col.constraint),
		StructField: structField,
		index:       structField.Index,
	}, nil
}

// Parse registers T from its `uorm` struct tags:
//
//	ID   int64  `uorm:"column:id;constraint:PRIMARY KEY AUTO_INCREMENT"`
//	Name string `uorm:"not null;unique"`
//	Tmp  string `uorm:"-"`
//
// Missing column and table names come from the registry Namer.
func Parse[T any](reg *Registry) (*Table, error) {
	modelType := reflect.TypeOf((*T)(nil)).Elem()
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v is not a struct", ErrUnsupportedModel, modelType)
	}

	namer := reg.Namer
	if namer == nil {
		namer = NamingStrategy{}
	}

	var (
		model = reflect.New(modelType).Interface()
		name  = namer.TableName(modelType.Name())
		def   definition
	)
	if tabler, ok := model.(Tabler); ok {
		name = tabler.TableName()
	}
	if optioner, ok := model.(TableOptioner); ok {
		def.options = optioner.TableOptions()
		def.hasOptions = true
	}
	if indexer, ok := model.(TableIndexer); ok {
		def.indexes = indexer.TableIndexes()
	}

	if err := parseColumns(modelType, name, namer, &def); err != nil {
		return nil, err
	}
	return reg.register(modelType, name, def)
}

func parseColumns(modelType reflect.Type, table string, namer Namer, def *definition) error {
	for i := 0; i < modelType.NumField(); i++ {
		structField := modelType.Field(i)
		if !structField.IsExported() {
			continue
		}

		tag := structField.Tag.Get("uorm")
		if tag == "-" {
			continue
		}

		if structField.Anonymous && structField.Type.Kind() == reflect.Struct && !structField.Type.ConvertibleTo(timeType) {
			if err := parseColumns(structField.Type, table, namer, def); err != nil {
				return err
			}
			continue
		}

		settings := ParseTagSetting(tag, ";")
		dbName := settings["COLUMN"]
		if dbName == "" {
			dbName = namer.ColumnName(table, structField.Name)
		}

		def.columns = append(def.columns, column{
			name:       structField.Name,
			dbName:     dbName,
			sqlType:    settings["TYPE"],
			constraint: constraintFromTag(settings),
		})
	}
	return nil
}

func constraintFromTag(settings map[string]string) string {
	if c, ok := settings["CONSTRAINT"]; ok {
		return c
	}

	var markers []string
	if _, ok := settings["PRIMARYKEY"]; ok {
		markers = append(markers, PrimaryKey)
	} else if _, ok := settings["PRIMARY_KEY"]; ok {
		markers = append(markers, PrimaryKey)
	}
	if _, ok := settings["AUTOINCREMENT"]; ok {
		markers = append(markers, AutoIncrement)
	} else if _, ok := settings["AUTO_INCREMENT"]; ok {
		markers = append(markers, AutoIncrement)
	}
	if _, ok := settings["NOT NULL"]; ok {
		markers = append(markers, NotNull)
	} else if _, ok := settings["NOTNULL"]; ok {
		markers = append(markers, NotNull)
	}
	if _, ok := settings["UNIQUE"]; ok {
		markers = append(markers, Unique)
	}
	if v, ok := settings["DEFAULT"]; ok {
		markers = append(markers, DefaultTo(v))
	}
	return Constraint(markers...)
}
