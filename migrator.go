package uorm

import (
	"context"
	"strings"

	"github.com/uorm/uorm/schema"
)

// Migrator creates and drops tables for registered record types
type Migrator struct {
	session
	registry *schema.Registry
}

// NewMigrator returns a migrator issuing DDL through pool
func NewMigrator(pool *Pool, opts ...MapperOption) *Migrator {
	o := newMapperOptions(pool, opts)
	return &Migrator{session: session{pool: pool, logger: o.logger}, registry: o.registry}
}

// CreateTableSQL renders the CREATE TABLE statement for table
func (m *Migrator) CreateTableSQL(table *schema.Table) string {
	dialect := m.pool.Dialect()

	var sql strings.Builder
	sql.WriteString("CREATE TABLE IF NOT EXISTS ")
	sql.WriteString(dialect.QuoteIdentifier(table.Name))
	sql.WriteString(" (")
	for idx, field := range table.Fields {
		if idx > 0 {
			sql.WriteString(", ")
		}
		sql.WriteString(dialect.QuoteIdentifier(field.DBName))
		sql.WriteByte(' ')
		sql.WriteString(m.columnType(field))
		if constraint := schema.CleanConstraint(field.Constraint, dialect.AutoIncrementModifier()); constraint != "" {
			sql.WriteByte(' ')
			sql.WriteString(constraint)
		}
	}
	for _, index := range table.Indexes {
		sql.WriteString(", ")
		sql.WriteString(index)
	}
	sql.WriteByte(')')

	if options := dialect.TableOptions(table.Options); options != "" {
		sql.WriteByte(' ')
		sql.WriteString(options)
	}
	return strings.TrimSpace(sql.String())
}

func (m *Migrator) columnType(field *schema.Field) string {
	if field.SQLType != "" {
		return field.SQLType
	}
	return m.pool.Dialect().DataTypeOf(field)
}

// DropTableSQL renders the DROP TABLE statement for table
func (m *Migrator) DropTableSQL(table *schema.Table) string {
	return "DROP TABLE IF EXISTS " + m.pool.Dialect().QuoteIdentifier(table.Name)
}

// CreateTable executes CreateTableSQL for table
func (m *Migrator) CreateTable(ctx context.Context, table *schema.Table) error {
	if err := m.execute(ctx, "create table", m.CreateTableSQL(table)); err != nil {
		m.logger.Error(ctx, "failed to create table %s: %v", table.Name, err)
		return err
	}
	return nil
}

// DropTable executes DropTableSQL for table
func (m *Migrator) DropTable(ctx context.Context, table *schema.Table) error {
	if err := m.execute(ctx, "drop table", m.DropTableSQL(table)); err != nil {
		m.logger.Error(ctx, "failed to drop table %s: %v", table.Name, err)
		return err
	}
	return nil
}

// AutoMigrate creates every table of the registry, stopping at the first failure
func (m *Migrator) AutoMigrate(ctx context.Context) error {
	for _, table := range m.registry.Tables() {
		if err := m.CreateTable(ctx, table); err != nil {
			return err
		}
	}
	return nil
}

// CreateTableFor creates the table registered for T
func CreateTableFor[T any](ctx context.Context, m *Migrator) error {
	table, err := schema.Lookup[T](m.registry)
	if err != nil {
		return &MappingError{Type: typeName[T](), Err: err}
	}
	return m.CreateTable(ctx, table)
}

// DropTableFor drops the table registered for T
func DropTableFor[T any](ctx context.Context, m *Migrator) error {
	table, err := schema.Lookup[T](m.registry)
	if err != nil {
		return &MappingError{Type: typeName[T](), Err: err}
	}
	return m.DropTable(ctx, table)
}
