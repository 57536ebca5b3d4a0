package query_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/uorm/uorm/query"
)

func TestQuery(t *testing.T) {
	results := []struct {
		Query  *query.Query
		Where  string
		Params []interface{}
	}{
		{
			query.New(), "", nil,
		},
		{
			query.New().Eq("category", "Electronics").Or().Gt("price", 400.0),
			"category = ? OR price > ?", []interface{}{"Electronics", 400.0},
		},
		{
			query.New().Eq("a", 1).Ne("b", int32(2)).Lt("c", uint8(3)).Le("d", uint64(4)).Ge("e", true),
			"a = ? AND b != ? AND c < ? AND d <= ? AND e >= ?", []interface{}{int64(1), int32(2), uint32(3), uint64(4), true},
		},
		{
			query.New().Or().Eq("name", "first"),
			"name = ?", []interface{}{"first"},
		},
		{
			query.New().Eq("a", 1).Or().Eq("b", 2).Eq("c", 3),
			"a = ? OR b = ? AND c = ?", []interface{}{int64(1), int64(2), int64(3)},
		},
		{
			query.New().Like("name", "%phone%").IsNull("deleted_at").IsNotNull("sku"),
			"name LIKE ? AND deleted_at IS NULL AND sku IS NOT NULL", []interface{}{"%phone%"},
		},
		{
			query.New().Between("price", 10, 20.5),
			"price BETWEEN ? AND ?", []interface{}{int64(10), 20.5},
		},
		{
			query.New().In("id", 1, 2, 3),
			"id IN (?, ?, ?)", []interface{}{int64(1), int64(2), int64(3)},
		},
		{
			query.New().In("id"),
			"1=0", nil,
		},
		{
			query.New().NotIn("id"),
			"1=1", nil,
		},
		{
			query.New().Eq("active", true).NotIn("category", query.Values([]string{"A", "B"})...),
			"active = ? AND category NOT IN (?, ?)", []interface{}{true, "A", "B"},
		},
		{
			query.New().Eq("stock", 0).Or().In("id"),
			"stock = ? OR 1=0", []interface{}{int64(0)},
		},
		{
			query.New().Raw("price * stock > ?", 1000).Or().Raw("featured = 1"),
			"(price * stock > ?) OR (featured = 1)", []interface{}{int64(1000)},
		},
		{
			query.New().Raw("name = '?' OR id = ?", 1),
			"(name = '?' OR id = ?)", []interface{}{int64(1)},
		},
		{
			query.New().Eq("name", query.Null()).Eq("stock", 2),
			"name = ? AND stock = ?", []interface{}{nil, int64(2)},
		},
		{
			query.New().Eq("products.name", "x"),
			"products.name = ?", []interface{}{"x"},
		},
	}

	for idx, result := range results {
		if err := result.Query.Err(); err != nil {
			t.Fatalf("case #%v: unexpected error %v", idx, err)
		}
		if where := result.Query.WhereClause(); where != result.Where {
			t.Errorf("case #%v: expected where %q, got %q", idx, result.Where, where)
		}

		var params []interface{}
		for _, p := range result.Query.Params() {
			params = append(params, p.Interface())
		}
		if !reflect.DeepEqual(params, result.Params) {
			t.Errorf("case #%v: expected params %#v, got %#v", idx, result.Params, params)
		}
	}
}

func TestQueryTerminals(t *testing.T) {
	q := query.New().Eq("category", "Books")
	if q.OrderByClause() != "" || q.LimitClause() != "" || q.OffsetClause() != "" {
		t.Fatalf("terminals should be empty by default")
	}

	q.OrderBy("price", false).OrderBy("name", true).Limit(10).Offset(20)

	if got := q.OrderByClause(); got != " ORDER BY price DESC, name ASC" {
		t.Errorf("unexpected order by %q", got)
	}
	if got := q.LimitClause(); got != " LIMIT 10" {
		t.Errorf("unexpected limit %q", got)
	}
	if got := q.OffsetClause(); got != " OFFSET 20" {
		t.Errorf("unexpected offset %q", got)
	}
	if got := q.String(); got != "category = ? ORDER BY price DESC, name ASC LIMIT 10 OFFSET 20" {
		t.Errorf("unexpected query %q", got)
	}

	if got := query.New().Limit(0).LimitClause(); got != " LIMIT 0" {
		t.Errorf("explicit zero limit should render, got %q", got)
	}
}

func TestQueryErrors(t *testing.T) {
	results := []struct {
		Query *query.Query
		Err   error
	}{
		{query.New().Eq("name; DROP TABLE products", 1), query.ErrInvalidIdentifier},
		{query.New().Eq("", 1), query.ErrInvalidIdentifier},
		{query.New().OrderBy("price desc", true), query.ErrInvalidIdentifier},
		{query.New().Eq("tags", []string{"a"}), query.ErrUnsupportedType},
		{query.New().In("id", 1, struct{}{}), query.ErrUnsupportedType},
		{query.New().Limit(-1), query.ErrInvalidArgument},
		{query.New().Offset(-1), query.ErrInvalidArgument},
		{query.New().Raw("a = ? AND b = ?", 1), query.ErrInvalidArgument},
		{query.New().Raw("a = '?'", 1), query.ErrInvalidArgument},
	}

	for idx, result := range results {
		if err := result.Query.Err(); !errors.Is(err, result.Err) {
			t.Errorf("case #%v: expected %v, got %v", idx, result.Err, err)
		}
	}

	q := query.New().Eq("bad name", 1).Eq("good", 2)
	if q.WhereClause() != "" || len(q.Params()) != 0 {
		t.Errorf("calls after an error should be ignored, got %q %v", q.WhereClause(), q.Params())
	}
}

func TestValidIdentifier(t *testing.T) {
	for _, s := range []string{"id", "_id", "products.id", "Name2"} {
		if !query.ValidIdentifier(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []string{"", "1id", "a b", "a-b", "a;b", "`id`"} {
		if query.ValidIdentifier(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	results := []struct {
		SQL     string
		Offsets []int
	}{
		{"SELECT 1", nil},
		{"a = ? AND b = ?", []int{4, 14}},
		{"name = '?' OR id = ?", []int{19}},
		{`"we?ird" = ? AND ` + "`x?` = ?", []int{11, 24}},
		{"note = 'it''s ?' AND id = ?", []int{26}},
	}

	for idx, result := range results {
		if offsets := query.Placeholders(result.SQL); !reflect.DeepEqual(offsets, result.Offsets) {
			t.Errorf("case #%v: expected offsets %v, got %v", idx, result.Offsets, offsets)
		}
	}
}
