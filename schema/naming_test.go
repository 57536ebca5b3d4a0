package schema

import (
	"testing"
)

func TestToDBName(t *testing.T) {
	var maps = map[string]string{
		"":                          "",
		"x":                         "x",
		"X":                         "x",
		"userRestrictions":          "user_restrictions",
		"ThisIsATest":               "this_is_a_test",
		"PFAndESI":                  "pf_and_esi",
		"EmployeeID":                "employee_id",
		"SKU_ID":                    "sku_id",
		"SKUCode":                   "sku_code",
		"FieldX":                    "field_x",
		"HTTPAndSMTP":               "http_and_smtp",
		"HTTPServerHandlerForURLID": "http_server_handler_for_url_id",
		"UUID":                      "uuid",
		"HTTPURL":                   "http_url",
		"HTTP_URL":                  "http_url",
		"SHA256Hash":                "sha256_hash",
		"CreatedAt":                 "created_at",
		"Price2":                    "price2",
		"UnitPrice":                 "unit_price",
	}

	for key, value := range maps {
		if toDBName(key) != value {
			t.Errorf("%v toName should equal %v, but got %v", key, value, toDBName(key))
		}
	}
}

func TestNamingStrategy(t *testing.T) {
	ns := NamingStrategy{TablePrefix: "shop_"}

	if table := ns.TableName("OrderItem"); table != "shop_order_items" {
		t.Errorf("invalid table name generated, got %v", table)
	}

	if table := ns.TableName("Category"); table != "shop_categories" {
		t.Errorf("invalid table name generated, got %v", table)
	}

	if column := ns.ColumnName("", "UnitPrice"); column != "unit_price" {
		t.Errorf("invalid column name generated, got %v", column)
	}

	if table := ns.TableName("Person"); table != "shop_people" {
		t.Errorf("invalid irregular plural generated, got %v", table)
	}

	singular := NamingStrategy{SingularTable: true}
	if table := singular.TableName("OrderItem"); table != "order_item" {
		t.Errorf("invalid singular table name generated, got %v", table)
	}
}
