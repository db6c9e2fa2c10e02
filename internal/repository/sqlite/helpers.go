package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"hsclci/internal/domain"
)

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// activityPayload is the JSON shape stored in the data column
type activityPayload struct {
	Categories []string `json:"categories,omitempty"`
}

// categoriesToJSON encodes flow categories for the data column
func categoriesToJSON(cats domain.Categories) (sql.NullString, error) {
	if cats.Category == "" {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(activityPayload{Categories: cats.Slice()})
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// categoriesFromJSON decodes flow categories from the data column.
// Returns nil when the payload carries no categories.
func categoriesFromJSON(ns sql.NullString) (*domain.Categories, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var payload activityPayload
	if err := json.Unmarshal([]byte(ns.String), &payload); err != nil {
		return nil, err
	}
	if len(payload.Categories) == 0 {
		return nil, nil
	}
	cats := domain.CategoriesFromSlice(payload.Categories)
	return &cats, nil
}

// activityRow holds all columns from an activity query for scanning
type activityRow struct {
	Code             string
	Name             string
	ReferenceProduct sql.NullString
	Location         sql.NullString
	Unit             sql.NullString
	ProductionAmount float64
	Comment          sql.NullString
}

// scanArgs returns pointers to all fields for sql.Scan().
// MUST match the SELECT column order:
// code, name, reference_product, location, unit, production_amount, comment
func (r *activityRow) scanArgs() []interface{} {
	return []interface{}{
		&r.Code,
		&r.Name,
		&r.ReferenceProduct,
		&r.Location,
		&r.Unit,
		&r.ProductionAmount,
		&r.Comment,
	}
}

// toDomain converts the scanned row to a domain.Dataset
func (r *activityRow) toDomain(database string) *domain.Dataset {
	return &domain.Dataset{
		Name:             r.Name,
		ReferenceProduct: nullToString(r.ReferenceProduct),
		Location:         nullToString(r.Location),
		Unit:             nullToString(r.Unit),
		ProductionAmount: r.ProductionAmount,
		Database:         database,
		Code:             r.Code,
		Comment:          nullToString(r.Comment),
	}
}

// exchangeRow holds all columns from an exchange query for scanning
type exchangeRow struct {
	ActivityCode  string
	Name          string
	Database      sql.NullString
	Product       sql.NullString
	Location      sql.NullString
	Amount        float64
	Unit          sql.NullString
	Categories    sql.NullString
	Type          string
	InputDatabase sql.NullString
	InputCode     sql.NullString
}

// scanArgs returns pointers to all fields for sql.Scan().
// MUST match the SELECT column order:
// activity_code, name, database, product, location, amount, unit,
// categories, type, input_database, input_code
func (r *exchangeRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ActivityCode,
		&r.Name,
		&r.Database,
		&r.Product,
		&r.Location,
		&r.Amount,
		&r.Unit,
		&r.Categories,
		&r.Type,
		&r.InputDatabase,
		&r.InputCode,
	}
}

// toDomain converts the scanned row to a domain.Exchange
func (r *exchangeRow) toDomain() *domain.Exchange {
	exc := &domain.Exchange{
		Name:     r.Name,
		Database: nullToString(r.Database),
		Product:  nullToString(r.Product),
		Location: nullToString(r.Location),
		Amount:   r.Amount,
		Unit:     nullToString(r.Unit),
		Type:     domain.FlowType(r.Type),
	}
	if r.Categories.Valid && r.Categories.String != "" {
		cats := domain.CategoriesFromSlice(strings.SplitN(r.Categories.String, "/", 2))
		exc.Categories = &cats
	}
	if r.InputCode.Valid {
		exc.Input = &domain.ExchangeKey{
			Database: nullToString(r.InputDatabase),
			Code:     r.InputCode.String,
		}
	}
	return exc
}

// activityInsertArgs prepares arguments for an activity INSERT.
// Returns: code, database, name, reference_product, location, unit,
// production_amount, comment, data
func activityInsertArgs(database string, ds *domain.Dataset) ([]interface{}, error) {
	data, err := json.Marshal(ds)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dataset %q: %w", ds.Name, err)
	}

	return []interface{}{
		ds.Code,
		database,
		ds.Name,
		stringToNull(ds.ReferenceProduct),
		stringToNull(ds.Location),
		stringToNull(ds.Unit),
		ds.ProductionAmount,
		stringToNull(ds.Comment),
		string(data),
	}, nil
}

// exchangeInsertArgs prepares arguments for an exchange INSERT.
// Returns: activity_code, name, database, product, location, amount,
// unit, categories, type, input_database, input_code
func exchangeInsertArgs(activityCode string, exc *domain.Exchange) ([]interface{}, error) {
	var categories sql.NullString
	if exc.Categories != nil {
		categories = stringToNull(exc.Categories.String())
	}

	var inputDB, inputCode sql.NullString
	if exc.Input != nil {
		inputDB = stringToNull(exc.Input.Database)
		inputCode = stringToNull(exc.Input.Code)
	}

	return []interface{}{
		activityCode,
		exc.Name,
		stringToNull(exc.Database),
		stringToNull(exc.Product),
		stringToNull(exc.Location),
		exc.Amount,
		exc.Unit,
		categories,
		string(exc.Type),
		inputDB,
		inputCode,
	}, nil
}
