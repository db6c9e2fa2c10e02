package domain

import (
	"github.com/google/uuid"
)

// ExchangeKey identifies the dataset or elementary flow an exchange
// draws from: a (database, code) pair
type ExchangeKey struct {
	Database string `json:"database"`
	Code     string `json:"code"`
}

// Exchange is one input or output of an inventory dataset.
// Categories is set only for biosphere exchanges; Product and Location
// only for production and technosphere exchanges.
type Exchange struct {
	Name       string       `json:"name"`
	Product    string       `json:"product,omitempty"`
	Location   string       `json:"location,omitempty"`
	Amount     float64      `json:"amount"`
	Unit       string       `json:"unit"`
	Categories *Categories  `json:"categories,omitempty"`
	Database   string       `json:"database"`
	Type       FlowType     `json:"type"`
	Input      *ExchangeKey `json:"input,omitempty"`
}

// Linked reports whether the exchange has been resolved to a dataset code
func (e *Exchange) Linked() bool {
	return e.Input != nil
}

// Dataset is one inventory activity together with its exchanges.
// Each unit process produces 1 "unit" of itself as reference flow.
type Dataset struct {
	Name             string      `json:"name"`
	ReferenceProduct string      `json:"reference product"`
	Location         string      `json:"location"`
	ProductionAmount float64     `json:"production amount"`
	Unit             string      `json:"unit"`
	Database         string      `json:"database"`
	Code             string      `json:"code"`
	Comment          string      `json:"comment,omitempty"`
	Exchanges        []*Exchange `json:"exchanges,omitempty"`
}

// NewDataset creates a dataset with a fresh code and the default
// reference flow of 1 unit
func NewDataset(name, referenceProduct, location, database, comment string) *Dataset {
	return &Dataset{
		Name:             name,
		ReferenceProduct: referenceProduct,
		Location:         location,
		ProductionAmount: 1,
		Unit:             "unit",
		Database:         database,
		Code:             NewCode(),
		Comment:          comment,
	}
}

// NewCode generates a dataset code
func NewCode() string {
	return uuid.NewString()
}

// Key returns the (database, code) identity of the dataset
func (d *Dataset) Key() ExchangeKey {
	return ExchangeKey{Database: d.Database, Code: d.Code}
}

// ProductionExchange builds the exchange producing the dataset's own
// reference flow. The exchange is born linked to the dataset itself.
func (d *Dataset) ProductionExchange() *Exchange {
	key := d.Key()
	return &Exchange{
		Name:     d.Name,
		Product:  d.ReferenceProduct,
		Location: d.Location,
		Amount:   d.ProductionAmount,
		Unit:     d.Unit,
		Database: d.Database,
		Type:     FlowProduction,
		Input:    &key,
	}
}

// AddExchange appends an exchange to the dataset
func (d *Dataset) AddExchange(e *Exchange) {
	d.Exchanges = append(d.Exchanges, e)
}

// UnlinkedCount returns the number of exchanges still missing an input key
func (d *Dataset) UnlinkedCount() int {
	n := 0
	for _, e := range d.Exchanges {
		if !e.Linked() {
			n++
		}
	}
	return n
}
