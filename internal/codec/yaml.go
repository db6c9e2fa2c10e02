package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"hsclci/internal/domain"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlDocument represents the YAML structure for a database
type yamlDocument struct {
	Database string        `yaml:"database"`
	Datasets []yamlDataset `yaml:"datasets"`
}

type yamlDataset struct {
	Name             string         `yaml:"name"`
	ReferenceProduct string         `yaml:"reference_product"`
	Location         string         `yaml:"location"`
	ProductionAmount float64        `yaml:"production_amount"`
	Unit             string         `yaml:"unit"`
	Code             string         `yaml:"code"`
	Comment          string         `yaml:"comment,omitempty"`
	Exchanges        []yamlExchange `yaml:"exchanges,omitempty"`
}

type yamlExchange struct {
	Name          string   `yaml:"name"`
	Product       string   `yaml:"product,omitempty"`
	Location      string   `yaml:"location,omitempty"`
	Amount        float64  `yaml:"amount"`
	Unit          string   `yaml:"unit"`
	Categories    []string `yaml:"categories,omitempty"`
	Database      string   `yaml:"database"`
	Type          string   `yaml:"type"`
	InputDatabase string   `yaml:"input_database,omitempty"`
	InputCode     string   `yaml:"input_code,omitempty"`
}

// Parse imports a database document from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*Document, error) {
	var yd yamlDocument
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yd); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	doc := &Document{Database: yd.Database}

	for _, yds := range yd.Datasets {
		ds := &domain.Dataset{
			Name:             yds.Name,
			ReferenceProduct: yds.ReferenceProduct,
			Location:         yds.Location,
			ProductionAmount: yds.ProductionAmount,
			Unit:             yds.Unit,
			Database:         yd.Database,
			Code:             yds.Code,
			Comment:          yds.Comment,
		}
		for _, ye := range yds.Exchanges {
			exc := &domain.Exchange{
				Name:     ye.Name,
				Product:  ye.Product,
				Location: ye.Location,
				Amount:   ye.Amount,
				Unit:     ye.Unit,
				Database: ye.Database,
				Type:     domain.FlowType(ye.Type),
			}
			if len(ye.Categories) > 0 {
				cats := domain.CategoriesFromSlice(ye.Categories)
				exc.Categories = &cats
			}
			if ye.InputCode != "" {
				exc.Input = &domain.ExchangeKey{
					Database: ye.InputDatabase,
					Code:     ye.InputCode,
				}
			}
			ds.AddExchange(exc)
		}
		doc.Datasets = append(doc.Datasets, ds)
	}

	return doc, nil
}

// Export writes a database document as YAML
func (c *YAMLCodec) Export(doc *Document, w io.Writer) error {
	yd := yamlDocument{
		Database: doc.Database,
		Datasets: make([]yamlDataset, 0, len(doc.Datasets)),
	}

	for _, ds := range doc.Datasets {
		yds := yamlDataset{
			Name:             ds.Name,
			ReferenceProduct: ds.ReferenceProduct,
			Location:         ds.Location,
			ProductionAmount: ds.ProductionAmount,
			Unit:             ds.Unit,
			Code:             ds.Code,
			Comment:          ds.Comment,
		}
		for _, exc := range ds.Exchanges {
			ye := yamlExchange{
				Name:     exc.Name,
				Product:  exc.Product,
				Location: exc.Location,
				Amount:   exc.Amount,
				Unit:     exc.Unit,
				Database: exc.Database,
				Type:     string(exc.Type),
			}
			if exc.Categories != nil {
				ye.Categories = exc.Categories.Slice()
			}
			if exc.Input != nil {
				ye.InputDatabase = exc.Input.Database
				ye.InputCode = exc.Input.Code
			}
			yds.Exchanges = append(yds.Exchanges, ye)
		}
		yd.Datasets = append(yd.Datasets, yds)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yd); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
