// Package pmml defines the PMML 4.2 elements produced by pmmlconv and
// their XML serialization.
//
// Elements are plain structs. A fragment is assembled bottom-up and attached
// to its parent once; nothing in pmmlconv mutates a fragment after that.
package pmml

import "encoding/xml"

const (
	// Version is the only PMML version pmmlconv emits
	Version = "4.2"
	// Namespace is the PMML 4.2 XML namespace
	Namespace = "http://www.dmg.org/PMML-4_2"
)

// Model is implemented by every model element (RegressionModel, ...)
type Model interface {
	// ModelElement returns the element name, e.g. "RegressionModel"
	ModelElement() string
}

// PMML is the document root
type PMML struct {
	XMLName                  xml.Name                  `xml:"PMML"`
	Xmlns                    string                    `xml:"xmlns,attr,omitempty"`
	Version                  string                    `xml:"version,attr"`
	Header                   *Header                   `xml:"Header"`
	DataDictionary           *DataDictionary           `xml:"DataDictionary"`
	TransformationDictionary *TransformationDictionary `xml:"TransformationDictionary"`
	Model                    Model
}

// Header carries opaque document metadata
type Header struct {
	XMLName     xml.Name     `xml:"Header"`
	Copyright   string       `xml:"copyright,attr,omitempty"`
	Description string       `xml:"description,attr,omitempty"`
	Application *Application `xml:"Application,omitempty"`
	Timestamp   string       `xml:"Timestamp,omitempty"`
}

// Application names the producing tool
type Application struct {
	Name    string `xml:"name,attr"`
	Version string `xml:"version,attr,omitempty"`
}

// DataDictionary declares every raw field
type DataDictionary struct {
	XMLName        xml.Name    `xml:"DataDictionary"`
	NumberOfFields int         `xml:"numberOfFields,attr,omitempty"`
	DataFields     []DataField `xml:"DataField"`
}

// DataField declares one raw field
type DataField struct {
	Name     string  `xml:"name,attr"`
	OpType   string  `xml:"optype,attr"`
	DataType string  `xml:"dataType,attr"`
	Values   []Value `xml:"Value"`
}

// Value is one legal value of a categorical field
type Value struct {
	Value string `xml:"value,attr"`
}

// TransformationDictionary declares derived fields
type TransformationDictionary struct {
	XMLName       xml.Name       `xml:"TransformationDictionary"`
	DerivedFields []DerivedField `xml:"DerivedField"`
}

// DerivedField is a field computed from other fields
type DerivedField struct {
	Name      string     `xml:"name,attr"`
	OpType    string     `xml:"optype,attr"`
	DataType  string     `xml:"dataType,attr"`
	MapValues *MapValues `xml:"MapValues,omitempty"`
}

// MapValues maps input columns to an output column through an inline table
type MapValues struct {
	OutputColumn     string            `xml:"outputColumn,attr"`
	DataType         string            `xml:"dataType,attr,omitempty"`
	DefaultValue     string            `xml:"defaultValue,attr,omitempty"`
	MapMissingTo     string            `xml:"mapMissingTo,attr,omitempty"`
	FieldColumnPairs []FieldColumnPair `xml:"FieldColumnPair"`
	InlineTable      *InlineTable      `xml:"InlineTable"`
}

// FieldColumnPair binds a field to a table column
type FieldColumnPair struct {
	Field  string `xml:"field,attr"`
	Column string `xml:"column,attr"`
}

// InlineTable is a literal lookup table
type InlineTable struct {
	Rows []Row `xml:"row"`
}

// Row is one table row; each cell is an element named after its column
type Row struct {
	Cells []Cell
}

// Cell is a single column value inside a Row
type Cell struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// NewRow builds a row from alternating column/value pairs
func NewRow(columnValues ...string) Row {
	r := Row{Cells: make([]Cell, 0, len(columnValues)/2)}
	for i := 0; i+1 < len(columnValues); i += 2 {
		r.Cells = append(r.Cells, Cell{
			XMLName: xml.Name{Local: columnValues[i]},
			Value:   columnValues[i+1],
		})
	}
	return r
}

// Get returns the value of column and whether the row has it
func (r Row) Get(column string) (string, bool) {
	for _, c := range r.Cells {
		if c.XMLName.Local == column {
			return c.Value, true
		}
	}
	return "", false
}

// MiningSchema declares the fields a model consumes and produces
type MiningSchema struct {
	XMLName      xml.Name      `xml:"MiningSchema"`
	MiningFields []MiningField `xml:"MiningField"`
}

// MiningField is one entry of a MiningSchema
type MiningField struct {
	Name                  string `xml:"name,attr"`
	UsageType             string `xml:"usageType,attr,omitempty"`
	InvalidValueTreatment string `xml:"invalidValueTreatment,attr,omitempty"`
}

// UsagePredicted marks a target field
const UsagePredicted = "predicted"
