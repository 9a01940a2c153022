package models

import "time"

// Spreadsheet column names as they appear in the lead sheet header.
const (
	ColTimestamp    = "Data/Hora"
	ColName         = "Nome"
	ColPhone        = "Telefone"
	ColReference    = "Imóvel/Referência"
	ColInterest     = "Interesse Visita"
	ColPropertyType = "Tipo Imóvel"
	ColStatus       = "Status"
	ColOrigin       = "Origem"
)

// PropertyType is the classified kind of property a lead asked about.
type PropertyType string

const (
	Casa        PropertyType = "Casa"
	Apartamento PropertyType = "Apartamento"
	Terreno     PropertyType = "Terreno"
	Comercial   PropertyType = "Comercial"
	Lancamento  PropertyType = "Lançamento"
	Outros      PropertyType = "Outros"
	Indefinido  PropertyType = "Indefinido"
)

// DefaultStatus is assigned to leads without a status.
const DefaultStatus = "Novo"

// Table is a rectangular sheet: every row has exactly len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of name in the header, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Lead is one cleaned and classified lead record.
type Lead struct {
	Timestamp    *time.Time   `json:"timestamp"`
	Name         string       `json:"name"`
	Phone        string       `json:"phone"`
	Reference    string       `json:"reference"`
	Interest     bool         `json:"interest"`
	InterestRaw  string       `json:"-"`
	PropertyType PropertyType `json:"property_type"`
	Status       string       `json:"status"`
	Origin       string       `json:"origin,omitempty"`
}

// HasTimestamp reports whether the lead's timestamp was parsed.
func (l *Lead) HasTimestamp() bool {
	return l.Timestamp != nil
}

// Dataset is the output of one load: the cleaned leads plus the source columns
// they came from, which decide what optional views and export columns exist.
type Dataset struct {
	Worksheet string     `json:"worksheet"`
	Columns   []string   `json:"columns"`
	Leads     []*Lead    `json:"leads"`
	Stats     CleanStats `json:"stats"`
}

// HasColumn reports whether the source sheet carried the named column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// CleanStats summarises what the cleaner dropped or could not parse.
type CleanStats struct {
	RawRows       int `json:"raw_rows"`
	Kept          int `json:"kept"`
	Dropped       int `json:"dropped"`
	ParseFailures int `json:"parse_failures"`
	Classified    int `json:"classified"`
}

// RawSheet is what a source returns: the worksheet it read and its values,
// header first, rows of any width.
type RawSheet struct {
	Worksheet string
	Values    [][]string
}
