// Package upload parses retailer price files into rows the reconciliation
// engine can check. Files arrive as delimited text or XLSX workbooks with a
// header row; the caller maps the canonical fields (sku, price, salePrice)
// onto the file's actual header names.
package upload

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mapwatch/mapwatch/internal/tabular"
	"github.com/mapwatch/mapwatch/pkg/errors"
)

// Mapping names the header each canonical field lives under in the uploaded
// file. SKU and Price are required; SalePrice is optional and may be empty.
type Mapping struct {
	SKU       string `json:"sku" yaml:"sku"`
	Price     string `json:"price" yaml:"price"`
	SalePrice string `json:"salePrice,omitempty" yaml:"salePrice,omitempty"`
}

// DefaultMapping returns the mapping for files whose headers already use the
// canonical field names.
func DefaultMapping() Mapping {
	return Mapping{SKU: "sku", Price: "price", SalePrice: "salePrice"}
}

// Validate checks the mapping names its required headers.
func (m Mapping) Validate() error {
	if strings.TrimSpace(m.SKU) == "" {
		return errors.NewValidationError("sku", m.SKU, "upload mapping must name a sku header")
	}
	if strings.TrimSpace(m.Price) == "" {
		return errors.NewValidationError("price", m.Price, "upload mapping must name a price header")
	}
	return nil
}

// Row is one uploaded price row. Values are raw cell text; price parsing
// happens during the check so unparseable prices can be counted rather than
// lost here.
type Row struct {
	SKU       string
	Price     string
	SalePrice string
}

// ParseCSV parses delimited upload text (comma, tab, or semicolon) whose
// first row is the header.
func ParseCSV(raw string, m Mapping) ([]Row, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	rows, err := tabular.Parse(raw)
	if err != nil {
		return nil, err
	}
	return fromCells(rows, m, "csv")
}

// ParseXLSX parses an XLSX workbook's first sheet, first row as header.
func ParseXLSX(r io.Reader, m Mapping) ([]Row, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.WrapParse("xlsx", "", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewParseError("xlsx", "", "workbook has no sheets", nil)
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.WrapParse("xlsx", sheets[0], err)
	}
	return fromCells(cells, m, "xlsx")
}

// fromCells resolves the mapping against the header row and extracts the
// data rows. Header matching is case-insensitive and whitespace-tolerant.
func fromCells(cells [][]string, m Mapping, format string) ([]Row, error) {
	if len(cells) == 0 {
		return nil, errors.NewParseError(format, "", "file has no header row", nil)
	}

	header := cells[0]
	skuIdx := headerIndex(header, m.SKU)
	priceIdx := headerIndex(header, m.Price)
	saleIdx := -1
	if strings.TrimSpace(m.SalePrice) != "" {
		saleIdx = headerIndex(header, m.SalePrice)
	}

	if skuIdx < 0 {
		return nil, errors.NewValidationError("sku", m.SKU, "header not found in uploaded file")
	}
	if priceIdx < 0 {
		return nil, errors.NewValidationError("price", m.Price, "header not found in uploaded file")
	}

	out := make([]Row, 0, len(cells)-1)
	for _, row := range cells[1:] {
		r := Row{
			SKU:   cell(row, skuIdx),
			Price: cell(row, priceIdx),
		}
		if saleIdx >= 0 {
			r.SalePrice = cell(row, saleIdx)
		}
		if strings.TrimSpace(r.SKU) == "" && strings.TrimSpace(r.Price) == "" {
			continue // blank padding row
		}
		out = append(out, r)
	}
	return out, nil
}

func headerIndex(header []string, name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, h := range header {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
