package services

import (
	"fmt"
	"strconv"
	"time"

	"leads-dashboard/models"
)

// ExportTimestampLayout is the day/month/year hour:minute display format.
const ExportTimestampLayout = "02/01/2006 15:04"

// exportColumns are the display columns, in order. Columns the source sheet
// lacked are left out, except the derived type and status which always exist.
var exportColumns = []string{
	models.ColTimestamp,
	models.ColName,
	models.ColPhone,
	models.ColReference,
	models.ColInterest,
	models.ColPropertyType,
	models.ColStatus,
}

// ExportTable shapes leads into the flat download table.
func ExportTable(ds *models.Dataset, leads []*models.Lead, loc *time.Location) *models.Table {
	if loc == nil {
		loc = time.UTC
	}
	var header []string
	for _, c := range exportColumns {
		if c == models.ColPropertyType || c == models.ColStatus || ds == nil || ds.HasColumn(c) {
			header = append(header, c)
		}
	}

	// Interest cells are exported as written when the sheet had the column.
	rawInterest := ds != nil && ds.HasColumn(models.ColInterest)

	rows := make([][]string, 0, len(leads))
	for _, l := range leads {
		row := make([]string, len(header))
		for i, c := range header {
			row[i] = exportValue(l, c, loc, rawInterest)
		}
		rows = append(rows, row)
	}
	return &models.Table{Header: header, Rows: rows}
}

func exportValue(l *models.Lead, column string, loc *time.Location, rawInterest bool) string {
	switch column {
	case models.ColTimestamp:
		if !l.HasTimestamp() {
			return ""
		}
		return l.Timestamp.In(loc).Format(ExportTimestampLayout)
	case models.ColName:
		return l.Name
	case models.ColPhone:
		return l.Phone
	case models.ColReference:
		return l.Reference
	case models.ColInterest:
		if rawInterest || l.InterestRaw != "" {
			return l.InterestRaw
		}
		return strconv.FormatBool(l.Interest)
	case models.ColPropertyType:
		return string(l.PropertyType)
	case models.ColStatus:
		return l.Status
	}
	return ""
}

// ExportFileName builds the download name, e.g. leads_luis_imoveis_20240101_1030.csv.
func ExportFileName(now time.Time, ext string) string {
	return fmt.Sprintf("leads_luis_imoveis_%s.%s", now.Format("20060102_1504"), ext)
}
