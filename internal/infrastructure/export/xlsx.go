// Package export renderiza exportaciones de datos archivados.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/cmms-api/internal/application/dto"
)

// ContentTypeXLSX tipo MIME del libro generado.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const summarySheet = "resumen"

// ArchiveXLSX escribe una hoja de resumen y una hoja por tabla. Las columnas
// son la unión de claves de las copias (id primero); los valores anidados se
// escriben como JSON.
func ArchiveXLSX(exp *dto.ArchiveExportResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("xlsx: hoja resumen: %w", err)
	}

	tables := make([]string, 0, len(exp.Data))
	for t := range exp.Data {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	summary := [][]any{
		{"organization_id", exp.OrganizationID},
		{"module_code", exp.ModuleCode},
		{"exported_at", exp.ArchivedAt.UTC().Format("2006-01-02 15:04:05")},
		{"retention_days", exp.RetentionDays},
		{},
		{"table", "records"},
	}
	for _, t := range tables {
		summary = append(summary, []any{t, len(exp.Data[t])})
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return nil, err
	}

	for _, t := range tables {
		if _, err := f.NewSheet(t); err != nil {
			return nil, fmt.Errorf("xlsx: hoja %s: %w", t, err)
		}
		rows, err := tableRows(exp.Data[t])
		if err != nil {
			return nil, fmt.Errorf("xlsx: tabla %s: %w", t, err)
		}
		if err := writeRows(f, t, rows); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func tableRows(snapshots []json.RawMessage) ([][]any, error) {
	records := make([]map[string]any, 0, len(snapshots))
	keys := map[string]bool{}
	for _, raw := range snapshots {
		var rec map[string]any
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, err
		}
		for k := range rec {
			keys[k] = true
		}
		records = append(records, rec)
	}

	header := make([]string, 0, len(keys))
	for k := range keys {
		if k != "id" {
			header = append(header, k)
		}
	}
	sort.Strings(header)
	if keys["id"] {
		header = append([]string{"id"}, header...)
	}

	out := make([][]any, 0, len(records)+1)
	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	out = append(out, head)
	for _, rec := range records {
		row := make([]any, len(header))
		for i, h := range header {
			row[i] = cellValue(rec[h])
		}
		out = append(out, row)
	}
	return out, nil
}

func cellValue(v any) any {
	switch v.(type) {
	case nil:
		return ""
	case map[string]any, []any:
		b, _ := json.Marshal(v)
		return string(b)
	default:
		return v
	}
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("xlsx: fila %d de %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
