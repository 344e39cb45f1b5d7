package report

import (
	"strings"

	"github.com/scalli-crm/cliente-scalli-sub000/internal/models"
)

type ParseOptions struct {
	// KeepRagged conserva filas cuyo número de campos no coincide con el
	// header, siempre que tengan al menos un campo no vacío (se rellenan o
	// recortan al largo del header). Por defecto esas filas se descartan.
	KeepRagged bool
}

type ParseStats struct {
	LinesTotal  int `json:"lines_total"`
	RowsParsed  int `json:"rows_parsed"`
	RowsDropped int `json:"rows_dropped"`
	EmptyRows   int `json:"empty_rows"`
}

// Table es el resultado de parsear un export completo.
type Table struct {
	Headers []string
	Records []models.RawRecord
	Stats   ParseStats
}

// Parse convierte el texto delimitado del export en registros indexados por
// nombre de columna. Filas malformadas se descartan en silencio según la
// política de leniencia; los descartes quedan en Stats.
func Parse(text string, opts ParseOptions) Table {
	lines := strings.Split(text, "\n")
	t := Table{Records: []models.RawRecord{}}
	if len(lines) == 0 {
		return t
	}

	headers := splitLine(strings.TrimSuffix(lines[0], "\r"))
	t.Headers = headers
	if len(headers) == 0 {
		return t
	}

	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		t.Stats.LinesTotal++

		fields := splitLine(line)
		if allEmpty(fields) {
			t.Stats.EmptyRows++
			continue
		}
		if len(fields) != len(headers) {
			if !opts.KeepRagged {
				t.Stats.RowsDropped++
				continue
			}
			if len(fields) > len(headers) {
				fields = fields[:len(headers)]
			} else {
				for len(fields) < len(headers) {
					fields = append(fields, "")
				}
			}
		}

		rec := models.RawRecord{Index: len(t.Records), Fields: make(map[string]string, len(headers))}
		for i, h := range headers {
			rec.Fields[h] = fields[i]
		}
		t.Records = append(t.Records, rec)
		t.Stats.RowsParsed++
	}
	return t
}

// splitLine tokeniza una línea CSV: coma como delimitador, comillas dobles
// delimitan campos, "" dentro de un campo entrecomillado es una comilla
// literal. Determinista para cualquier entrada.
func splitLine(line string) []string {
	if line == "" {
		return nil
	}
	var fields []string
	var cur strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	fields = append(fields, cur.String())
	return fields
}

func allEmpty(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
