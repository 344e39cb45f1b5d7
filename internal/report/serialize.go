package report

import (
	"strings"

	"github.com/scalli-crm/cliente-scalli-sub000/internal/models"
)

// Serialize vuelve a escribir registros en el mismo formato CSV que se
// ingiere: todo campo entrecomillado sin condición y comillas internas
// duplicadas, espejo exacto de la regla de escape del parser.
func Serialize(headers []string, records []models.RawRecord) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = r.Fields[h]
		}
		rows = append(rows, row)
	}
	return SerializeTable(headers, rows)
}

// SerializeTable arma un CSV a partir de celdas ya ordenadas.
func SerializeTable(headers []string, rows [][]string) string {
	var b strings.Builder
	writeRow(&b, headers)
	for _, row := range rows {
		writeRow(&b, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
