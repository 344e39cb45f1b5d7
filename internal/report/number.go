package report

import (
	"math"
	"strconv"
	"strings"
)

// ToNumber convierte texto numérico con formato de locale ("R$ 1.234,56")
// a float64. Es total: texto inválido da 0, nunca falla. Todo campo
// monetario o de conteo del sistema pasa por acá, sin excepciones.
func ToNumber(raw string) float64 {
	if raw == "" {
		return 0
	}
	var b strings.Builder
	for _, c := range raw {
		if (c >= '0' && c <= '9') || c == ',' || c == '.' || c == '-' {
			b.WriteRune(c)
		}
	}
	clean := b.String()
	if strings.ContainsRune(clean, ',') {
		// estilo europeo: punto = separador de miles, coma = decimal
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
