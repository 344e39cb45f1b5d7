package report

import (
	"strconv"
	"strings"

	"github.com/scalli-crm/cliente-scalli-sub000/internal/models"
)

type FilterOptions struct {
	StartDate string // YYYY-MM-DD, inclusivo
	EndDate   string // YYYY-MM-DD, inclusivo
	Month     *int   // mes calendario 0-11
	Campaign  string // match exacto contra Campaign Name
	AdSet     string // match exacto contra Ad Set Name
}

func (o FilterOptions) hasDateFilter() bool {
	return o.StartDate != "" || o.EndDate != "" || o.Month != nil
}

// Filter aplica rango de fechas, mes y selectores de campaña/conjunto sobre
// el snapshot. Nunca muta la entrada; devuelve un slice nuevo. Las fechas se
// comparan lexicográficamente sobre el prefijo YYYY-MM-DD.
func Filter(records []models.RawRecord, o FilterOptions) []models.RawRecord {
	out := make([]models.RawRecord, 0, len(records))
	for _, r := range records {
		if o.hasDateFilter() {
			day := Value(r, FieldDay)
			if len(day) < 10 {
				continue
			}
			day = day[:10]
			if o.StartDate != "" && day < o.StartDate {
				continue
			}
			if o.EndDate != "" && day > o.EndDate {
				continue
			}
			if o.Month != nil && monthOf(day) != *o.Month {
				continue
			}
		}
		if o.Campaign != "" && Value(r, FieldCampaign) != o.Campaign {
			continue
		}
		if o.AdSet != "" && Value(r, FieldAdSet) != o.AdSet {
			continue
		}
		out = append(out, r)
	}
	return out
}

// monthOf extrae el mes base-cero del segundo componente de la fecha;
// -1 si no se puede parsear.
func monthOf(day string) int {
	parts := strings.Split(day, "-")
	if len(parts) < 2 {
		return -1
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return -1
	}
	return m - 1
}
