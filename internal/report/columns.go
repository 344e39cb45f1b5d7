package report

import "github.com/scalli-crm/cliente-scalli-sub000/internal/models"

// Field es un campo lógico del reporte. El export de la plataforma cambió de
// nombres de columna con el tiempo, así que cada campo resuelve contra una
// lista ordenada de alias (el más reciente primero).
type Field int

const (
	FieldDay Field = iota
	FieldCampaign
	FieldAdSet
	FieldAdName
	FieldSpend
	FieldImpressions
	FieldReach
	FieldLinkClicks
	FieldAllClicks
	FieldMessages
	FieldEngagement
	FieldLandingViews
	FieldGender
	FieldAge
	FieldVideo3s
	FieldVideo75
	FieldVideo95
	// FieldCTR es la columna de CTR que trae el export; se reconoce pero
	// nunca entra a las sumas, el CTR siempre se recalcula de los totales.
	FieldCTR
)

var fieldAliases = map[Field][]string{
	FieldDay:          {"Day"},
	FieldCampaign:     {"Campaign Name"},
	FieldAdSet:        {"Ad Set Name"},
	FieldAdName:       {"Ad Name"},
	FieldSpend:        {"Amount Spent"},
	FieldImpressions:  {"Impressions"},
	FieldReach:        {"Reach"},
	FieldLinkClicks:   {"Link Clicks"},
	FieldAllClicks:    {"Clicks (All)", "Clicks"},
	FieldMessages:     {"Messaging Conversations Started"},
	FieldEngagement:   {"Page Engagement"},
	FieldLandingViews: {"Landing Page Views"},
	FieldGender:       {"Gender"},
	FieldAge:          {"Age"},
	FieldVideo3s:      {"3-Second Video Views", "3-Second Video Plays"},
	FieldVideo75:      {"Video Watches at 75%", "Video Plays at 75%"},
	FieldVideo95:      {"Video Watches at 95%", "Video Plays at 95%"},
	FieldCTR:          {"CTR (Link Click-Through Rate)"},
}

// Value devuelve el primer alias con valor no vacío; columna ausente => "".
func Value(r models.RawRecord, f Field) string {
	for _, alias := range fieldAliases[f] {
		if v, ok := r.Fields[alias]; ok && v != "" {
			return v
		}
	}
	return ""
}

// Number normaliza el valor del campo vía ToNumber.
func Number(r models.RawRecord, f Field) float64 {
	return ToNumber(Value(r, f))
}

// NumericFields son los campos que se normalizan en agregaciones; se usa
// para el contador de diagnóstico de campos defaulteados a cero.
var NumericFields = []Field{
	FieldSpend, FieldImpressions, FieldReach, FieldLinkClicks, FieldAllClicks,
	FieldMessages, FieldEngagement, FieldLandingViews,
	FieldVideo3s, FieldVideo75, FieldVideo95,
}
