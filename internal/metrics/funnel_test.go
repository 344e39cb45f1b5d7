package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scalli-crm/cliente-scalli-sub000/internal/models"
)

func creatives() []models.AggregateResult {
	return []models.AggregateResult{
		{Key: "gancho", Impressions: 1000, Video95: 50, ImpactRate: 45, StoryRate: 12, OfferRate: 5, CTARate: 40},
		{Key: "lento", Impressions: 800, Video95: 30, ImpactRate: 20, StoryRate: 15, OfferRate: 8, CTARate: 10},
		{Key: "chico", Impressions: 10, Video95: 2, ImpactRate: 90, StoryRate: 80, OfferRate: 70, CTARate: 100},
	}
}

func TestTopFunnelByStage(t *testing.T) {
	out := TopFunnel(creatives(), StageImpact, 5, 20)
	// "chico" queda afuera por volumen aunque tenga la mejor tasa
	require.Len(t, out, 2)
	assert.Equal(t, "gancho", out[0].Key)
	assert.Equal(t, "lento", out[1].Key)

	out = TopFunnel(creatives(), StageStory, 5, 20)
	assert.Equal(t, "lento", out[0].Key)
}

func TestTopFunnelCTAThresholdOnVideo95(t *testing.T) {
	// para cta el umbral es sobre el conteo de retención al 95%
	out := TopFunnel(creatives(), StageCTA, 5, 40)
	require.Len(t, out, 1)
	assert.Equal(t, "gancho", out[0].Key)
}

func TestTopFunnelStableTies(t *testing.T) {
	tied := []models.AggregateResult{
		{Key: "primero", Impressions: 100, ImpactRate: 30},
		{Key: "segundo", Impressions: 100, ImpactRate: 30},
		{Key: "tercero", Impressions: 100, ImpactRate: 30},
	}
	out := TopFunnel(tied, StageImpact, 5, 20)
	require.Len(t, out, 3)
	// empates conservan el orden original del bucket
	assert.Equal(t, []string{"primero", "segundo", "tercero"}, []string{out[0].Key, out[1].Key, out[2].Key})
}

func TestTopFunnelLimitsToN(t *testing.T) {
	out := TopFunnel(creatives(), StageImpact, 1, 20)
	require.Len(t, out, 1)
	assert.Equal(t, "gancho", out[0].Key)
}

func TestTopFunnelDefaults(t *testing.T) {
	// n<=0 y min<=0 caen a los defaults (5, 20)
	out := TopFunnel(creatives(), StageImpact, 0, 0)
	assert.Len(t, out, 2)
}

func TestTopFunnelUnknownStage(t *testing.T) {
	assert.Len(t, TopFunnel(creatives(), Stage("otra"), 5, 20), 0)
}

func TestTopByMetric(t *testing.T) {
	results := []models.AggregateResult{
		{Key: "a", CTR: 1, Messages: 30},
		{Key: "b", CTR: 3, Messages: 10},
		{Key: "c", CTR: 2, Messages: 20},
	}

	out := TopByMetric(results, "ctr", 2)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].Key)
	assert.Equal(t, "c", out[1].Key)

	out = TopByMetric(results, "messages", 3)
	assert.Equal(t, "a", out[0].Key)
}

func TestTopByMetricUnknown(t *testing.T) {
	assert.Len(t, TopByMetric(creatives(), "inventada", 3), 0)
	assert.False(t, KnownMetric("inventada"))
	assert.True(t, KnownMetric("connect_rate"))
}

// propiedad de fixtures consistentes: video95 <= video75 <= video3s <= impresiones
func TestFunnelFixtureMonotonicity(t *testing.T) {
	records := []models.RawRecord{
		row(map[string]string{
			"Ad Name": "v", "Impressions": "1000",
			"3-Second Video Views": "400", "Video Watches at 75%": "100", "Video Watches at 95%": "50",
		}),
	}
	a := Aggregate(records, ByCreative)[0]
	assert.LessOrEqual(t, a.Video95, a.Video75)
	assert.LessOrEqual(t, a.Video75, a.Video3s)
	assert.LessOrEqual(t, a.Video3s, a.Impressions)
}
