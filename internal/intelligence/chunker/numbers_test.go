package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent2rag/pkg/types/patent"
)

func TestExtractNumbers_TemperatureRange(t *testing.T) {
	got := ExtractNumbers("annealed at 850~900°C")
	assert.Equal(t, []patent.NormNumber{
		{Name: "temperature", Value: 850, Unit: "°C"},
		{Name: "temperature", Value: 900, Unit: "°C"},
	}, got)
}

func TestExtractNumbers_Forms(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []patent.NormNumber
	}{
		{"celsius sign", "heated to 1200℃", []patent.NormNumber{{Name: "temperature", Value: 1200, Unit: "°C"}}},
		{"full width range", "８５０～９００℃", []patent.NormNumber{
			{Name: "temperature", Value: 850, Unit: "°C"}, {Name: "temperature", Value: 900, Unit: "°C"}}},
		{"to range", "850 to 900 °C", []patent.NormNumber{
			{Name: "temperature", Value: 850, Unit: "°C"}, {Name: "temperature", Value: 900, Unit: "°C"}}},
		{"cooling rate is not a temperature", "cooled at 20°C/s", []patent.NormNumber{{Name: "cooling_rate", Value: 20, Unit: "°C/s"}}},
		{"percentage", "Si: 3.1 wt% and Mn 0.1%", []patent.NormNumber{
			{Name: "percentage", Value: 3.1, Unit: "%"}, {Name: "percentage", Value: 0.1, Unit: "%"}}},
		{"core loss with W17/50", "W17/50 of 0.85 W/kg", []patent.NormNumber{{Name: "core_loss", Value: 0.85, Unit: "W/kg"}}},
		{"core loss plain", "a loss of 1.05 W/kg", []patent.NormNumber{{Name: "core_loss", Value: 1.05, Unit: "W/kg"}}},
		{"micrometre", "a grain of 15 μm and 20µm and 5 um", []patent.NormNumber{
			{Name: "length", Value: 15, Unit: "μm"}, {Name: "length", Value: 20, Unit: "μm"}, {Name: "length", Value: 5, Unit: "μm"}}},
		{"millimetre scaled", "a thickness of 0.23 mm", []patent.NormNumber{{Name: "length", Value: 230, Unit: "μm"}}},
		{"thermal conductivity", "conductivity of 25 W/(m·K)", []patent.NormNumber{{Name: "thermal_conductivity", Value: 25, Unit: "W/(m·K)"}}},
		{"pressure", "a tensile stress of 5 MPa", []patent.NormNumber{{Name: "pressure", Value: 5, Unit: "MPa"}}},
		{"force", "a load of 12.5 kN", []patent.NormNumber{{Name: "force", Value: 12.5, Unit: "kN"}}},
		{"thousands separator", "slab reheating at 1,150°C for 2 hours", []patent.NormNumber{{Name: "temperature", Value: 1150, Unit: "°C"}}},
		{"thousands separator range", "held at 1,100-1,200°C", []patent.NormNumber{
			{Name: "temperature", Value: 1100, Unit: "°C"}, {Name: "temperature", Value: 1200, Unit: "°C"}}},
		{"negative", "cooled at -20°C", []patent.NormNumber{{Name: "temperature", Value: -20, Unit: "°C"}}},
		{"negative at start", "−5°C storage", []patent.NormNumber{{Name: "temperature", Value: -5, Unit: "°C"}}},
		{"negative range", "between -40 to -20°C", []patent.NormNumber{
			{Name: "temperature", Value: -40, Unit: "°C"}, {Name: "temperature", Value: -20, Unit: "°C"}}},
		{"hyphen range stays positive", "annealed at 850-900°C", []patent.NormNumber{
			{Name: "temperature", Value: 850, Unit: "°C"}, {Name: "temperature", Value: 900, Unit: "°C"}}},
		{"hyphenated word is not a sign", "grade B-20°C test", []patent.NormNumber{{Name: "temperature", Value: 20, Unit: "°C"}}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExtractNumbers(tc.text))
		})
	}
}

func TestExtractNumbers_TextOrder(t *testing.T) {
	got := ExtractNumbers("0.3% at 800°C then 1.2 W/kg")
	require.Len(t, got, 3)
	assert.Equal(t, "percentage", got[0].Name)
	assert.Equal(t, "temperature", got[1].Name)
	assert.Equal(t, "core_loss", got[2].Name)
}

func TestExtractNumbers_None(t *testing.T) {
	got := ExtractNumbers("no measurements in this sentence")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

//Personal.AI order the ending
