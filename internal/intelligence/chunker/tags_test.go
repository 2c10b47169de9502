package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/patent2rag/pkg/types/patent"
)

func TestDetectLanguage(t *testing.T) {
	tests := map[string]string{
		"방향성 전기강판의 제조 방법":                           "ko",
		"方向性電磁鋼板の製造方法":                             "ja",
		"一种取向电工钢板的制造方法":                            "zh",
		"Verfahren zur Herstellung eines Stahlblechs und der Glühung": "de",
		"Procédé de fabrication d'une tôle selon la revendication":    "fr",
		"A method for manufacturing a grain-oriented steel sheet":     "en",
		"12345 !!":                                        "en",
		"":                                                "en",
	}
	for in, want := range tests {
		assert.Equal(t, want, DetectLanguage(in), in)
	}
}

func TestExtractTags_Elements(t *testing.T) {
	tags := ExtractTags("C: 0.05%, Si: 3.2%, Mn 0.1%, Al (0.03%) and B8 of 1.92 T at 850°C", nil)
	assert.Equal(t, []string{"Al", "C", "Mn", "Si"}, tags.Parameters)
}

func TestExtractTags_RejectsWordsAndCodes(t *testing.T) {
	tags := ExtractTags("Silicon steel with Also Claim P2019-012345 and W17/50", nil)
	assert.Empty(t, tags.Parameters)
	assert.NotNil(t, tags.Parameters)
	assert.NotNil(t, tags.Units)
}

func TestExtractTags_KeywordsAcrossLanguages(t *testing.T) {
	tests := []struct {
		text string
		tag  string
	}{
		{"after cold rolling the strip", "cold_rolling"},
		{"冷間圧延した後", "cold_rolling"},
		{"冷轧后", "cold_rolling"},
		{"냉간압연 후", "cold_rolling"},
		{"decarburization annealing", "decarburization"},
		{"二次再結晶", "secondary_recrystallization"},
		{"a Goss texture", "texture"},
	}
	for _, tc := range tests {
		assert.Contains(t, ExtractTags(tc.text, nil).Parameters, tc.tag, tc.text)
	}
}

func TestExtractTags_UnitsFromNumbers(t *testing.T) {
	nums := ExtractNumbers("850°C and 3% and 900°C")
	tags := ExtractTags("850°C and 3% and 900°C", nums)
	assert.Equal(t, []string{"%", "°C"}, tags.Units)
}

func TestInferRole(t *testing.T) {
	tests := []struct {
		text string
		want patent.Role
	}{
		{"the core loss after annealing is low", patent.RoleEffect},
		{"cold rolling and annealing", patent.RoleProcess},
		{"observed by EBSD", patent.RoleMeasurement},
		{"measured with an Epstein frame", patent.RoleMeasurement},
		{"a steel sheet comprising Si", patent.RoleConfig},
		{"철손이 우수하다", patent.RoleEffect},
		{"소둔하는 단계", patent.RoleProcess},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, InferRole(tc.text), tc.text)
	}
}

//Personal.AI order the ending
