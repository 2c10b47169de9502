package segmenter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent2rag/pkg/types/patent"
)

func TestClassify_Multilingual(t *testing.T) {
	cases := []struct {
		line string
		want patent.SectionType
	}{
		{"ABSTRACT", patent.SectionAbstract},
		{"(57) Abstract", patent.SectionAbstract},
		{"(57) 요약", patent.SectionAbstract},
		{"(57)【要約】", patent.SectionAbstract},
		{"摘要", patent.SectionAbstract},
		{"Zusammenfassung", patent.SectionAbstract},
		{"Abrégé", patent.SectionAbstract},

		{"CLAIMS", patent.SectionClaims},
		{"What is claimed is:", patent.SectionClaims},
		{"청구범위", patent.SectionClaims},
		{"특허청구의 범위", patent.SectionClaims},
		{"【特許請求の範囲】", patent.SectionClaims},
		{"【書類名】特許請求の範囲", patent.SectionClaims},
		{"权利要求书", patent.SectionClaims},
		{"Patentansprüche", patent.SectionClaims},
		{"REVENDICATIONS", patent.SectionClaims},

		{"DETAILED DESCRIPTION OF THE PREFERRED EMBODIMENTS", patent.SectionDescription},
		{"발명의 설명", patent.SectionDescription},
		{"【発明を実施するための形態】", patent.SectionDescription},
		{"具体实施方式", patent.SectionDescription},
		{"Beschreibung", patent.SectionDescription},

		{"BACKGROUND OF THE INVENTION", patent.SectionBackground},
		{"1. Field of the Invention", patent.SectionBackground},
		{"2. Description of the Related Art", patent.SectionBackground},
		{"배경기술", patent.SectionBackground},
		{"【背景技術】", patent.SectionBackground},
		{"技术领域", patent.SectionBackground},
		{"Stand der Technik", patent.SectionBackground},
		{"État de la technique antérieure", patent.SectionBackground},

		{"SUMMARY OF THE INVENTION", patent.SectionSummary},
		{"발명의 내용", patent.SectionSummary},
		{"【発明が解決しようとする課題】", patent.SectionSummary},
		{"发明内容", patent.SectionSummary},
		{"Zusammenfassung der Erfindung", patent.SectionSummary},
		{"Résumé de l'invention", patent.SectionSummary},

		{"BRIEF DESCRIPTION OF THE DRAWINGS", patent.SectionDrawings},
		{"도면의 간단한 설명", patent.SectionDrawings},
		{"【図面の簡単な説明】", patent.SectionDrawings},
		{"附图说明", patent.SectionDrawings},
		{"Kurze Beschreibung der Zeichnungen", patent.SectionDrawings},
		{"Brève description des dessins", patent.SectionDrawings},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.line, func(t *testing.T) {
			t.Parallel()
			got, ok := Classify(tc.line)
			require.True(t, ok, "expected %q to be a header", tc.line)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassify_RejectsBodyLines(t *testing.T) {
	lines := []string{
		"",
		"2. The method of claim 1, wherein the annealing temperature is 850°C.",
		"청구항 1. 방향성 전기강판의 제조 방법으로서,",
		"【請求項１】",
		"The abstract idea of the invention is not limited to steel.",
		"1. 一种取向电工钢板的制造方法，其特征在于：",
		strings.Repeat("claims ", 20),
	}
	for _, ln := range lines {
		_, ok := Classify(ln)
		assert.False(t, ok, "%q must not be a header", ln)
	}
}

func TestClassify_HeaderLengthBound(t *testing.T) {
	// "abstract of the" + gap + "disclosure" is 25 runes plus the gap.
	atLimit := "abstract of the" + strings.Repeat(" ", MaxHeaderRunes-25) + "disclosure"
	overLimit := "abstract of the" + strings.Repeat(" ", MaxHeaderRunes-24) + "disclosure"

	typ, ok := Classify(atLimit)
	require.True(t, ok)
	assert.Equal(t, patent.SectionAbstract, typ)

	_, ok = Classify(overLimit)
	assert.False(t, ok)
	assert.Equal(t, 80, MaxHeaderRunes)
}

func TestSplit_OrderedSections(t *testing.T) {
	text := strings.Join([]string{
		"(19) Korean Intellectual Property Office (KR)",
		"(54) 방향성 전기강판",
		"(57) 요약",
		"방향성 전기강판의 제조 방법이 개시된다.",
		"",
		"청구범위",
		"청구항 1",
		"방향성 전기강판의 제조 방법.",
		"청구항 2",
		"제1항에 있어서, 소둔 온도는 850~900°C인 방법.",
		"발명의 설명",
		"기술분야",
		"본 발명은 전기강판에 관한 것이다.",
	}, "\n")

	sections := Split(text)
	require.Len(t, sections, 4)

	assert.Equal(t, patent.SectionUnknown, sections[0].Type)
	assert.Empty(t, sections[0].Title)
	assert.Contains(t, sections[0].Text, "(54)")

	assert.Equal(t, patent.SectionAbstract, sections[1].Type)
	assert.Equal(t, "(57) 요약", sections[1].Title)

	assert.Equal(t, patent.SectionClaims, sections[2].Type)
	assert.Contains(t, sections[2].Text, "청구항 2")

	// "발명의 설명" opens DESCRIPTION with no text before "기술분야", so it is dropped.
	assert.Equal(t, patent.SectionBackground, sections[3].Type)
	assert.Equal(t, "본 발명은 전기강판에 관한 것이다.", sections[3].Text)
}

func TestSplit_NoHeaderYieldsSingleUnknown(t *testing.T) {
	text := "first line\nsecond line\n\nthird paragraph"
	sections := Split(text)
	require.Len(t, sections, 1)
	assert.Equal(t, patent.SectionUnknown, sections[0].Type)
	assert.Equal(t, text, sections[0].Text)
}

func TestSplit_EmptyInput(t *testing.T) {
	assert.Empty(t, Split(""))
	assert.NotNil(t, Split(""))
	assert.Empty(t, Split("ABSTRACT\nCLAIMS"), "headers alone produce no sections")
}

func TestSplit_PreservesEveryContentLine(t *testing.T) {
	text := strings.Join([]string{
		"front matter",
		"ABSTRACT",
		"An abstract.",
		"CLAIMS",
		"1. A method.",
		"2. The method of claim 1.",
		"DESCRIPTION",
		"Body one.",
		"",
		"Body two.",
	}, "\n")

	var contentLines []string
	for _, ln := range strings.Split(text, "\n") {
		if _, ok := Classify(ln); !ok && strings.TrimSpace(ln) != "" {
			contentLines = append(contentLines, ln)
		}
	}

	var rebuilt []string
	for _, s := range Split(text) {
		for _, ln := range strings.Split(s.Text, "\n") {
			if strings.TrimSpace(ln) != "" {
				rebuilt = append(rebuilt, ln)
			}
		}
	}
	assert.Equal(t, contentLines, rebuilt)
}

func TestFirstOfType(t *testing.T) {
	sections := []patent.Section{
		{Type: patent.SectionAbstract, Text: "a"},
		{Type: patent.SectionClaims, Text: "first"},
		{Type: patent.SectionClaims, Text: "second"},
	}
	s, ok := FirstOfType(sections, patent.SectionClaims)
	require.True(t, ok)
	assert.Equal(t, "first", s.Text)

	_, ok = FirstOfType(sections, patent.SectionDrawings)
	assert.False(t, ok)
}

//Personal.AI order the ending
