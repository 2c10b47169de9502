package metadata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent2rag/pkg/types/patent"
)

const krMasthead = `(19) 대한민국특허청(KR)
(12) 공개특허공보(A)
(51) 국제특허분류(Int. Cl.)
C21D 8/12 (2006.01) C22C 38/02 (2006.01)
(52) CPC특허분류
C21D 8/1233 (2013.01)
(11) 공개번호 10-2024-0012345
(43) 공개일자 2024년 3월 5일
(21) 출원번호 10-2022-0123456
(22) 출원일자 2022년09월28일
(71) 출원인
주식회사 포스코
(72) 발명자
홍길동, 김철수
(54) 발명의 명칭 방향성 전기강판 및 그 제조방법`

const jpMasthead = `(19)日本国特許庁(JP)
(12)公開特許公報(A)
(11)特許出願公開番号
特開2020-123456
(43)公開日 令和2年8月27日(2020.8.27)
(51)Int.Cl.
C21D 8/12 (2006.01)
(21)出願番号 特願2019-012345(P2019-012345)
(22)出願日 平成31年1月28日(2019.1.28)
(71)出願人 000006655
日本製鉄株式会社
(72)発明者 山田 太郎
(54)【発明の名称】方向性電磁鋼板の製造方法`

const cnMasthead = `(19)中华人民共和国国家知识产权局
(12)发明专利申请
(10)申请公布号 CN 110123456 A
(43)申请公布日 2019.08.13
(21)申请号 201910123456.7
(22)申请日 2019.02.20
(71)申请人 宝山钢铁股份有限公司
(72)发明人 张三 李四 王五
(51)Int.Cl.
C21D 8/12(2006.01)
(54)发明名称
一种取向硅钢的制造方法`

const usMasthead = `(19) United States
(12) Patent Application Publication
(10) Pub. No.: US 2020/0123456 A1
(43) Pub. Date: Apr. 23, 2020
(54) GRAIN-ORIENTED ELECTRICAL STEEL SHEET
(71) Applicant: POSCO, Pohang-si (KR)
(72) Inventors: Gil-Dong HONG, Pohang-si (KR); Chul-Soo KIM, Seoul (KR)
(21) Appl. No.: 16/123,456
(22) Filed: Mar. 5, 2019
(51) Int. Cl.
C21D 8/12 (2006.01)
(52) U.S. Cl.
CPC ........ C21D 8/1233 (2013.01)`

const epMasthead = `(19) Europäisches Patentamt
European Patent Office
(11) EP 3 456 789 A1
(12) EUROPEAN PATENT APPLICATION
(43) Date of publication: 20.03.2019 Bulletin 2019/12
(21) Application number: 18123456.7
(22) Date of filing: 05.03.2018
(51) Int Cl.: C21D 8/12 (2006.01)
(71) Applicant: POSCO
(54) GRAIN-ORIENTED ELECTRICAL STEEL SHEET`

const woMasthead = `(19) World Intellectual Property Organization
International Bureau
(43) International Publication Date
12 March 2020 (12.03.2020)
(10) International Publication Number
WO 2020/123456 A1
(21) International Application Number:
PCT/KR2019/012345
(22) International Filing Date:
20 September 2019 (20.09.2019)
(54) Title: GRAIN-ORIENTED ELECTRICAL STEEL SHEET
(71) Applicant: POSCO [KR/KR]; 6261, Donghaean-ro, Pohang-si (KR).`

func TestExtract_KR(t *testing.T) {
	m := Extract(krMasthead + "\n\n(57) 요약\n방향성 전기강판의 제조 방법이 개시된다.")

	assert.Equal(t, "10-2024-0012345", m.PublicationNumber)
	assert.Equal(t, "2024-03-05", m.PublicationDate)
	assert.Equal(t, patent.JurisdictionKR, m.Jurisdiction)
	assert.Equal(t, "10-2022-0123456", m.ApplicationNumber)
	assert.Equal(t, "2022-09-28", m.ApplicationDate)
	assert.Equal(t, "방향성 전기강판 및 그 제조방법", m.Title)
	assert.Equal(t, "주식회사 포스코", m.Assignee)
	assert.Equal(t, []string{"홍길동", "김철수"}, m.Inventors)
	assert.Equal(t, []string{"C21D 8/12", "C22C 38/02"}, m.IPCCodes)
	assert.Equal(t, []string{"C21D 8/1233"}, m.CPCCodes)
}

func TestExtract_BodyCitationsStayOutOfMasthead(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"european application", "European Patent Application EP 1 234 567 A1 discloses a decarburization anneal."},
		{"united states patent", "United States Patent No. 9,123,456 discloses a domain refinement.\n(54) SOMETHING ELSE"},
		{"international bureau", "WO 2019/123456 A1 filed with the International Bureau discloses a coating."},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := Extract(krMasthead + "\n\n배경기술\n" + tc.body)
			assert.Equal(t, "10-2024-0012345", m.PublicationNumber)
			assert.Equal(t, "방향성 전기강판 및 그 제조방법", m.Title)
			assert.Equal(t, patent.JurisdictionKR, m.Jurisdiction)
		})
	}
}

func TestExtract_TitleSkipsCJKLabel(t *testing.T) {
	m := newUSExtractor().Extract("(19) United States\n(54) 발명의 명칭 방향성 전기강판")
	assert.Empty(t, m.Title)
	assert.Equal(t, patent.JurisdictionUS, m.Jurisdiction)

	m = newEPExtractor().Extract("European Patent Office\n(54)【発明の名称】方向性電磁鋼板")
	assert.Empty(t, m.Title)
}

func TestMasthead(t *testing.T) {
	text := "(11) 공개번호 10-2024-0012345\n요약\nEuropean Patent Office"
	assert.Equal(t, "(11) 공개번호 10-2024-0012345\n", masthead(text))
	assert.Equal(t, "배경기술\nbody", masthead("배경기술\nbody"))
}

func TestExtract_KRNumberOnly(t *testing.T) {
	m := Extract("(11) 공개번호 10-2024-0012345\n(43) 공개일자 2024년 3월 5일")
	assert.Equal(t, "10-2024-0012345", m.PublicationNumber)
	assert.Equal(t, "2024-03-05", m.PublicationDate)
	assert.Equal(t, patent.JurisdictionKR, m.Jurisdiction)
}

func TestExtract_JP(t *testing.T) {
	m := Extract(jpMasthead)

	assert.Equal(t, "特開2020-123456", m.PublicationNumber)
	assert.Equal(t, "2020-08-27", m.PublicationDate)
	assert.Equal(t, "特願2019-012345", m.ApplicationNumber)
	assert.Equal(t, "2019-01-28", m.ApplicationDate)
	assert.Equal(t, "日本製鉄株式会社", m.Assignee)
	assert.Equal(t, []string{"山田 太郎"}, m.Inventors)
	assert.Equal(t, "方向性電磁鋼板の製造方法", m.Title)
	assert.Equal(t, []string{"C21D 8/12"}, m.IPCCodes)
	assert.Equal(t, patent.JurisdictionJP, m.Jurisdiction)
}

func TestExtract_JPFilingFormat(t *testing.T) {
	text := "【書類名】特許願\n【発明者】\n【住所又は居所】東京都\n【氏名】山田 太郎\n【発明者】\n【住所又は居所】大阪府\n【氏名】鈴木 花子\n【出願人】\n【識別番号】000006655\n【氏名又は名称】日本製鉄株式会社"
	m := Extract(text)
	assert.Equal(t, []string{"山田 太郎", "鈴木 花子"}, m.Inventors)
	assert.Equal(t, "日本製鉄株式会社", m.Assignee)
}

func TestExtract_CN(t *testing.T) {
	m := Extract(cnMasthead)

	assert.Equal(t, "CN 110123456 A", m.PublicationNumber)
	assert.Equal(t, "2019-08-13", m.PublicationDate)
	assert.Equal(t, "201910123456.7", m.ApplicationNumber)
	assert.Equal(t, "2019-02-20", m.ApplicationDate)
	assert.Equal(t, "宝山钢铁股份有限公司", m.Assignee)
	assert.Equal(t, []string{"张三", "李四", "王五"}, m.Inventors)
	assert.Equal(t, "一种取向硅钢的制造方法", m.Title)
	assert.Equal(t, []string{"C21D 8/12"}, m.IPCCodes)
	assert.Equal(t, patent.JurisdictionCN, m.Jurisdiction)
}

func TestExtract_US(t *testing.T) {
	m := Extract(usMasthead)

	assert.Equal(t, "US 2020/0123456 A1", m.PublicationNumber)
	assert.Equal(t, "2020-04-23", m.PublicationDate)
	assert.Equal(t, "16/123,456", m.ApplicationNumber)
	assert.Equal(t, "2019-03-05", m.ApplicationDate)
	assert.Equal(t, "GRAIN-ORIENTED ELECTRICAL STEEL SHEET", m.Title)
	assert.Equal(t, "POSCO, Pohang-si", m.Assignee)
	assert.Equal(t, []string{"Gil-Dong HONG", "Chul-Soo KIM"}, m.Inventors)
	assert.Equal(t, []string{"C21D 8/12"}, m.IPCCodes)
	assert.Equal(t, []string{"C21D 8/1233"}, m.CPCCodes)
	assert.Equal(t, patent.JurisdictionUS, m.Jurisdiction)
}

func TestExtract_EP(t *testing.T) {
	m := Extract(epMasthead)

	assert.Equal(t, "EP 3 456 789 A1", m.PublicationNumber)
	assert.Equal(t, "2019-03-20", m.PublicationDate)
	assert.Equal(t, "18123456.7", m.ApplicationNumber)
	assert.Equal(t, "2018-03-05", m.ApplicationDate)
	assert.Equal(t, "POSCO", m.Assignee)
	assert.Equal(t, "GRAIN-ORIENTED ELECTRICAL STEEL SHEET", m.Title)
	assert.Equal(t, []string{"C21D 8/12"}, m.IPCCodes)
	assert.Equal(t, patent.JurisdictionEP, m.Jurisdiction)
}

func TestExtract_WO(t *testing.T) {
	m := Extract(woMasthead)

	assert.Equal(t, "WO 2020/123456 A1", m.PublicationNumber)
	assert.Equal(t, "2020-03-12", m.PublicationDate)
	assert.Equal(t, "PCT/KR2019/012345", m.ApplicationNumber)
	assert.Equal(t, "2019-09-20", m.ApplicationDate)
	assert.Equal(t, "GRAIN-ORIENTED ELECTRICAL STEEL SHEET", m.Title)
	assert.Equal(t, "POSCO", m.Assignee)
	assert.Equal(t, patent.JurisdictionWO, m.Jurisdiction)
}

func TestExtract_Fallback(t *testing.T) {
	text := "PUB NO: KR1020240012345\nIPC: C21D 8/12; C22C 38/02"

	m := Extract(text)
	assert.Equal(t, "KR1020240012345", m.PublicationNumber)
	assert.Equal(t, []string{"C21D 8/12", "C22C 38/02"}, m.IPCCodes)
	assert.Equal(t, patent.JurisdictionKR, m.Jurisdiction)

	bare := New(WithoutFallback()).Extract(text)
	assert.True(t, bare.IsEmpty())
}

func TestExtract_EmptyIsPruned(t *testing.T) {
	m := Extract("")
	assert.True(t, m.IsEmpty())

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

// stubExtractor returns a fixed record.
type stubExtractor struct {
	j patent.Jurisdiction
	m patent.Metadata
}

func (s stubExtractor) Jurisdiction() patent.Jurisdiction { return s.j }
func (s stubExtractor) Extract(string) patent.Metadata    { return s.m }

func TestService_FirstNonEmptyWins(t *testing.T) {
	a := stubExtractor{j: patent.JurisdictionUS, m: patent.Metadata{Title: "first", Assignee: ""}}
	b := stubExtractor{j: patent.JurisdictionEP, m: patent.Metadata{Title: "second", Assignee: "ACME"}}

	m := New(WithExtractors(a, b), WithoutFallback()).Extract("")
	assert.Equal(t, "first", m.Title)
	assert.Equal(t, "ACME", m.Assignee)

	m = New(WithExtractors(b, a), WithoutFallback()).Extract("")
	assert.Equal(t, "second", m.Title)
}

func TestService_JurisdictionRederivedFromNumber(t *testing.T) {
	wo := stubExtractor{j: patent.JurisdictionWO, m: patent.Metadata{Jurisdiction: patent.JurisdictionWO}}
	kr := stubExtractor{j: patent.JurisdictionKR, m: patent.Metadata{PublicationNumber: "10-2024-0012345", Jurisdiction: patent.JurisdictionKR}}

	m := New(WithExtractors(wo, kr)).Extract("")
	assert.Equal(t, patent.JurisdictionKR, m.Jurisdiction)
}

func TestService_OrderDependence(t *testing.T) {
	text := "(10) International Publication Number WO 2020/123456 A1\n(11) 공개번호 10-2024-0012345"

	m := Extract(text)
	assert.Equal(t, "WO 2020/123456 A1", m.PublicationNumber)
	assert.Equal(t, patent.JurisdictionWO, m.Jurisdiction)

	m = New(WithExtractors(newKRExtractor(), newWOExtractor())).Extract(text)
	assert.Equal(t, "10-2024-0012345", m.PublicationNumber)
	assert.Equal(t, patent.JurisdictionKR, m.Jurisdiction)
}

func TestDefaultOrder(t *testing.T) {
	var got []patent.Jurisdiction
	for _, e := range DefaultOrder() {
		got = append(got, e.Jurisdiction())
	}
	assert.Equal(t, []patent.Jurisdiction{
		patent.JurisdictionWO, patent.JurisdictionUS, patent.JurisdictionJP,
		patent.JurisdictionCN, patent.JurisdictionEP, patent.JurisdictionKR,
	}, got)
}

func TestJurisdictionFromNumber(t *testing.T) {
	tests := []struct {
		in   string
		want patent.Jurisdiction
		ok   bool
	}{
		{"WO 2020/123456 A1", patent.JurisdictionWO, true},
		{"EP 3 456 789 A1", patent.JurisdictionEP, true},
		{"US 2020/0123456 A1", patent.JurisdictionUS, true},
		{"特開2020-123456", patent.JurisdictionJP, true},
		{"JP2020123456A", patent.JurisdictionJP, true},
		{"CN 110123456 A", patent.JurisdictionCN, true},
		{"10-2024-0012345", patent.JurisdictionKR, true},
		{"KR1020240012345", patent.JurisdictionKR, true},
		{"123456", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := JurisdictionFromNumber(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestCleanup(t *testing.T) {
	assert.Equal(t, "POSCO", cleanParty("POSCO (KR)"))
	assert.Equal(t, "日本製鉄株式会社", cleanParty("000006655 日本製鉄株式会社"))
	assert.Equal(t, "ACME", cleanParty("ACME C21D 8/12"))

	assert.Equal(t, []string{"홍길동", "김철수"}, splitNames("홍길동, 김철수, 홍길동", kindNames))
	assert.Equal(t, []string{"A", "B", "C"}, splitNames("A  B;C", kindNames))
	assert.Equal(t, []string{"홍길동"}, splitNames("홍길동 (74) 대리인 특허법인", kindNames))
	assert.Equal(t, []string{"Gil-Dong HONG", "Chul-Soo KIM"},
		splitNames("Gil-Dong HONG, Pohang-si (KR); Chul-Soo KIM, Seoul (KR)", kindNamesUS))

	assert.Equal(t, []string{"C21D 8/12", "H01F 1/147"}, findCodes("C21D8/12 C21D 8/12 H01F 1/147"))
}

//Personal.AI order the ending
