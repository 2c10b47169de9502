// Package patent defines the data model shared by the conversion pipeline, its
// sinks and its API surfaces: sections, claims, sparse metadata, retrieval
// chunks and the assembled document record.
package patent

import (
	"fmt"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Jurisdiction
// ─────────────────────────────────────────────────────────────────────────────

// Jurisdiction is the two-letter code of an issuing office or region.
type Jurisdiction string

const (
	JurisdictionKR Jurisdiction = "KR"
	JurisdictionJP Jurisdiction = "JP"
	JurisdictionCN Jurisdiction = "CN"
	JurisdictionUS Jurisdiction = "US"
	JurisdictionEP Jurisdiction = "EP"
	JurisdictionWO Jurisdiction = "WO"
)

// AllJurisdictions lists every supported jurisdiction.
var AllJurisdictions = []Jurisdiction{
	JurisdictionKR, JurisdictionJP, JurisdictionCN, JurisdictionUS, JurisdictionEP, JurisdictionWO,
}

// PatentOffice identifies the office behind a jurisdiction.
type PatentOffice string

const (
	OfficeKIPO  PatentOffice = "KIPO"
	OfficeJPO   PatentOffice = "JPO"
	OfficeCNIPA PatentOffice = "CNIPA"
	OfficeUSPTO PatentOffice = "USPTO"
	OfficeEPO   PatentOffice = "EPO"
	OfficeWIPO  PatentOffice = "WIPO"
)

var jurisdictionOffice = map[Jurisdiction]PatentOffice{
	JurisdictionKR: OfficeKIPO,
	JurisdictionJP: OfficeJPO,
	JurisdictionCN: OfficeCNIPA,
	JurisdictionUS: OfficeUSPTO,
	JurisdictionEP: OfficeEPO,
	JurisdictionWO: OfficeWIPO,
}

// jurisdictionAliases maps office names and ISO alpha-3 codes to jurisdictions.
var jurisdictionAliases = map[string]Jurisdiction{
	"KOR": JurisdictionKR, "KIPO": JurisdictionKR,
	"JPN": JurisdictionJP, "JPO": JurisdictionJP,
	"CHN": JurisdictionCN, "CNIPA": JurisdictionCN, "SIPO": JurisdictionCN,
	"USA": JurisdictionUS, "USPTO": JurisdictionUS,
	"EPO": JurisdictionEP, "EU": JurisdictionEP,
	"WIPO": JurisdictionWO, "PCT": JurisdictionWO,
}

// IsValid reports whether j is a supported jurisdiction.
func (j Jurisdiction) IsValid() bool {
	_, ok := jurisdictionOffice[j]
	return ok
}

// Office returns the patent office for j, or "" when j is unknown.
func (j Jurisdiction) Office() PatentOffice {
	return jurisdictionOffice[j]
}

func (j Jurisdiction) String() string { return string(j) }

// ParseJurisdiction resolves a code, alpha-3 code or office name.
func ParseJurisdiction(s string) (Jurisdiction, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if j := Jurisdiction(code); j.IsValid() {
		return j, nil
	}
	if j, ok := jurisdictionAliases[code]; ok {
		return j, nil
	}
	return "", fmt.Errorf("unknown jurisdiction %q", s)
}

// ─────────────────────────────────────────────────────────────────────────────
// Sections
// ─────────────────────────────────────────────────────────────────────────────

// SectionType classifies a run of document text.
type SectionType string

const (
	SectionAbstract    SectionType = "ABSTRACT"
	SectionClaims      SectionType = "CLAIMS"
	SectionDescription SectionType = "DESCRIPTION"
	SectionBackground  SectionType = "BACKGROUND"
	SectionSummary     SectionType = "SUMMARY"
	SectionDrawings    SectionType = "DRAWINGS"
	SectionUnknown     SectionType = "UNKNOWN"
)

// IsValid reports whether t is one of the known section types.
func (t SectionType) IsValid() bool {
	switch t {
	case SectionAbstract, SectionClaims, SectionDescription, SectionBackground,
		SectionSummary, SectionDrawings, SectionUnknown:
		return true
	default:
		return false
	}
}

func (t SectionType) String() string { return string(t) }

// Section is a typed run of cleaned text. Title holds the header line that
// opened it, empty for the leading UNKNOWN section.
type Section struct {
	Type  SectionType `json:"type"`
	Title string      `json:"title"`
	Text  string      `json:"text"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Claims
// ─────────────────────────────────────────────────────────────────────────────

// Claim is one numbered claim. Dependencies is sorted, deduplicated and never
// contains Num.
type Claim struct {
	Num          int    `json:"num"`
	Text         string `json:"text"`
	Dependencies []int  `json:"dependencies"`
}

// IsIndependent reports whether the claim references no other claim.
func (c Claim) IsIndependent() bool {
	return len(c.Dependencies) == 0
}

// ─────────────────────────────────────────────────────────────────────────────
// Metadata
// ─────────────────────────────────────────────────────────────────────────────

// Metadata is the sparse bibliographic record of a document. Dates are ISO
// YYYY-MM-DD; code lists are sorted sets; inventors keep source order.
type Metadata struct {
	PublicationNumber  string       `json:"publication_number,omitempty"`
	ApplicationNumber  string       `json:"application_number,omitempty"`
	RegistrationNumber string       `json:"registration_number,omitempty"`
	PriorityNumber     string       `json:"priority_number,omitempty"`
	Title              string       `json:"title,omitempty"`
	Assignee           string       `json:"assignee,omitempty"`
	Inventors          []string     `json:"inventors,omitempty"`
	IPCCodes           []string     `json:"ipc_codes,omitempty"`
	CPCCodes           []string     `json:"cpc_codes,omitempty"`
	PublicationDate    string       `json:"publication_date,omitempty"`
	ApplicationDate    string       `json:"application_date,omitempty"`
	RegistrationDate   string       `json:"registration_date,omitempty"`
	PriorityDate       string       `json:"priority_date,omitempty"`
	Jurisdiction       Jurisdiction `json:"jurisdiction,omitempty"`
}

// IsEmpty reports whether no field is set.
func (m Metadata) IsEmpty() bool {
	return m.PublicationNumber == "" && m.ApplicationNumber == "" && m.RegistrationNumber == "" &&
		m.PriorityNumber == "" && m.Title == "" && m.Assignee == "" && len(m.Inventors) == 0 &&
		len(m.IPCCodes) == 0 && len(m.CPCCodes) == 0 && m.PublicationDate == "" &&
		m.ApplicationDate == "" && m.RegistrationDate == "" && m.PriorityDate == "" &&
		m.Jurisdiction == ""
}

// ─────────────────────────────────────────────────────────────────────────────
// Chunks
// ─────────────────────────────────────────────────────────────────────────────

// Role is the coarse semantic role of a chunk.
type Role string

const (
	RoleConfig      Role = "CONFIG"
	RoleEffect      Role = "EFFECT"
	RoleProcess     Role = "PROCESS"
	RoleMeasurement Role = "MEASUREMENT"
)

// NormNumber is a numeric measurement normalised to a canonical unit.
type NormNumber struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Tags carries the unit and parameter vocabulary found in a chunk.
type Tags struct {
	Units      []string `json:"units"`
	Parameters []string `json:"parameters"`
	Role       Role     `json:"role"`
}

// PageRange is an inclusive, 1-indexed page span.
type PageRange [2]int

// Chunk is a bounded span of document text sized for retrieval.
// DocumentID and Context are downstream-facing duplicates: DocumentID prefers
// the publication number over DocID, Context mirrors Text.
type Chunk struct {
	Text         string       `json:"text"`
	SectionType  SectionType  `json:"section_type"`
	ClaimNums    []int        `json:"claim_nums"`
	ChunkID      string       `json:"chunk_id"`
	TokensEst    int          `json:"tokens_est"`
	Lang         string       `json:"lang"`
	Weight       float64      `json:"weight"`
	NormNumbers  []NormNumber `json:"norm_numbers"`
	Tags         Tags         `json:"tags"`
	DocID        string       `json:"doc_id"`
	CitationPage *int         `json:"citation_page"`
	PageRange    *PageRange   `json:"page_range"`
	DocumentID   string       `json:"DocumentId"`
	Context      string       `json:"Context"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Document
// ─────────────────────────────────────────────────────────────────────────────

// SectionRange records the first and last chunk position of a section type.
type SectionRange struct {
	SectionType SectionType `json:"section_type"`
	Start       int         `json:"start"`
	End         int         `json:"end"`
}

// Structure summarises how a document's chunks map to its sections.
type Structure struct {
	SectionsIndex []SectionRange `json:"sections_index"`
	ClaimsCount   int            `json:"claims_count"`
}

// AcquisitionMethod names how page text was obtained.
type AcquisitionMethod string

const (
	MethodText  AcquisitionMethod = "text"
	MethodWords AcquisitionMethod = "words"
	MethodOCR   AcquisitionMethod = "ocr"
	MethodHTML  AcquisitionMethod = "html"
	MethodPlain AcquisitionMethod = "plain"
)

// Acquisition describes the text acquisition outcome of one conversion.
type Acquisition struct {
	Method    AcquisitionMethod `json:"method"`
	Pages     int               `json:"pages"`
	Chars     int               `json:"chars"`
	OCRStatus string            `json:"ocr_status,omitempty"`
	OCRReason string            `json:"ocr_reason,omitempty"`
}

// Document is the normalised record of one converted patent document. Chunks
// reference it through DocID; it holds no reference to its chunks.
type Document struct {
	DocID       string       `json:"doc_id"`
	FileName    string       `json:"file_name"`
	NumSections int          `json:"num_sections"`
	NumClaims   int          `json:"num_claims"`
	Metadata    Metadata     `json:"metadata"`
	Structure   Structure    `json:"structure"`
	Sections    []Section    `json:"sections"`
	Claims      []Claim      `json:"claims"`
	Acquisition *Acquisition `json:"acquisition,omitempty"`
}

// ExternalID returns the publication number when known, otherwise DocID.
func (d *Document) ExternalID() string {
	if d.Metadata.PublicationNumber != "" {
		return d.Metadata.PublicationNumber
	}
	return d.DocID
}

//Personal.AI order the ending
