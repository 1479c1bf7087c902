package extraction

const (
	CurrencyCAD = "CAD"
	CurrencyUSD = "USD"
)

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Budget carries the currency signal. Min and Max are never derived from the
// text and stay nil.
type Budget struct {
	Currency string   `json:"currency"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Notes    string   `json:"notes"`
}

type ContractTerm struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Options string `json:"options"`
}

type Location struct {
	Country  string `json:"country"`
	Province string `json:"province"`
	City     string `json:"city"`
}

type KeyDate struct {
	Label string `json:"label"`
	Date  string `json:"date"`
}

type Attachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type Facts struct {
	Title             string       `json:"title"`
	Buyer             string       `json:"buyer"`
	SolicitationID    string       `json:"solicitation_id"`
	ProcurementMethod string       `json:"procurement_method"`
	ClosingDate       string       `json:"closing_date"`
	Contact           Contact      `json:"contact"`
	Budget            Budget       `json:"budget"`
	ContractTerm      ContractTerm `json:"contract_term"`
	Location          Location     `json:"location"`
	KeyDates          []KeyDate    `json:"key_dates"`
	Attachments       []Attachment `json:"attachments"`
	Keywords          []string     `json:"keywords"`
}

type Requirements struct {
	ScopeSummary           string   `json:"scope_summary"`
	Deliverables           []string `json:"deliverables"`
	Eligibility            []string `json:"eligibility"`
	MandatoryRequirements  []string `json:"mandatory_requirements"`
	RatedCriteria          []string `json:"rated_criteria"`
	SubmissionInstructions []string `json:"submission_instructions"`
}

type RiskAndCompliance struct {
	RiskFlags       []string `json:"risk_flags"`
	ComplianceFlags []string `json:"compliance_flags"`
	Notes           string   `json:"notes"`
}

// SolicitationRecord is the structured output for one document. Fields no
// extractor produces are present with empty defaults.
type SolicitationRecord struct {
	Facts             Facts             `json:"facts"`
	Requirements      Requirements      `json:"requirements"`
	RiskAndCompliance RiskAndCompliance `json:"risk_and_compliance"`
}

type FitScore struct {
	Score     int    `json:"score"`
	Rationale string `json:"rationale"`
}

type SummaryVerdict struct {
	Executive    string   `json:"executive"`
	WhyItMatters string   `json:"why_it_matters"`
	FitScore     FitScore `json:"fit_score"`
	Highlights   []string `json:"highlights"`
}

type Result struct {
	Record  SolicitationRecord `json:"record"`
	Summary SummaryVerdict     `json:"summary"`
}

// Assemble copies component outputs into a record. It performs no inference.
func Assemble(fields Fields, keywords []string, sections Sections) SolicitationRecord {
	return SolicitationRecord{
		Facts: Facts{
			Title:          fields.Title,
			Buyer:          fields.Buyer,
			SolicitationID: fields.SolicitationID,
			ClosingDate:    fields.ClosingDate,
			Contact:        fields.Contact,
			Budget:         fields.Budget,
			Location:       Location{Country: "CA"},
			KeyDates:       []KeyDate{},
			Attachments:    []Attachment{},
			Keywords:       nonNil(keywords),
		},
		Requirements: Requirements{
			Deliverables:           nonNil(sections.Deliverables),
			Eligibility:            []string{},
			MandatoryRequirements:  nonNil(sections.Mandatory),
			RatedCriteria:          nonNil(sections.Rated),
			SubmissionInstructions: nonNil(sections.Submission),
		},
		RiskAndCompliance: RiskAndCompliance{
			RiskFlags:       []string{},
			ComplianceFlags: []string{},
		},
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
