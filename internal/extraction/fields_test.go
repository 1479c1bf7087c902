package extraction

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
)

const basicNotice = "Request for Proposal\n" +
	"Buyer: City of Example\n" +
	"Closing Date: 2025-06-01\n" +
	"Mandatory Requirements\n" +
	"- Must have insurance\n" +
	"- Must have 5 years experience\n" +
	"Contact: jane@example.com"

func extractFields(text string) Fields {
	return NewFieldExtractor(DefaultConfig()).Extract(Normalize(text))
}

func TestExtractFields_BasicNotice(t *testing.T) {
	f := extractFields(basicNotice)

	assert.Equal(t, "Request for Proposal", f.Title)
	assert.Equal(t, "City of Example", f.Buyer)
	assert.Equal(t, "2025-06-01", f.ClosingDate)
	assert.Equal(t, "jane@example.com", f.Contact.Email)
	assert.Equal(t, "", f.Contact.Name)
	assert.Equal(t, "", f.SolicitationID)
	// the ISO closing date is not mistaken for a phone number
	assert.Equal(t, "", f.Contact.Phone)
}

func TestExtractFields_Empty(t *testing.T) {
	f := extractFields("")

	assert.Equal(t, "", f.Title)
	assert.Equal(t, "", f.Buyer)
	assert.Equal(t, "", f.SolicitationID)
	assert.Equal(t, "", f.ClosingDate)
	assert.Equal(t, Contact{}, f.Contact)
	assert.Equal(t, CurrencyCAD, f.Budget.Currency)
	assert.Equal(t, true, f.Budget.Min == nil)
	assert.Equal(t, true, f.Budget.Max == nil)
	assert.Equal(t, "", f.Budget.Notes)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"request for", "Parks Canada\nRequest for Quotation - Trail Repair\nmore", "Request for Quotation - Trail Repair"},
		{"rfp prefix", "Cover page\nRFP 2025-14 Janitorial Services", "RFP 2025-14 Janitorial Services"},
		{"standing offer", "  \n  standing offer for fuel delivery  \n", "standing offer for fuel delivery"},
		{"tender", "Page 1\nTender Notice", "Tender Notice"},
		{"fallback to first line", "Parks Canada\nSome body text", "Parks Canada"},
		{"title must start the line", "Notice\nThis is a request for proposal", "Notice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractFields(tt.text).Title)
		})
	}
}

func TestExtractTitle_OnlyFirstThirtyLines(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	b.WriteString("Request for Quote\n")

	assert.Equal(t, "line 0", extractFields(b.String()).Title)
}

func TestExtractBuyer(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"colon", "Buyer: City of Example", "City of Example"},
		{"dash", "Department - Public Works", "Public Works"},
		{"label mid line", "Issued by the Procurement: Town of Banff ", "Town of Banff"},
		{"first match wins", "Organization: First Org\nBuyer: Second Org", "First Org"},
		{"no separator", "Buyer City of Example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractFields(tt.text).Buyer)
		})
	}
}

func TestExtractBuyer_OnlyFirst120Lines(t *testing.T) {
	text := strings.Repeat("filler\n", 120) + "Buyer: Late Org\n"

	assert.Equal(t, "", extractFields(text).Buyer)
}

func TestExtractSolicitationID(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"solicitation no", "Solicitation No: PW-2025-001", "PW-2025-001"},
		{"rfp hash", "RFP # 24/117", "24/117"},
		{"reference", "Reference: EN578_170432", "EN578_170432"},
		{"lowercase value rejected", "Tender documents are attached", ""},
		{"too short", "RFQ: A1", ""},
		{
			"first label in scan order",
			"Project code ABCD-9999 appears first.\nSolicitation No: PW-2025-001\n",
			"PW-2025-001",
		},
		{
			"earlier label wins",
			"Tender ID: T-1001\nSolicitation No: S-2002",
			"T-1001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractFields(tt.text).SolicitationID)
		})
	}
}

func TestExtractClosingDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"iso dash", "Closing Date: 2025-06-01", "2025-06-01"},
		{"iso slash", "Due date 2025/6/1 at 2pm", "2025/6/1"},
		{"day month year", "Closing date: 15 March 2025", "15 March 2025"},
		{"month day year", "Submission deadline - March 15, 2025", "March 15, 2025"},
		{"value on next line", "Closing Date:\n2025-06-01", "2025-06-01"},
		{"first shape in text wins", "Closing Date: June 1, 2025\nDue Date: 2025-05-01", "June 1, 2025"},
		{"no date", "Closing date to be announced", ""},
		{"no label", "2025-06-01", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractFields(tt.text).ClosingDate)
		})
	}
}

func TestExtractContact(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		email string
		phone string
	}{
		{"dashed phone", "Call 613-555-1234 or write bids@pwgsc.gc.ca", "bids@pwgsc.gc.ca", "613-555-1234"},
		{"international", "Phone: +1 613 555 1234", "", "+1 613 555 1234"},
		{"first of each", "a@x.org b@y.org\n111-222-3333, 444-555-6666", "a@x.org", "111-222-3333"},
		{"too few digits", "ext 1234", "", ""},
		{"one letter tld", "mail me at a@b.c", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := extractFields(tt.text).Contact
			assert.Equal(t, tt.email, c.Email)
			assert.Equal(t, tt.phone, c.Phone)
		})
	}
}

func TestDetectCurrency(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Budget: CAD 50,000", CurrencyCAD},
		{"up to C$ 40k", CurrencyCAD},
		{"Canadian dollars", CurrencyCAD},
		{"Paid in USD", CurrencyUSD},
		{"Canadian or USD", CurrencyCAD},
		{"usd lowercase", CurrencyCAD},
		{"", CurrencyCAD},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, detectCurrency(tt.text))
		})
	}
}
