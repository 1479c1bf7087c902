// Package evaluation scores the extraction rules against hand-labelled
// notices so rule changes can be checked for regressions.
package evaluation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/rfp-brief/backend/internal/extraction"
	"github.com/rfp-brief/backend/pkg/logger"
)

const (
	ClassExact   = "exact"
	ClassPartial = "partial"
	ClassMiss    = "miss"
)

type Evaluator struct {
	extractor *extraction.Extractor
}

type Dataset struct {
	Items []DatasetItem `json:"items"`
}

// Expected holds the labelled values. Nil fields are not scored.
type Expected struct {
	Title                  *string  `json:"title,omitempty"`
	Buyer                  *string  `json:"buyer,omitempty"`
	SolicitationID         *string  `json:"solicitation_id,omitempty"`
	ClosingDate            *string  `json:"closing_date,omitempty"`
	Email                  *string  `json:"email,omitempty"`
	Phone                  *string  `json:"phone,omitempty"`
	Deliverables           []string `json:"deliverables,omitempty"`
	MandatoryRequirements  []string `json:"mandatory_requirements,omitempty"`
	RatedCriteria          []string `json:"rated_criteria,omitempty"`
	SubmissionInstructions []string `json:"submission_instructions,omitempty"`
}

type DatasetItem struct {
	Name     string   `json:"name"`
	Text     string   `json:"text"`
	Expected Expected `json:"expected"`
}

type ItemResult struct {
	Name           string             `json:"name"`
	Classification string             `json:"classification"`
	Mismatches     []string           `json:"mismatches"`
	ListOverlap    map[string]float64 `json:"list_overlap"`
}

type Report struct {
	Total             int                `json:"total"`
	ExactCount        int                `json:"exact"`
	PartialCount      int                `json:"partial"`
	MissCount         int                `json:"miss"`
	FieldAccuracy     map[string]float64 `json:"field_accuracy"`
	AvgListOverlap    float64            `json:"avg_list_overlap"`
	ExactPercentage   float64            `json:"exact_percentage"`
	PartialPercentage float64            `json:"partial_percentage"`
	MissPercentage    float64            `json:"miss_percentage"`
	Items             []ItemResult       `json:"items"`
}

func NewEvaluator(extractor *extraction.Extractor) *Evaluator {
	return &Evaluator{
		extractor: extractor,
	}
}

type tally struct{ hit, total int }

// EvaluateItem extracts one labelled notice and compares it with the labels.
// Scalar fields must match exactly; list fields are scored by overlap.
func (e *Evaluator) EvaluateItem(item DatasetItem) ItemResult {
	facts, lists := e.extract(item.Text)
	res := ItemResult{Name: item.Name, Mismatches: []string{}, ListOverlap: map[string]float64{}}

	scored, matched := 0, 0
	for _, f := range scalarFields(item.Expected) {
		scored++
		if facts[f.name] == *f.want {
			matched++
			continue
		}
		res.Mismatches = append(res.Mismatches, f.name)
	}

	for name, want := range listFields(item.Expected) {
		scored++
		overlap := jaccard(lists[name], want)
		res.ListOverlap[name] = overlap
		if overlap == 1 {
			matched++
		} else {
			res.Mismatches = append(res.Mismatches, name)
		}
	}
	sort.Strings(res.Mismatches)

	switch {
	case matched == scored:
		res.Classification = ClassExact
	case matched == 0:
		res.Classification = ClassMiss
	default:
		res.Classification = ClassPartial
	}

	return res
}

func (e *Evaluator) Run(dataset *Dataset) *Report {
	logger.Info("Running extraction evaluation", zap.Int("items", len(dataset.Items)))

	report := &Report{
		Total:         len(dataset.Items),
		FieldAccuracy: map[string]float64{},
		Items:         make([]ItemResult, 0, len(dataset.Items)),
	}

	fields := map[string]*tally{}
	var overlapSum float64
	var overlapCount int

	for _, item := range dataset.Items {
		res := e.EvaluateItem(item)
		report.Items = append(report.Items, res)

		switch res.Classification {
		case ClassExact:
			report.ExactCount++
		case ClassPartial:
			report.PartialCount++
		case ClassMiss:
			report.MissCount++
		}

		missed := map[string]bool{}
		for _, m := range res.Mismatches {
			missed[m] = true
		}
		for _, f := range scalarFields(item.Expected) {
			t := fields[f.name]
			if t == nil {
				t = &tally{}
				fields[f.name] = t
			}
			t.total++
			if !missed[f.name] {
				t.hit++
			}
		}
		for _, o := range res.ListOverlap {
			overlapSum += o
			overlapCount++
		}
	}

	for name, t := range fields {
		report.FieldAccuracy[name] = float64(t.hit) / float64(t.total)
	}
	if overlapCount > 0 {
		report.AvgListOverlap = overlapSum / float64(overlapCount)
	}
	if report.Total > 0 {
		report.ExactPercentage = float64(report.ExactCount) / float64(report.Total) * 100
		report.PartialPercentage = float64(report.PartialCount) / float64(report.Total) * 100
		report.MissPercentage = float64(report.MissCount) / float64(report.Total) * 100
	}

	logger.Info("Extraction evaluation completed",
		zap.Int("total", report.Total),
		zap.Int("exact", report.ExactCount),
		zap.Int("partial", report.PartialCount),
		zap.Int("miss", report.MissCount),
	)

	return report
}

func (e *Evaluator) extract(text string) (map[string]string, map[string][]string) {
	res := e.extractor.Extract(text, extraction.Options{})
	f := res.Record.Facts
	r := res.Record.Requirements

	facts := map[string]string{
		"title":           f.Title,
		"buyer":           f.Buyer,
		"solicitation_id": f.SolicitationID,
		"closing_date":    f.ClosingDate,
		"email":           f.Contact.Email,
		"phone":           f.Contact.Phone,
	}
	lists := map[string][]string{
		"deliverables":            r.Deliverables,
		"mandatory_requirements":  r.MandatoryRequirements,
		"rated_criteria":          r.RatedCriteria,
		"submission_instructions": r.SubmissionInstructions,
	}
	return facts, lists
}

type scalarField struct {
	name string
	want *string
}

func scalarFields(x Expected) []scalarField {
	all := []scalarField{
		{"title", x.Title},
		{"buyer", x.Buyer},
		{"solicitation_id", x.SolicitationID},
		{"closing_date", x.ClosingDate},
		{"email", x.Email},
		{"phone", x.Phone},
	}
	out := all[:0]
	for _, f := range all {
		if f.want != nil {
			out = append(out, f)
		}
	}
	return out
}

func listFields(x Expected) map[string][]string {
	out := map[string][]string{}
	for name, v := range map[string][]string{
		"deliverables":            x.Deliverables,
		"mandatory_requirements":  x.MandatoryRequirements,
		"rated_criteria":          x.RatedCriteria,
		"submission_instructions": x.SubmissionInstructions,
	} {
		if v != nil {
			out[name] = v
		}
	}
	return out
}

// jaccard compares two item lists as sets of case-folded strings. Two empty
// lists are identical.
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}

	set := map[string]int{}
	for _, s := range a {
		set[strings.ToLower(s)] |= 1
	}
	for _, s := range b {
		set[strings.ToLower(s)] |= 2
	}

	both := 0
	for _, v := range set {
		if v == 3 {
			both++
		}
	}
	return float64(both) / float64(len(set))
}

func LoadDatasetFromJSON(data []byte) (*Dataset, error) {
	var dataset Dataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dataset: %w", err)
	}
	return &dataset, nil
}

func GenerateReport(report *Report) string {
	names := make([]string, 0, len(report.FieldAccuracy))
	for name := range report.FieldAccuracy {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields strings.Builder
	for _, name := range names {
		fmt.Fprintf(&fields, "- %s: %.1f%%\n", name, report.FieldAccuracy[name]*100)
	}

	return fmt.Sprintf(`
Extraction Evaluation Report
============================

Total Notices: %d

Classifications:
- Exact: %d (%.1f%%)
- Partial: %d (%.1f%%)
- Miss: %d (%.1f%%)

Field Accuracy:
%s
Average Section Overlap: %.3f
`,
		report.Total,
		report.ExactCount, report.ExactPercentage,
		report.PartialCount, report.PartialPercentage,
		report.MissCount, report.MissPercentage,
		fields.String(),
		report.AvgListOverlap,
	)
}
