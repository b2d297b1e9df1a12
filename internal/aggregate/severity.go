package aggregate

import (
	"github.com/nao1215/a11yscan/internal/model"
)

// severityRule maps a set of issue identifiers to an assessment. A rule
// matches when every identifier in requires is present.
type severityRule struct {
	requires   []string
	assessment model.Assessment
}

// severityTable is evaluated top to bottom; the first matching rule wins.
// The last rule requires nothing and always matches.
var severityTable = []severityRule{
	{
		requires: []string{model.IssueFormLabels, model.IssueImageAlt},
		assessment: model.Assessment{
			Severity:  model.SeverityMedium,
			Effort:    model.EffortModerate,
			Rationale: "Unlabeled form controls and images without text alternatives were both found. Forms and visual content are hard to use with a screen reader.",
		},
	},
	{
		requires: []string{model.IssueFormLabels},
		assessment: model.Assessment{
			Severity:  model.SeverityMedium,
			Effort:    model.EffortModerate,
			Rationale: "Unlabeled form controls can prevent screen reader users from completing forms.",
		},
	},
	{
		requires: []string{model.IssueImageAlt},
		assessment: model.Assessment{
			Severity:  model.SeverityLow,
			Effort:    model.EffortEasy,
			Rationale: "Some images lack text alternatives. Adding alt attributes is usually a quick content fix.",
		},
	},
	{
		requires: []string{model.IssueScriptRendered},
		assessment: model.Assessment{
			Severity:  model.SeverityLow,
			Effort:    model.EffortEasy,
			Rationale: "The static markup exposed too little structure to judge. A manual review in a browser is recommended.",
		},
	},
	{
		assessment: model.Assessment{
			Severity:  model.SeverityLow,
			Effort:    model.EffortEasy,
			Rationale: "No barriers were detected by the automated checks on the sampled pages.",
		},
	},
}

// Assess classifies severity and effort from the derived issues.
func Assess(issues []model.Issue) model.Assessment {
	present := make(map[string]struct{}, len(issues))
	for _, is := range issues {
		present[is.ID] = struct{}{}
	}
	for _, rule := range severityTable {
		if matches(rule.requires, present) {
			return rule.assessment
		}
	}
	return severityTable[len(severityTable)-1].assessment
}

func matches(requires []string, present map[string]struct{}) bool {
	for _, id := range requires {
		if _, ok := present[id]; !ok {
			return false
		}
	}
	return true
}
