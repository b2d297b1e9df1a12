package aggregate

import (
	"fmt"

	"github.com/nao1215/a11yscan/internal/model"
)

// Classify returns the coverage of a run. A title plus two non-empty
// categories among links, forms and images is Good; a title plus one is
// Partial.
func Classify(m *model.SiteMetrics) model.Coverage {
	if m.Title == "" {
		return model.CoverageLimited
	}
	seen := 0
	for _, n := range []int{m.UniqueLinks, m.Forms, m.Images} {
		if n > 0 {
			seen++
		}
	}
	switch {
	case seen >= 2:
		return model.CoverageGood
	case seen == 1:
		return model.CoveragePartial
	default:
		return model.CoverageLimited
	}
}

// DeriveIssues evaluates the issue rules over m. The result is always in
// the same order: form labels, image alternatives, script rendering.
func DeriveIssues(m *model.SiteMetrics) []model.Issue {
	issues := make([]model.Issue, 0, 3)

	if m.Unlabeled > 0 {
		issues = append(issues, model.NewIssue(model.IssueFormLabels, fmt.Sprintf(
			"%d of %d form controls on %s have no accessible label.",
			m.Unlabeled, m.Controls, pluralPages(m.PagesAnalyzed))))
	}
	if m.MissingAlt > 0 {
		issues = append(issues, model.NewIssue(model.IssueImageAlt, fmt.Sprintf(
			"%d of %d images on %s have no alt attribute.",
			m.MissingAlt, m.Images, pluralPages(m.PagesAnalyzed))))
	}
	if m.UniqueLinks == 0 {
		issues = append(issues, model.NewIssue(model.IssueScriptRendered, fmt.Sprintf(
			"No links were found on %s of static markup.",
			pluralPages(m.PagesAnalyzed))))
	}
	return issues
}

func pluralPages(n int) string {
	if n == 1 {
		return "1 sampled page"
	}
	return fmt.Sprintf("%d sampled pages", n)
}
