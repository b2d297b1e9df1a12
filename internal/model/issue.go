package model

// Issue identifiers, in derivation order.
const (
	IssueFormLabels     = "form-labels"
	IssueImageAlt       = "image-alt"
	IssueScriptRendered = "script-rendered"
)

// Issue is a classified finding derived from SiteMetrics.
type Issue struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Fix         string `json:"fix"`
}

// IssueInfo is the fixed text of an issue type.
type IssueInfo struct {
	Title  string
	Impact string
	Fix    string
}

// issueCatalog is the single place issue wording lives.
var issueCatalog = map[string]IssueInfo{
	IssueFormLabels: {
		Title:  "Form fields without labels",
		Impact: "Screen reader users hear only \"edit text\" and cannot tell what to type, which blocks sign-ups, searches and payments.",
		Fix:    "Give every input, select and textarea a <label for=\"id\">, wrap it in a <label>, or add aria-label / aria-labelledby. A placeholder is not a label.",
	},
	IssueImageAlt: {
		Title:  "Images without text alternatives",
		Impact: "Blind users miss the information the images carry, including linked images that act as buttons.",
		Fix:    "Add an alt attribute to every <img>. Describe informative images; use alt=\"\" for purely decorative ones.",
	},
	IssueScriptRendered: {
		Title:  "Content may be rendered by scripts",
		Impact: "No links were found in the delivered markup, so navigation likely depends on JavaScript. The automated check could not see most of the site.",
		Fix:    "Serve core navigation and content as HTML, or review the site manually with a browser and a screen reader.",
	},
}

// GetIssueInfo returns the fixed wording of an issue type.
func GetIssueInfo(id string) IssueInfo {
	if info, ok := issueCatalog[id]; ok {
		return info
	}
	return IssueInfo{
		Title:  id,
		Impact: "Unknown issue type. Review manually.",
		Fix:    "Investigate the issue and assess its impact.",
	}
}

// NewIssue builds an Issue with catalog wording and a live description.
func NewIssue(id, description string) Issue {
	info := GetIssueInfo(id)
	return Issue{
		ID:          id,
		Title:       info.Title,
		Description: description,
		Impact:      info.Impact,
		Fix:         info.Fix,
	}
}
