package config

// ScoringPolicy holds the frontier scoring constants.
// The zero value of a numeric field in a config file means "use the default".
type ScoringPolicy struct {
	// Keywords earn KeywordBonus when any of them appears in the URL path.
	Keywords []string `yaml:"keywords,omitempty"`

	// BinaryExtensions are file extensions (without dot) that are never fetched.
	BinaryExtensions []string `yaml:"binary_extensions,omitempty"`

	BinaryPenalty    int `yaml:"binary_penalty,omitempty"`
	MalformedPenalty int `yaml:"malformed_penalty,omitempty"`
	FragmentPenalty  int `yaml:"fragment_penalty,omitempty"`
	KeywordBonus     int `yaml:"keyword_bonus,omitempty"`

	// ContentDepthMin and ContentDepthMax bound the path depth that earns
	// ContentDepthBonus.
	ContentDepthMin   int `yaml:"content_depth_min,omitempty"`
	ContentDepthMax   int `yaml:"content_depth_max,omitempty"`
	ContentDepthBonus int `yaml:"content_depth_bonus,omitempty"`

	// Paths deeper than DeepPathDepth receive DeepPathPenalty.
	DeepPathDepth   int `yaml:"deep_path_depth,omitempty"`
	DeepPathPenalty int `yaml:"deep_path_penalty,omitempty"`

	QueryPenalty int `yaml:"query_penalty,omitempty"`

	// AcceptanceCutoff is the minimum score admitted to the frontier.
	// Pointer so that an explicit 0 in a config file is honored.
	AcceptanceCutoff *int `yaml:"acceptance_cutoff,omitempty"`
}

// Default scoring constants.
const (
	DefaultBinaryPenalty     = -1000
	DefaultMalformedPenalty  = -1000
	DefaultFragmentPenalty   = -50
	DefaultKeywordBonus      = 20
	DefaultContentDepthMin   = 2
	DefaultContentDepthMax   = 4
	DefaultContentDepthBonus = 10
	DefaultDeepPathDepth     = 6
	DefaultDeepPathPenalty   = -20
	DefaultQueryPenalty      = -15
	DefaultAcceptanceCutoff  = -10
)

// DefaultKeywords are path fragments that usually lead to interactive pages,
// where form-labelling problems are most likely.
func DefaultKeywords() []string {
	return []string{"contact", "help", "apply", "login", "search", "pay", "form", "register"}
}

// DefaultBinaryExtensions lists extensions of non-HTML resources.
func DefaultBinaryExtensions() []string {
	return []string{
		"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "odt", "csv",
		"jpg", "jpeg", "png", "gif", "svg", "webp", "ico", "bmp", "tif", "tiff",
		"zip", "gz", "tgz", "tar", "rar", "7z", "bz2",
		"exe", "dmg", "msi", "apk", "bin", "iso",
		"mp3", "mp4", "wav", "avi", "mov", "webm",
	}
}

// DefaultScoringPolicy returns the documented default policy.
func DefaultScoringPolicy() ScoringPolicy {
	cutoff := DefaultAcceptanceCutoff
	return ScoringPolicy{
		Keywords:          DefaultKeywords(),
		BinaryExtensions:  DefaultBinaryExtensions(),
		BinaryPenalty:     DefaultBinaryPenalty,
		MalformedPenalty:  DefaultMalformedPenalty,
		FragmentPenalty:   DefaultFragmentPenalty,
		KeywordBonus:      DefaultKeywordBonus,
		ContentDepthMin:   DefaultContentDepthMin,
		ContentDepthMax:   DefaultContentDepthMax,
		ContentDepthBonus: DefaultContentDepthBonus,
		DeepPathDepth:     DefaultDeepPathDepth,
		DeepPathPenalty:   DefaultDeepPathPenalty,
		QueryPenalty:      DefaultQueryPenalty,
		AcceptanceCutoff:  &cutoff,
	}
}

// Cutoff returns the acceptance cutoff, falling back to the default.
func (p ScoringPolicy) Cutoff() int {
	if p.AcceptanceCutoff == nil {
		return DefaultAcceptanceCutoff
	}
	return *p.AcceptanceCutoff
}

// withDefaults fills unset fields from DefaultScoringPolicy.
func (p ScoringPolicy) withDefaults() ScoringPolicy {
	def := DefaultScoringPolicy()
	if len(p.Keywords) == 0 {
		p.Keywords = def.Keywords
	}
	if len(p.BinaryExtensions) == 0 {
		p.BinaryExtensions = def.BinaryExtensions
	}
	fill := func(v *int, d int) {
		if *v == 0 {
			*v = d
		}
	}
	fill(&p.BinaryPenalty, def.BinaryPenalty)
	fill(&p.MalformedPenalty, def.MalformedPenalty)
	fill(&p.FragmentPenalty, def.FragmentPenalty)
	fill(&p.KeywordBonus, def.KeywordBonus)
	fill(&p.ContentDepthMin, def.ContentDepthMin)
	fill(&p.ContentDepthMax, def.ContentDepthMax)
	fill(&p.ContentDepthBonus, def.ContentDepthBonus)
	fill(&p.DeepPathDepth, def.DeepPathDepth)
	fill(&p.DeepPathPenalty, def.DeepPathPenalty)
	fill(&p.QueryPenalty, def.QueryPenalty)
	if p.AcceptanceCutoff == nil {
		p.AcceptanceCutoff = def.AcceptanceCutoff
	}
	return p
}
