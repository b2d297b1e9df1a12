package crawler

import (
	"net/url"
	"path"
	"strings"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/model"
)

// Scorer ranks discovered URLs. Higher scores are fetched first and
// scores below the acceptance cutoff never enter the frontier.
// Score is pure: it performs no I/O and holds no mutable state.
type Scorer struct {
	policy   config.ScoringPolicy
	keywords []string
	binary   map[string]struct{}
}

// NewScorer creates a Scorer for policy.
func NewScorer(policy config.ScoringPolicy) *Scorer {
	s := &Scorer{
		policy: policy,
		binary: make(map[string]struct{}, len(policy.BinaryExtensions)),
	}
	for _, kw := range policy.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			s.keywords = append(s.keywords, kw)
		}
	}
	for _, ext := range policy.BinaryExtensions {
		s.binary[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return s
}

// Score returns the priority of candidate relative to root.
//
// Rules:
//   - malformed or non-http(s) URL: MalformedPenalty
//   - binary file extension: BinaryPenalty
//   - bare fragment or mailto link: FragmentPenalty
//   - the site root without query: 0
//   - otherwise the sum of keyword bonus, depth bonus or penalty and query penalty
func (s *Scorer) Score(candidate string, root *url.URL) int {
	raw := strings.TrimSpace(candidate)
	lower := strings.ToLower(raw)
	if strings.HasPrefix(raw, "#") || strings.HasPrefix(lower, "mailto:") {
		return s.policy.FragmentPenalty
	}

	u, err := url.Parse(raw)
	if err != nil {
		return s.policy.MalformedPenalty
	}
	if !u.IsAbs() && root != nil {
		u = root.ResolveReference(u)
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Hostname() == "" {
		return s.policy.MalformedPenalty
	}

	p := strings.ToLower(u.Path)
	if ext := strings.TrimPrefix(path.Ext(p), "."); ext != "" {
		if _, ok := s.binary[ext]; ok {
			return s.policy.BinaryPenalty
		}
	}

	hasQuery := u.RawQuery != "" || u.ForceQuery
	if root != nil && isRootPath(p, root) && model.SameSite(u.Hostname(), root.Hostname()) && !hasQuery {
		return 0
	}

	score := 0
	for _, kw := range s.keywords {
		if strings.Contains(p, kw) {
			score += s.policy.KeywordBonus
			break
		}
	}

	depth := pathDepth(p)
	switch {
	case depth >= s.policy.ContentDepthMin && depth <= s.policy.ContentDepthMax:
		score += s.policy.ContentDepthBonus
	case depth > s.policy.DeepPathDepth:
		score += s.policy.DeepPathPenalty
	}

	if hasQuery {
		score += s.policy.QueryPenalty
	}
	return score
}

// Accept reports whether score passes the acceptance cutoff.
func (s *Scorer) Accept(score int) bool {
	return score >= s.policy.Cutoff()
}

func isRootPath(p string, root *url.URL) bool {
	rootPath := strings.ToLower(root.Path)
	if rootPath == "" {
		rootPath = "/"
	}
	if p == "" {
		p = "/"
	}
	return strings.TrimSuffix(p, "/") == strings.TrimSuffix(rootPath, "/")
}

// pathDepth counts slash-delimited non-empty segments.
func pathDepth(p string) int {
	depth := 0
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			depth++
		}
	}
	return depth
}
