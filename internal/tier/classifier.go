package tier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pokebrief/gradewatch/internal/model"
)

// Well-known tier names. The set is open; anything configured beyond these
// flows through the same rules.
const (
	Raw     = "raw"
	Grade9  = "grade_9"
	Grade10 = "grade_10"
)

// Tier is one classification bucket. Graded tiers carry required markers
// ("psa 10"); the raw tier carries exclusions instead. A title lands in a
// tier when it matches at least one required marker (if any are set) and
// none of the excluded ones.
type Tier struct {
	Name     string
	Required []string
	Excluded []string
}

// DefaultTiers mirrors the usual raw/PSA9/PSA10 split. The raw exclusions
// cover the grading services that show up in listing titles, so raw and
// graded tiers cannot both claim the same title.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: Raw, Excluded: []string{
			"psa", "cgc", "bgs", "sgc", "beckett", "tag", "ace",
			"graded", "slab", "slabbed",
		}},
		{Name: Grade9, Required: []string{"psa 9"}},
		{Name: Grade10, Required: []string{"psa 10"}},
	}
}

// Classifier partitions listings into tiers by title keywords.
//
// Markers match as whole units: "psa 9" matches "PSA 9 Charizard" and
// "PSA-9" but not "psa 90" or "psa 19". Plain substring search gets this
// wrong, so every keyword compiles to a word-boundary pattern.
type Classifier struct {
	tiers     []Tier
	required  map[string][]*regexp.Regexp
	excluded  map[string][]*regexp.Regexp
	sampleCap int
}

// NewClassifier compiles the tiers' keyword rules. sampleCap bounds each
// tier's partitioned sample; zero means unbounded.
func NewClassifier(tiers []Tier, sampleCap int) (*Classifier, error) {
	c := &Classifier{
		tiers:     tiers,
		required:  make(map[string][]*regexp.Regexp, len(tiers)),
		excluded:  make(map[string][]*regexp.Regexp, len(tiers)),
		sampleCap: sampleCap,
	}

	for _, t := range tiers {
		if t.Name == "" {
			return nil, fmt.Errorf("tier with empty name")
		}
		for _, kw := range t.Required {
			re, err := compileMarker(kw)
			if err != nil {
				return nil, fmt.Errorf("tier %s: keyword %q: %w", t.Name, kw, err)
			}
			c.required[t.Name] = append(c.required[t.Name], re)
		}
		for _, kw := range t.Excluded {
			re, err := compileMarker(kw)
			if err != nil {
				return nil, fmt.Errorf("tier %s: keyword %q: %w", t.Name, kw, err)
			}
			c.excluded[t.Name] = append(c.excluded[t.Name], re)
		}
	}

	return c, nil
}

// compileMarker turns a keyword into a word-boundary pattern. Spaces inside
// the keyword tolerate the "PSA10" / "PSA-10" title variants.
func compileMarker(kw string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(kw)))
	pattern := `\b` + strings.ReplaceAll(quoted, ` `, `[\s-]*`) + `\b`
	return regexp.Compile(pattern)
}

// Match reports whether the title belongs to the named tier.
func (c *Classifier) Match(tierName, title string) bool {
	lower := strings.ToLower(title)

	if required := c.required[tierName]; len(required) > 0 {
		found := false
		for _, re := range required {
			if re.MatchString(lower) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for _, re := range c.excluded[tierName] {
		if re.MatchString(lower) {
			return false
		}
	}

	return true
}

// Partition splits listings into per-tier samples, preserving fetch order
// and truncating each tier to the sample cap. Every configured tier gets an
// entry, even when empty; a listing matching no tier is dropped.
func (c *Classifier) Partition(listings []model.Listing) map[string][]model.Listing {
	out := make(map[string][]model.Listing, len(c.tiers))
	for _, t := range c.tiers {
		out[t.Name] = nil
	}

	for _, l := range listings {
		for _, t := range c.tiers {
			if c.sampleCap > 0 && len(out[t.Name]) >= c.sampleCap {
				continue
			}
			if c.Match(t.Name, l.Title) {
				out[t.Name] = append(out[t.Name], l)
			}
		}
	}

	return out
}

// GradedTiers returns the names of tiers classified by required markers,
// in configuration order.
func (c *Classifier) GradedTiers() []string {
	var names []string
	for _, t := range c.tiers {
		if len(t.Required) > 0 {
			names = append(names, t.Name)
		}
	}
	return names
}
