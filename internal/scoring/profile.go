package scoring

import (
	"net/url"
	"strings"

	"github.com/drepwatch/drepscore/internal/types"
)

// ProfileDetail is the checklist result for the Profile Completeness
// pillar. Missing carries the exact point value of each absent field so the
// recommendation generator quantifies gains from the same numbers this
// pillar scores with.
type ProfileDetail struct {
	Score   float64        `json:"score"`
	Missing []ProfileField `json:"missing,omitempty"`
}

// ProfileField names a checklist item and its point value.
type ProfileField struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// placeholderHosts are domains that template metadata files ship with;
// a reference pointing at one of them is not a real social presence.
var placeholderHosts = map[string]bool{
	"example.com":     true,
	"example.org":     true,
	"example.net":     true,
	"yourwebsite.com": true,
	"yoursite.com":    true,
	"placeholder.com": true,
	"localhost":       true,
}

// ProfileCompleteness scores declared identity/intent metadata against a
// fixed checklist, capped at 100. Absent fields are a valid state, never an
// error.
func (w Weights) ProfileCompleteness(p types.ProfileMetadata) ProfileDetail {
	var d ProfileDetail
	pts := w.ProfilePoints

	check := func(name string, points int, present bool) {
		if present {
			d.Score += float64(points)
			return
		}
		d.Missing = append(d.Missing, ProfileField{Name: name, Points: points})
	}

	check("name", pts.Name, strings.TrimSpace(p.GivenName) != "")
	check("bio", pts.Bio, strings.TrimSpace(p.Bio) != "")
	check("objectives", pts.Objectives, strings.TrimSpace(p.Objectives) != "")
	check("motivations", pts.Motivations, strings.TrimSpace(p.Motivations) != "")
	check("qualifications", pts.Qualifications, strings.TrimSpace(p.Qualifications) != "")
	check("payment_address", pts.PaymentAddress, strings.TrimSpace(p.PaymentAddress) != "")
	check("social_reference", pts.SocialRef, hasValidReference(p.References))

	d.Score = clip(d.Score, 0, 100)
	return d
}

// hasValidReference reports whether at least one declared reference is a
// well-formed, non-placeholder URL.
func hasValidReference(refs []string) bool {
	for _, r := range refs {
		if validReferenceURL(r) {
			return true
		}
	}
	return false
}

func validReferenceURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || placeholderHosts[host] {
		return false
	}
	return true
}
