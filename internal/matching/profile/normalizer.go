// internal/matching/profile/normalizer.go
package profile

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"talent-matching/internal/common/errors"
	"talent-matching/internal/models"
)

// Normalizer converts raw entity records into AttributeProfiles.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// FromCandidate normalizes a candidate record. Missing optional fields
// (salary, location) are carried as unknown, never treated as failures.
func (n *Normalizer) FromCandidate(c models.Candidate) (AttributeProfile, error) {
	if c.ID == "" {
		return AttributeProfile{}, errors.NewInvalidProfileError("", "candidate record has no id")
	}

	return AttributeProfile{
		EntityID:   c.ID,
		Kind:       models.KindCandidate,
		Skills:     normalizeSkills(c.Skills),
		Experience: normalizeExperience(c.ExperienceLevel),
		Salary:     normalizeSalary(c.ExpectedSalaryMin, c.ExpectedSalaryMax, c.SalaryCurrency),
		Location:   normalizeLocation(c.Location),
		Remote:     c.RemoteOK,
	}, nil
}

// FromJob normalizes a job posting record.
func (n *Normalizer) FromJob(j models.Job) (AttributeProfile, error) {
	if j.ID == "" {
		return AttributeProfile{}, errors.NewInvalidProfileError("", "job record has no id")
	}

	return AttributeProfile{
		EntityID:   j.ID,
		Kind:       models.KindJob,
		Skills:     normalizeSkills(j.RequiredSkills),
		Experience: normalizeExperience(j.ExperienceLevel),
		Salary:     normalizeSalary(j.SalaryMin, j.SalaryMax, j.SalaryCurrency),
		Location:   normalizeLocation(j.Location),
		Remote:     j.RemoteOK,
	}, nil
}

// FromRaw normalizes an untyped document (e.g. an Elasticsearch _source).
// The payload is validated against the kind's JSON schema before decoding,
// so malformed documents fail with INVALID_PROFILE instead of producing a
// half-empty profile.
func (n *Normalizer) FromRaw(kind models.EntityKind, raw map[string]interface{}) (AttributeProfile, error) {
	if !kind.Valid() {
		return AttributeProfile{}, errors.NewInvalidProfileError("", fmt.Sprintf("unknown entity kind: %q", kind))
	}

	if err := ValidateRaw(kind, raw); err != nil {
		return AttributeProfile{}, err
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return AttributeProfile{}, errors.NewInvalidProfileError("", fmt.Sprintf("encode raw entity: %v", err))
	}

	if kind == models.KindCandidate {
		var c models.Candidate
		if err := json.Unmarshal(data, &c); err != nil {
			return AttributeProfile{}, errors.NewInvalidProfileError("", fmt.Sprintf("decode candidate: %v", err))
		}
		return n.FromCandidate(c)
	}

	var j models.Job
	if err := json.Unmarshal(data, &j); err != nil {
		return AttributeProfile{}, errors.NewInvalidProfileError("", fmt.Sprintf("decode job: %v", err))
	}
	return n.FromJob(j)
}

// normalizeSkills trims, lower-cases, de-duplicates and sorts skill tokens.
// Sorting is not part of the contract but keeps profiles deterministic.
func normalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		token := strings.ToLower(strings.TrimSpace(s))
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

var experienceAliases = map[string]ExperienceTier{
	"entry":  TierEntry,
	"intern": TierEntry,
	"junior": TierJunior,
	"middle": TierMiddle,
	"mid":    TierMiddle,
	"senior": TierSenior,
	"lead":   TierLead,
}

func normalizeExperience(level string) ExperienceTier {
	if tier, ok := experienceAliases[strings.ToLower(strings.TrimSpace(level))]; ok {
		return tier
	}
	return TierUnknown
}

// normalizeSalary returns nil when the record carries no usable range. A
// min-only or max-only range is widened to a point range on the known bound.
func normalizeSalary(min, max int, currency string) *SalaryRange {
	if min <= 0 && max <= 0 {
		return nil
	}
	if min <= 0 {
		min = max
	}
	if max <= 0 || max < min {
		max = min
	}
	return &SalaryRange{
		Min:      min,
		Max:      max,
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
	}
}

func normalizeLocation(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}
