package domain

// Severity buckets, most severe first.
type Severity string

const (
	SeverityMajor    Severity = "Major"
	SeverityModerate Severity = "Moderate"
	SeverityMinor    Severity = "Minor"
	SeverityMinimal  Severity = "Minimal"
)

var Severities = []Severity{SeverityMajor, SeverityModerate, SeverityMinor, SeverityMinimal}

// Finding pairs one detected supplement with one registered medication.
type Finding struct {
	Supplement string   `json:"supplement"`
	Drug       string   `json:"drug"`
	Severity   Severity `json:"severity"`
	Details    string   `json:"details"`
}

// Banner is the risk signal derived from a report.
type Banner string

const (
	BannerNone                Banner = ""
	BannerMajorRisk           Banner = "major_risk"
	BannerNoMajorInteractions Banner = "no_major_interactions"
)

type Report struct {
	Major    []Finding `json:"major"`
	Moderate []Finding `json:"moderate"`
	Minor    []Finding `json:"minor"`
	Minimal  []Finding `json:"minimal"`
}

// NewReport returns a report with every bucket allocated so it encodes as empty arrays.
func NewReport() Report {
	return Report{
		Major:    []Finding{},
		Moderate: []Finding{},
		Minor:    []Finding{},
		Minimal:  []Finding{},
	}
}

func (r *Report) Add(f Finding) {
	switch f.Severity {
	case SeverityMajor:
		r.Major = append(r.Major, f)
	case SeverityModerate:
		r.Moderate = append(r.Moderate, f)
	case SeverityMinor:
		r.Minor = append(r.Minor, f)
	default:
		f.Severity = SeverityMinimal
		r.Minimal = append(r.Minimal, f)
	}
}

func (r Report) Bucket(s Severity) []Finding {
	switch s {
	case SeverityMajor:
		return r.Major
	case SeverityModerate:
		return r.Moderate
	case SeverityMinor:
		return r.Minor
	case SeverityMinimal:
		return r.Minimal
	}
	return nil
}

// Findings flattens the report, most severe bucket first.
func (r Report) Findings() []Finding {
	out := make([]Finding, 0, len(r.Major)+len(r.Moderate)+len(r.Minor)+len(r.Minimal))
	for _, s := range Severities {
		out = append(out, r.Bucket(s)...)
	}
	return out
}

func (r Report) Empty() bool {
	return len(r.Major)+len(r.Moderate)+len(r.Minor)+len(r.Minimal) == 0
}

func (r Report) Banner() Banner {
	switch {
	case len(r.Major) > 0:
		return BannerMajorRisk
	case len(r.Moderate) == 0:
		return BannerNoMajorInteractions
	default:
		return BannerNone
	}
}
