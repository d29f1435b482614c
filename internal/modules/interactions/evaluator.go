package interactions

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"

	"github.com/yungbote/supplesafe-backend/internal/domain"
)

// Shuffler permutes n items in place through swap. key is the detected supplement name.
type Shuffler interface {
	Shuffle(key string, n int, swap func(i, j int))
}

// RandomShuffler draws a fresh permutation on every call.
type RandomShuffler struct{}

func (RandomShuffler) Shuffle(_ string, n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// SeededShuffler derives the permutation from the supplement name, so the same
// label against the same list always selects the same medications.
type SeededShuffler struct{}

func (SeededShuffler) Shuffle(key string, n int, swap func(i, j int)) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(key))))
	seed := h.Sum64()
	rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)).Shuffle(n, swap)
}

// IdentityShuffler keeps the input order.
type IdentityShuffler struct{}

func (IdentityShuffler) Shuffle(string, int, func(i, j int)) {}

// ShufflerFor maps INTERACTION_SELECTION values to a shuffler.
func ShufflerFor(mode string) Shuffler {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "seeded", "deterministic":
		return SeededShuffler{}
	default:
		return RandomShuffler{}
	}
}

type Evaluator struct {
	shuffler Shuffler
}

func NewEvaluator(shuffler Shuffler) *Evaluator {
	if shuffler == nil {
		shuffler = RandomShuffler{}
	}
	return &Evaluator{shuffler: shuffler}
}

// MaxSelected is the number of medications paired with the detected supplement.
const MaxSelected = 2

// Evaluate pairs the first detected ingredient with up to two medications from a
// permuted copy of meds: the first as Major, the second as Moderate. It never fails.
func (e *Evaluator) Evaluate(ingredients []string, meds []domain.Medication) domain.Report {
	report := domain.NewReport()
	if len(meds) == 0 {
		return report
	}

	supplement := domain.SupplementLabel(ingredients)

	shuffled := make([]domain.Medication, len(meds))
	copy(shuffled, meds)
	e.shuffler.Shuffle(supplement, len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	selected := shuffled[:min(MaxSelected, len(shuffled))]

	for i, sev := range []domain.Severity{domain.SeverityMajor, domain.SeverityModerate} {
		if i >= len(selected) {
			break
		}
		drug := selected[i].Name
		report.Add(domain.Finding{
			Supplement: supplement,
			Drug:       drug,
			Severity:   sev,
			Details:    domain.Rationale(sev, supplement, drug),
		})
	}
	return report
}
