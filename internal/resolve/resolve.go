// Package resolve matches free-text person names against the tenant
// roster. Resolution never guesses: multiple plausible candidates come
// back as a MANY outcome for the dialogue layer to clarify.
package resolve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/avandyck/shepherd/internal/models"
)

// Outcome tags a resolution result.
type Outcome int

const (
	// None: no entity matched at or above the threshold.
	None Outcome = iota
	// One: exactly one entity matched.
	One
	// Many: several entities matched and the caller must clarify.
	Many
)

func (o Outcome) String() string {
	switch o {
	case One:
		return "one"
	case Many:
		return "many"
	default:
		return "none"
	}
}

// Match is a scored candidate.
type Match struct {
	Entity models.Entity
	Score  float64
}

// Result is the outcome of resolving one name.
type Result struct {
	Outcome Outcome
	Matches []Match // best first; One has exactly one element
}

// Roster lists the active entities visible to a tenant.
type Roster interface {
	ListEntities(ctx context.Context, tenantID string) ([]models.Entity, error)
}

// Resolver scores names against the roster. Threshold is the fuzzy
// floor below which candidates are discarded.
type Resolver struct {
	roster    Roster
	threshold float64
}

func New(roster Roster, threshold float64) *Resolver {
	return &Resolver{roster: roster, threshold: threshold}
}

// Resolve matches name against the tenant's roster. Exact normalized
// matches win outright; a bare first name shared by several people is
// Many; otherwise fuzzy similarity above the threshold decides.
func (r *Resolver) Resolve(ctx context.Context, tenantID, name string) (Result, error) {
	norm := models.NormalizeName(name)
	if norm == "" {
		return Result{Outcome: None}, nil
	}
	entities, err := r.roster.ListEntities(ctx, tenantID)
	if err != nil {
		return Result{}, fmt.Errorf("list entities: %w", err)
	}

	var exact, firstName []Match
	for _, e := range entities {
		if !e.Active {
			continue
		}
		if e.NormalizedName == norm {
			exact = append(exact, Match{Entity: e, Score: 1.0})
			continue
		}
		if fields := strings.Fields(e.NormalizedName); len(fields) > 0 && fields[0] == norm {
			firstName = append(firstName, Match{Entity: e, Score: 0.9})
		}
	}
	if len(exact) > 0 {
		return outcome(exact), nil
	}
	if len(firstName) > 0 {
		return outcome(firstName), nil
	}

	var fuzzy []Match
	for _, e := range entities {
		if !e.Active {
			continue
		}
		if score := Similarity(norm, e.NormalizedName); score >= r.threshold {
			fuzzy = append(fuzzy, Match{Entity: e, Score: score})
		}
	}
	sort.SliceStable(fuzzy, func(i, j int) bool { return fuzzy[i].Score > fuzzy[j].Score })
	return outcome(fuzzy), nil
}

func outcome(matches []Match) Result {
	switch len(matches) {
	case 0:
		return Result{Outcome: None}
	case 1:
		return Result{Outcome: One, Matches: matches}
	default:
		return Result{Outcome: Many, Matches: matches}
	}
}

// Similarity scores two normalized names in [0, 1]. Containment and
// shared last names outrank raw edit distance so "mike" still finds
// "mike johnson" and "jon smith" finds "john smith".
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0
	}

	base := editSimilarity(a, b)

	if strings.Contains(a, b) || strings.Contains(b, a) {
		if base < 0.85 {
			base = 0.85
		}
	}

	af, bf := strings.Fields(a), strings.Fields(b)
	if len(af) > 1 && len(bf) > 1 {
		// same last name, similar first name
		if af[len(af)-1] == bf[len(bf)-1] {
			first := editSimilarity(af[0], bf[0])
			if s := 0.7 + 0.3*first; s > base {
				base = s
			}
		}
		// "smith john" for "john smith"
		if len(af) == 2 && len(bf) == 2 && af[0] == bf[1] && af[1] == bf[0] {
			if base < 0.85 {
				base = 0.85
			}
		}
	}
	return base
}

func editSimilarity(a, b string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1.0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(d)/float64(longest)
}
