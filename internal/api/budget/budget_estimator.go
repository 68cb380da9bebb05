package budget

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/raiigauravv/WanderWhiz/internal/sanitizer"
	"github.com/raiigauravv/WanderWhiz/internal/types"
)

const (
	// TransportationBaseline is the flat transport cost of any itinerary.
	TransportationBaseline = 25

	// DefaultPriceLevel is assumed for places without a price level.
	DefaultPriceLevel = 2

	// maxComponent caps parsed amounts so corrupted totals cannot overflow.
	maxComponent = 1_000_000_000
)

// costRule maps a set of place categories to a price ladder indexed by
// price level. Rules are evaluated in order; the first match wins.
type costRule struct {
	name       string
	categories map[string]struct{}
	prices     [5]int
	add        func(b *types.BudgetBreakdown, cost int)
}

func categorySet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

var costRules = []costRule{
	{
		name:       "food",
		categories: categorySet("restaurant", "food", "meal_takeaway", "cafe"),
		prices:     [5]int{15, 25, 45, 75, 120},
		add:        func(b *types.BudgetBreakdown, c int) { b.Food += c },
	},
	{
		name:       "activities",
		categories: categorySet("tourist_attraction", "museum", "amusement_park", "zoo", "aquarium"),
		prices:     [5]int{10, 20, 35, 50, 80},
		add:        func(b *types.BudgetBreakdown, c int) { b.Activities += c },
	},
	{
		name:       "accommodation",
		categories: categorySet("lodging", "hotel"),
		prices:     [5]int{60, 120, 200, 350, 500},
		add:        func(b *types.BudgetBreakdown, c int) { b.Accommodation += c },
	},
}

// classify returns the first rule whose categories intersect the place's.
func classify(p types.Place) (*costRule, bool) {
	for i := range costRules {
		rule := &costRules[i]
		for _, c := range p.Categories {
			if _, ok := rule.categories[c]; ok {
				return rule, true
			}
		}
	}
	return nil, false
}

func priceLevel(p types.Place) int {
	if p.PriceLevel == nil {
		return DefaultPriceLevel
	}
	return min(max(*p.PriceLevel, 0), 4)
}

// Estimate derives a budget from place categories and price levels.
// Miscellaneous is ten percent of the other categories, rounded half to even.
func Estimate(places []types.Place) types.BudgetEstimate {
	b := types.BudgetBreakdown{Transportation: TransportationBaseline}
	for _, p := range places {
		rule, ok := classify(p)
		if !ok {
			continue
		}
		rule.add(&b, rule.prices[priceLevel(p)])
	}

	subtotal := b.Sum()
	b.Miscellaneous = int(math.RoundToEven(float64(subtotal) / 10))
	return types.BudgetEstimate{Breakdown: b, Total: subtotal + b.Miscellaneous}
}

// Reconcile normalizes a previously persisted budget of unknown shape.
// A saved total survives when it is positive and within half of the summed
// breakdown; otherwise the sum wins. Input without any usable amounts is
// re-estimated from places.
func Reconcile(saved any, places []types.Place) types.BudgetEstimate {
	data, ok := sanitizer.Sanitize(saved).(map[string]any)
	if !ok {
		return estimateOrZero(places)
	}

	var b types.BudgetBreakdown
	if nested, ok := data["breakdown"].(map[string]any); ok {
		b = readBreakdown(nested)
		b.Miscellaneous += safeAmount(data["miscellaneous"])
	} else {
		b = readBreakdown(data)
	}

	sum := b.Sum()
	if sum == 0 {
		return estimateOrZero(places)
	}

	total := sum
	if savedTotal := safeAmount(data["total"]); savedTotal > 0 {
		if math.Abs(float64(savedTotal-sum)) <= 0.5*float64(sum) {
			total = savedTotal
		}
	}
	return types.BudgetEstimate{Breakdown: b, Total: total}
}

func estimateOrZero(places []types.Place) types.BudgetEstimate {
	if len(places) == 0 {
		return types.BudgetEstimate{}
	}
	return Estimate(places)
}

func readBreakdown(m map[string]any) types.BudgetBreakdown {
	activities, ok := m["activities"]
	if !ok {
		activities = m["attractions"]
	}
	return types.BudgetBreakdown{
		Transportation: safeAmount(m["transportation"]),
		Food:           safeAmount(m["food"]),
		Activities:     safeAmount(activities),
		Accommodation:  safeAmount(m["accommodation"]),
		Miscellaneous: safeAmount(m["miscellaneous"]) +
			safeAmount(m["other"]) +
			safeAmount(m["entertainment"]),
	}
}

// safeAmount parses a stored amount. Anything non-numeric or non-finite is 0,
// negatives clamp to 0 and fractions truncate.
func safeAmount(v any) int {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f > maxComponent {
		return maxComponent
	}
	return int(f)
}
