package selection

import (
	"fmt"
	"strings"
)

const fallbackBankSize = 20

// Topic-tilted, brand-safe phrase pools used when the caption service is
// unavailable or returns only placeholder text.
var phrasePools = map[string][]string{
	"fitness": {
		"When the preworkout hits mid-set",
		"Leg day optimism vs reality",
		"Me explaining rest day science",
		"That look when someone curls in the squat rack",
		"Tracking macros like it is high finance",
		"Gym buddy texts 'you coming?' at 5am",
	},
	"gym": {
		"One more rep that turns into five",
		"Bench press PR or ER",
		"When the gym playlist knows my soul",
		"Spotter says 'I got you' but vanishes",
		"That mirror check after every set",
		"Bulk season logic explained poorly",
	},
	"real": {
		"Open house smile, appraisal face",
		"Client: 'We want a deal' in this market",
		"That offer gets twelve counters in an hour",
		"Staging on a coffee budget",
		"When the inspection report is a novella",
		"Location, location, location… and parking",
	},
	"food": {
		"Meal prep on Sunday, takeout by Tuesday",
		"When the sauce finally hits right",
		"Expectation vs reality of my own recipe",
		"Chef kiss but it is just me at 2am",
		"That first bite silence",
		"Calories do not count on weekends, right",
	},
	"marketing": {
		"Can we make the logo bigger moment",
		"Brief says 'viral by Friday'",
		"When the budget walks out of the room",
		"A/B test number 42 finally wins",
		"Client feedback: 'pop more'",
		"Rebrand because the CEO had an idea",
	},
	"travel": {
		"Airport security speedrun attempt",
		"Window seat philosophers",
		"Packing light: myth or legend",
		"When the layover becomes a vacation",
		"Lost in translation but vibing",
		"Travel buddy with the endless itinerary",
	},
	"finance": {
		"Market dips right after I buy",
		"Diversified until my coffee budget collapses",
		"Explaining APR at a party",
		"When the spreadsheet becomes a personality",
		"Bull, bear, or just confused",
		"Risk tolerance until the chart turns red",
	},
	"pets": {
		"Dog after a bath: zoomies",
		"Cat schedules are non-negotiable",
		"When the treat jar opens at 2am",
		"Pet hair is an accessory now",
		"Who rescued who debate continues",
		"Zoom call interrupted by paws",
	},
}

var genericTemplates = []string{
	"That moment the plan finally clicks",
	"POV: The deadline moved itself",
	"Expectation vs reality in real time",
	"Me vs the calendar on Monday",
	"Plot twist during the meeting",
	"When the solution was right there all along",
	"Vibing through the chaos",
	"Acting like I know exactly what's happening",
	"The universe tests my patience again",
	"Everything is fine, everything is great",
	"Wait, that actually worked?",
	"My last two brain cells fighting for third place",
}

// FallbackCaptions returns a deterministic pool of captions keyed by the
// first word of the topic. Unknown topics get generic templates; the pool
// is padded to a fixed size with unique topic-prefixed variants.
func FallbackCaptions(topic string) []string {
	key := norm(topic)
	if key == "" {
		key = "general"
	}
	key = strings.SplitN(key, " ", 2)[0]
	if key == "estate" {
		key = "real"
	}

	pool := phrasePools[key]
	if len(pool) == 0 {
		pool = genericTemplates[:6]
	}
	out := make([]string, 0, fallbackBankSize)
	out = append(out, pool...)

	label := strings.TrimSpace(topic)
	if label == "" {
		label = "Meme"
	}
	for i := 0; len(out) < fallbackBankSize; i++ {
		template := genericTemplates[i%len(genericTemplates)]
		out = append(out, fmt.Sprintf("%s: %s", label, template))
	}
	return out[:fallbackBankSize]
}
