// Package crisis classifies free text for genuine self-harm and crisis
// disclosures.
package crisis

import "regexp"

// Pass identifies which classification pass a rule belongs to. Passes run
// in order and the first match within a pass wins.
type Pass int

const (
	// PassHarmless short-circuits to not-crisis. Idiom collisions with
	// crisis vocabulary are the dominant source of false positives, so
	// this pass runs first.
	PassHarmless Pass = iota
	// PassCrisis matches direct first-person crisis disclosures.
	PassCrisis
	// PassAmbiguous applies narrower context patterns only when the text
	// contains a bare ambiguous token and neither earlier pass matched.
	PassAmbiguous
)

// Category labels what kind of disclosure a crisis rule detects.
const (
	CategorySuicidalIdeation     = "suicidal_ideation"
	CategorySelfHarm             = "self_harm"
	CategoryHomicidalIdeation    = "homicidal_ideation"
	CategoryOverdose             = "overdose"
	CategoryOverwhelmingDistress = "overwhelming_distress"
)

// Rule is one entry in the versioned classification table.
type Rule struct {
	Name     string
	Pass     Pass
	Pattern  *regexp.Regexp
	Category string
}

// RulesVersion identifies the active rule table. Bump when patterns
// change so stored assessments remain interpretable.
const RulesVersion = "2024-06-01"

// ambiguousTokens are bare words that, alone, do not decide either way;
// they gate the ambiguous-context pass.
var ambiguousTokens = regexp.MustCompile(`\b(die|dying|dead|kill|killing|suicide|suicidal|overdose|hurt|harm)\b`)

// defaultRules is the curated, ordered rule table loaded once at startup.
var defaultRules = []Rule{
	// --- Pass 1: harmless idiom and hyperbole recognition ---
	{Name: "laughter", Pass: PassHarmless, Pattern: regexp.MustCompile(`d(?:ied|ying) (?:laughing|of laughter|from laughing|when|from)`)},
	{Name: "hyperbole", Pass: PassHarmless, Pattern: regexp.MustCompile(`d(?:ied|ying) (?:of|from) (?:boredom|embarrassment|shame|excitement)`)},
	{Name: "craving", Pass: PassHarmless, Pattern: regexp.MustCompile(`dying (?:for|over) `)},
	{Name: "achievement", Pass: PassHarmless, Pattern: regexp.MustCompile(`kill(?:ed|ing) (?:it|them|that)\b`)},
	{Name: "gaming", Pass: PassHarmless, Pattern: regexp.MustCompile(`(?:died|killed) (?:in|at|during) (?:the )?(?:game|level|battle|fight|raid)`)},
	{Name: "workout", Pass: PassHarmless, Pattern: regexp.MustCompile(`died (?:during|in|at) (?:the )?(?:workout|exercise|running|gym|class)`)},
	{Name: "near-miss-figurative", Pass: PassHarmless, Pattern: regexp.MustCompile(`(?:almost|nearly) (?:died|killed)`)},
	{Name: "thought-dying", Pass: PassHarmless, Pattern: regexp.MustCompile(`(?:thought i was going to die|felt like i was dying)`)},
	{Name: "device-died", Pass: PassHarmless, Pattern: regexp.MustCompile(`(?:my|the) (?:phone|battery|car|laptop|wifi) died`)},
	{Name: "past-harmless", Pass: PassHarmless, Pattern: regexp.MustCompile(`i died (?:when|after|because)`)},
	{Name: "killed-exam", Pass: PassHarmless, Pattern: regexp.MustCompile(`killed (?:the|my) (?:exam|test|interview|presentation|budget)`)},
	{Name: "temporal-died", Pass: PassHarmless, Pattern: regexp.MustCompile(`died (?:yesterday|today|last week|this morning)`)},

	// --- Pass 2: direct first-person crisis disclosures ---
	{Name: "suicide-intent", Pass: PassCrisis, Category: CategorySuicidalIdeation,
		Pattern: regexp.MustCompile(`i(?:'m| am)? (?:want to|going to|plan to|need to|wish to|desire to) (?:kill myself|commit suicide|end (?:my life|it all|my suffering)|die|stop existing)`)},
	{Name: "suicide-plan", Pass: PassCrisis, Category: CategorySuicidalIdeation,
		Pattern: regexp.MustCompile(`i have (?:a plan|a way|the means) to (?:kill myself|end my life|do it)`)},
	{Name: "suicide-method", Pass: PassCrisis, Category: CategorySuicidalIdeation,
		Pattern: regexp.MustCompile(`i know how i would do it`)},
	{Name: "death-wish", Pass: PassCrisis, Category: CategorySuicidalIdeation,
		Pattern: regexp.MustCompile(`i (?:wish|wished) (?:i (?:was|were) dead|to die|to end it all)`)},
	{Name: "suicidal-thoughts", Pass: PassCrisis, Category: CategorySuicidalIdeation,
		Pattern: regexp.MustCompile(`i(?:'m| am) (?:thinking about|considering) (?:suicide|killing myself|ending my life)`)},
	{Name: "better-off-dead", Pass: PassCrisis, Category: CategorySuicidalIdeation,
		Pattern: regexp.MustCompile(`(?:i(?:'m| am) better off dead|everyone would be better off without me|no one would miss me)`)},
	{Name: "no-reason-to-live", Pass: PassCrisis, Category: CategorySuicidalIdeation,
		Pattern: regexp.MustCompile(`(?:i have no reason to live|life is (?:pointless|meaningless)|i (?:feel hopeless and want to die|give up on life)|i'm giving up on life)`)},
	{Name: "self-harm-intent", Pass: PassCrisis, Category: CategorySelfHarm,
		Pattern: regexp.MustCompile(`i(?:'m| am)? (?:want to|going to|plan to) (?:hurt|cut|harm|punish) (?:myself|my body)`)},
	{Name: "homicidal-intent", Pass: PassCrisis, Category: CategoryHomicidalIdeation,
		Pattern: regexp.MustCompile(`i(?:'m| am)? (?:want to|going to|plan to) (?:kill|hurt|harm|attack) (?:someone|somebody|my \w+)`)},
	{Name: "overdose-intent", Pass: PassCrisis, Category: CategoryOverdose,
		Pattern: regexp.MustCompile(`i(?:'m| am)? (?:want to|going to|plan to) overdose`)},
	{Name: "acute-distress", Pass: PassCrisis, Category: CategoryOverwhelmingDistress,
		Pattern: regexp.MustCompile(`i(?: a|')m in crisis|i can(?:'|no)?t (?:cope|go on|take (?:it|this)|handle (?:it|this)) ?(?:anymore)?|i(?:'m| am) at rock bottom|i want to give up`)},

	// --- Pass 3: ambiguous tokens with first-person reflexive context ---
	{Name: "ambiguous-reflexive", Pass: PassAmbiguous, Category: CategorySuicidalIdeation,
		Pattern: regexp.MustCompile(`i \w+(?: \w+)? (?:die|kill) (?:myself|my life)`)},
	{Name: "ambiguous-want-die", Pass: PassAmbiguous, Category: CategorySuicidalIdeation,
		Pattern: regexp.MustCompile(`\bwant(?:ed)? to die\b`)},
	{Name: "ambiguous-suicidal", Pass: PassAmbiguous, Category: CategorySuicidalIdeation,
		Pattern: regexp.MustCompile(`\b(?:i(?:'m| am| feel) suicidal)\b`)},
	{Name: "ambiguous-overdose-self", Pass: PassAmbiguous, Category: CategoryOverdose,
		Pattern: regexp.MustCompile(`overdose (?:on|myself)`)},
}
