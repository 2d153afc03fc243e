// Package crisis_test provides unit tests for the crisis classifier.
package crisis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/havenmind/support-service/internal/services/crisis"
)

// Recall on direct disclosures matters more than anything else here: a
// missed crisis is silent, a false positive is an unnecessary booking.
func TestClassify_DirectDisclosuresAreCrisis(t *testing.T) {
	classifier := crisis.NewClassifier()

	disclosures := []string{
		"I want to kill myself",
		"I'm going to end it all",
		"I plan to commit suicide",
		"I want to die",
		"i wish I was dead",
		"I am thinking about suicide",
		"I have no reason to live",
		"I feel hopeless and want to die",
		"Everyone would be better off without me",
		"I have a plan to end my life",
		"I'm going to hurt myself",
		"I want to cut myself",
		"I'm going to overdose",
		"I can't cope anymore",
		"I'm in crisis",
		"I want to give up",
	}

	for _, text := range disclosures {
		assessment := classifier.Classify(text)
		assert.True(t, assessment.Crisis, "expected crisis for %q (rule %q)", text, assessment.Rule)
	}
}

func TestClassify_CrisisCategories(t *testing.T) {
	classifier := crisis.NewClassifier()

	tests := []struct {
		text     string
		category string
	}{
		{"I want to kill myself", crisis.CategorySuicidalIdeation},
		{"I'm going to cut myself", crisis.CategorySelfHarm},
		{"I want to kill someone", crisis.CategoryHomicidalIdeation},
		{"I'm going to overdose", crisis.CategoryOverdose},
		{"I can't take it anymore", crisis.CategoryOverwhelmingDistress},
	}

	for _, tt := range tests {
		assessment := classifier.Classify(tt.text)
		assert.True(t, assessment.Crisis, "expected crisis for %q", tt.text)
		assert.Equal(t, tt.category, assessment.Category, "category for %q", tt.text)
	}
}

// Everyday idioms that borrow death vocabulary must never trigger an
// escalation.
func TestClassify_HarmlessIdiomsAreNotCrisis(t *testing.T) {
	classifier := crisis.NewClassifier()

	idioms := []string{
		"I died laughing at that joke",
		"I'm dying of boredom in this meeting",
		"I killed it at the presentation today!",
		"We killed that raid last night",
		"I almost died when she told me",
		"My phone died during the call",
		"I killed the exam this morning",
		"I thought I was going to die during the workout",
		"I'm dying for a coffee right now",
		"That movie was so funny I died",
	}

	for _, text := range idioms {
		assessment := classifier.Classify(text)
		assert.False(t, assessment.Crisis, "expected not-crisis for %q (rule %q)", text, assessment.Rule)
	}
}

// The harmless pass runs first, so an idiom match wins even when crisis
// vocabulary appears in the same sentence.
func TestClassify_HarmlessPassShortCircuits(t *testing.T) {
	classifier := crisis.NewClassifier()

	assessment := classifier.Classify("I died laughing, honestly")
	assert.False(t, assessment.Crisis)
	assert.Equal(t, "laughter", assessment.Rule)
}

func TestClassify_NeutralTextIsNotCrisis(t *testing.T) {
	classifier := crisis.NewClassifier()

	neutral := []string{
		"I had a pretty good day today",
		"Work has been stressful lately",
		"Can we schedule an appointment next week?",
		"My sister visited over the weekend",
	}

	for _, text := range neutral {
		assessment := classifier.Classify(text)
		assert.False(t, assessment.Crisis, "expected not-crisis for %q", text)
		assert.Empty(t, assessment.Rule)
	}
}

func TestClassify_EmptyInput(t *testing.T) {
	classifier := crisis.NewClassifier()

	assessment := classifier.Classify("")
	assert.False(t, assessment.Crisis)

	assessment = classifier.Classify("   \n\t  ")
	assert.False(t, assessment.Crisis)
}

func TestClassify_CaseAndPunctuationInsensitive(t *testing.T) {
	classifier := crisis.NewClassifier()

	assert.True(t, classifier.Classify("I WANT TO KILL MYSELF!!!").Crisis)
	assert.True(t, classifier.Classify("i want to kill myself.").Crisis)
	assert.False(t, classifier.Classify("I KILLED IT at the demo!!").Crisis)
}

// Typed disclosures often drop the apostrophe in contractions; recall
// must not hinge on punctuation.
func TestClassify_ContractionSpellingVariants(t *testing.T) {
	classifier := crisis.NewClassifier()

	for _, text := range []string{
		"I cant go on",
		"I can't go on",
		"I cannot take it anymore",
		"i cant cope",
	} {
		assessment := classifier.Classify(text)
		assert.True(t, assessment.Crisis, "expected crisis for %q", text)
		assert.Equal(t, crisis.CategoryOverwhelmingDistress, assessment.Category)
	}
}

func TestClassify_AmbiguousPassNeedsToken(t *testing.T) {
	classifier := crisis.NewClassifier()

	// Carries an ambiguous token in a first-person reflexive frame.
	assessment := classifier.Classify("some days I just wanted to die")
	assert.True(t, assessment.Crisis)

	// Mentions death with no first-person risk frame at all.
	assessment = classifier.Classify("the protagonist dies at the end of the book")
	assert.False(t, assessment.Crisis)
}

func TestNewClassifierWithRules_CustomTable(t *testing.T) {
	classifier := crisis.NewClassifierWithRules(nil)

	assessment := classifier.Classify("I want to kill myself")
	assert.False(t, assessment.Crisis, "empty table matches nothing")
}
