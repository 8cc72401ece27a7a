package services

import (
	"testing"

	"bosjol-tactical/models"

	"github.com/stretchr/testify/assert"
)

func TestResolveRuleValuePrecedence(t *testing.T) {
	rules := []models.ScoringRule{
		{ID: models.RuleKill, Experience: 10},
		{ID: models.RuleDeath, Experience: -5},
	}
	overrides := map[string]int64{
		models.RuleKill:  20,
		models.RuleDeath: 0, // an explicit zero override still wins
	}

	v, ok := ResolveRuleValue(models.RuleKill, overrides, rules)
	assert.True(t, ok)
	assert.Equal(t, int64(20), v)

	v, ok = ResolveRuleValue(models.RuleDeath, overrides, rules)
	assert.True(t, ok)
	assert.Equal(t, int64(0), v)
}

func TestResolveRuleValueGlobalFallback(t *testing.T) {
	rules := []models.ScoringRule{{ID: models.RuleHeadshot, Experience: 25}}

	v, ok := ResolveRuleValue(models.RuleHeadshot, nil, rules)
	assert.True(t, ok)
	assert.Equal(t, int64(25), v)

	v, ok = ResolveRuleValue(models.RuleHeadshot, map[string]int64{"kill": 20}, rules)
	assert.True(t, ok)
	assert.Equal(t, int64(25), v, "unrelated overrides don't shadow the global value")
}

func TestResolveRuleValueMissExplicit(t *testing.T) {
	v, ok := ResolveRuleValue("bounty", nil, standardRules())
	assert.False(t, ok)
	assert.Equal(t, int64(0), v)
}
