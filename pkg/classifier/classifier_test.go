package classifier_test

import (
	"testing"

	"rescue-coordination-system/internal/domain"
	"rescue-coordination-system/pkg/classifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Bands(t *testing.T) {
	const threshold = 800.0

	cases := []struct {
		co2      float64
		expected domain.SurvivorProbability
	}{
		{0.5 * threshold, domain.ProbabilityNone},
		{threshold, domain.ProbabilityNone},
		{1.1 * threshold, domain.ProbabilityLow},
		{1.2 * threshold, domain.ProbabilityLow},
		{1.3 * threshold, domain.ProbabilityModerate},
		{1.5 * threshold, domain.ProbabilityModerate},
		{1.6 * threshold, domain.ProbabilityHigh},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, classifier.Classify(tc.co2, threshold),
			"co2=%.1f threshold=%.1f", tc.co2, threshold)
	}
}

func TestClassify_Monotonic(t *testing.T) {
	const threshold = 1000.0

	rank := map[domain.SurvivorProbability]int{
		domain.ProbabilityNone:     0,
		domain.ProbabilityLow:      1,
		domain.ProbabilityModerate: 2,
		domain.ProbabilityHigh:     3,
	}

	prev := -1
	for co2 := 0.0; co2 <= 3*threshold; co2 += 25 {
		cur := rank[classifier.Classify(co2, threshold)]
		require.GreaterOrEqual(t, cur, prev, "classification must not decrease at co2=%.0f", co2)
		prev = cur
	}
}

func TestClassify_NonPositiveThreshold(t *testing.T) {
	assert.Equal(t, domain.ProbabilityNone, classifier.Classify(5000, 0))
	assert.Equal(t, domain.ProbabilityNone, classifier.Classify(5000, -100))
}

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, domain.AlertSeverityCritical, classifier.SeverityFor(domain.ProbabilityHigh))
	assert.Equal(t, domain.AlertSeverityHigh, classifier.SeverityFor(domain.ProbabilityModerate))
	assert.Equal(t, domain.AlertSeverityMedium, classifier.SeverityFor(domain.ProbabilityLow))
	assert.Equal(t, domain.AlertSeverityLow, classifier.SeverityFor(domain.ProbabilityNone))
}

func TestThreshold_SwapTakesEffectImmediately(t *testing.T) {
	th := classifier.NewThreshold(800)

	require.Equal(t, domain.ProbabilityNone, th.Classify(900*0.8))
	require.Equal(t, domain.ProbabilityLow, th.Classify(880))

	th.Set(2000)
	assert.Equal(t, 2000.0, th.Value())
	assert.Equal(t, domain.ProbabilityNone, th.Classify(880))
}
