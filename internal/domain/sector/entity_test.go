package sector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromWeightsRanking(t *testing.T) {
	s := FromWeights(map[string]float64{"tech": 3, "finance": 1, "energy": 0}, 0)
	require.Len(t, s.Ranking, 2)
	assert.Equal(t, "tech", s.Primary)
	assert.Equal(t, 0.75, s.Ranking[0].Score)
	assert.Equal(t, 0.25, s.Ranking[1].Score)
	assert.Equal(t, 0.5, s.Confidence)
}

func TestFromWeightsTieResolvesAlphabetically(t *testing.T) {
	s := FromWeights(map[string]float64{"tech": 2, "finance": 2, "energy": 2}, 0)
	assert.Equal(t, "energy", s.Primary)
	assert.Equal(t, []string{"energy", "finance", "tech"}, []string{s.Ranking[0].Sector, s.Ranking[1].Sector, s.Ranking[2].Sector})
	assert.Equal(t, 0.0, s.Confidence)
}

func TestFromWeightsSingleSector(t *testing.T) {
	s := FromWeights(map[string]float64{"energy": 4, "tech": 0}, 3)
	assert.Equal(t, "energy", s.Primary)
	require.Len(t, s.Ranking, 1)
	assert.Equal(t, 1.0, s.Ranking[0].Score)
	assert.Equal(t, 1.0, s.Confidence, "missing second rank counts as 0")
}

func TestFromWeightsTopN(t *testing.T) {
	s := FromWeights(map[string]float64{"tech": 4, "finance": 3, "energy": 2, "materials": 1}, 2)
	require.Len(t, s.Ranking, 2)
	assert.Equal(t, 0.1, s.Confidence)
}

func TestFromWeightsUnclassified(t *testing.T) {
	s := FromWeights(nil, 3)
	assert.Equal(t, Unclassified, s.Primary)
	assert.Empty(t, s.Ranking)
	assert.Equal(t, 0.0, s.Confidence)
}

func TestIsKnown(t *testing.T) {
	for _, n := range Names {
		assert.True(t, IsKnown(n))
	}
	assert.False(t, IsKnown("crypto"))
	assert.False(t, IsKnown(Unclassified))
}
