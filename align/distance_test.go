package align_test

import (
	"testing"

	"github.com/ACRMGroup/profit/align"
	"github.com/stretchr/testify/assert"
)

func TestNeedlemanWunschByDistanceCoincidentPoints(t *testing.T) {
	a := []align.Point3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}
	b := []align.Point3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}

	score, pairA, pairB, err := align.NeedlemanWunschByDistance(a, b, align.NewScoring())
	assert.NoError(t, err)
	assert.Equal(t, len(pairA), len(pairB))
	assert.Greater(t, score, 0.0)
	for i := range pairA {
		if pairA[i] != -1 && pairB[i] != -1 {
			assert.Equal(t, pairA[i], pairB[i])
		}
	}
}

func TestNeedlemanWunschByDistanceExtraPoint(t *testing.T) {
	a := []align.Point3{{0, 0, 0}, {1, 0, 0}}
	b := []align.Point3{{0, 0, 0}, {0.5, 0, 0}, {1, 0, 0}}

	_, pairA, pairB, err := align.NeedlemanWunschByDistance(a, b, align.NewScoring())
	assert.NoError(t, err)
	assert.Equal(t, len(pairA), len(pairB))

	gaps := 0
	for _, v := range pairA {
		if v == -1 {
			gaps++
		}
	}
	assert.Greater(t, gaps, 0)
}
