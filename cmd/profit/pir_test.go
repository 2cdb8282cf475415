package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePIR = `>P1;reference
sample reference sequence
AAG-GTC*
>P1;mobile_0
sample mobile sequence
AAGCG-C*
`

func TestParsePIRReadsRecords(t *testing.T) {
	records, err := parsePIR(strings.NewReader(samplePIR))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "reference", records[0].ID)
	assert.Equal(t, "AAG-GTC", records[0].Seq)
	assert.Equal(t, "mobile_0", records[1].ID)
	assert.Equal(t, "AAGCG-C", records[1].Seq)
}

func TestParsePIRRequiresTwoRecords(t *testing.T) {
	_, err := parsePIR(strings.NewReader(">P1;reference\ndesc\nAAG*\n"))
	assert.Error(t, err)
}

func TestParsePIRIgnoresBlankLines(t *testing.T) {
	input := ">P1;a\ndesc a\n\nAAG*\n\n>P1;b\ndesc b\nAAG*\n"
	records, err := parsePIR(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "AAG", records[0].Seq)
	assert.Equal(t, "AAG", records[1].Seq)
}
