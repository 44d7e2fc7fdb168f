package deliverables

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckEndTest_FromFallout(t *testing.T) {
	path := createSampleWorkbook(t)
	r := newTestReporter(t, WithNativePivot(false))
	ctx := context.Background()

	_, err := r.GeneratePivot(ctx, path, "Q")
	require.NoError(t, err)

	res, err := r.CheckEndTest(ctx, path, "")
	require.NoError(t, err)
	assert.Equal(t, "1001", res.EndTestNo)
	assert.Equal(t, FoundWithLimits, res.Status)
	assert.Equal(t, 6, res.Row)
	assert.Equal(t, []string{"1", "1001", "OS", "V", "1.2", "0.2"}, res.Reference)

	rows := readSheet(t, path, PivotSheet)
	assert.Equal(t, ReferenceHeader, rows[2][7:13])
	assert.Equal(t, []string{"1", "1001", "OS", "V", "1.2", "0.2"}, rows[3][7:13])
	assert.Equal(t, "1001", rows[3][3], "the fallout table is kept")
	assert.Equal(t, "C0E6F5", cellFill(t, path, PivotSheet, "M3"))
	assert.Equal(t, "FFFFFF", cellFill(t, path, PivotSheet, "H4"))
}

func TestCheckEndTest_Explicit(t *testing.T) {
	path := createSampleWorkbook(t)
	r := newTestReporter(t)
	ctx := context.Background()

	res, err := r.CheckEndTest(ctx, path, "1002.0")
	require.NoError(t, err)
	assert.Equal(t, "1002", res.EndTestNo)
	assert.Equal(t, FoundNoLimit, res.Status)
	assert.Equal(t, "", res.Reference[5])

	rows := readSheet(t, path, PivotSheet)
	assert.Equal(t, "LEAK", rows[3][9], "the Pivot sheet is created when missing")
}

func TestCheckEndTest_NotFound(t *testing.T) {
	path := createSampleWorkbook(t)
	res, err := newTestReporter(t).CheckEndTest(context.Background(), path, "4242")
	require.NoError(t, err)
	assert.Equal(t, NotFound, res.Status)
	assert.Equal(t, -1, res.Row)
	assert.Nil(t, res.Reference)
	assert.Equal(t, []string{"lot7"}, sheetNames(t, path), "nothing is written")
}

func TestCheckEndTest_Errors(t *testing.T) {
	ctx := context.Background()
	r := newTestReporter(t)

	_, err := r.CheckEndTest(ctx, createSampleWorkbook(t), "")
	assert.ErrorIs(t, err, ErrNoFallout)

	rows := sampleLog(sampleDies)
	rows[5][5] = "LO_LIMIT"
	_, err = r.CheckEndTest(ctx, createLogWorkbook(t, "nolimit", rows), "1001")
	assert.ErrorIs(t, err, ErrLimitTableNotFound)
}

func TestLimitStatus_String(t *testing.T) {
	assert.Equal(t, "Found with Limits", FoundWithLimits.String())
	assert.Equal(t, "Found with no Limit", FoundNoLimit.String())
	assert.Equal(t, "No End Test No. found in the TESTNO Column", NotFound.String())
}
