package deliverables

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewReporter_Defaults(t *testing.T) {
	r := newTestReporter(t)
	assert.Equal(t, "utf-8", r.opts.encoding)
	assert.True(t, r.opts.nativePivot)
	assert.Nil(t, r.filter)
	assert.Len(t, r.colors, len(defaultColors))
}

func TestNewReporter_InvalidOptions(t *testing.T) {
	_, err := NewReporter(WithColorOverrides(map[string]string{"Q": "blue"}))
	assert.Error(t, err)

	_, err = NewReporter(WithFilter("X >"))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newTestReporter(t, WithLogger(zap.New(core)), WithNativePivot(false))
	csvPath := writeCSV(t, "lot7.csv", sampleLog(sampleDies))

	res, err := r.Run(context.Background(), csvPath, "Q")
	require.NoError(t, err)

	assert.Equal(t, []string{"/", "Q", "2"}, res.Import.Marks)
	assert.Equal(t, "1001", res.Fallout.Rows[0].EndTest)
	assert.Equal(t, FoundWithLimits, res.EndTest.Status)
	assert.Equal(t, 6, res.Wafermap.Dies)
	assert.Equal(t, []string{"lot7", PivotSheet, "W#07_wafermap_by_End_Test_No"}, sheetNames(t, res.Import.OutFile))

	assert.Equal(t, 1, logs.FilterMessage("fallout table written").Len())
	assert.Equal(t, 1, logs.FilterMessage("wafermap created").Len())
}

func TestRun_DefaultsToFirstMark(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newTestReporter(t, WithLogger(zap.New(core)), WithNativePivot(false))
	csvPath := writeCSV(t, "lot7.csv", sampleLog(sampleDies))

	res, err := r.Run(context.Background(), csvPath, "")
	require.NoError(t, err)
	assert.Equal(t, "/", res.Fallout.Mark)
	assert.Equal(t, "1000", res.EndTest.EndTestNo)
	assert.Equal(t, NotFound, res.EndTest.Status)

	entries := logs.FilterMessage("no mark given, using first").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/", entries[0].ContextMap()["mark"])
}

func TestRun_WafermapFailure(t *testing.T) {
	rows := sampleLog(sampleDies)
	rows[2][0] = "WAFER"
	csvPath := writeCSV(t, "noslot.csv", rows)

	res, err := newTestReporter(t, WithNativePivot(false)).Run(context.Background(), csvPath, "Q")
	require.ErrorIs(t, err, ErrSlotNotFound)
	assert.True(t, strings.HasPrefix(err.Error(), "wafermap:"))
	assert.NotNil(t, res.Fallout)
	assert.NotNil(t, res.EndTest)
	assert.Nil(t, res.Wafermap)
}

func TestRun_EndTestFailureStillBuildsWafermap(t *testing.T) {
	rows := sampleLog(sampleDies)
	rows[5][5] = "LIMIT"
	csvPath := writeCSV(t, "nolimit.csv", rows)

	res, err := newTestReporter(t, WithNativePivot(false)).Run(context.Background(), csvPath, "Q")
	require.ErrorIs(t, err, ErrLimitTableNotFound)
	assert.Contains(t, err.Error(), "end test:")
	assert.NotNil(t, res.Fallout)
	assert.Nil(t, res.EndTest)
	require.NotNil(t, res.Wafermap)
	assert.Equal(t, 6, res.Wafermap.Dies)
	assert.Contains(t, sheetNames(t, res.Import.OutFile), "W#07_wafermap_by_End_Test_No")
}

func TestRun_CombinesStageErrors(t *testing.T) {
	rows := sampleLog(sampleDies)
	rows[2][0] = "WAFER"
	csvPath := writeCSV(t, "noslot.csv", rows)

	res, err := newTestReporter(t).Run(context.Background(), csvPath, "Z")
	require.ErrorIs(t, err, ErrUnknownMark)
	require.ErrorIs(t, err, ErrSlotNotFound)
	assert.Contains(t, err.Error(), "2 errors occurred")
	assert.Nil(t, res.Fallout)
	assert.Nil(t, res.EndTest, "the End Test check needs the fallout table")
	assert.Nil(t, res.Wafermap)
}

func TestRun_ConvertFailure(t *testing.T) {
	csvPath := writeCSV(t, "nomark.csv", [][]string{{"LOT", "AB1"}})
	res, err := newTestReporter(t).Run(context.Background(), csvPath, "")
	require.ErrorIs(t, err, ErrMarkerNotFound)
	assert.Contains(t, err.Error(), "convert:")
	require.NotNil(t, res.Import)
	assert.Nil(t, res.Fallout)
}

func TestRun_UnknownMark(t *testing.T) {
	csvPath := writeCSV(t, "lot7.csv", sampleLog(sampleDies))
	res, err := newTestReporter(t).Run(context.Background(), csvPath, "Z")
	require.ErrorIs(t, err, ErrUnknownMark)
	assert.True(t, strings.HasPrefix(err.Error(), "pivot:"))
	assert.Nil(t, res.EndTest)
	assert.NotNil(t, res.Wafermap)
}

func TestRun_PackageLevel(t *testing.T) {
	csvPath := writeCSV(t, "lot7.csv", sampleLog(sampleDies))
	res, err := Run(context.Background(), csvPath, "2", WithNativePivot(false))
	require.NoError(t, err)
	assert.Equal(t, "1003", res.EndTest.EndTestNo)
	assert.Equal(t, FoundWithLimits, res.EndTest.Status)

	_, err = Run(context.Background(), csvPath, "", WithFilter("("))
	assert.Error(t, err)
}
