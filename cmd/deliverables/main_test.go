package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLog = `LOT,AB123
THEORETICAL_NUM,,200
SLOT
7

TSNO,TESTNO,COMMENT,MODE,HILIMIT,LOLIMIT
1,1001,OS,V,1.2,0.2
2,1002,LEAK,A,5,
3,1003,IDD,A,10,1

SITE,X,Y,BIN,HB,SB,C1_MARK,FT,ET
1,1,1,1,1,1,/,,1000
2,2,1,1,1,1,Q,F,1001
1,3,1,1,1,1,Q,F,1001
2,1,2,1,1,1,Q,F,1002
1,2,2,1,1,1,2,F,1003
2,3,2,1,1,1,/,,1000
`

func init() {
	color.NoColor = true
}

func writeTestLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lot7.csv")
	require.NoError(t, os.WriteFile(path, []byte(testLog), 0o644))
	return path
}

// execute runs the CLI with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	csvPath := writeTestLog(t)
	out, err := execute(t, "run", csvPath, "--mark", "Q", "--no-pivot")
	require.NoError(t, err)

	assert.Contains(t, out, "Conversion complete")
	assert.Contains(t, out, "Filter options loaded: / Q 2")
	assert.Contains(t, out, "Preview Table:")
	assert.Contains(t, out, "1001           2         1.00%")
	assert.Contains(t, out, "1001: Found with Limits")
	assert.Contains(t, out, "Successfully generated table for C1_MARK:Q")
	assert.Contains(t, out, "Wafermap created in sheet W#07_wafermap_by_End_Test_No")
	assert.NotContains(t, out, "Native pivot table could not be added")
}

func TestStageCommands(t *testing.T) {
	csvPath := writeTestLog(t)
	xlsx := strings.TrimSuffix(csvPath, ".csv") + ".xlsx"

	_, err := execute(t, "convert", csvPath)
	require.NoError(t, err)

	out, err := execute(t, "marks", xlsx)
	require.NoError(t, err)
	assert.Equal(t, "/\nQ\n2\n", out)

	out, err = execute(t, "pivot", xlsx, "-m", "Q", "--where", "SITE == 2")
	require.NoError(t, err)
	assert.Contains(t, out, "1001           1         0.50%")

	out, err = execute(t, "endtest", xlsx, "--end-test", "1002")
	require.NoError(t, err)
	assert.Contains(t, out, "LEAK")
	assert.Contains(t, out, "1002: Found with no Limit")

	out, err = execute(t, "endtest", xlsx, "-e", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "9: No End Test No. found in the TESTNO Column")

	out, err = execute(t, "wafermap", xlsx)
	require.NoError(t, err)
	assert.Contains(t, out, "(3 x 2, 6 dies)")

	out, err = execute(t, "describe", xlsx)
	require.NoError(t, err)
	assert.Contains(t, out, "Marks (3): / Q 2")
}

func TestPivotCommand_NoMark(t *testing.T) {
	csvPath := writeTestLog(t)
	_, err := execute(t, "convert", csvPath)
	require.NoError(t, err)

	out, err := execute(t, "pivot", strings.TrimSuffix(csvPath, ".csv")+".xlsx")
	require.Error(t, err)
	assert.Contains(t, out, "Please select a C1_MARK value")
}

func TestValidateCommand(t *testing.T) {
	csvPath := writeTestLog(t)
	xlsx := strings.TrimSuffix(csvPath, ".csv") + ".xlsx"
	_, err := execute(t, "convert", csvPath)
	require.NoError(t, err)

	out, err := execute(t, "validate", xlsx)
	require.NoError(t, err)
	assert.Contains(t, out, "No issues found.")

	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("LOT,AB1\n"), 0o644))
	_, err = execute(t, "convert", bad)
	require.Error(t, err)

	out, err = execute(t, "validate", strings.TrimSuffix(bad, ".csv")+".xlsx")
	require.Error(t, err)
	assert.Contains(t, out, "[ERROR] bad!G1")
}

func TestConfigFlag(t *testing.T) {
	csvPath := writeTestLog(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "deliverables.yaml")
	logPath := filepath.Join(dir, "logs", "run.log")
	require.NoError(t, os.WriteFile(cfgPath, []byte("native_pivot: false\nlog:\n  file: "+logPath+"\n"), 0o644))

	_, err := execute(t, "--config", cfgPath, "run", csvPath)
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wafermap created")
}

func TestBadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("colors:\n  \"Q\": nope\n"), 0o644))
	_, err := execute(t, "--config", cfgPath, "marks", "x.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colors")
}
