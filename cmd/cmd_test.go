package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/xbrlgraph/internal/store"
)

const instance = `<?xml version="1.0" encoding="utf-8"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"
  xmlns:us-gaap="http://fasb.org/us-gaap/2017-01-31"
  xmlns:dei="http://xbrl.sec.gov/dei/2014-01-31">
  <xbrli:context id="FY2017">
    <xbrli:entity><xbrli:identifier scheme="http://www.sec.gov/CIK">0000320193</xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:startDate>2016-10-01</xbrli:startDate><xbrli:endDate>2017-09-30</xbrli:endDate></xbrli:period>
  </xbrli:context>
  <xbrli:context id="M9">
    <xbrli:entity><xbrli:identifier scheme="http://www.sec.gov/CIK">0000320193</xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:startDate>2016-10-01</xbrli:startDate><xbrli:endDate>2017-07-01</xbrli:endDate></xbrli:period>
  </xbrli:context>
  <xbrli:unit id="usd"><xbrli:measure>iso4217:USD</xbrli:measure></xbrli:unit>
  <dei:DocumentType contextRef="FY2017">10-K</dei:DocumentType>
  <us-gaap:Revenues contextRef="FY2017" unitRef="usd" decimals="-6">1750</us-gaap:Revenues>
  <us-gaap:Revenues contextRef="M9" unitRef="usd" decimals="-6">1500</us-gaap:Revenues>
</xbrli:xbrl>
`

const linkbase = `<?xml version="1.0" encoding="utf-8"?>
<link:linkbase xmlns:link="http://www.xbrl.org/2003/linkbase" xmlns:xlink="http://www.w3.org/1999/xlink">
  <link:labelLink xlink:type="extended" xlink:role="http://www.xbrl.org/2003/role/link">
    <link:loc xlink:type="locator" xlink:href="us-gaap-2017-01-31.xsd#us-gaap_Revenues" xlink:label="loc_Revenues"/>
    <link:labelArc xlink:type="arc" xlink:from="loc_Revenues" xlink:to="lab_Revenues"/>
    <link:label xlink:type="resource" xlink:label="lab_Revenues" xlink:role="http://www.xbrl.org/2003/role/label">Revenues</link:label>
    <link:label xlink:type="resource" xlink:label="lab_Revenues" xlink:role="http://www.xbrl.org/2003/role/terseLabel">Net sales</link:label>
  </link:labelLink>
  <link:presentationLink xlink:type="extended" xlink:role="http://www.apple.com/role/CONSOLIDATEDSTATEMENTSOFOPERATIONS">
    <link:loc xlink:type="locator" xlink:href="us-gaap-2017-01-31.xsd#us-gaap_IncomeStatementAbstract" xlink:label="loc_IncomeStatementAbstract"/>
    <link:loc xlink:type="locator" xlink:href="us-gaap-2017-01-31.xsd#us-gaap_Revenues" xlink:label="loc_Revenues"/>
    <link:presentationArc xlink:type="arc" xlink:from="loc_IncomeStatementAbstract" xlink:to="loc_Revenues" order="1"/>
  </link:presentationLink>
</link:linkbase>
`

func filingDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "aapl-20170930")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aapl-20170930.xml"), []byte(instance), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aapl-20170930_lab.xml"), []byte(linkbase), 0o644))
	return dir
}

// run executes the CLI with fresh flag state and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	valuesJSONPath = ""
	labelRole, labelAll = "", false
	presentationView, presentationFormat, presentationSuppress = "", "md", false
	presentationCmd.Flags().Lookup("suppress-empty").Changed = false
	verbose = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSummary(t *testing.T) {
	out, err := run(t, "summary", filingDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, "form: 10-K")
	assert.Contains(t, out, "contexts: 2")
	assert.Contains(t, out, "values: 3 (2 numeric)")
}

func TestLabel(t *testing.T) {
	dir := filingDir(t)

	out, err := run(t, "label", dir, "Revenues", "--role", "terseLabel")
	require.NoError(t, err)
	assert.Equal(t, "Net sales\n", out)

	out, err = run(t, "label", dir, "Revenues", "--all")
	require.NoError(t, err)
	assert.Equal(t, "label\tRevenues\nterseLabel\tNet sales\n", out)
}

func TestValues_JSONPath(t *testing.T) {
	dir := filingDir(t)

	out, err := run(t, "values", dir)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)

	out, err = run(t, "values", dir, "--jsonpath", "$[?(@.numberOfMonths == '9')]")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"context":"M9"`)
	assert.Contains(t, lines[0], `"form":"10-K"`)

	_, err = run(t, "values", dir, "--jsonpath", "$[")
	assert.Error(t, err)
}

func TestPresentation(t *testing.T) {
	dir := filingDir(t)

	out, err := run(t, "presentation", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "## IncomeStatementAbstract")
	assert.Contains(t, out, "| USD | 1750 | 1500 |")

	out, err = run(t, "presentation", dir, "--format", "html")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")

	out, err = run(t, "presentation", dir, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name":"Revenues"`)

	_, err = run(t, "presentation", dir, "--view", "BalanceSheetAbstract")
	assert.ErrorContains(t, err, "no presentation view")
}

func TestQuarterly(t *testing.T) {
	out, err := run(t, "quarterly", filingDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, `"parameter":"Revenues"`)
	assert.Contains(t, out, `"start":"2017-07-02"`)
	assert.Contains(t, out, `"value":"250"`)
}

func TestExport(t *testing.T) {
	db := filepath.Join(t.TempDir(), "out.db")
	out, err := run(t, "export", filingDir(t), db)
	require.NoError(t, err)

	batch := strings.TrimSpace(out)
	_, err = uuid.Parse(batch)
	require.NoError(t, err)

	values, err := store.LoadValues(db, batch)
	require.NoError(t, err)
	assert.Len(t, values, 3)
	est, err := store.LoadEstimates(db, batch)
	require.NoError(t, err)
	require.Len(t, est, 1)
	assert.Equal(t, "250", est[0].Value)
}

func TestMissingPath(t *testing.T) {
	_, err := run(t, "summary", filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
