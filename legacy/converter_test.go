package legacy

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/9seconds/whip-neustar/csvdb"
	"github.com/juju/errors"
	"github.com/stretchr/testify/suite"
)

const (
	testLegacyRow   = "16777216|33554431|8|NA|united states|us|95|southwest|california|94|san jose|61|95113|408|-8|37.3394|-121.895|807|7400|0|broadband|high|fixed|0|15169|1|2|3|0"
	testSentinelRow = "16777216|16777471|24|none|unknown|us|0|||0||0|0|0|999|||0|0|0|||||0|1|5|4|0"
	testV7Row       = "16777216,33554431,NA,united states,us,95,southwest,california,,94,san jose,61,95113,408,-8,37.3394,-121.895,807,7400,broadband,high,fixed,15169,google,com,Google Inc,,"
)

type ConverterTestSuite struct {
	suite.Suite

	refs *References
	out  *bytes.Buffer
}

func (suite *ConverterTestSuite) SetupTest() {
	refs, err := LoadReferences(strings.NewReader(testReferences))
	suite.Require().NoError(err)

	suite.refs = refs
	suite.out = &bytes.Buffer{}
}

func (suite *ConverterTestSuite) convert(lines ...string) (int, error) {
	return Convert(strings.NewReader(strings.Join(lines, "\n")), suite.refs, suite.out)
}

func (suite *ConverterTestSuite) outputLines() []string {
	return strings.Split(strings.TrimSuffix(suite.out.String(), "\n"), "\n")
}

func (suite *ConverterTestSuite) readV7(content io.Reader) []*csvdb.Record {
	reader := csvdb.NewReader(content, time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC))
	records := []*csvdb.Record{}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return records
		}
		suite.Require().NoError(err)
		records = append(records, record)
	}
}

func (suite *ConverterTestSuite) TestConvert() {
	count, err := suite.convert(testLegacyRow)

	suite.NoError(err)
	suite.Equal(1, count)

	lines := suite.outputLines()
	suite.Len(lines, 2)
	suite.Equal(`"start_ip_int","end_ip_int","continent","country","country_code","country_cf","region","state","state_code","state_cf","city","city_cf","postal_code","area_code","time_zone","latitude","longitude","dma","msa","connection_type","line_speed","ip_routing_type","asn","sld","tld","organization","carrier","anonymizer_status"`,
		lines[0])
	suite.Equal(`"16777216","33554431","NA","united states","us","95","southwest","california","","94","san jose","61","95113","408","-8","37.3394","-121.895","807","7400","broadband","high","fixed","15169","google","com","Google Inc","",""`,
		lines[1])
}

func (suite *ConverterTestSuite) TestEmptyInputWritesHeader() {
	count, err := Convert(strings.NewReader(""), suite.refs, suite.out)

	suite.NoError(err)
	suite.Equal(0, count)
	suite.Len(suite.outputLines(), 1)
}

func (suite *ConverterTestSuite) TestQuotesAreEscaped() {
	row := strings.Replace(testLegacyRow, "|3|0", "|4|0", 1)

	_, err := suite.convert(row)
	suite.NoError(err)

	suite.Contains(suite.outputLines()[1], `"Example ""Quoted"" Org"`)

	records := suite.readV7(bytes.NewReader(suite.out.Bytes()))
	suite.Equal(`Example "Quoted" Org`, *records[0].Organization)
}

func (suite *ConverterTestSuite) TestSentinels() {
	count, err := suite.convert(testSentinelRow)

	suite.NoError(err)
	suite.Equal(1, count)

	records := suite.readV7(bytes.NewReader(suite.out.Bytes()))
	suite.Len(records, 1)

	record := records[0]
	suite.Equal("1.0.0.0", record.Begin)
	suite.Equal("1.0.0.255", record.End)
	suite.Nil(record.Continent)
	suite.Nil(record.Country)
	suite.Equal("us", *record.CountryCode)
	suite.Nil(record.CountryCF)
	suite.Nil(record.CityCF)
	suite.Nil(record.StateCF)
	suite.Nil(record.PostalCode)
	suite.Nil(record.AreaCode)
	suite.Nil(record.ASN)
	suite.Nil(record.TimeZone)
	suite.Nil(record.TLD)
	suite.Nil(record.Carrier)
	suite.Equal("google", *record.SLD)
	suite.Equal(`Example "Quoted" Org`, *record.Organization)
}

func (suite *ConverterTestSuite) TestRoundTripMatchesV7() {
	_, err := suite.convert(testLegacyRow)
	suite.NoError(err)

	converted := suite.readV7(bytes.NewReader(suite.out.Bytes()))
	direct := suite.readV7(strings.NewReader(strings.Join(csvdb.Fields, ",") + "\n" + testV7Row + "\n"))

	suite.Len(converted, 1)
	suite.Equal(direct, converted)
	suite.Equal("Google Inc", *converted[0].Organization)
	suite.Equal("-08:00", *converted[0].TimeZone)
}

func (suite *ConverterTestSuite) TestUnknownReference() {
	row := strings.Replace(testLegacyRow, "|3|0", "|42|0", 1)

	count, err := suite.convert(testLegacyRow, row)
	suite.Equal(1, count)

	lookupErr, ok := errors.Cause(err).(*LookupError)
	suite.Require().True(ok, "%v", err)
	suite.Equal(RefOrg, lookupErr.RefType)
	suite.Equal(int64(42), lookupErr.ID)
	suite.Equal(2, lookupErr.Line)
}

func (suite *ConverterTestSuite) TestIncorrectReferenceID() {
	row := strings.Replace(testLegacyRow, "|1|2|3|0", "|x|2|3|0", 1)

	_, err := suite.convert(row)

	formatErr, ok := errors.Cause(err).(*csvdb.FormatError)
	suite.Require().True(ok, "%v", err)
	suite.Equal("x", formatErr.Value)
}

func (suite *ConverterTestSuite) TestTooFewColumns() {
	_, err := suite.convert("16777216|33554431|8")

	_, ok := errors.Cause(err).(*csvdb.FormatError)
	suite.True(ok)
}

func (suite *ConverterTestSuite) TestExtraColumnsIgnored() {
	count, err := suite.convert(testLegacyRow + "|extra")

	suite.NoError(err)
	suite.Equal(1, count)
}

func (suite *ConverterTestSuite) TestSkipInvalidRows() {
	content := strings.Join([]string{
		strings.Replace(testLegacyRow, "|3|0", "|42|0", 1),
		"16777216|33554431|8",
		testLegacyRow,
	}, "\n")

	count, err := Convert(strings.NewReader(content), suite.refs, suite.out, WithSkipInvalidRows(true))

	suite.NoError(err)
	suite.Equal(1, count)
	suite.Len(suite.outputLines(), 2)
}

func TestConverter(t *testing.T) {
	suite.Run(t, &ConverterTestSuite{})
}
