package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/9seconds/whip-neustar/config"
	"github.com/9seconds/whip-neustar/csvdb"
)

const (
	testV7Row      = `16777216,33554431,NA,united states,us,95,southwest,california,ca,94,san jose,61,95113,408,-8,37.3394,-121.895,807,7400,broadband,high,fixed,15169,google,com,Google Inc,,`
	testLegacyRow  = "16777216|33554431|8|NA|united states|us|95|southwest|california|94|san jose|61|95113|408|999|37.3394|-121.895|807|7400|0|broadband|high|fixed|0|0|1|2|3|0"
	testReferences = "carrier|1|0\n0|unknown\norg|2|999\n3|Google Inc\n4|Example Org\nsld|1|10\n1|google\ntld|1|10\n2|com\n"
)

type CommandsTestSuite struct {
	TmpDirTestSuite

	conf *config.Config
}

func (suite *CommandsTestSuite) SetupTest() {
	suite.TmpDirTestSuite.SetupTest()

	suite.conf = config.Default()
}

func (suite *CommandsTestSuite) v7Content() string {
	return strings.Join(csvdb.Fields, ",") + "\n" + testV7Row + "\n"
}

func (suite *CommandsTestSuite) readDocs(path string) []map[string]interface{} {
	docs := []map[string]interface{}{}

	for _, line := range strings.Split(strings.TrimSpace(suite.readFile(path)), "\n") {
		doc := map[string]interface{}{}
		suite.Require().NoError(json.Unmarshal([]byte(line), &doc))
		docs = append(docs, doc)
	}

	return docs
}

func (suite *CommandsTestSuite) TestConvertDateFromFileName() {
	input := suite.writeGzipFile("quova_v470.63_15.27_20200115.csv.gz", suite.v7Content())
	output := suite.path("out.json")

	suite.NoError(runConvert(suite.conf, input, "", output))

	docs := suite.readDocs(output)
	suite.Len(docs, 1)
	suite.Equal("1.0.0.0", docs[0]["begin"])
	suite.Equal("1.255.255.255", docs[0]["end"])
	suite.Equal("2020-01-15T00:00:00", docs[0]["datetime"])
	suite.Equal(float64(95), docs[0]["country_cf"])
	suite.Equal(-121.895, docs[0]["longitude"])
}

func (suite *CommandsTestSuite) TestConvertExplicitDate() {
	input := suite.writeFile("data.csv", suite.v7Content())
	output := suite.path("out.json")

	suite.NoError(runConvert(suite.conf, input, "2021-03-04", output))

	docs := suite.readDocs(output)
	suite.Equal("2021-03-04T00:00:00", docs[0]["datetime"])
}

func (suite *CommandsTestSuite) TestConvertNoDate() {
	input := suite.writeFile("data.csv", suite.v7Content())

	suite.Error(runConvert(suite.conf, input, "", suite.path("out.json")))
}

func (suite *CommandsTestSuite) TestConvertWrongFile() {
	input := suite.writeFile("data.csv", testV7Row+"\n")

	suite.Error(runConvert(suite.conf, input, "2021-03-04", suite.path("out.json")))
}

func (suite *CommandsTestSuite) TestConvertSkipInvalid() {
	input := suite.writeFile("data.csv", suite.v7Content()+"1,2,3\n")
	output := suite.path("out.json")

	suite.Error(runConvert(suite.conf, input, "2021-03-04", output))

	suite.conf.SkipInvalid = true

	suite.NoError(runConvert(suite.conf, input, "2021-03-04", output))
	suite.Len(suite.readDocs(output), 1)
}

func (suite *CommandsTestSuite) TestConvertToV7AndBack() {
	data := suite.writeGzipFile("quova.dat.gz", testLegacyRow+"\n")
	suite.writeFile("quova.ref.gz", testReferences)
	v7 := suite.path("quova_v1_1_20200115.csv")
	output := suite.path("out.json")

	suite.NoError(runConvertToV7(suite.conf, data, "", v7))
	suite.NoError(runConvert(suite.conf, v7, "", output))

	docs := suite.readDocs(output)
	suite.Len(docs, 1)
	suite.Equal("Google Inc", docs[0]["organization"])
	suite.Equal("google", docs[0]["sld"])
	suite.Equal("com", docs[0]["tld"])
	suite.Nil(docs[0]["carrier"])
	suite.Nil(docs[0]["asn"])
	suite.Nil(docs[0]["time_zone"])
	suite.Equal("us", docs[0]["country_code"])
}

func (suite *CommandsTestSuite) TestConvertToV7ExplicitReferences() {
	data := suite.writeFile("legacy.txt", testLegacyRow+"\n")
	refs := suite.writeFile("refs.txt", testReferences)
	output := suite.path("out.csv")

	suite.NoError(runConvertToV7(suite.conf, data, refs, output))
	suite.Len(strings.Split(strings.TrimSpace(suite.readFile(output)), "\n"), 2)
}

func (suite *CommandsTestSuite) TestConvertToV7NoReferences() {
	data := suite.writeFile("legacy.txt", testLegacyRow+"\n")

	suite.Error(runConvertToV7(suite.conf, data, "", suite.path("out.csv")))
}

func (suite *CommandsTestSuite) TestStats() {
	input := suite.writeFile("data.csv", suite.v7Content())
	out := &bytes.Buffer{}

	suite.NoError(runStats(suite.conf, input, out))
	suite.Contains(out.String(), "records:   1\n")
	suite.Contains(out.String(), "addresses: 16,777,216\n")
	suite.Contains(out.String(), "subnets:   1\n")
	suite.Contains(out.String(), "countries: 1 us\n")
}

func (suite *CommandsTestSuite) TestLoadDefaultConfig() {
	conf, err := loadConfig("")

	suite.NoError(err)
	suite.Equal(config.Default(), conf)
}

func (suite *CommandsTestSuite) TestLoadConfig() {
	path := suite.writeFile("config.toml", "skip_invalid = true\n")

	conf, err := loadConfig(path)

	suite.NoError(err)
	suite.True(conf.SkipInvalid)
}

func TestCommands(t *testing.T) {
	suite.Run(t, &CommandsTestSuite{})
}
