package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/9seconds/whip-neustar/config"
)

const version = "0.1.0"

var (
	app = kingpin.New(
		"whip-neustar",
		"Neustar (formerly Quova) data set utilities.")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("WHIP_NEUSTAR_DEBUG").
		Bool()
	configPath = app.Flag("config", "Path to the config.").
			Short('c').
			ExistingFile()

	convertCmd = app.Command("convert",
		"Convert a Neustar V7 dataset to Whip format.")
	convertInput = convertCmd.Arg("input", "Input data file (defaults to stdin).").
			String()
	convertDate = convertCmd.Flag("date", "Date to use (YYYY-MM-DD).").
			String()
	convertOutput = convertCmd.Flag("output", "Output file (defaults to stdout).").
			Short('o').
			String()

	convertV7Cmd = app.Command("convert-to-v7",
		"Convert an older Quova data set into V7 format.")
	convertV7Data = convertV7Cmd.Arg("data-file", "Input data file.").
			Required().
			ExistingFile()
	convertV7Refs = convertV7Cmd.Arg("references-file",
		"Reference file (defaults to .ref file next to data file).").
		ExistingFile()
	convertV7Output = convertV7Cmd.Flag("output", "Output file (defaults to stdout).").
			Short('o').
			String()

	statsCmd = app.Command("stats",
		"Summarize IP ranges of a Neustar V7 dataset.")
	statsInput = statsCmd.Arg("input", "Input data file (defaults to stdin).").
			String()
)

func init() {
	app.Version(version)
	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stderr)
}

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	conf, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err.Error())
	}

	log.SetLevel(conf.Level())
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	switch command {
	case convertCmd.FullCommand():
		err = runConvert(conf, *convertInput, *convertDate, *convertOutput)
	case convertV7Cmd.FullCommand():
		err = runConvertToV7(conf, *convertV7Data, *convertV7Refs, *convertV7Output)
	case statsCmd.FullCommand():
		err = runStats(conf, *statsInput, os.Stdout)
	}

	if err != nil {
		log.Fatal(err.Error())
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close() // nolint: errcheck

	return config.Parse(file)
}
