package main

// Offline path analysis over an exported event log.
//
// Reads a CSV of format distinct_id,event,created_at[,url_path[,page_title]]
// sorted by distinct_id and created_at, runs the full pipeline and prints
// the analysis result as JSON.
//
// Sample usage in terminal.
// go run scripts/run_path_analysis.go --input_file=events.csv --min_conversions=1

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	P "github.com/xjrad/miniapp-data-analysis/userpath"

	log "github.com/sirupsen/logrus"
)

var inputFileFlag = flag.String("input_file", "",
	"Input file of format distinct_id,event,created_at[,url_path[,page_title]] sorted by distinct_id and created_at")
var pathLengthFlag = flag.String("path_length", "all", "Path length bucket: all, 2-3, 4-5, 6-8, 9+")
var minConversionsFlag = flag.Int("min_conversions", 1, "Minimum occurrences for a path to be reported")

func readEvents(filepath string) ([]P.RawEvent, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	events := []P.RawEvent{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		splits := strings.Split(line, ",")
		if len(splits) < 3 {
			return nil, fmt.Errorf("malformed line: %s", line)
		}
		createdAt, err := strconv.ParseInt(splits[2], 10, 64)
		if err != nil {
			return nil, err
		}
		event := P.RawEvent{
			UserID:           splits[0],
			EventName:        splits[1],
			TimestampSeconds: createdAt,
		}
		if len(splits) > 3 {
			event.URLPath = splits[3]
		}
		if len(splits) > 4 {
			event.PageTitle = splits[4]
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func main() {
	flag.Parse()
	if *inputFileFlag == "" {
		log.Fatal("Missing --input_file")
	}

	events, err := readEvents(*inputFileFlag)
	if err != nil {
		log.Fatal(err)
	}

	result := P.Analyze(events, P.AnalysisOptions{
		Options: P.DefaultOptions(),
		AggregateOptions: P.AggregateOptions{
			PathLength: *pathLengthFlag,
			MinCount:   *minConversionsFlag,
		},
	})

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
}
