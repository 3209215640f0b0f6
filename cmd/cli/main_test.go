package main

import (
	"flag"
	"testing"
)

func TestGlobalFlagsParseBeforeCommand(t *testing.T) {
	oldDB, oldModel := dbPath, vadModelPath
	defer func() { dbPath, vadModelPath = oldDB, oldModel }()

	err := flag.CommandLine.Parse([]string{
		"--db", "custom.sqlite3",
		"--vad-model", "model.json",
		"compare", "a.wav", "b.wav", "--save",
	})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if dbPath != "custom.sqlite3" {
		t.Errorf("Expected --db to set dbPath, got %s", dbPath)
	}
	if vadModelPath != "model.json" {
		t.Errorf("Expected --vad-model to set vadModelPath, got %s", vadModelPath)
	}

	// Parsing stops at the subcommand; everything after it stays intact
	// for per-command flag sets
	args := flag.Args()
	if len(args) != 4 || args[0] != "compare" || args[3] != "--save" {
		t.Errorf("Expected command and its arguments preserved, got %v", args)
	}
}

func TestParseWeights(t *testing.T) {
	w, err := parseWeights("0.4, 0.3, 0.2, 0.1")
	if err != nil {
		t.Fatalf("parseWeights failed: %v", err)
	}
	if w.Accuracy != 0.4 || w.Trend != 0.3 || w.Stability != 0.2 || w.Range != 0.1 {
		t.Errorf("Unexpected weights: %+v", w)
	}

	if _, err := parseWeights("0.5,0.5"); err == nil {
		t.Error("Expected error for two values")
	}
	if _, err := parseWeights("a,b,c,d"); err == nil {
		t.Error("Expected error for non-numeric values")
	}
}
