package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/speechcoach/tonegrade/pkg/logger"
	"github.com/speechcoach/tonegrade/pkg/models"
	"github.com/speechcoach/tonegrade/pkg/tonegrade"
	"github.com/speechcoach/tonegrade/pkg/utils"
)

// Global flags
var (
	dbPath       string
	vadModelPath string
)

// cmdArgs holds everything after the subcommand once the global flags
// are parsed.
var cmdArgs []string

func init() {
	// Global flags that can be used with any command
	flag.StringVar(&dbPath, "db", getEnvOrDefault("TONEGRADE_DB_PATH", "tonegrade.sqlite3"), "Path to the SQLite database file")
	flag.StringVar(&vadModelPath, "vad-model", getEnvOrDefault("TONEGRADE_VAD_MODEL", ""), "Path to a trained VAD model (optional)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// createService creates a new ToneGrade service with configured options
func createService() (tonegrade.Service, error) {
	return tonegrade.NewService(
		tonegrade.WithDBPath(dbPath),
		tonegrade.WithVADModelPath(vadModelPath),
	)
}

func main() {
	log := logger.GetLogger()

	printBanner()

	// Global flags come before the subcommand; parsing stops at the
	// first non-flag argument.
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	cmdArgs = flag.Args()[1:]
	log.Infof("Executing command: %s", command)

	switch command {
	case "compare":
		handleCompare()
	case "pitch":
		handlePitch()
	case "segments":
		handleSegments()
	case "history":
		handleHistory()
	case "delete":
		handleDelete()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
 _____                ____               _
|_   _|__  _ __   ___/ ___|_ __ __ _  __| | ___
  | |/ _ \| '_ \ / _ \ |  _| '__/ _' |/ _' |/ _ \
  | | (_) | | | |  __/ |_| | | | (_| | (_| |  __/
  |_|\___/|_| |_|\___|\____|_|  \__,_|\__,_|\___|

          Pronunciation Pitch Scoring Tool
`
	fmt.Println(banner)
}

func handleCompare() {
	log := logger.GetLogger()

	// Separate the two audio paths from trailing flags
	args := cmdArgs
	var paths []string
	var flagArgs []string
	for i, arg := range args {
		if strings.HasPrefix(arg, "-") {
			flagArgs = args[i:]
			break
		}
		paths = append(paths, arg)
	}

	if len(paths) != 2 {
		fmt.Println("Usage: tonegrade compare <reference.wav> <candidate.wav> [options]")
		os.Exit(1)
	}
	for _, p := range paths {
		if !utils.FileExists(p) {
			fmt.Printf("Audio file not found: %s\n", p)
			os.Exit(1)
		}
	}

	compareCmd := flag.NewFlagSet("compare", flag.ExitOnError)
	refHints := compareCmd.String("ref-hints", "", "JSON file with reference boundary hints")
	candHints := compareCmd.String("cand-hints", "", "JSON file with candidate boundary hints")
	weightsFlag := compareCmd.String("weights", "", "Comma-separated sub-score weights: accuracy,trend,stability,range")
	refID := compareCmd.String("ref-id", "", "Reference identifier for the practice history")
	save := compareCmd.Bool("save", false, "Record this attempt in the practice history")
	compareCmd.Parse(flagArgs)

	req := models.CompareRequest{
		ReferenceID:   *refID,
		ReferencePath: paths[0],
		CandidatePath: paths[1],
		SaveHistory:   *save,
	}

	var err error
	if req.ReferenceHints, err = loadHintsFile(*refHints); err != nil {
		fmt.Printf("Failed to load reference hints: %v\n", err)
		os.Exit(1)
	}
	if req.CandidateHints, err = loadHintsFile(*candHints); err != nil {
		fmt.Printf("Failed to load candidate hints: %v\n", err)
		os.Exit(1)
	}
	if *weightsFlag != "" {
		weights, err := parseWeights(*weightsFlag)
		if err != nil {
			fmt.Printf("Invalid weights: %v\n", err)
			os.Exit(1)
		}
		req.Weights = weights
	}

	svc, err := createService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Println("Analyzing recordings...")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := svc.Compare(ctx, req)
	if err != nil {
		fmt.Printf("\nComparison failed: %v\n", err)
		log.Errorf("Compare failed: %v", err)
		os.Exit(1)
	}

	printResult(result)
	log.Infof("Comparison complete: total=%.1f grade=%s", result.TotalScore, result.Grade)
}

func printResult(result *models.ComparisonResult) {
	if result.MethodUsed == "reject" {
		fmt.Println("\nRecording rejected:", result.Reason)
		fmt.Println("Try again with a longer, clearer recording.")
		return
	}

	fmt.Printf("\nTotal score: %.1f  (%s)\n", result.TotalScore, result.Grade)
	fmt.Println()
	fmt.Printf("   Accuracy:  %6.1f\n", result.Accuracy)
	fmt.Printf("   Trend:     %6.1f\n", result.Trend)
	fmt.Printf("   Stability: %6.1f\n", result.Stability)
	fmt.Printf("   Range:     %6.1f\n", result.Range)
	fmt.Println()
	fmt.Printf("   Alignment: %s (cost %.4f)\n", result.MethodUsed, result.AlignCost)
	if result.VADMethod != "" {
		fmt.Printf("   VAD:       %s\n", result.VADMethod)
	}
	if result.Details.Recommendation != "" {
		fmt.Printf("\nTip: %s\n", result.Details.Recommendation)
	}
	if result.AttemptID != "" {
		fmt.Printf("\nSaved attempt: %s\n", result.AttemptID)
	}
}

func handlePitch() {
	log := logger.GetLogger()

	args := cmdArgs
	var audioPath string
	var flagArgs []string
	for i, arg := range args {
		if strings.HasPrefix(arg, "-") {
			flagArgs = args[i:]
			break
		}
		audioPath = arg
	}

	if audioPath == "" {
		fmt.Println("Usage: tonegrade pitch <audio.wav> [--json]")
		os.Exit(1)
	}
	if !utils.FileExists(audioPath) {
		fmt.Printf("Audio file not found: %s\n", audioPath)
		os.Exit(1)
	}

	pitchCmd := flag.NewFlagSet("pitch", flag.ExitOnError)
	asJSON := pitchCmd.Bool("json", false, "Print the full curve as JSON")
	pitchCmd.Parse(flagArgs)

	svc, err := createService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	curve, err := svc.ExtractPitch(audioPath)
	if err != nil {
		fmt.Printf("Failed to extract pitch: %v\n", err)
		log.Errorf("ExtractPitch failed: %v", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(curve); err != nil {
			log.Errorf("Failed to encode curve: %v", err)
			os.Exit(1)
		}
		return
	}

	voiced := 0
	minF, maxF := 0.0, 0.0
	for _, s := range curve.Samples {
		if !s.Voiced {
			continue
		}
		voiced++
		if minF == 0 || s.Freq < minF {
			minF = s.Freq
		}
		if s.Freq > maxF {
			maxF = s.Freq
		}
	}

	fmt.Printf("\nPitch curve for %s:\n", audioPath)
	fmt.Printf("   Frames:  %d (%d voiced)\n", len(curve.Samples), voiced)
	fmt.Printf("   Step:    %.0f ms\n", curve.Step*1000)
	if voiced > 0 {
		fmt.Printf("   Range:   %.1f - %.1f Hz\n", minF, maxF)
	}
	log.Infof("Extracted %d frames (%d voiced)", len(curve.Samples), voiced)
}

func handleSegments() {
	log := logger.GetLogger()

	if len(cmdArgs) < 1 {
		fmt.Println("Usage: tonegrade segments <audio.wav>")
		os.Exit(1)
	}

	audioPath := cmdArgs[0]

	svc, err := createService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	segments, method, err := svc.DetectSegments(audioPath)
	if err != nil {
		fmt.Printf("Failed to detect segments: %v\n", err)
		log.Errorf("DetectSegments failed: %v", err)
		os.Exit(1)
	}

	if len(segments) == 0 {
		fmt.Println("\nNo speech detected")
		return
	}

	fmt.Printf("\nFound %d speech segment(s) (method: %s):\n\n", len(segments), method)
	for i, seg := range segments {
		fmt.Printf("%d. %.2fs - %.2fs (%.2fs)\n", i+1, seg.Start, seg.End, seg.End-seg.Start)
	}
	log.Infof("Detected %d segments via %s", len(segments), method)
}

func handleHistory() {
	log := logger.GetLogger()

	historyCmd := flag.NewFlagSet("history", flag.ExitOnError)
	refID := historyCmd.String("ref-id", "", "Only show attempts for this reference")
	limit := historyCmd.Int("limit", 20, "Maximum number of attempts to show")
	historyCmd.Parse(cmdArgs)

	svc, err := createService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	attempts, err := svc.ListAttempts(*refID, *limit)
	if err != nil {
		fmt.Printf("Failed to list attempts: %v\n", err)
		log.Errorf("ListAttempts failed: %v", err)
		os.Exit(1)
	}

	if len(attempts) == 0 {
		fmt.Println("\nNo attempts recorded")
		return
	}

	fmt.Printf("\nFound %d attempt(s):\n\n", len(attempts))
	for i, a := range attempts {
		fmt.Printf("%d. %.1f (%s) - %s\n", i+1, a.TotalScore, a.Grade, a.CreatedAt.Format("2006-01-02 15:04"))
		if a.ReferenceID != "" {
			fmt.Printf("   Reference: %s\n", a.ReferenceID)
		}
		fmt.Printf("   ID: %s\n", a.ID)
		fmt.Println()
	}
	log.Infof("Listed %d attempts", len(attempts))
}

func handleDelete() {
	log := logger.GetLogger()

	if len(cmdArgs) < 1 {
		fmt.Println("Usage: tonegrade delete <attempt_id>")
		os.Exit(1)
	}

	attemptID := cmdArgs[0]

	svc, err := createService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	attempt, err := svc.GetAttempt(attemptID)
	if err != nil {
		fmt.Printf("Attempt not found: %s\n", attemptID)
		log.Warnf("Attempt %s not found: %v", attemptID, err)
		os.Exit(1)
	}

	if err := svc.DeleteAttempt(attemptID); err != nil {
		fmt.Printf("Failed to delete attempt: %v\n", err)
		log.Errorf("DeleteAttempt failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("\nDeleted attempt %s (score %.1f, %s)\n", attempt.ID, attempt.TotalScore, attempt.Grade)
	log.Infof("Deleted attempt %s", attempt.ID)
}

func loadHintsFile(path string) ([]models.Hint, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var hints []models.Hint
	if err := json.Unmarshal(data, &hints); err != nil {
		return nil, err
	}
	return hints, nil
}

func parseWeights(value string) (*models.Weights, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("expected 4 comma-separated values, got %d", len(parts))
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q", p)
		}
		vals[i] = f
	}
	return &models.Weights{Accuracy: vals[0], Trend: vals[1], Stability: vals[2], Range: vals[3]}, nil
}

func printUsage() {
	fmt.Println("ToneGrade - Pronunciation Pitch Scoring CLI")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  --db <path>          Path to SQLite database (env: TONEGRADE_DB_PATH, default: tonegrade.sqlite3)")
	fmt.Println("  --vad-model <path>   Trained VAD model (env: TONEGRADE_VAD_MODEL, optional)")
	fmt.Println("\nUsage:")
	fmt.Println("  tonegrade [global-options] compare <reference.wav> <candidate.wav> [--ref-hints <file>] [--cand-hints <file>] [--weights a,t,s,r] [--ref-id <id>] [--save]")
	fmt.Println("  tonegrade [global-options] pitch <audio.wav> [--json]")
	fmt.Println("  tonegrade [global-options] segments <audio.wav>")
	fmt.Println("  tonegrade [global-options] history [--ref-id <id>] [--limit <n>]")
	fmt.Println("  tonegrade [global-options] delete <attempt_id>")
	fmt.Println("\nExamples:")
	fmt.Println("  # Score a learner recording against a native reference")
	fmt.Println("  tonegrade compare teacher.wav student.wav --ref-id lesson1 --save")
	fmt.Println()
	fmt.Println("  # Inspect the pitch curve of a recording")
	fmt.Println("  tonegrade pitch student.wav")
	fmt.Println()
	fmt.Println("  # Review stored attempts for one reference")
	fmt.Println("  tonegrade history --ref-id lesson1 --limit 10")
}
