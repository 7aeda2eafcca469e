package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/glex/pkg/config"
	"github.com/xplshn/glex/pkg/lexer"
	"github.com/xplshn/glex/pkg/lexfile"
)

// GoldenToken is one token of a golden file.
type GoldenToken struct {
	Name   string `json:"name"`
	Lexeme string `json:"lexeme"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// InputResult is what tokenizing one input produced.
type InputResult struct {
	Tokens []GoldenToken `json:"tokens"`
	Errors int           `json:"errors"`
}

// CaseResult is the outcome of one definition file and all of its inputs.
type CaseResult struct {
	Diagnostics []string                `json:"diagnostics,omitempty"`
	States      int                     `json:"states"`
	Inputs      map[string]*InputResult `json:"inputs"`
	Duration    time.Duration           `json:"duration"`
}

type FileTestResult struct {
	File    string      `json:"file"`
	Hash    string      `json:"hash"`
	Status  string      `json:"status"` // PASS, FAIL, SKIP, ERROR
	Message string      `json:"message,omitempty"`
	Diff    string      `json:"diff,omitempty"`
	Result  *CaseResult `json:"result,omitempty"`
}

type TestSuiteResults map[string]*FileTestResult

var (
	generateGolden = flag.String("generate-golden", "", "Generate golden .json files for the inputs of a given .lex file.")
	testFiles      = flag.String("test-files", "testdata/*.lex", "Glob pattern(s) for definition files to test (space-separated).")
	skipFiles      = flag.String("skip-files", "", "Files to skip (space-separated).")
	outputJSON     = flag.String("output", ".test_results.json", "Output file for the JSON test report.")
	jobs           = flag.Int("j", 4, "Number of parallel test jobs.")
	verbose        = flag.Bool("v", false, "Enable verbose logging.")
	useCache       = flag.Bool("cached", false, "Skip cases whose files are unchanged since their last passing run.")
	jsonDir        = flag.String("dir", "", "Directory to store/read golden JSON files (defaults to the input file dir).")
	noMinimize     = flag.Bool("no-minimize", false, "Build unminimized tables.")
)

const (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cCyan   = "\x1b[96m"
	cBold   = "\x1b[1m"
	cNone   = "\x1b[0m"
)

func main() {
	flag.Parse()
	log.SetFlags(0)
	setupInterruptHandler()

	if *generateGolden != "" {
		handleGenerateGolden(*generateGolden)
		return
	}
	handleRunTestSuite()
}

func setupInterruptHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		fmt.Printf("\n%s[INTERRUPT]%s Test run cancelled.\n", cYellow, cNone)
		os.Exit(1)
	}()
}

func newConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatMinimize, !*noMinimize)
	return cfg
}

// inputsFor lists the inputs of a case: calc.lex is tested against calc.in
// and every calc.*.in next to it.
func inputsFor(lexFile string) []string {
	base := strings.TrimSuffix(lexFile, filepath.Ext(lexFile))
	var inputs []string
	if _, err := os.Stat(base + ".in"); err == nil {
		inputs = append(inputs, base+".in")
	}
	more, _ := filepath.Glob(base + ".*.in")
	sort.Strings(more)
	return append(inputs, more...)
}

func getJSONPath(inputFile string) string {
	jsonFileName := "." + filepath.Base(inputFile) + ".json"
	if *jsonDir != "" {
		return filepath.Join(*jsonDir, jsonFileName)
	}
	return filepath.Join(filepath.Dir(inputFile), jsonFileName)
}

// hashCase digests the definition file and its inputs together.
func hashCase(lexFile string, inputs []string) (string, error) {
	h := xxhash.New()
	for _, path := range append([]string{lexFile}, inputs...) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		h.WriteString(filepath.Base(path))
		h.Write([]byte{0})
		h.Write(data)
	}
	return fmt.Sprintf("%x", h.Sum64()), nil
}

// runCase builds the lexer of lexFile and tokenizes every input with it.
func runCase(lexFile string, inputs []string) (*CaseResult, error) {
	start := time.Now()
	defs, err := lexfile.ParseFile(lexFile)
	if err != nil {
		return nil, err
	}
	lx, ds := lexer.Build(defs, newConfig())
	res := &CaseResult{Inputs: make(map[string]*InputResult)}
	for _, d := range ds {
		res.Diagnostics = append(res.Diagnostics, d.String())
	}
	if lx == nil {
		res.Duration = time.Since(start)
		return res, nil
	}
	res.States = lx.Table().NumStates()

	for _, in := range inputs {
		content, err := os.ReadFile(in)
		if err != nil {
			return nil, err
		}
		stream := lx.Tokenize(content, in)
		ir := &InputResult{Tokens: make([]GoldenToken, 0, len(stream.Tokens)), Errors: stream.Errors}
		for _, tok := range stream.Tokens {
			ir.Tokens = append(ir.Tokens, GoldenToken{
				Name:   lx.TokenName(tok.ID),
				Lexeme: tok.Lexeme,
				Line:   tok.Line,
				Column: tok.Column,
			})
		}
		res.Inputs[filepath.Base(in)] = ir
	}
	res.Duration = time.Since(start)
	return res, nil
}

func handleGenerateGolden(lexFile string) {
	inputs := inputsFor(lexFile)
	if len(inputs) == 0 {
		log.Fatalf("%s[ERROR]%s No inputs found for %s\n", cRed, cNone, lexFile)
	}
	res, err := runCase(lexFile, inputs)
	if err != nil {
		log.Fatalf("%s[ERROR]%s Could not run %s: %v\n", cRed, cNone, lexFile, err)
	}
	if len(res.Inputs) == 0 {
		log.Fatalf("%s[ERROR]%s %s does not build:\n  %s\n", cRed, cNone, lexFile, strings.Join(res.Diagnostics, "\n  "))
	}
	if *jsonDir != "" {
		if err := os.MkdirAll(*jsonDir, 0755); err != nil {
			log.Fatalf("%s[ERROR]%s Failed to create directory %s: %v\n", cRed, cNone, *jsonDir, err)
		}
	}

	for _, in := range inputs {
		jsonData, err := json.MarshalIndent(res.Inputs[filepath.Base(in)], "", "  ")
		if err != nil {
			log.Fatalf("%s[ERROR]%s Failed to marshal golden data to JSON: %v\n", cRed, cNone, err)
		}
		goldenFileName := getJSONPath(in)
		if err := os.WriteFile(goldenFileName, jsonData, 0644); err != nil {
			log.Fatalf("%s[ERROR]%s Failed to write golden file %s: %v\n", cRed, cNone, goldenFileName, err)
		}
		log.Printf("%s[SUCCESS]%s Golden file created at %s\n", cGreen, cNone, goldenFileName)
	}
}

func handleRunTestSuite() {
	files, err := expandGlobPatterns(*testFiles)
	if err != nil {
		log.Fatalf("%s[ERROR]%s Invalid glob pattern(s): %v\n", cRed, cNone, err)
	}
	if len(files) == 0 {
		log.Println("No test files found matching the pattern(s).")
		return
	}

	previousResults := make(TestSuiteResults)
	outputFile := reportPath()
	if prevData, err := os.ReadFile(outputFile); err == nil {
		if json.Unmarshal(prevData, &previousResults) != nil {
			log.Printf("%s[WARN]%s Could not parse previous results file %s. Cache will not be used.\n", cYellow, cNone, outputFile)
			previousResults = make(TestSuiteResults)
		}
	}

	skipList := make(map[string]bool)
	for _, f := range strings.Fields(*skipFiles) {
		skipList[f] = true
	}

	tasks := make(chan string, len(files))
	resultsChan := make(chan *FileTestResult, len(files))
	var wg sync.WaitGroup

	for i := 0; i < max(*jobs, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range tasks {
				resultsChan <- testFile(file, previousResults)
			}
		}()
	}

	for _, file := range files {
		if skipList[file] || skipList[filepath.Base(file)] {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: "Explicitly skipped"}
			continue
		}
		tasks <- file
	}
	close(tasks)

	wg.Wait()
	close(resultsChan)

	var allResults []*FileTestResult
	for result := range resultsChan {
		allResults = append(allResults, result)
	}
	sort.Slice(allResults, func(i, j int) bool {
		return allResults[i].File < allResults[j].File
	})

	printSummary(allResults)
	resultsMap := writeJSONReport(allResults)
	if hasFailures(resultsMap) {
		os.Exit(1)
	}
}

func testFile(file string, previousResults TestSuiteResults) *FileTestResult {
	inputs := inputsFor(file)
	if len(inputs) == 0 {
		return &FileTestResult{File: file, Status: "SKIP", Message: "No .in files next to the definition file"}
	}
	fileHash, err := hashCase(file, inputs)
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to hash case: %v", err)}
	}
	if prev, ok := previousResults[file]; *useCache && ok && prev.Hash == fileHash && prev.Status == "PASS" {
		return &FileTestResult{File: file, Hash: fileHash, Status: "PASS", Message: "Unchanged since last passing run (cached)", Result: prev.Result}
	}

	res, err := runCase(file, inputs)
	if err != nil {
		return &FileTestResult{File: file, Hash: fileHash, Status: "ERROR", Message: err.Error()}
	}
	if len(res.Inputs) == 0 {
		return &FileTestResult{
			File:    file,
			Hash:    fileHash,
			Status:  "FAIL",
			Message: "Definition file does not build",
			Diff:    strings.Join(res.Diagnostics, "\n"),
			Result:  res,
		}
	}
	return compareWithGolden(file, fileHash, inputs, res)
}

func compareWithGolden(file, fileHash string, inputs []string, res *CaseResult) *FileTestResult {
	var diffs strings.Builder
	var failed bool
	var checked int

	for _, in := range inputs {
		goldenFile := getJSONPath(in)
		goldenData, err := os.ReadFile(goldenFile)
		if os.IsNotExist(err) {
			if *verbose {
				log.Printf("[%s] No golden file for %s, skipping input", file, in)
			}
			continue
		}
		if err != nil {
			return &FileTestResult{File: file, Hash: fileHash, Status: "ERROR", Message: fmt.Sprintf("Could not read golden file %s: %v", goldenFile, err)}
		}
		var golden InputResult
		if err := json.Unmarshal(goldenData, &golden); err != nil {
			return &FileTestResult{File: file, Hash: fileHash, Status: "ERROR", Message: fmt.Sprintf("Could not parse golden file %s: %v", goldenFile, err)}
		}
		checked++

		if diff := cmp.Diff(&golden, res.Inputs[filepath.Base(in)]); diff != "" {
			failed = true
			diffs.WriteString(fmt.Sprintf("Input '%s' token mismatch (-golden +got):\n%s", filepath.Base(in), diff))
		}
	}

	switch {
	case failed:
		return &FileTestResult{File: file, Hash: fileHash, Status: "FAIL", Message: "Token stream mismatch", Diff: diffs.String(), Result: res}
	case checked == 0:
		return &FileTestResult{File: file, Hash: fileHash, Status: "SKIP", Message: "Cannot test without corresponding .json golden files", Result: res}
	}
	return &FileTestResult{
		File:    file,
		Hash:    fileHash,
		Status:  "PASS",
		Message: fmt.Sprintf("%d input(s) match, %d DFA states", checked, res.States),
		Result:  res,
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%6dµs", d.Microseconds())
	}
	return fmt.Sprintf("%6dms", d.Milliseconds())
}

func printSummary(results []*FileTestResult) {
	var passed, failed, skipped, errored int
	var total time.Duration

	for _, result := range results {
		fmt.Println("----------------------------------------------------------------------")
		fmt.Printf("Testing %s%s%s...\n", cCyan, result.File, cNone)

		switch result.Status {
		case "PASS":
			passed++
			fmt.Printf("  [%sPASS%s] %s\n", cGreen, cNone, result.Message)
		case "FAIL":
			failed++
			fmt.Printf("  [%sFAIL%s] %s\n", cRed, cNone, result.Message)
			fmt.Println(formatDiff(result.Diff))
		case "SKIP":
			skipped++
			fmt.Printf("  [%sSKIP%s] %s\n", cYellow, cNone, result.Message)
		case "ERROR":
			errored++
			fmt.Printf("  [%sERROR%s] %s\n", cRed, cNone, result.Message)
		}

		if result.Result == nil {
			continue
		}
		total += result.Result.Duration
		if *verbose {
			names := make([]string, 0, len(result.Result.Inputs))
			for name := range result.Result.Inputs {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				in := result.Result.Inputs[name]
				fmt.Printf("    %-24s %5d tokens, %d error(s)\n", name, len(in.Tokens), in.Errors)
			}
			for _, d := range result.Result.Diagnostics {
				fmt.Printf("    %s\n", d)
			}
			fmt.Printf("    [build+tokenize: %s]\n", formatDuration(result.Result.Duration))
		}
	}

	fmt.Println("----------------------------------------------------------------------")
	fmt.Printf("%sTest Summary:%s %s%d Passed%s, %s%d Failed%s, %s%d Skipped%s, %s%d Errored%s, %d Total\n",
		cBold, cNone, cGreen, passed, cNone, cRed, failed, cNone, cYellow, skipped, cNone, cRed, errored, cNone, len(results))
	if *verbose && len(results) > 0 {
		fmt.Printf("Total time: %s\n", strings.TrimSpace(formatDuration(total)))
	}
}

func formatDiff(diff string) string {
	if diff == "" {
		return ""
	}
	var builder strings.Builder
	builder.WriteString("    --- Diff ---\n")
	for _, line := range strings.Split(diff, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if strings.HasPrefix(trimmedLine, "-") {
			builder.WriteString(cRed)
		} else if strings.HasPrefix(trimmedLine, "+") {
			builder.WriteString(cGreen)
		}
		builder.WriteString("    " + line)
		builder.WriteString(cNone)
		builder.WriteString("\n")
	}
	return builder.String()
}

func reportPath() string {
	if *jsonDir != "" {
		return filepath.Join(*jsonDir, *outputJSON)
	}
	return *outputJSON
}

func writeJSONReport(results []*FileTestResult) TestSuiteResults {
	resultsMap := make(TestSuiteResults, len(results))
	for _, r := range results {
		resultsMap[r.File] = r
	}

	jsonData, err := json.MarshalIndent(resultsMap, "", "  ")
	if err != nil {
		log.Printf("%s[ERROR]%s Failed to marshal results to JSON: %v\n", cRed, cNone, err)
		return resultsMap
	}
	if *jsonDir != "" {
		if err := os.MkdirAll(*jsonDir, 0755); err != nil {
			log.Printf("%s[ERROR]%s Failed to create dir %s: %v\n", cRed, cNone, *jsonDir, err)
		}
	}
	outputFile := reportPath()
	if err := os.WriteFile(outputFile, jsonData, 0644); err != nil {
		log.Printf("%s[ERROR]%s Failed to write JSON report to %s: %v\n", cRed, cNone, outputFile, err)
	} else {
		fmt.Printf("Full test report saved to %s\n", outputFile)
	}
	return resultsMap
}

func hasFailures(results TestSuiteResults) bool {
	for _, result := range results {
		if result.Status == "FAIL" || result.Status == "ERROR" {
			return true
		}
	}
	return false
}

func expandGlobPatterns(patterns string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]bool)
	for _, pattern := range strings.Fields(patterns) {
		files, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", pattern, err)
		}
		for _, file := range files {
			if seen[file] {
				continue
			}
			if info, err := os.Stat(file); err == nil && info.Mode().IsRegular() {
				allFiles = append(allFiles, file)
				seen[file] = true
			}
		}
	}
	return allFiles, nil
}
