package validation

import (
	"bufio"
	"encoding/csv"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"

	"github.com/training-management-api/internal/models"
)

func testdataPath(t *testing.T, filename string) string {
	t.Helper()
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(currentFile)))
	path := filepath.Join(projectRoot, "testdata", filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skipf("testdata file not found: %s", path)
	}
	return path
}

// Each line of quizzes.ndjson is a quiz body. Valid quizzes must pass both
// binding and ValidateQuestions; the rest fail one of them.
func TestValidateQuiz_NDJSONData(t *testing.T) {
	RegisterJSONTagNames()
	filePath := testdataPath(t, "quizzes.ndjson")

	file, err := os.Open(filePath)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var valid []string
	failures := make(map[int]string)
	lineNum := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lineNum++

		var req models.CreateQuizRequest
		if err := binding.JSON.BindBody([]byte(line), &req); err != nil {
			failures[lineNum] = Message(err)
			continue
		}
		if err := ValidateQuestions(req.Questions); err != nil {
			failures[lineNum] = err.Error()
			continue
		}
		valid = append(valid, req.Title)
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}

	if len(valid) != 2 || valid[0] != "Weather basics" || valid[1] != "Airspace" {
		t.Errorf("Expected the two well-formed quizzes to pass, got %v", valid)
	}

	expected := map[int]string{
		2: "must contain at least 2 items",
		3: "correctOption must reference one of the 2 options",
		4: "duplicate question id",
		5: "title is required",
		7: "passingScore must be at most 100",
	}
	for line, want := range expected {
		got, ok := failures[line]
		if !ok {
			t.Errorf("Line %d: expected a validation failure", line)
			continue
		}
		if !strings.Contains(got, want) {
			t.Errorf("Line %d: expected %q, got %q", line, want, got)
		}
	}

	t.Logf("Validated %d quizzes: %d failed", lineNum, len(failures))
}

func TestValidatePeriod_CSVData(t *testing.T) {
	filePath := testdataPath(t, "inactivation_periods.csv")

	file, err := os.Open(filePath)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		t.Fatal(err)
	}
	headerMap := make(map[string]int)
	for i, h := range header {
		headerMap[strings.ToLower(strings.TrimSpace(h))] = i
	}

	records, err := reader.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) == 0 {
		t.Fatal("Expected rows in inactivation_periods.csv")
	}

	for i, record := range records {
		userID := getCSVField(record, headerMap, "user_id")
		t.Run(userID, func(t *testing.T) {
			period, err := ValidatePeriod(getCSVField(record, headerMap, "from"), getCSVField(record, headerMap, "to"))

			expected := getCSVField(record, headerMap, "expected_days")
			if expected == "" {
				if err == nil {
					t.Errorf("Row %d: expected the period to be rejected", i+2)
				}
				return
			}
			if err != nil {
				t.Fatalf("Row %d: unexpected error %v", i+2, err)
			}
			days, _ := strconv.Atoi(expected)
			if period.Days != days {
				t.Errorf("Row %d: expected %d days, got %d", i+2, days, period.Days)
			}
		})
	}
}

func getCSVField(record []string, headerMap map[string]int, field string) string {
	if idx, ok := headerMap[field]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
