package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/codebench-edu/console-service/internal/models"
)

const sampleHumanEvalPrompt = `def has_close_elements(numbers: List[float], threshold: float) -> bool:
    """ Check if in given list of numbers, are any two numbers closer to
    each other than given threshold.
    >>> has_close_elements([1.0, 2.0, 3.0], 0.5)
    False
    >>> has_close_elements([1.0, 2.8, 3.0, 4.0, 5.0, 2.0], 0.3)
    True
    """
`

func TestDeriveSampleTestCases(t *testing.T) {
	questionID := uuid.New()

	record := &jsonlRecord{TaskID: "HumanEval/0", Prompt: sampleHumanEvalPrompt}
	testCases := deriveSampleTestCases(record, questionID)

	if len(testCases) != 2 {
		t.Fatalf("Expected 2 test cases, got %d", len(testCases))
	}

	first := testCases[0]
	if first.QuestionID != questionID {
		t.Errorf("Expected question ID %s, got %s", questionID, first.QuestionID)
	}
	if first.InputData != "has_close_elements([1.0, 2.0, 3.0], 0.5)" {
		t.Errorf("Unexpected input: %q", first.InputData)
	}
	if first.ExpectedOutput != "False" {
		t.Errorf("Unexpected output: %q", first.ExpectedOutput)
	}
	if !first.IsSample {
		t.Error("Derived test cases must be samples")
	}

	if testCases[1].ExpectedOutput != "True" {
		t.Errorf("Unexpected second output: %q", testCases[1].ExpectedOutput)
	}
}

func TestDeriveSampleTestCases_SkipsIncompleteExamples(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   int
	}{
		{
			name:   "no doctests",
			prompt: "def f(x):\n    \"\"\" No examples here. \"\"\"",
			want:   0,
		},
		{
			name: "call followed by another call",
			prompt: `"""
>>> f(1)
>>> f(2)
3
"""`,
			want: 1,
		},
		{
			name: "call at end of docstring",
			prompt: `"""
>>> f(1)
"""`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := &jsonlRecord{TaskID: "t", Prompt: tt.prompt}
			got := deriveSampleTestCases(record, uuid.New())
			if len(got) != tt.want {
				t.Errorf("Expected %d test cases, got %d", tt.want, len(got))
			}
		})
	}
}

func TestRenderPromptHTML_EscapesMarkup(t *testing.T) {
	html := renderPromptHTML(`def f(x: List[int]) -> bool:
    return x < [1] & True`)

	if !strings.HasPrefix(html, "<pre><code>") || !strings.HasSuffix(html, "</code></pre>") {
		t.Errorf("Expected preformatted block, got %q", html)
	}
	if strings.Contains(html, "x < [1]") {
		t.Error("Raw '<' survived escaping")
	}
	if !strings.Contains(html, "x &lt; [1] &amp; True") {
		t.Errorf("Expected escaped body, got %q", html)
	}
}

func TestBuildImportedQuestion(t *testing.T) {
	service := &importService{}
	category := &models.QuestionCategory{ID: uuid.New(), Name: "Imported"}

	record := &jsonlRecord{
		TaskID:            "HumanEval/0",
		Prompt:            sampleHumanEvalPrompt,
		EntryPoint:        "has_close_elements",
		CanonicalSolution: "    for i in range(len(numbers)):\n        ...\n",
	}

	question := service.buildImportedQuestion(record, category, "admin-1")

	if question.Title != "HumanEval/0" {
		t.Errorf("Expected title from task id, got %q", question.Title)
	}
	if question.CategoryID != category.ID {
		t.Errorf("Expected category %s, got %s", category.ID, question.CategoryID)
	}
	if question.CreatedBy != "admin-1" {
		t.Errorf("Expected creator admin-1, got %q", question.CreatedBy)
	}
	if !question.HasSolution || question.SolutionText == nil {
		t.Fatal("Expected canonical solution to be carried over")
	}
	if !strings.Contains(*question.SolutionText, "def has_close_elements(...)") {
		t.Errorf("Expected entry point signature in solution, got %q", *question.SolutionText)
	}

	if got := question.ImportedTaskID(); got != "HumanEval/0" {
		t.Errorf("Expected imported task id marker, got %q", got)
	}
	if !question.IsImported() {
		t.Error("Imported question not flagged as imported")
	}
}

func TestBuildImportedQuestion_NoSolution(t *testing.T) {
	service := &importService{}
	category := &models.QuestionCategory{ID: uuid.New()}

	record := &jsonlRecord{TaskID: "HumanEval/1", Prompt: "def f():", CanonicalSolution: "\n"}
	question := service.buildImportedQuestion(record, category, "admin-1")

	if question.HasSolution || question.SolutionText != nil {
		t.Error("Whitespace-only canonical solution must not count as a solution")
	}
}
