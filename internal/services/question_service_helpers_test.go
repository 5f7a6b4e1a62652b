package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/codebench-edu/console-service/internal/models"
)

func TestEncodeDecodeExtraData(t *testing.T) {
	t.Run("round trip with tags", func(t *testing.T) {
		raw := encodeExtraData(map[string]interface{}{"source": "manual"}, []string{"arrays", "hashing"})

		decoded := decodeExtraData(raw)
		if decoded["source"] != "manual" {
			t.Errorf("Expected source preserved, got %v", decoded["source"])
		}
		tags, ok := decoded[extraDataTagsKey].([]interface{})
		if !ok || len(tags) != 2 {
			t.Fatalf("Expected 2 tags, got %v", decoded[extraDataTagsKey])
		}
	})

	t.Run("tags win over extra_data tags key", func(t *testing.T) {
		raw := encodeExtraData(map[string]interface{}{extraDataTagsKey: []string{"stale"}}, []string{"fresh"})

		decoded := decodeExtraData(raw)
		tags := decoded[extraDataTagsKey].([]interface{})
		if len(tags) != 1 || tags[0] != "fresh" {
			t.Errorf("Expected explicit tags to win, got %v", tags)
		}
	})

	t.Run("empty input encodes to nil", func(t *testing.T) {
		if raw := encodeExtraData(nil, nil); raw != nil {
			t.Errorf("Expected nil column value, got %s", raw)
		}
	})

	t.Run("invalid json decodes to nil", func(t *testing.T) {
		if decoded := decodeExtraData([]byte("not json")); decoded != nil {
			t.Errorf("Expected nil, got %v", decoded)
		}
	})
}

func TestBuildQuestionFromCreate(t *testing.T) {
	categoryID := uuid.New()
	solution := "<p>Use a hash map.</p>"

	t.Run("defaults applied", func(t *testing.T) {
		question := buildQuestionFromCreate(&CreateQuestionRequest{
			Title:      "Two Sum",
			CategoryID: categoryID,
		}, "teacher-1")

		if question.StatementType != models.ContentHTML {
			t.Errorf("Expected default statement type html, got %q", question.StatementType)
		}
		if question.Difficulty != models.DifficultyMedium {
			t.Errorf("Expected default difficulty medium, got %q", question.Difficulty)
		}
		if question.MaxScore != 100 {
			t.Errorf("Expected default max score 100, got %d", question.MaxScore)
		}
		if !question.IsActive {
			t.Error("Expected new questions to be active")
		}
		if question.CreatedBy != "teacher-1" {
			t.Errorf("Expected creator teacher-1, got %q", question.CreatedBy)
		}
	})

	t.Run("no solution wipes solution fields", func(t *testing.T) {
		question := buildQuestionFromCreate(&CreateQuestionRequest{
			Title:        "Two Sum",
			CategoryID:   categoryID,
			HasSolution:  false,
			SolutionType: models.ContentPDF,
			SolutionText: &solution,
		}, "teacher-1")

		if question.SolutionType != models.ContentHTML || question.SolutionText != nil {
			t.Errorf("Expected solution fields reset, got type=%q text=%v", question.SolutionType, question.SolutionText)
		}
	})

	t.Run("tags stored in extra data", func(t *testing.T) {
		question := buildQuestionFromCreate(&CreateQuestionRequest{
			Title:      "Two Sum",
			CategoryID: categoryID,
			Tags:       []string{"arrays"},
		}, "teacher-1")

		tags := question.Tags()
		if len(tags) != 1 || tags[0] != "arrays" {
			t.Errorf("Expected tags [arrays], got %v", tags)
		}
	})
}

func TestApplyQuestionUpdate(t *testing.T) {
	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		question := &models.Question{
			Title:      "Old Title",
			Difficulty: models.DifficultyHard,
			MaxScore:   50,
		}

		newTitle := "New Title"
		applyQuestionUpdate(question, &UpdateQuestionRequest{Title: &newTitle})

		if question.Title != "New Title" {
			t.Errorf("Expected updated title, got %q", question.Title)
		}
		if question.Difficulty != models.DifficultyHard || question.MaxScore != 50 {
			t.Error("Untouched fields must not change")
		}
	})

	t.Run("disabling solution wipes solution fields", func(t *testing.T) {
		solution := "<p>answer</p>"
		question := &models.Question{
			HasSolution:  true,
			SolutionType: models.ContentPDF,
			SolutionText: &solution,
		}

		hasSolution := false
		applyQuestionUpdate(question, &UpdateQuestionRequest{HasSolution: &hasSolution})

		if question.HasSolution {
			t.Error("Expected solution disabled")
		}
		if question.SolutionType != models.ContentHTML || question.SolutionText != nil {
			t.Errorf("Expected solution fields reset, got type=%q text=%v", question.SolutionType, question.SolutionText)
		}
	})

	t.Run("import marker survives tag updates", func(t *testing.T) {
		question := &models.Question{
			ExtraData: encodeExtraData(map[string]interface{}{"question_id": "HumanEval/7"}, nil),
		}

		applyQuestionUpdate(question, &UpdateQuestionRequest{Tags: []string{"imported", "strings"}})

		if got := question.ImportedTaskID(); got != "HumanEval/7" {
			t.Errorf("Expected import marker preserved, got %q", got)
		}
		if tags := question.Tags(); len(tags) != 2 {
			t.Errorf("Expected 2 tags, got %v", tags)
		}
	})
}

func TestNewQuestionResponse(t *testing.T) {
	t.Run("tags never nil", func(t *testing.T) {
		resp := newQuestionResponse(&models.Question{})
		if resp.Tags == nil {
			t.Fatal("Expected empty slice, got nil")
		}
		if len(resp.Tags) != 0 {
			t.Errorf("Expected no tags, got %v", resp.Tags)
		}
	})

	t.Run("imported flag and category name", func(t *testing.T) {
		question := &models.Question{
			ExtraData: encodeExtraData(map[string]interface{}{"question_id": "HumanEval/3"}, nil),
			Category:  &models.QuestionCategory{Name: "Imported"},
		}

		resp := newQuestionResponse(question)
		if !resp.IsImported {
			t.Error("Expected imported flag set")
		}
		if resp.CategoryName != "Imported" {
			t.Errorf("Expected category name Imported, got %q", resp.CategoryName)
		}
	})
}
