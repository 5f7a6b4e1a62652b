package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/codebench-edu/console-service/internal/models"
)

func htmlSession(step WizardStep) *WizardSession {
	return &WizardSession{
		ID:     uuid.New().String(),
		UserID: "teacher-1",
		Step:   step,
		BasicInfo: WizardBasicInfo{
			Title:         "Two Sum",
			CategoryID:    uuid.New(),
			Difficulty:    models.DifficultyMedium,
			MaxScore:      100,
			StatementType: models.ContentHTML,
			SolutionType:  models.ContentHTML,
		},
	}
}

func TestWizardSession_NextStep(t *testing.T) {
	tests := []struct {
		name  string
		setup func() *WizardSession
		want  WizardStep
	}{
		{
			name: "basic info incomplete blocks advance",
			setup: func() *WizardSession {
				s := htmlSession(StepBasicInfo)
				s.BasicInfo.Title = ""
				return s
			},
			want: "",
		},
		{
			name: "basic info complete moves to statement",
			setup: func() *WizardSession {
				return htmlSession(StepBasicInfo)
			},
			want: StepStatement,
		},
		{
			name: "pdf statement skips the statement step",
			setup: func() *WizardSession {
				s := htmlSession(StepBasicInfo)
				s.BasicInfo.StatementType = models.ContentPDF
				s.StatementFile = &WizardFile{Filename: "statement.pdf", Size: 10, Data: []byte("%PDF-data")}
				return s
			},
			want: StepSubmitted,
		},
		{
			name: "pdf statement without a file blocks advance",
			setup: func() *WizardSession {
				s := htmlSession(StepBasicInfo)
				s.BasicInfo.StatementType = models.ContentPDF
				return s
			},
			want: "",
		},
		{
			name: "pdf statement with html solution goes to solution step",
			setup: func() *WizardSession {
				s := htmlSession(StepBasicInfo)
				s.BasicInfo.StatementType = models.ContentPDF
				s.BasicInfo.HasSolution = true
				s.StatementFile = &WizardFile{Filename: "statement.pdf", Size: 10, Data: []byte("%PDF-data")}
				return s
			},
			want: StepSolution,
		},
		{
			name: "statement step without content blocks advance",
			setup: func() *WizardSession {
				return htmlSession(StepStatement)
			},
			want: "",
		},
		{
			name: "statement done without solution goes straight to submit",
			setup: func() *WizardSession {
				s := htmlSession(StepStatement)
				s.StatementHTML = "<p>Given an array...</p>"
				return s
			},
			want: StepSubmitted,
		},
		{
			name: "statement done with html solution goes to solution step",
			setup: func() *WizardSession {
				s := htmlSession(StepStatement)
				s.BasicInfo.HasSolution = true
				s.StatementHTML = "<p>Given an array...</p>"
				return s
			},
			want: StepSolution,
		},
		{
			name: "pdf solution is attached not authored, no solution step",
			setup: func() *WizardSession {
				s := htmlSession(StepStatement)
				s.BasicInfo.HasSolution = true
				s.BasicInfo.SolutionType = models.ContentPDF
				s.StatementHTML = "<p>Given an array...</p>"
				s.SolutionFile = &WizardFile{Filename: "solution.pdf", Size: 10, Data: []byte("%PDF-data")}
				return s
			},
			want: StepSubmitted,
		},
		{
			name: "pdf solution missing blocks submit from statement step",
			setup: func() *WizardSession {
				s := htmlSession(StepStatement)
				s.BasicInfo.HasSolution = true
				s.BasicInfo.SolutionType = models.ContentPDF
				s.StatementHTML = "<p>Given an array...</p>"
				return s
			},
			want: "",
		},
		{
			name: "solution step without text blocks advance",
			setup: func() *WizardSession {
				s := htmlSession(StepSolution)
				s.BasicInfo.HasSolution = true
				s.StatementHTML = "<p>Given an array...</p>"
				return s
			},
			want: "",
		},
		{
			name: "solution step with text reaches submit",
			setup: func() *WizardSession {
				s := htmlSession(StepSolution)
				s.BasicInfo.HasSolution = true
				s.StatementHTML = "<p>Given an array...</p>"
				s.SolutionHTML = "<p>Use a hash map.</p>"
				return s
			},
			want: StepSubmitted,
		},
		{
			name: "submitted session has no next step",
			setup: func() *WizardSession {
				return htmlSession(StepSubmitted)
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.setup().NextStep(); got != tt.want {
				t.Errorf("NextStep() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWizardSession_PrevStep(t *testing.T) {
	tests := []struct {
		name  string
		setup func() *WizardSession
		want  WizardStep
	}{
		{
			name:  "first step has no previous",
			setup: func() *WizardSession { return htmlSession(StepBasicInfo) },
			want:  "",
		},
		{
			name:  "statement goes back to basic info",
			setup: func() *WizardSession { return htmlSession(StepStatement) },
			want:  StepBasicInfo,
		},
		{
			name: "solution goes back to statement for html statements",
			setup: func() *WizardSession {
				s := htmlSession(StepSolution)
				s.BasicInfo.HasSolution = true
				return s
			},
			want: StepStatement,
		},
		{
			name: "solution skips statement step for pdf statements",
			setup: func() *WizardSession {
				s := htmlSession(StepSolution)
				s.BasicInfo.HasSolution = true
				s.BasicInfo.StatementType = models.ContentPDF
				return s
			},
			want: StepBasicInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.setup().PrevStep(); got != tt.want {
				t.Errorf("PrevStep() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWizardSession_SolutionReady_NoSolution(t *testing.T) {
	s := htmlSession(StepStatement)
	s.BasicInfo.HasSolution = false
	// Staged solution content is irrelevant when has_solution is off.
	s.SolutionHTML = "<p>left over from a toggle</p>"

	if !s.SolutionReady() {
		t.Error("SolutionReady() should be true when has_solution is false")
	}
}

func TestWizardSession_CanSubmit(t *testing.T) {
	s := htmlSession(StepStatement)
	if s.CanSubmit() {
		t.Error("CanSubmit() should be false without statement content")
	}

	s.StatementHTML = "<p>Given an array...</p>"
	if !s.CanSubmit() {
		t.Error("CanSubmit() should be true once all gates pass")
	}

	s.BasicInfo.HasSolution = true
	if s.CanSubmit() {
		t.Error("CanSubmit() should be false when a promised solution is missing")
	}

	s.SolutionHTML = "<p>Use a hash map.</p>"
	if !s.CanSubmit() {
		t.Error("CanSubmit() should be true with the solution text present")
	}
}
