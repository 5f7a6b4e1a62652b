package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/codebench-edu/console-service/internal/models"
)

// ExportActivityReport renders the full activity report as an xlsx
// workbook with an overview sheet, a class sheet and a per-student
// question breakdown sheet.
func (s *analyticsService) ExportActivityReport(ctx context.Context, activityID uuid.UUID) (*FileDownload, error) {
	report, err := s.BuildActivityReport(ctx, activityID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeOverviewSheet(f, report.Overview); err != nil {
		return nil, fmt.Errorf("failed to write overview sheet: %w", err)
	}
	if err := writeClassSheet(f, report.Class); err != nil {
		return nil, fmt.Errorf("failed to write class sheet: %w", err)
	}
	if err := writeStudentSheet(f, report.Students); err != nil {
		return nil, fmt.Errorf("failed to write students sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	filename := fmt.Sprintf("%s_report.xlsx", sanitizeFilename(report.Overview.ActivityTitle))
	return &FileDownload{
		Filename:    filename,
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}

func writeOverviewSheet(f *excelize.File, overview *ActivityOverview) error {
	const sheet = "Overview"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Activity", overview.ActivityTitle},
		{"Activity ID", overview.ActivityID.String()},
		{"Total submissions", overview.TotalSubmissions},
		{"Average completion rate", overview.AverageCompletionRate},
		{"Average time spent (s)", overview.AverageTimeSpent},
		{},
		{"Status", "Count"},
	}

	statuses := make([]string, 0, len(overview.StatusBreakdown))
	for status := range overview.StatusBreakdown {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		rows = append(rows, []interface{}{status, overview.StatusBreakdown[models.CompletionStatus(status)]})
	}

	rows = append(rows, []interface{}{},
		[]interface{}{"Question", "Title", "Attempted", "Completed", "Avg time (s)", "Languages"})
	for _, q := range overview.QuestionStats {
		rows = append(rows, []interface{}{
			q.QuestionNumber, q.Title, q.Attempted, q.Completed, q.AverageTime, formatLanguageUsage(q.LanguageUsage),
		})
	}

	return writeRows(f, sheet, rows)
}

func writeClassSheet(f *excelize.File, class *ClassPerformance) error {
	const sheet = "Class"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Student ID", "Name", "Completion rate", "Time spent (s)", "Status", "Submitted at"},
	}
	for _, st := range class.Students {
		rows = append(rows, []interface{}{
			st.StudentID, st.StudentName, st.CompletionRate, st.TotalTimeSpent,
			string(st.Status), st.SubmittedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return writeRows(f, sheet, rows)
}

func writeStudentSheet(f *excelize.File, students []*StudentSubmissionDetail) error {
	const sheet = "Students"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Student ID", "Name", "Question", "Title", "Time spent (s)", "Completed", "Language"},
	}
	for _, st := range students {
		if st == nil {
			continue
		}
		for _, q := range st.Questions {
			rows = append(rows, []interface{}{
				st.StudentID, st.StudentName, q.QuestionNumber, q.Title, q.TimeSpent, q.Completed, q.Language,
			})
		}
	}

	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func formatLanguageUsage(usage map[string]int) string {
	if len(usage) == 0 {
		return ""
	}
	langs := make([]string, 0, len(usage))
	for lang := range usage {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	parts := make([]string, len(langs))
	for i, lang := range langs {
		parts[i] = fmt.Sprintf("%s: %d", lang, usage[lang])
	}
	return strings.Join(parts, ", ")
}

// sanitizeFilename keeps download names shell and filesystem safe.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "activity"
	}
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_", " ", "_")
	return replacer.Replace(name)
}
