package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/auth"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/jonboulle/clockwork"
	"github.com/xuri/excelize/v2"
)

const (
	interviewSheet  = "Interviews"
	answerSheet     = "Answers"
	exportPageSize  = 100
	exportTimestamp = "2006-01-02 15:04:05"
)

type exportService struct {
	repo   repositories.Repository
	clock  clockwork.Clock
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, clock clockwork.Clock, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, clock: clock, logger: logger}
}

// ExportInterviews writes every interview matching filters, ignoring their paging, to an xlsx workbook.
func (s *exportService) ExportInterviews(ctx context.Context, caller *auth.Identity, filters repositories.InterviewFilters) ([]byte, error) {
	if err := authorize(auth.Staff(), caller, 0, "interview", "export"); err != nil {
		return nil, err
	}
	s.logger.Info("Exporting interviews", "user_id", caller.UserID)

	now := s.clock.Now()
	interviews, err := s.collect(ctx, filters, now)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", interviewSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if _, err := f.NewSheet(answerSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	writeRow(f, interviewSheet, 1, []interface{}{
		"Interview ID", "Candidate", "Interviewer", "Template", "Deadline",
		"Status", "Completed At", "Evaluation", "Notes",
	})
	writeRow(f, answerSheet, 1, []interface{}{
		"Interview ID", "Question", "Language", "Has Replay", "Text",
	})

	answerRow := 2
	for i, iv := range interviews {
		writeRow(f, interviewSheet, i+2, interviewRow(iv, now))

		answers, err := s.repo.Answer().ListByInterview(ctx, nil, iv.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list answers for interview %d: %w", iv.ID, err)
		}
		for _, a := range answers {
			title := ""
			if a.Question != nil {
				title = a.Question.Title
			}
			writeRow(f, answerSheet, answerRow, []interface{}{iv.ID, title, a.Language, a.HasReplay, a.Text})
			answerRow++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Interviews exported", "interviews", len(interviews), "answers", answerRow-2)
	return buf.Bytes(), nil
}

func (s *exportService) collect(ctx context.Context, filters repositories.InterviewFilters, now time.Time) ([]*models.Interview, error) {
	filters.At = now
	filters.Limit = exportPageSize
	filters.Offset = 0

	var all []*models.Interview
	for {
		page, total, err := s.repo.Interview().List(ctx, nil, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list interviews: %w", err)
		}
		all = append(all, page...)
		if len(page) < exportPageSize || int64(len(all)) >= total {
			return all, nil
		}
		filters.Offset += exportPageSize
	}
}

func interviewRow(iv *models.Interview, now time.Time) []interface{} {
	candidate, interviewer, template := iv.CandidateID, iv.InterviewerID, ""
	if iv.Candidate != nil {
		candidate = iv.Candidate.FullName
	}
	if iv.Interviewer != nil {
		interviewer = iv.Interviewer.FullName
	}
	if iv.Template != nil {
		template = iv.Template.Name
	}

	completedAt, evaluation := "", ""
	if iv.CompletedAt != nil {
		completedAt = iv.CompletedAt.Format(exportTimestamp)
	}
	if iv.EvaluationValue != nil {
		evaluation = string(*iv.EvaluationValue)
	}

	return []interface{}{
		iv.ID, candidate, interviewer, template, iv.Deadline.Format(exportTimestamp),
		string(iv.StatusAt(now)), completedAt, evaluation, iv.EvaluationNotes,
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for col, value := range values {
		cell := fmt.Sprintf("%c%d", 'A'+col, row)
		f.SetCellValue(sheet, cell, value)
	}
}
