package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportService_ExportInterviews(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.createInterview(t)
	env.saveAnswer(t, created.ID, "SELECT 1")
	env.createInterview(t)

	data, err := env.svc.Export.ExportInterviews(ctx, env.admin, repositories.InterviewFilters{Limit: 1})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(interviewSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus every interview regardless of the page size")
	assert.Equal(t, "Interview ID", rows[0][0])
	assert.Contains(t, []string{rows[1][1], rows[2][1]}, "Cara Candidate")
	assert.Contains(t, []string{rows[1][5], rows[2][5]}, "IN_PROGRESS")
	assert.Contains(t, []string{rows[1][5], rows[2][5]}, "PENDING")

	answers, err := f.GetRows(answerSheet)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	require.Len(t, answers[1], 5)
	assert.Equal(t, "Reverse a list", answers[1][1])
	assert.Equal(t, "plaintext", answers[1][2])
	assert.Equal(t, "SELECT 1", answers[1][4])
}

func TestExportService_StaffOnly(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Export.ExportInterviews(context.Background(), env.candidate, repositories.InterviewFilters{})
	assert.True(t, IsForbidden(err))
}
