package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionService_CreateWithTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	q, err := env.svc.Question.Create(ctx, env.interviewer, &CreateQuestionRequest{
		Title: "Merge intervals",
		Tags:  []string{"Go", "arrays"},
	})
	require.NoError(t, err)
	assert.Equal(t, env.fixture.Interviewer.ID, q.CreatedBy)

	got, err := env.svc.Question.Get(ctx, env.admin, q.ID)
	require.NoError(t, err)
	names := []string{}
	for _, tag := range got.Tags {
		names = append(names, tag.Name)
	}
	assert.ElementsMatch(t, []string{"go", "arrays"}, names)

	list, err := env.svc.Question.List(ctx, env.admin, repositories.QuestionFilters{Tag: "go"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)

	tags, err := env.svc.Question.ListTags(ctx, env.admin)
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	_, err = env.svc.Question.Create(ctx, env.candidate, &CreateQuestionRequest{Title: "x"})
	assert.True(t, IsForbidden(err))
	_, err = env.svc.Question.Create(ctx, env.admin, &CreateQuestionRequest{})
	assert.Equal(t, []string{"title"}, fieldNames(t, err))
	_, err = env.svc.Question.Get(ctx, env.admin, 999)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestQuestionService_CreateTag(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tag, err := env.svc.Question.CreateTag(ctx, env.admin, &CreateTagRequest{Name: " SQL "})
	require.NoError(t, err)
	assert.Equal(t, "sql", tag.Name)

	again, err := env.svc.Question.CreateTag(ctx, env.admin, &CreateTagRequest{Name: "sql"})
	require.NoError(t, err)
	assert.Equal(t, tag.ID, again.ID)

	_, err = env.svc.Question.CreateTag(ctx, env.admin, &CreateTagRequest{Name: "   "})
	assert.True(t, IsValidation(err))
}

func TestTemplateService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tmpl, err := env.svc.Template.Create(ctx, env.interviewer, &CreateTemplateRequest{
		Name:        "Frontend",
		QuestionIDs: []uint{env.fixture.Question.ID},
	})
	require.NoError(t, err)
	require.Len(t, tmpl.Questions, 1)

	_, err = env.svc.Template.Create(ctx, env.interviewer, &CreateTemplateRequest{Name: "Broken", QuestionIDs: []uint{999}})
	assert.Equal(t, []string{"question_ids[0]"}, fieldNames(t, err))
	list, err := env.svc.Template.List(ctx, env.admin, repositories.TemplateFilters{Search: "Broken"})
	require.NoError(t, err)
	assert.Zero(t, list.Total, "a rejected template is rolled back")

	other := &models.Question{Title: "Second", CreatedBy: env.fixture.Admin.ID}
	require.NoError(t, env.repo.Question().Create(ctx, nil, other))
	tmpl, err = env.svc.Template.AddQuestion(ctx, env.admin, tmpl.ID, other.ID)
	require.NoError(t, err)
	assert.Len(t, tmpl.Questions, 2)
	tmpl, err = env.svc.Template.AddQuestion(ctx, env.admin, tmpl.ID, other.ID)
	require.NoError(t, err)
	assert.Len(t, tmpl.Questions, 2)

	_, err = env.svc.Template.AddQuestion(ctx, env.admin, 999, other.ID)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	_, err = env.svc.Template.AddQuestion(ctx, env.admin, tmpl.ID, 999)
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	require.NoError(t, env.svc.Template.Delete(ctx, env.admin, tmpl.ID))
	_, err = env.svc.Template.Get(ctx, env.admin, tmpl.ID)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestTemplateService_DeleteInUse(t *testing.T) {
	env := newTestEnv(t)
	env.createInterview(t)

	err := env.svc.Template.Delete(context.Background(), env.admin, env.fixture.Template.ID)
	assert.ErrorIs(t, err, ErrTemplateInUse)
	assert.True(t, IsConflict(err))

	err = env.svc.Template.Delete(context.Background(), env.candidate, env.fixture.Template.ID)
	assert.True(t, IsForbidden(err))
}

func TestUserService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.svc.User.Get(ctx, env.interviewer, env.fixture.Candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCandidate, u.Role)

	_, err = env.svc.User.Get(ctx, env.admin, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.svc.User.List(ctx, env.candidate, repositories.UserFilters{})
	assert.True(t, IsForbidden(err))

	_, err = env.svc.User.List(ctx, nil, repositories.UserFilters{})
	assert.True(t, IsUnauthenticated(err))

	list, err := env.svc.User.List(ctx, env.admin, repositories.UserFilters{Search: "example.com"})
	require.NoError(t, err)
	assert.EqualValues(t, 4, list.Total)
}
