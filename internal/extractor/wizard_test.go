package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-wizard/internal/agent"
	"resume-wizard/internal/types"
)

const sampleResumeText = `Jane Doe
jane.doe@example.com | 555-123-4567 | linkedin.com/in/janedoe

Objective: Backend engineer focused on distributed systems.

Education: MIT, BS Computer Science, 2018-2022, GPA 3.9

Experience: Software Engineer at Acme Corp, 2022-present.
Built the ingestion pipeline in Go.

Projects: resume-wizard — an LLM-driven resume parser.

Skills: Go, Python, Redis, Docker`

func toolCallsResponse(calls ...schema.ToolCall) agent.MockResponse {
	return agent.MockResponse{ToolCalls: calls}
}

func call(id, name, args string) schema.ToolCall {
	return schema.ToolCall{ID: id, Function: schema.FunctionCall{Name: name, Arguments: args}}
}

// fullPipelineResponses 为六个pass各准备一轮工具调用加一轮总结
func fullPipelineResponses() []agent.MockResponse {
	return []agent.MockResponse{
		// pass 1: contact_info
		toolCallsResponse(
			call("c1", "set_contact_info", `{"name":"Jane Doe","email":"jane.doe@example.com","phone":"555-123-4567"}`),
			call("c2", "set_social_links", `{"linkedin":"linkedin.com/in/janedoe"}`),
		),
		{Content: "Saved contact info."},
		// pass 2: objective
		toolCallsResponse(call("o1", "set_objective", `{"objective":"Backend engineer focused on distributed systems."}`)),
		{Content: "Saved objective."},
		// pass 3: skills
		toolCallsResponse(
			call("s1", "add_programming_languages", `{"languages":["Go","Python"]}`),
			call("s2", "add_technical_skills", `{"skill_type":"databases","skills":["Redis"]}`),
			call("s3", "add_technical_skills", `{"skill_type":"dev_tools","skills":["Docker"]}`),
		),
		{Content: "Saved skills."},
		// pass 4: education，同一轮内核心先于详情
		toolCallsResponse(
			call("e1", "add_education", `{"institution":"MIT","degree":"BS Computer Science","start_date":"2018","end_date":"2022","gpa":3.9}`),
			call("e2", "add_education_details", `{"institution":"MIT","honors":["GPA 3.9"]}`),
		),
		{Content: "Saved education."},
		// pass 5: experience
		toolCallsResponse(
			call("x1", "add_experience", `{"position":"Software Engineer","company":"Acme Corp","description":"Built the ingestion pipeline in Go.","start_date":"2022","ongoing":true}`),
			call("x2", "add_experience_details", `{"position":"Software Engineer","company":"Acme Corp","technologies":["Go"]}`),
		),
		{Content: "Saved experience."},
		// pass 6: projects
		toolCallsResponse(call("p1", "add_project", `{"name":"resume-wizard","description":"an LLM-driven resume parser"}`)),
		{Content: "Saved projects."},
	}
}

func TestWizardRunsAllSixPassesInOrder(t *testing.T) {
	ctx := context.Background()
	mock := agent.NewMockChatClientSequential(fullPipelineResponses())

	wizard, err := NewWizard(mock)
	require.NoError(t, err)

	var progress []string
	resume, err := wizard.ProcessResumeWithProgress(ctx, sampleResumeText, func(p types.PassProgress) {
		progress = append(progress, p.Pass)
	})
	require.NoError(t, err)
	require.NotNil(t, resume)

	assert.Equal(t, []string{"contact_info", "objective", "skills", "education", "experience", "projects"}, progress)

	assert.Equal(t, "Jane Doe", resume.Name)
	assert.Equal(t, "linkedin.com/in/janedoe", resume.LinkedIn)
	assert.Equal(t, "Backend engineer focused on distributed systems.", resume.Objective)
	assert.Equal(t, []string{"Go", "Python"}, resume.Languages)

	require.Len(t, resume.Education, 1)
	assert.Equal(t, "MIT", resume.Education[0].Institution)
	assert.Equal(t, []string{"GPA 3.9"}, resume.Education[0].Honors, "同一轮内详情调用应看到之前核心调用创建的条目")

	require.Len(t, resume.Experience, 1)
	assert.True(t, resume.Experience[0].Ongoing)
	assert.Equal(t, []string{"Go"}, resume.Experience[0].Technologies)

	require.Len(t, resume.Projects, 1)
	assert.Equal(t, "resume-wizard", resume.Projects[0].Name)
}

func TestWizardPassFailurePropagates(t *testing.T) {
	ctx := context.Background()

	// 前两个pass成功，第三个pass模型报错
	responses := []agent.MockResponse{
		toolCallsResponse(call("c1", "set_contact_info", `{"name":"Jane Doe"}`)),
		{Content: "done"},
		toolCallsResponse(call("o1", "set_objective", `{"objective":"x"}`)),
		{Content: "done"},
		{Error: errors.New("model backend down")},
	}
	mock := agent.NewMockChatClientSequential(responses)

	wizard, err := NewWizard(mock)
	require.NoError(t, err)

	resume, err := wizard.ProcessResume(ctx, sampleResumeText)
	require.Error(t, err, "pass失败必须上抛，不能静默返回缺节的结果")
	assert.Nil(t, resume)
	assert.Contains(t, err.Error(), "skills")
	assert.Contains(t, err.Error(), "model backend down")
}

func TestWizardMaxTurnsApplied(t *testing.T) {
	ctx := context.Background()

	// 第一个pass永不收敛
	responses := make([]agent.MockResponse, 0, 5)
	for i := 0; i < 5; i++ {
		responses = append(responses, toolCallsResponse(call("c1", "set_contact_info", `{"name":"x"}`)))
	}
	mock := agent.NewMockChatClientSequential(responses)

	wizard, err := NewWizard(mock, WithWizardMaxTurns(2))
	require.NoError(t, err)

	_, err = wizard.ProcessResume(ctx, sampleResumeText)
	require.Error(t, err)
	assert.ErrorIs(t, err, agent.ErrMaxTurnsExceeded)
}

func TestWizardEmptyResumeText(t *testing.T) {
	mock := agent.NewMockChatClientSequential([]agent.MockResponse{{Content: "x"}})
	wizard, err := NewWizard(mock)
	require.NoError(t, err)

	_, err = wizard.ProcessResume(context.Background(), "   \n ")
	require.Error(t, err)
}

func TestWizardPromptsIncludeResumeText(t *testing.T) {
	ctx := context.Background()
	mock := agent.NewMockChatClientSequential(fullPipelineResponses())

	wizard, err := NewWizard(mock)
	require.NoError(t, err)

	_, err = wizard.ProcessResume(ctx, sampleResumeText)
	require.NoError(t, err)

	// 每个pass的首条用户消息都携带完整简历文本
	require.NotEmpty(t, mock.ReceivedMessages)
	first := mock.ReceivedMessages[0]
	require.NotEmpty(t, first)
	assert.Equal(t, schema.User, first[0].Role)
	assert.Contains(t, first[0].Content, "Please extract contact information from this resume:")
	assert.Contains(t, first[0].Content, "jane.doe@example.com")
}
