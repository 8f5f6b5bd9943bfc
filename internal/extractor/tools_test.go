package extractor

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolNames(t *testing.T, tools []tool.InvokableTool) []string {
	t.Helper()
	names := make([]string, 0, len(tools))
	for _, tl := range tools {
		info, err := tl.Info(context.Background())
		require.NoError(t, err)
		names = append(names, info.Name)
	}
	return names
}

func findTool(t *testing.T, tools []tool.InvokableTool, name string) tool.InvokableTool {
	t.Helper()
	for _, tl := range tools {
		info, err := tl.Info(context.Background())
		require.NoError(t, err)
		if info.Name == name {
			return tl
		}
	}
	t.Fatalf("tool %s not found", name)
	return nil
}

func TestPassToolSets(t *testing.T) {
	acc := NewAccumulator()

	assert.Equal(t, []string{"set_contact_info", "set_social_links"}, toolNames(t, ContactTools(acc)))
	assert.Equal(t, []string{"set_objective"}, toolNames(t, ObjectiveTools(acc)))
	assert.Equal(t, []string{"add_programming_languages", "add_technical_skills", "add_soft_skills"}, toolNames(t, SkillsTools(acc)))
	assert.Equal(t, []string{"add_education", "add_education_details"}, toolNames(t, EducationTools(acc)))
	assert.Equal(t, []string{"add_experience", "add_experience_details"}, toolNames(t, ExperienceTools(acc)))
	assert.Equal(t, []string{"add_project", "add_project_details"}, toolNames(t, ProjectTools(acc)))
}

func TestToolsDelegateToAccumulator(t *testing.T) {
	ctx := context.Background()
	acc := NewAccumulator()

	setContact := findTool(t, ContactTools(acc), "set_contact_info")
	result, err := setContact.InvokableRun(ctx, `{"name":"Jane Doe","email":"jane@example.com","phone":"5551234567"}`)
	require.NoError(t, err)
	assert.Equal(t, "Set contact info for Jane Doe", result)

	addEducation := findTool(t, EducationTools(acc), "add_education")
	result, err = addEducation.InvokableRun(ctx, `{"institution":"MIT","degree":"BS","gpa":3.9}`)
	require.NoError(t, err)
	assert.Equal(t, "Added core education entry for MIT", result)

	addDetails := findTool(t, EducationTools(acc), "add_education_details")
	result, err = addDetails.InvokableRun(ctx, `{"institution":"MIT","honors":["Dean's List"]}`)
	require.NoError(t, err)
	assert.Equal(t, "Added additional education details for MIT", result)

	resume := acc.Assemble()
	assert.Equal(t, "Jane Doe", resume.Name)
	require.Len(t, resume.Education, 1)
	assert.Equal(t, []string{"Dean's List"}, resume.Education[0].Honors)
	require.NotNil(t, resume.Education[0].GPA)
	assert.Equal(t, 3.9, *resume.Education[0].GPA)
}

func TestMalformedArgumentsReportedAsResult(t *testing.T) {
	ctx := context.Background()
	acc := NewAccumulator()

	addProject := findTool(t, ProjectTools(acc), "add_project")
	result, err := addProject.InvokableRun(ctx, `{"name": not-json`)
	require.NoError(t, err, "参数解析失败必须以结果字符串报告，不能返回error")
	assert.Contains(t, result, "invalid arguments for add_project")

	resume := acc.Assemble()
	assert.Empty(t, resume.Projects)
}

func TestEmptyArgumentsTreatedAsEmptyObject(t *testing.T) {
	ctx := context.Background()
	acc := NewAccumulator()

	setSocial := findTool(t, ContactTools(acc), "set_social_links")
	result, err := setSocial.InvokableRun(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Set social media links", result)
}

func TestSkillToolsResultStrings(t *testing.T) {
	ctx := context.Background()
	acc := NewAccumulator()
	tools := SkillsTools(acc)

	addLangs := findTool(t, tools, "add_programming_languages")
	result, err := addLangs.InvokableRun(ctx, `{"languages":["Go","Python"]}`)
	require.NoError(t, err)
	assert.Equal(t, "Added programming languages: Go, Python", result)

	addTech := findTool(t, tools, "add_technical_skills")
	result, err = addTech.InvokableRun(ctx, `{"skill_type":"databases","skills":["MySQL","Redis"]}`)
	require.NoError(t, err)
	assert.Equal(t, "Added databases skills: MySQL, Redis", result)

	result, err = addTech.InvokableRun(ctx, `{"skill_type":"bogus","skills":["x"]}`)
	require.NoError(t, err)
	assert.Equal(t, "Unknown skill category: bogus", result)

	addSoft := findTool(t, tools, "add_soft_skills")
	result, err = addSoft.InvokableRun(ctx, `{"skills":["communication"]}`)
	require.NoError(t, err)
	assert.Equal(t, "Added soft skills: communication", result)
}
