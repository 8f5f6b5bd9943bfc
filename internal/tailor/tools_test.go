package tailor

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func TestTemplateToolsNames(t *testing.T) {
	data := &TemplateData{}
	tools := TemplateTools(data)
	require.Len(t, tools, 5)

	names := make([]string, 0, len(tools))
	for _, tl := range tools {
		info, err := tl.Info(context.Background())
		require.NoError(t, err)
		names = append(names, info.Name)
	}
	assert.ElementsMatch(t, []string{
		"update_contact_info",
		"update_education",
		"update_experience",
		"update_projects",
		"update_skills",
	}, names)
}

func TestUpdateContactInfoMergesNonEmptyFields(t *testing.T) {
	data := &TemplateData{Name: "张三", Phone: "123-456"}
	tools := TemplateTools(data)
	contact := findTool(t, tools, "update_contact_info")

	result, err := contact.InvokableRun(context.Background(),
		`{"name":"Jane Doe","email":"jane@example.com","linkedin":"linkedin.com/in/jane"}`)
	require.NoError(t, err)
	assert.Equal(t, "Updated contact information", result)

	assert.Equal(t, "Jane Doe", data.Name)
	assert.Equal(t, "jane@example.com", data.Email)
	assert.Equal(t, "linkedin.com/in/jane", data.LinkedIn)
	// 未提供的字段保持原值
	assert.Equal(t, "123-456", data.Phone)
}

func TestUpdateEducationReplacesEntries(t *testing.T) {
	data := &TemplateData{
		Education: []TemplateEducation{{UniversityName: "Old University"}},
	}
	tools := TemplateTools(data)
	education := findTool(t, tools, "update_education")

	result, err := education.InvokableRun(context.Background(), `{"education":[
		{"university":"MIT","degree":"BS Computer Science","minor":"Mathematics",
		 "city":"Cambridge","state":"MA","start_date":"09/2018","end_date":"05/2022"}
	]}`)
	require.NoError(t, err)
	assert.Equal(t, "Updated education section with 1 entries", result)

	require.Len(t, data.Education, 1)
	assert.Equal(t, "MIT", data.Education[0].UniversityName)
	assert.Equal(t, "BS Computer Science", data.Education[0].MajorDegreeName)
	assert.Equal(t, "Mathematics", data.Education[0].MinorDegreeName)
	assert.Equal(t, "05/2022", data.Education[0].EndDate)
}

func TestUpdateExperienceKeepsBullets(t *testing.T) {
	data := &TemplateData{}
	tools := TemplateTools(data)
	experience := findTool(t, tools, "update_experience")

	result, err := experience.InvokableRun(context.Background(), `{"experience":[
		{"title":"Software Engineer","company":"Acme","city":"Austin","state":"TX",
		 "start_date":"06/2022","end_date":"Present",
		 "bullets":["Built the billing service","Cut p99 latency by 40%"]},
		{"title":"Intern","company":"Globex","start_date":"05/2021","end_date":"08/2021","bullets":[]}
	]}`)
	require.NoError(t, err)
	assert.Equal(t, "Updated experience section with 2 entries", result)

	require.Len(t, data.Experience, 2)
	assert.Equal(t, "Acme", data.Experience[0].WorkCompany)
	assert.Equal(t, []string{"Built the billing service", "Cut p99 latency by 40%"}, data.Experience[0].WorkDescriptions)
	assert.Empty(t, data.Experience[1].WorkDescriptions)
}

func TestUpdateProjectsJoinsTechnologies(t *testing.T) {
	data := &TemplateData{}
	tools := TemplateTools(data)
	projects := findTool(t, tools, "update_projects")

	result, err := projects.InvokableRun(context.Background(), `{"projects":[
		{"name":"resume-wizard","technologies":["Go","Qdrant","MySQL"],
		 "start_date":"01/2024","end_date":"Present","bullets":["Parses resumes end to end"]}
	]}`)
	require.NoError(t, err)
	assert.Equal(t, "Updated projects section with 1 entries", result)

	require.Len(t, data.Projects, 1)
	assert.Equal(t, "Go, Qdrant, MySQL", data.Projects[0].ProjectTechnologies)
	assert.Equal(t, []string{"Parses resumes end to end"}, data.Projects[0].ProjectBullets)
}

func TestUpdateSkillsJoinsCategories(t *testing.T) {
	data := &TemplateData{}
	tools := TemplateTools(data)
	skills := findTool(t, tools, "update_skills")

	result, err := skills.InvokableRun(context.Background(), `{"skills":{
		"Languages":["Go","Python"],
		"Frameworks":["Hertz"],
		"Tools":["Docker","Git"],
		"Libraries":["eino"]
	}}`)
	require.NoError(t, err)
	assert.Equal(t, "Updated technical skills", result)

	assert.Equal(t, "Go, Python", data.TechnicalSkills.Languages)
	assert.Equal(t, "Hertz", data.TechnicalSkills.Frameworks)
	assert.Equal(t, "Docker, Git", data.TechnicalSkills.DevTools)
	assert.Equal(t, "eino", data.TechnicalSkills.Libraries)
}

func TestUpdateSkillsMissingCategories(t *testing.T) {
	data := &TemplateData{}
	tools := TemplateTools(data)
	skills := findTool(t, tools, "update_skills")

	result, err := skills.InvokableRun(context.Background(), `{"skills":{"Languages":["Go"]}}`)
	require.NoError(t, err)
	assert.Equal(t, "Updated technical skills", result)
	assert.Equal(t, "Go", data.TechnicalSkills.Languages)
	assert.Empty(t, data.TechnicalSkills.Frameworks)
}

func TestMalformedArgumentsReportedAsResult(t *testing.T) {
	data := &TemplateData{Name: "原名"}
	tools := TemplateTools(data)
	contact := findTool(t, tools, "update_contact_info")

	result, err := contact.InvokableRun(context.Background(), `{"name": not-json`)
	require.NoError(t, err)
	assert.Contains(t, result, "invalid arguments for update_contact_info")
	// 数据不受影响
	assert.Equal(t, "原名", data.Name)
}

func TestEmptyArgumentsTreatedAsEmptyObject(t *testing.T) {
	data := &TemplateData{Name: "原名"}
	tools := TemplateTools(data)
	contact := findTool(t, tools, "update_contact_info")

	result, err := contact.InvokableRun(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Updated contact information", result)
	assert.Equal(t, "原名", data.Name)
}
