package extractor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"resume-wizard/internal/types"
)

// resumeTool 把 Accumulator 的一个操作包装成 eino 的 InvokableTool。
// 参数 JSON 非法时以结果字符串报告而不返回 error：对话协议要求
// 每个工具调用都必须得到一个 tool_result。
type resumeTool struct {
	info *schema.ToolInfo
	run  func(ctx context.Context, argsJSON string) (string, error)
}

func (t *resumeTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return t.info, nil
}

func (t *resumeTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	return t.run(ctx, argumentsInJSON)
}

var _ tool.BaseTool = (*resumeTool)(nil)
var _ tool.InvokableTool = (*resumeTool)(nil)

func stringArrayParam(desc string) *schema.ParameterInfo {
	return &schema.ParameterInfo{
		Type:     schema.Array,
		ElemInfo: &schema.ParameterInfo{Type: schema.String},
		Desc:     desc,
	}
}

// decodeArgs 解析工具参数。失败时返回报告性的结果字符串。
func decodeArgs(toolName, argsJSON string, target any) (string, bool) {
	if argsJSON == "" {
		argsJSON = "{}"
	}
	if err := json.Unmarshal([]byte(argsJSON), target); err != nil {
		return fmt.Sprintf("invalid arguments for %s: %v", toolName, err), false
	}
	return "", true
}

// ContactTools 返回联系方式pass使用的工具
func ContactTools(acc *Accumulator) []tool.InvokableTool {
	setContact := &resumeTool{
		info: &schema.ToolInfo{
			Name: "set_contact_info",
			Desc: "Set basic contact information for the resume.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"name":  {Type: schema.String, Desc: "The name of the person on the resume"},
				"email": {Type: schema.String, Desc: "The email address of the person on the resume"},
				"phone": {Type: schema.String, Desc: "The phone number of the person on the resume"},
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				Name  string `json:"name"`
				Email string `json:"email"`
				Phone string `json:"phone"`
			}
			if msg, ok := decodeArgs("set_contact_info", argsJSON, &args); !ok {
				return msg, nil
			}
			return acc.SetContactInfo(args.Name, args.Email, args.Phone), nil
		},
	}

	setSocial := &resumeTool{
		info: &schema.ToolInfo{
			Name: "set_social_links",
			Desc: "Set social media links for the resume.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"linkedin": {Type: schema.String, Desc: "LinkedIn profile URL"},
				"github":   {Type: schema.String, Desc: "GitHub profile URL"},
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				LinkedIn string `json:"linkedin"`
				GitHub   string `json:"github"`
			}
			if msg, ok := decodeArgs("set_social_links", argsJSON, &args); !ok {
				return msg, nil
			}
			return acc.SetSocialLinks(args.LinkedIn, args.GitHub), nil
		},
	}

	return []tool.InvokableTool{setContact, setSocial}
}

// ObjectiveTools 返回求职目标pass使用的工具
func ObjectiveTools(acc *Accumulator) []tool.InvokableTool {
	setObjective := &resumeTool{
		info: &schema.ToolInfo{
			Name: "set_objective",
			Desc: "Set the career objective or professional summary.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"objective": {Type: schema.String, Desc: "Career objective or professional summary", Required: true},
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				Objective string `json:"objective"`
			}
			if msg, ok := decodeArgs("set_objective", argsJSON, &args); !ok {
				return msg, nil
			}
			return acc.SetObjective(args.Objective), nil
		},
	}
	return []tool.InvokableTool{setObjective}
}

// SkillsTools 返回技能pass使用的工具
func SkillsTools(acc *Accumulator) []tool.InvokableTool {
	addLanguages := &resumeTool{
		info: &schema.ToolInfo{
			Name: "add_programming_languages",
			Desc: "Add programming languages mentioned in the resume.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"languages": {
					Type:     schema.Array,
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
					Desc:     "List of programming languages",
					Required: true,
				},
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				Languages []string `json:"languages"`
			}
			if msg, ok := decodeArgs("add_programming_languages", argsJSON, &args); !ok {
				return msg, nil
			}
			return acc.AddLanguages(args.Languages), nil
		},
	}

	addTechnical := &resumeTool{
		info: &schema.ToolInfo{
			Name: "add_technical_skills",
			Desc: "Add technical skills by category.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"skill_type": {
					Type:     schema.String,
					Desc:     "Type of skills (frameworks, dev_tools, databases, libraries, cloud_platforms, methodologies)",
					Required: true,
				},
				"skills": {
					Type:     schema.Array,
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
					Desc:     "List of skills in this category",
					Required: true,
				},
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				SkillType string   `json:"skill_type"`
				Skills    []string `json:"skills"`
			}
			if msg, ok := decodeArgs("add_technical_skills", argsJSON, &args); !ok {
				return msg, nil
			}
			return acc.AddSkills(args.SkillType, args.Skills), nil
		},
	}

	addSoft := &resumeTool{
		info: &schema.ToolInfo{
			Name: "add_soft_skills",
			Desc: "Add soft skills to the resume.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"skills": {
					Type:     schema.Array,
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
					Desc:     "List of soft skills",
					Required: true,
				},
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				Skills []string `json:"skills"`
			}
			if msg, ok := decodeArgs("add_soft_skills", argsJSON, &args); !ok {
				return msg, nil
			}
			return acc.AddSoftSkills(args.Skills), nil
		},
	}

	return []tool.InvokableTool{addLanguages, addTechnical, addSoft}
}

// EducationTools 返回教育经历pass使用的工具
func EducationTools(acc *Accumulator) []tool.InvokableTool {
	addCore := &resumeTool{
		info: &schema.ToolInfo{
			Name: "add_education",
			Desc: "Add core education details (institution, degree, dates, etc.)",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"institution": {Type: schema.String, Desc: "Name of the educational institution", Required: true},
				"degree":      {Type: schema.String, Desc: "Degree earned or pursued", Required: true},
				"location":    {Type: schema.String, Desc: "City and state/country"},
				"start_date":  {Type: schema.String, Desc: "Start date of education"},
				"end_date":    {Type: schema.String, Desc: "End date or expected graduation"},
				"gpa":         {Type: schema.Number, Desc: "GPA on 4.0 scale"},
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				Institution string   `json:"institution"`
				Degree      string   `json:"degree"`
				Location    string   `json:"location"`
				StartDate   string   `json:"start_date"`
				EndDate     string   `json:"end_date"`
				GPA         *float64 `json:"gpa"`
			}
			if msg, ok := decodeArgs("add_education", argsJSON, &args); !ok {
				return msg, nil
			}
			return acc.UpsertEducationCore(types.EducationEntry{
				Institution: args.Institution,
				Degree:      args.Degree,
				Location:    args.Location,
				StartDate:   args.StartDate,
				EndDate:     args.EndDate,
				GPA:         args.GPA,
			}), nil
		},
	}

	addDetails := &resumeTool{
		info: &schema.ToolInfo{
			Name: "add_education_details",
			Desc: "Add additional education details (minors, honors, coursework, etc.)",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"institution":         {Type: schema.String, Desc: "Name of the institution (to match existing entry)", Required: true},
				"minors":              stringArrayParam("List of minor fields of study"),
				"honors":              stringArrayParam("Academic honors and distinctions"),
				"relevant_coursework": stringArrayParam("Key relevant courses"),
				"description":         {Type: schema.String, Desc: "Additional details about coursework, achievements, or activities"},
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				Institution        string   `json:"institution"`
				Minors             []string `json:"minors"`
				Honors             []string `json:"honors"`
				RelevantCoursework []string `json:"relevant_coursework"`
				Description        string   `json:"description"`
			}
			if msg, ok := decodeArgs("add_education_details", argsJSON, &args); !ok {
				return msg, nil
			}
			return acc.AddEducationDetail(args.Institution, args.Minors, args.Honors, args.RelevantCoursework, args.Description), nil
		},
	}

	return []tool.InvokableTool{addCore, addDetails}
}

// ExperienceTools 返回工作经历pass使用的工具
func ExperienceTools(acc *Accumulator) []tool.InvokableTool {
	addCore := &resumeTool{
		info: &schema.ToolInfo{
			Name: "add_experience",
			Desc: "Add core experience entry (position, company, description, dates, etc.)",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"position":    {Type: schema.String, Desc: "Job title or role", Required: true},
				"company":     {Type: schema.String, Desc: "Name of employer", Required: true},
				"description": {Type: schema.String, Desc: "Detailed responsibilities", Required: true},
				"location":    {Type: schema.String, Desc: "City and state/country"},
				"start_date":  {Type: schema.String, Desc: "Start date"},
				"end_date":    {Type: schema.String, Desc: "End date"},
				"ongoing":     {Type: schema.Boolean, Desc: "Whether this is the current position"},
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				Position    string `json:"position"`
				Company     string `json:"company"`
				Description string `json:"description"`
				Location    string `json:"location"`
				StartDate   string `json:"start_date"`
				EndDate     string `json:"end_date"`
				Ongoing     bool   `json:"ongoing"`
			}
			if msg, ok := decodeArgs("add_experience", argsJSON, &args); !ok {
				return msg, nil
			}
			return acc.UpsertExperienceCore(types.ExperienceEntry{
				Position:    args.Position,
				Company:     args.Company,
				Description: args.Description,
				Location:    args.Location,
				StartDate:   args.StartDate,
				EndDate:     args.EndDate,
				Ongoing:     args.Ongoing,
			}), nil
		},
	}

	addDetails := &resumeTool{
		info: &schema.ToolInfo{
			Name: "add_experience_details",
			Desc: "Add additional details to an existing experience entry (type, industry, achievements, etc.)",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"position":     {Type: schema.String, Desc: "Position title (to match existing entry)", Required: true},
				"company":      {Type: schema.String, Desc: "Company name (to match existing entry)", Required: true},
				"type":         {Type: schema.String, Desc: "Position type (full-time, part-time, contract, etc.)"},
				"industry":     {Type: schema.String, Desc: "Industry sector"},
				"achievements": stringArrayParam("Key accomplishments"),
				"keywords":     stringArrayParam("Key terms"),
				"technologies": stringArrayParam("Tools and technologies used"),
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				Position     string   `json:"position"`
				Company      string   `json:"company"`
				Type         string   `json:"type"`
				Industry     string   `json:"industry"`
				Achievements []string `json:"achievements"`
				Keywords     []string `json:"keywords"`
				Technologies []string `json:"technologies"`
			}
			if msg, ok := decodeArgs("add_experience_details", argsJSON, &args); !ok {
				return msg, nil
			}
			return acc.AddExperienceDetail(args.Position, args.Company, args.Type, args.Industry, args.Achievements, args.Keywords, args.Technologies), nil
		},
	}

	return []tool.InvokableTool{addCore, addDetails}
}

// ProjectTools 返回项目pass使用的工具
func ProjectTools(acc *Accumulator) []tool.InvokableTool {
	addCore := &resumeTool{
		info: &schema.ToolInfo{
			Name: "add_project",
			Desc: "Add core project details (name, description, url, timeframe)",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"name":        {Type: schema.String, Desc: "Project title", Required: true},
				"description": {Type: schema.String, Desc: "Project details", Required: true},
				"url":         {Type: schema.String, Desc: "Project link"},
				"timeframe":   {Type: schema.String, Desc: "Duration or completion date"},
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				Name        string `json:"name"`
				Description string `json:"description"`
				URL         string `json:"url"`
				Timeframe   string `json:"timeframe"`
			}
			if msg, ok := decodeArgs("add_project", argsJSON, &args); !ok {
				return msg, nil
			}
			return acc.UpsertProjectCore(types.ProjectEntry{
				Name:        args.Name,
				Description: args.Description,
				URL:         args.URL,
				Timeframe:   args.Timeframe,
			}), nil
		},
	}

	addDetails := &resumeTool{
		info: &schema.ToolInfo{
			Name: "add_project_details",
			Desc: "Add additional details to an existing project entry (role, team size, status, etc.)",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"name":         {Type: schema.String, Desc: "Project name (to match existing entry)", Required: true},
				"role":         {Type: schema.String, Desc: "Individual's role in the project"},
				"team_size":    {Type: schema.Integer, Desc: "Number of team members"},
				"status":       {Type: schema.String, Desc: "Project status"},
				"technologies": stringArrayParam("Tools used"),
				"keywords":     stringArrayParam("Key terms"),
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				Name         string   `json:"name"`
				Role         string   `json:"role"`
				TeamSize     *int     `json:"team_size"`
				Status       string   `json:"status"`
				Technologies []string `json:"technologies"`
				Keywords     []string `json:"keywords"`
			}
			if msg, ok := decodeArgs("add_project_details", argsJSON, &args); !ok {
				return msg, nil
			}
			return acc.AddProjectDetail(args.Name, args.Role, args.TeamSize, args.Status, args.Technologies, args.Keywords), nil
		},
	}

	return []tool.InvokableTool{addCore, addDetails}
}
