package tailor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// templateTool 把对 TemplateData 的一个更新操作包装成 eino 的 InvokableTool。
// 参数 JSON 非法时以结果字符串报告而不返回 error。
type templateTool struct {
	info *schema.ToolInfo
	run  func(ctx context.Context, argsJSON string) (string, error)
}

func (t *templateTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return t.info, nil
}

func (t *templateTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	return t.run(ctx, argumentsInJSON)
}

var _ tool.InvokableTool = (*templateTool)(nil)

func decodeTemplateArgs(toolName, argsJSON string, target any) (string, bool) {
	if argsJSON == "" {
		argsJSON = "{}"
	}
	if err := json.Unmarshal([]byte(argsJSON), target); err != nil {
		return fmt.Sprintf("invalid arguments for %s: %v", toolName, err), false
	}
	return "", true
}

func templateStringArray(desc string) *schema.ParameterInfo {
	return &schema.ParameterInfo{
		Type:     schema.Array,
		ElemInfo: &schema.ParameterInfo{Type: schema.String},
		Desc:     desc,
	}
}

// TemplateTools 返回操纵模板数据的五个更新工具
func TemplateTools(data *TemplateData) []tool.InvokableTool {
	updateContact := &templateTool{
		info: &schema.ToolInfo{
			Name: "update_contact_info",
			Desc: "Update contact information in the template",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"name":     {Type: schema.String, Desc: "Full name"},
				"email":    {Type: schema.String, Desc: "Email address"},
				"phone":    {Type: schema.String, Desc: "Phone number"},
				"linkedin": {Type: schema.String, Desc: "LinkedIn URL"},
				"github":   {Type: schema.String, Desc: "GitHub URL"},
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				Name     string `json:"name"`
				Email    string `json:"email"`
				Phone    string `json:"phone"`
				LinkedIn string `json:"linkedin"`
				GitHub   string `json:"github"`
			}
			if msg, ok := decodeTemplateArgs("update_contact_info", argsJSON, &args); !ok {
				return msg, nil
			}
			if args.Name != "" {
				data.Name = args.Name
			}
			if args.Email != "" {
				data.Email = args.Email
			}
			if args.Phone != "" {
				data.Phone = args.Phone
			}
			if args.LinkedIn != "" {
				data.LinkedIn = args.LinkedIn
			}
			if args.GitHub != "" {
				data.GitHub = args.GitHub
			}
			return "Updated contact information", nil
		},
	}

	updateEducation := &templateTool{
		info: &schema.ToolInfo{
			Name: "update_education",
			Desc: "Update education section in the template",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"education": {
					Type: schema.Array,
					Desc: "List of education entries",
					ElemInfo: &schema.ParameterInfo{
						Type: schema.Object,
						SubParams: map[string]*schema.ParameterInfo{
							"university": {Type: schema.String, Desc: "University name"},
							"degree":     {Type: schema.String, Desc: "Degree name"},
							"minor":      {Type: schema.String, Desc: "Minor degree name (optional)"},
							"city":       {Type: schema.String, Desc: "University city"},
							"state":      {Type: schema.String, Desc: "University state"},
							"start_date": {Type: schema.String, Desc: "Start date (MM/YYYY)"},
							"end_date":   {Type: schema.String, Desc: "End date (MM/YYYY or 'Present')"},
						},
					},
				},
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				Education []struct {
					University string `json:"university"`
					Degree     string `json:"degree"`
					Minor      string `json:"minor"`
					City       string `json:"city"`
					State      string `json:"state"`
					StartDate  string `json:"start_date"`
					EndDate    string `json:"end_date"`
				} `json:"education"`
			}
			if msg, ok := decodeTemplateArgs("update_education", argsJSON, &args); !ok {
				return msg, nil
			}
			entries := make([]TemplateEducation, 0, len(args.Education))
			for _, e := range args.Education {
				entries = append(entries, TemplateEducation{
					UniversityName:  e.University,
					UniversityCity:  e.City,
					UniversityState: e.State,
					MajorDegreeName: e.Degree,
					MinorDegreeName: e.Minor,
					StartDate:       e.StartDate,
					EndDate:         e.EndDate,
				})
			}
			data.Education = entries
			return fmt.Sprintf("Updated education section with %d entries", len(entries)), nil
		},
	}

	updateExperience := &templateTool{
		info: &schema.ToolInfo{
			Name: "update_experience",
			Desc: "Update experience section in the template",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"experience": {
					Type: schema.Array,
					Desc: "List of experience entries",
					ElemInfo: &schema.ParameterInfo{
						Type: schema.Object,
						SubParams: map[string]*schema.ParameterInfo{
							"title":      {Type: schema.String, Desc: "Job title"},
							"company":    {Type: schema.String, Desc: "Company name"},
							"city":       {Type: schema.String, Desc: "City"},
							"state":      {Type: schema.String, Desc: "State"},
							"start_date": {Type: schema.String, Desc: "Start date (MM/YYYY)"},
							"end_date":   {Type: schema.String, Desc: "End date (MM/YYYY or 'Present')"},
							"bullets":    templateStringArray("List of bullet points describing achievements"),
						},
					},
				},
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				Experience []struct {
					Title     string   `json:"title"`
					Company   string   `json:"company"`
					City      string   `json:"city"`
					State     string   `json:"state"`
					StartDate string   `json:"start_date"`
					EndDate   string   `json:"end_date"`
					Bullets   []string `json:"bullets"`
				} `json:"experience"`
			}
			if msg, ok := decodeTemplateArgs("update_experience", argsJSON, &args); !ok {
				return msg, nil
			}
			entries := make([]TemplateExperience, 0, len(args.Experience))
			for _, e := range args.Experience {
				entries = append(entries, TemplateExperience{
					WorkTitle:        e.Title,
					WorkCompany:      e.Company,
					WorkCity:         e.City,
					WorkState:        e.State,
					WorkStartDate:    e.StartDate,
					WorkEndDate:      e.EndDate,
					WorkDescriptions: e.Bullets,
				})
			}
			data.Experience = entries
			return fmt.Sprintf("Updated experience section with %d entries", len(entries)), nil
		},
	}

	updateProjects := &templateTool{
		info: &schema.ToolInfo{
			Name: "update_projects",
			Desc: "Update projects section in the template",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"projects": {
					Type: schema.Array,
					Desc: "List of project entries",
					ElemInfo: &schema.ParameterInfo{
						Type: schema.Object,
						SubParams: map[string]*schema.ParameterInfo{
							"name":         {Type: schema.String, Desc: "Project name"},
							"technologies": templateStringArray("List of technologies used"),
							"start_date":   {Type: schema.String, Desc: "Start date (MM/YYYY)"},
							"end_date":     {Type: schema.String, Desc: "End date (MM/YYYY or 'Present')"},
							"bullets":      templateStringArray("List of bullet points describing achievements"),
						},
					},
				},
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				Projects []struct {
					Name         string   `json:"name"`
					Technologies []string `json:"technologies"`
					StartDate    string   `json:"start_date"`
					EndDate      string   `json:"end_date"`
					Bullets      []string `json:"bullets"`
				} `json:"projects"`
			}
			if msg, ok := decodeTemplateArgs("update_projects", argsJSON, &args); !ok {
				return msg, nil
			}
			entries := make([]TemplateProject, 0, len(args.Projects))
			for _, p := range args.Projects {
				entries = append(entries, TemplateProject{
					ProjectName:         p.Name,
					ProjectTechnologies: strings.Join(p.Technologies, ", "),
					ProjectStartDate:    p.StartDate,
					ProjectEndDate:      p.EndDate,
					ProjectBullets:      p.Bullets,
				})
			}
			data.Projects = entries
			return fmt.Sprintf("Updated projects section with %d entries", len(entries)), nil
		},
	}

	updateSkills := &templateTool{
		info: &schema.ToolInfo{
			Name: "update_skills",
			Desc: "Update technical skills in the template",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"skills": {
					Type: schema.Object,
					Desc: "Dictionary mapping skill categories (Languages, Frameworks, Tools, Libraries) to lists of skills",
					SubParams: map[string]*schema.ParameterInfo{
						"Languages":  templateStringArray("Programming languages"),
						"Frameworks": templateStringArray("Frameworks"),
						"Tools":      templateStringArray("Developer tools"),
						"Libraries":  templateStringArray("Libraries"),
					},
				},
			}),
		},
		run: func(_ context.Context, argsJSON string) (string, error) {
			var args struct {
				Skills map[string][]string `json:"skills"`
			}
			if msg, ok := decodeTemplateArgs("update_skills", argsJSON, &args); !ok {
				return msg, nil
			}
			data.TechnicalSkills = TemplateSkills{
				Languages:  strings.Join(args.Skills["Languages"], ", "),
				Frameworks: strings.Join(args.Skills["Frameworks"], ", "),
				DevTools:   strings.Join(args.Skills["Tools"], ", "),
				Libraries:  strings.Join(args.Skills["Libraries"], ", "),
			}
			return "Updated technical skills", nil
		},
	}

	return []tool.InvokableTool{updateContact, updateEducation, updateExperience, updateProjects, updateSkills}
}
