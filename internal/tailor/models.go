package tailor

// TemplateEducation LaTeX模板中的一条教育经历
type TemplateEducation struct {
	UniversityName  string `json:"university_name"`
	UniversityCity  string `json:"university_city"`
	UniversityState string `json:"university_state"`
	MajorDegreeName string `json:"major_degree_name"`
	MinorDegreeName string `json:"minor_degree_name,omitempty"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
}

// TemplateExperience LaTeX模板中的一条工作经历
type TemplateExperience struct {
	WorkTitle     string `json:"work_title"`
	WorkCompany   string `json:"work_company"`
	WorkCity      string `json:"work_city"`
	WorkState     string `json:"work_state"`
	WorkStartDate string `json:"work_start_date"`
	WorkEndDate   string `json:"work_end_date"`
	// WorkDescriptions 每一项渲染为一个 \resumeItem
	WorkDescriptions []string `json:"work_descriptions"`
}

// TemplateProject LaTeX模板中的一个项目
type TemplateProject struct {
	ProjectName string `json:"project_name"`
	// ProjectTechnologies 逗号分隔的技术列表
	ProjectTechnologies string   `json:"project_technologies"`
	ProjectStartDate    string   `json:"project_start_date"`
	ProjectEndDate      string   `json:"project_end_date"`
	ProjectBullets      []string `json:"project_bullets"`
}

// TemplateSkills 技能栏，各字段均为逗号分隔字符串
type TemplateSkills struct {
	Languages  string `json:"languages"`
	Frameworks string `json:"frameworks"`
	DevTools   string `json:"dev_tools"`
	Libraries  string `json:"libraries"`
}

// TemplateData LaTeX模板渲染所需的全部数据
type TemplateData struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`

	Education       []TemplateEducation  `json:"education"`
	Experience      []TemplateExperience `json:"experience"`
	Projects        []TemplateProject    `json:"projects"`
	TechnicalSkills TemplateSkills       `json:"technical_skills"`
}
