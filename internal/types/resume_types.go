package types

// SectionType 表示简历文档在向量索引中的章节类型
type SectionType string

// 向量索引实际派生的四种文档章节
const (
	// SectionObjective 职业目标章节
	SectionObjective SectionType = "objective"
	// SectionExperience 工作经历章节
	SectionExperience SectionType = "experience"
	// SectionSkills 技能章节
	SectionSkills SectionType = "skills"
	// SectionProjects 项目经历章节
	SectionProjects SectionType = "projects"
)

// SkillCategories 技能分类的固定顺序。
// 输出Record中的skills映射总是包含全部九个分类，顺序固定。
var SkillCategories = []string{
	"languages",
	"frameworks",
	"dev_tools",
	"databases",
	"libraries",
	"cloud_platforms",
	"methodologies",
	"soft_skills",
	"other",
}

// ContactInfo 联系方式
type ContactInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// SocialLinks 社交链接
type SocialLinks struct {
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// EducationEntry 一条教育经历，以institution作为身份键
type EducationEntry struct {
	Institution string   `json:"institution"`
	Degree      string   `json:"degree,omitempty"`
	Location    string   `json:"location,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	GPA         *float64 `json:"gpa,omitempty"`

	// 补充字段，由add_education_details填充
	Minors             []string `json:"minors,omitempty"`
	Honors             []string `json:"honors,omitempty"`
	RelevantCoursework []string `json:"relevant_coursework,omitempty"`
	Description        string   `json:"description,omitempty"`
}

// ExperienceEntry 一条工作经历，以(position, company)作为身份键
type ExperienceEntry struct {
	Position    string `json:"position"`
	Company     string `json:"company"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Ongoing     bool   `json:"ongoing,omitempty"`

	// 补充字段，由add_experience_details填充
	PositionType string   `json:"position_type,omitempty"`
	Industry     string   `json:"industry,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// ProjectEntry 一条项目经历，以name作为身份键
type ProjectEntry struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Timeframe   string `json:"timeframe,omitempty"`

	// 补充字段，由add_project_details填充
	Role         string   `json:"role,omitempty"`
	TeamSize     *int     `json:"team_size,omitempty"`
	Status       string   `json:"status,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

// Resume 六个抽取pass完成后组装出的最终记录。
// name/email/phone保证非空（缺失时在set_contact阶段生成占位值），
// 列表字段保证非nil，skills包含全部固定分类。
type Resume struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Objective string `json:"objective,omitempty"`

	Education  []EducationEntry  `json:"education"`
	Experience []ExperienceEntry `json:"experience"`
	Projects   []ProjectEntry    `json:"projects"`

	// Skills 按固定分类组织，九个分类总是全部出现
	Skills map[string][]string `json:"skills"`

	// Languages 顶层便捷列表，与skills.languages保持一致
	Languages []string `json:"languages"`
}

// SearchDocument 写入向量索引的一条文档
type SearchDocument struct {
	Content string                 `json:"content"`
	Section SectionType            `json:"section"`
	Extra   map[string]interface{} `json:"extra,omitempty"`
}

// SearchQuery 语义搜索请求
type SearchQuery struct {
	Query          string  `json:"query"`
	Section        string  `json:"section,omitempty"`
	MaxResults     int     `json:"max_results,omitempty"`
	ScoreThreshold float64 `json:"score_threshold,omitempty"`
}

// SearchResult 语义搜索结果项
type SearchResult struct {
	Source  string  `json:"source"`
	Score   float32 `json:"score"`
	Content string  `json:"content"`
	Section string  `json:"section"`
}

// PassProgress 单个抽取pass完成后的进度事件，用于流式侧通道
type PassProgress struct {
	Pass    string `json:"pass"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Summary string `json:"summary,omitempty"`
}
