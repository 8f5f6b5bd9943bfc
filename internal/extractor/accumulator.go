package extractor

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"resume-wizard/internal/types"
)

// Accumulator 在六个抽取pass之间累积简历数据。
//
// 条目列表按自然身份键去重：education 按 institution，experience 按 position+company，
// projects 按 name。同一身份键的第二次核心调用覆盖合并进已有条目而不是追加；
// 身份键不存在时的详情调用是一次报告性的no-op，不是错误。
// 技能列表只追加、不去重。
//
// 每个 Accumulator 只服务一份简历，合成姓名计数器是实例级的，不跨实例共享。
type Accumulator struct {
	contact    types.ContactInfo
	contactSet bool
	social     types.SocialLinks
	objective  string
	education  []types.EducationEntry
	experience []types.ExperienceEntry
	projects   []types.ProjectEntry
	skills     map[string][]string

	personSeq int
	rng       *rand.Rand
}

// NewAccumulator 创建一个空的 Accumulator，所有技能分类预置为空列表。
func NewAccumulator() *Accumulator {
	skills := make(map[string][]string, len(types.SkillCategories))
	for _, cat := range types.SkillCategories {
		skills[cat] = []string{}
	}
	return &Accumulator{
		skills: skills,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// --- 合成数据生成（仅在模型未提供对应字段时使用） ---

func (a *Accumulator) generateName() string {
	name := fmt.Sprintf("person_%d", a.personSeq)
	a.personSeq++
	return name
}

func (a *Accumulator) generateEmail() string {
	return fmt.Sprintf("person_%d@example.com", 1000+a.rng.Intn(9000))
}

func (a *Accumulator) generatePhone() string {
	return fmt.Sprintf("%d", 1000000000+a.rng.Int63n(9000000000))
}

// SetContactInfo 设置联系方式。缺失的字段由合成生成器补齐，
// 生成的值在本次调用时冻结进状态，assemble 时不会再重新生成。
func (a *Accumulator) SetContactInfo(name, email, phone string) string {
	if name == "" {
		name = a.generateName()
	}
	if email == "" {
		email = a.generateEmail()
	}
	if phone == "" {
		phone = a.generatePhone()
	}
	a.contact = types.ContactInfo{Name: name, Email: email, Phone: phone}
	a.contactSet = true
	return fmt.Sprintf("Set contact info for %s", name)
}

// SetSocialLinks 设置社交链接
func (a *Accumulator) SetSocialLinks(linkedin, github string) string {
	a.social = types.SocialLinks{LinkedIn: linkedin, GitHub: github}
	return "Set social media links"
}

// SetObjective 设置求职目标
func (a *Accumulator) SetObjective(objective string) string {
	a.objective = objective
	return "Set career objective"
}

// UpsertEducationCore 按 institution 插入或合并一条教育经历
func (a *Accumulator) UpsertEducationCore(entry types.EducationEntry) string {
	for i := range a.education {
		if a.education[i].Institution == entry.Institution {
			existing := &a.education[i]
			if entry.Degree != "" {
				existing.Degree = entry.Degree
			}
			if entry.Location != "" {
				existing.Location = entry.Location
			}
			if entry.StartDate != "" {
				existing.StartDate = entry.StartDate
			}
			if entry.EndDate != "" {
				existing.EndDate = entry.EndDate
			}
			if entry.GPA != nil {
				existing.GPA = entry.GPA
			}
			return fmt.Sprintf("Added core education entry for %s", entry.Institution)
		}
	}
	a.education = append(a.education, entry)
	return fmt.Sprintf("Added core education entry for %s", entry.Institution)
}

// AddEducationDetail 向已存在的教育条目补充详情，institution 不存在时为报告性no-op
func (a *Accumulator) AddEducationDetail(institution string, minors, honors, coursework []string, description string) string {
	for i := range a.education {
		if a.education[i].Institution != institution {
			continue
		}
		entry := &a.education[i]
		if minors != nil {
			entry.Minors = minors
		}
		if honors != nil {
			entry.Honors = honors
		}
		if coursework != nil {
			entry.RelevantCoursework = coursework
		}
		if description != "" {
			entry.Description = description
		}
		return fmt.Sprintf("Added additional education details for %s", institution)
	}
	return fmt.Sprintf("No education entry found for %s; add core entry first", institution)
}

// UpsertExperienceCore 按 position+company 插入或合并一条工作经历
func (a *Accumulator) UpsertExperienceCore(entry types.ExperienceEntry) string {
	for i := range a.experience {
		if a.experience[i].Position == entry.Position && a.experience[i].Company == entry.Company {
			existing := &a.experience[i]
			if entry.Description != "" {
				existing.Description = entry.Description
			}
			if entry.Location != "" {
				existing.Location = entry.Location
			}
			if entry.StartDate != "" {
				existing.StartDate = entry.StartDate
			}
			if entry.EndDate != "" {
				existing.EndDate = entry.EndDate
			}
			if entry.Ongoing {
				existing.Ongoing = true
			}
			return fmt.Sprintf("Added experience entry for %s at %s", entry.Position, entry.Company)
		}
	}
	a.experience = append(a.experience, entry)
	return fmt.Sprintf("Added experience entry for %s at %s", entry.Position, entry.Company)
}

// AddExperienceDetail 向已存在的工作经历补充详情
func (a *Accumulator) AddExperienceDetail(position, company, positionType, industry string, achievements, keywords, technologies []string) string {
	for i := range a.experience {
		if a.experience[i].Position != position || a.experience[i].Company != company {
			continue
		}
		entry := &a.experience[i]
		if positionType != "" {
			entry.PositionType = positionType
		}
		if industry != "" {
			entry.Industry = industry
		}
		if achievements != nil {
			entry.Achievements = achievements
		}
		if keywords != nil {
			entry.Keywords = keywords
		}
		if technologies != nil {
			entry.Technologies = technologies
		}
		return fmt.Sprintf("Added additional details for %s at %s", position, company)
	}
	return fmt.Sprintf("No experience entry found for %s at %s; add core entry first", position, company)
}

// UpsertProjectCore 按 name 插入或合并一个项目
func (a *Accumulator) UpsertProjectCore(entry types.ProjectEntry) string {
	for i := range a.projects {
		if a.projects[i].Name == entry.Name {
			existing := &a.projects[i]
			if entry.Description != "" {
				existing.Description = entry.Description
			}
			if entry.URL != "" {
				existing.URL = entry.URL
			}
			if entry.Timeframe != "" {
				existing.Timeframe = entry.Timeframe
			}
			return fmt.Sprintf("Added project %s", entry.Name)
		}
	}
	a.projects = append(a.projects, entry)
	return fmt.Sprintf("Added project %s", entry.Name)
}

// AddProjectDetail 向已存在的项目补充详情
func (a *Accumulator) AddProjectDetail(name, role string, teamSize *int, status string, technologies, keywords []string) string {
	for i := range a.projects {
		if a.projects[i].Name != name {
			continue
		}
		entry := &a.projects[i]
		if role != "" {
			entry.Role = role
		}
		if teamSize != nil {
			entry.TeamSize = teamSize
		}
		if status != "" {
			entry.Status = status
		}
		if technologies != nil {
			entry.Technologies = technologies
		}
		if keywords != nil {
			entry.Keywords = keywords
		}
		return fmt.Sprintf("Added additional details for project %s", name)
	}
	return fmt.Sprintf("No project entry found for %s; add core entry first", name)
}

// AddLanguages 追加编程语言（不去重）
func (a *Accumulator) AddLanguages(languages []string) string {
	a.skills["languages"] = append(a.skills["languages"], languages...)
	return fmt.Sprintf("Added programming languages: %s", strings.Join(languages, ", "))
}

// AddSkills 按分类追加技术技能。未知分类是一次报告性的no-op。
func (a *Accumulator) AddSkills(category string, skills []string) string {
	if _, ok := a.skills[category]; !ok {
		return fmt.Sprintf("Unknown skill category: %s", category)
	}
	a.skills[category] = append(a.skills[category], skills...)
	return fmt.Sprintf("Added %s skills: %s", category, strings.Join(skills, ", "))
}

// AddSoftSkills 追加软技能
func (a *Accumulator) AddSoftSkills(skills []string) string {
	a.skills["soft_skills"] = append(a.skills["soft_skills"], skills...)
	return fmt.Sprintf("Added soft skills: %s", strings.Join(skills, ", "))
}

// Assemble 把当前状态冻结为最终的简历记录。
// 同一状态下多次调用返回完全相同的结果；联系方式从未设置时，
// 首次调用会生成合成值并冻结进状态，保证后续调用结果一致。
func (a *Accumulator) Assemble() *types.Resume {
	if !a.contactSet {
		a.SetContactInfo("", "", "")
	}

	resume := &types.Resume{
		Name:       a.contact.Name,
		Email:      a.contact.Email,
		Phone:      a.contact.Phone,
		LinkedIn:   a.social.LinkedIn,
		GitHub:     a.social.GitHub,
		Objective:  a.objective,
		Education:  make([]types.EducationEntry, len(a.education)),
		Experience: make([]types.ExperienceEntry, len(a.experience)),
		Projects:   make([]types.ProjectEntry, len(a.projects)),
		Skills:     make(map[string][]string, len(types.SkillCategories)),
	}
	copy(resume.Education, a.education)
	copy(resume.Experience, a.experience)
	copy(resume.Projects, a.projects)

	// 所有技能分类都出现在输出里，即使为空
	for _, cat := range types.SkillCategories {
		values := a.skills[cat]
		out := make([]string, len(values))
		copy(out, values)
		resume.Skills[cat] = out
	}

	// 顶层 languages 镜像 skills.languages
	resume.Languages = make([]string, len(a.skills["languages"]))
	copy(resume.Languages, a.skills["languages"])

	return resume
}
