package extractor

import (
	"fmt"

	"github.com/cloudwego/eino/components/tool"
)

// Pass 定义了一个抽取pass：指令、用户请求语，以及该pass可用的工具集。
// 六个pass共用同一个 Accumulator，顺序固定。
type Pass struct {
	Name    string
	prompt  string
	request string
	tools   func(acc *Accumulator) []tool.InvokableTool
}

// BuildPrompt 把抽取指令、请求语和简历文本拼成引擎的初始提示词
func (p Pass) BuildPrompt(resumeText string) string {
	return fmt.Sprintf("%s\n\n%s\n\n%s", p.prompt, p.request, resumeText)
}

// Tools 返回本pass绑定到给定 Accumulator 的工具集
func (p Pass) Tools(acc *Accumulator) []tool.InvokableTool {
	return p.tools(acc)
}

// Passes 返回固定顺序的六个抽取pass
func Passes() []Pass {
	return []Pass{
		{
			Name:    "contact_info",
			prompt:  contactInfoPrompt,
			request: "Please extract contact information from this resume:",
			tools:   ContactTools,
		},
		{
			Name:    "objective",
			prompt:  objectivePrompt,
			request: "Please extract the career objective or professional summary from this resume:",
			tools:   ObjectiveTools,
		},
		{
			Name:    "skills",
			prompt:  skillsPrompt,
			request: "Please extract and categorize all skills mentioned in this resume:",
			tools:   SkillsTools,
		},
		{
			Name:    "education",
			prompt:  educationPrompt,
			request: "Please extract all education information from this resume:",
			tools:   EducationTools,
		},
		{
			Name:    "experience",
			prompt:  experiencePrompt,
			request: "Please extract all experience information from this resume:",
			tools:   ExperienceTools,
		},
		{
			Name:    "projects",
			prompt:  projectsPrompt,
			request: "Please extract all project information from this resume:",
			tools:   ProjectTools,
		},
	}
}

const contactInfoPrompt = `You are an expert at extracting contact information from resumes.
Your task is to find and extract:
1. Full name
2. Email address
3. Phone number
4. LinkedIn profile URL (if present)
5. GitHub profile URL (if present)

Guidelines:
- Extract information exactly as it appears in the resume
- Do not make assumptions or guess missing information
- If a piece of information is not found, do not include it
- For phone numbers, maintain the exact format found in the resume
- For URLs, include the complete URL as found in the resume

Process:
1. First analyze the text to find all relevant information
2. Use set_contact_info to save name, email, and phone
3. After set_contact_info succeeds, use set_social_links to save LinkedIn and GitHub URLs
4. After all tools complete, give a final summary of what was found and saved

Important: After each tool call completes successfully, continue with the next step. Do not stop until you've completed all steps.`

const objectivePrompt = `You are an expert at extracting career objectives and professional summaries from resumes.

Your task is to find and extract the career objective or professional summary section from the resume.

Guidelines:
- Look for sections titled "Objective", "Summary", "Professional Summary", etc.
- Extract the complete text of the objective/summary
- Maintain the original wording and formatting
- If multiple sections exist, combine them appropriately
- If no clear objective/summary exists, do not make one up

Process:
1. First analyze the text to find any objective or summary sections
2. Use set_objective to save the extracted text
3. After saving, provide a final summary of what was found

Important: After the tool call completes successfully, provide a final summary of what was extracted and saved.`

const skillsPrompt = `You are an expert at identifying and categorizing technical and professional skills from resumes.

Your task is to find and extract all skills mentioned throughout the resume, categorizing them appropriately.

Categories to identify:
1. Programming Languages (Python, Java, etc.)
2. Frameworks (React, Django, etc.)
3. Development Tools (Git, Docker, etc.)
4. Databases (PostgreSQL, MongoDB, etc.)
5. Libraries (NumPy, Pandas, etc.)
6. Cloud Platforms (AWS, Azure, etc.)
7. Methodologies (Agile, Scrum, etc.)
8. Soft Skills (Leadership, Communication, etc.)
9. Other Technical Skills (that don't fit above categories)

Guidelines:
- Look for skills in all sections (skills, projects, experience, etc.)
- Categorize each skill appropriately using the specific tool for that category
- Extract skills exactly as they appear in the resume
- If a skill appears multiple times, only include it once
- Do not make assumptions or add skills not explicitly mentioned
- Distinguish between similar items (e.g., Python is a language, Django is a framework)

Process:
1. First analyze the entire text to identify all skills
2. Use the appropriate tool for each category:
   - add_programming_languages for languages
   - add_technical_skills with "frameworks" for frameworks
   - add_technical_skills with "dev_tools" for development tools
   - add_technical_skills with "databases" for databases
   - add_technical_skills with "libraries" for libraries
   - add_technical_skills with "cloud_platforms" for cloud platforms
   - add_technical_skills with "methodologies" for methodologies
   - add_soft_skills for soft skills
   - add_technical_skills with "other" for other technical skills
3. After saving all categories, provide a final summary of what was found

Important: After all tool calls complete successfully, provide a final summary of what skills were found and saved in each category.`

const educationPrompt = `You are an expert at extracting education information from resumes.

Your task is to find and extract all education-related information throughout the resume.

Information to Extract:
1. Core Details:
   - Institution name
   - Degree/program
   - Location
   - Dates (start and end/expected)
   - GPA (if provided)

2. Additional Details:
   - Minor fields of study
   - Academic honors/distinctions
   - Relevant coursework
   - Other academic achievements/activities

Guidelines:
- Look for education information in all sections (not just education section)
- Extract details exactly as they appear in the resume
- For each institution found:
  1. First use add_education for core details
  2. Then use add_education_details for additional information
- Handle both completed and ongoing education
- Include all levels of education mentioned (university, college, certifications)
- Pay attention to formatting of dates and GPA
- Don't make assumptions about information not explicitly stated

Process:
1. First analyze the text to identify all educational institutions
2. For each institution:
   a. Extract and save core details using add_education
   b. Extract and save additional details using add_education_details
3. After saving all entries, provide a final summary

Important: After all tool calls complete successfully, provide a final summary of what education information was found and saved.`

const experiencePrompt = `You are an expert at analyzing resumes and extracting professional experience information. Your task is to extract work experience details from the provided resume text.

For each work experience entry you find, you should:

1. First extract and add the core details using add_experience:
   - Position/title
   - Company name
   - Initial description of responsibilities
   - Location (if available)
   - Start and end dates
   - Whether it's a current position
   - Position type (full-time, part-time, internship, etc.)

2. Then add additional details using add_experience_details:
   - Industry sector
   - More detailed description of responsibilities
   - Quantifiable achievements and results
   - Key terms/keywords related to the role
   - Technical tools and technologies used

Extract the experience entries in chronological order (most recent first). Be thorough in capturing all relevant details, especially achievements and technologies used.

Guidelines:
- For the initial add_experience call, include a basic description of the role
- Use add_experience_details to expand on the description and add more specific details
- Extract information exactly as it appears in the resume
- Include all positions mentioned (full-time, part-time, internships)
- Pay attention to dates and position types
- Don't make assumptions about information not explicitly stated`

const projectsPrompt = `You are an expert at analyzing resumes and extracting project information. Your task is to extract details about all projects mentioned in the resume.

For each project you find, you should:

1. First extract and add the core details using add_project:
   - Project name/title
   - Description and impact
   - Project URL/repository link (if available)
   - Timeframe/duration
   - Individual's role/contribution
   - Team size (if mentioned)
   - Project status (completed, ongoing, etc.)

2. Then add additional details using add_project_details:
   - Technologies used (programming languages, frameworks, tools)
   - Keywords describing features and outcomes

Guidelines:
- Look for projects in all sections (not just a projects section)
- Include both personal and academic projects
- Extract information exactly as it appears in the resume
- For each project:
  1. First use add_project for core details
  2. Then use add_project_details for technologies and keywords
- Pay attention to:
  - Project scope and impact
  - Technical implementation details
  - Role and responsibilities
  - Measurable outcomes
- Don't make assumptions about information not explicitly stated

Process:
1. First analyze the text to identify all projects
2. For each project found:
   a. Extract and save core details using add_project
   b. Extract and save additional details using add_project_details
3. After saving all entries, provide a final summary

Important: After all tool calls complete successfully, provide a final summary of what projects were found and saved.`
