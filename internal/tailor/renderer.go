package tailor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"resume-wizard/internal/logger"
	"resume-wizard/internal/tracing"
)

// RenderProgressFunc 渲染进度回调，参数为一行进度文本
type RenderProgressFunc func(message string)

// Renderer LaTeX模板渲染器：把模板数据填进占位符模板，
// 并可选调用pdflatex编译成PDF
type Renderer struct {
	templatePath string
	template     string
	log          zerolog.Logger
}

// NewRenderer 加载模板文件并创建渲染器
func NewRenderer(templatePath string) (*Renderer, error) {
	raw, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("读取模板文件失败 %s: %w", templatePath, err)
	}
	return &Renderer{
		templatePath: templatePath,
		template:     string(raw),
		log:          logger.Logger.With().Str("component", "tailor_renderer").Logger(),
	}, nil
}

// Render 用模板数据替换模板中的占位符，返回完整的LaTeX源文本。
// 模板最多支持1条教育经历、3段工作经历和2个项目，超出部分忽略。
func (r *Renderer) Render(data *TemplateData) string {
	content := r.template

	replace := func(placeholder, value string) {
		content = strings.ReplaceAll(content, placeholder, value)
	}

	replace("{name}", data.Name)
	replace("{email}", data.Email)
	replace("{phone}", data.Phone)
	replace("{linkedin}", data.LinkedIn)
	replace("{github}", data.GitHub)

	if len(data.Education) > 0 {
		edu := data.Education[0]
		replace("{university_name1}", edu.UniversityName)
		replace("{university_city1}", edu.UniversityCity)
		replace("{university_state1}", edu.UniversityState)
		replace("{major_degree_name1}", edu.MajorDegreeName)
		replace("{minor_degree_name1}", edu.MinorDegreeName)
		replace("{start_date1}", edu.StartDate)
		replace("{end_date1}", edu.EndDate)
	}

	// 每段经历的bullet占位符前缀不同：one/two/three
	bulletPrefixes := []string{"one", "two", "three"}
	bulletLimits := []int{3, 3, 6}
	for idx, exp := range data.Experience {
		if idx >= 3 {
			break
		}
		n := strconv.Itoa(idx + 1)
		replace("{work_title"+n+"}", exp.WorkTitle)
		replace("{work_company"+n+"}", exp.WorkCompany)
		replace("{work_city"+n+"}", exp.WorkCity)
		replace("{work_state"+n+"}", exp.WorkState)
		replace("{work_start_date"+n+"}", exp.WorkStartDate)
		replace("{work_end_date"+n+"}", exp.WorkEndDate)
		for i, desc := range exp.WorkDescriptions {
			if i >= bulletLimits[idx] {
				break
			}
			replace("{work_description_"+bulletPrefixes[idx]+strconv.Itoa(i+1)+"}", desc)
		}
	}

	for idx, proj := range data.Projects {
		if idx >= 2 {
			break
		}
		n := strconv.Itoa(idx + 1)
		replace("{project_"+n+"_name}", proj.ProjectName)
		replace("{project_"+n+"_technologies}", proj.ProjectTechnologies)
		replace("{project"+n+"_start_date}", proj.ProjectStartDate)
		replace("{project"+n+"_end_date}", proj.ProjectEndDate)
		for i, bullet := range proj.ProjectBullets {
			if i >= 4 {
				break
			}
			replace("{p"+n+"_bullet"+strconv.Itoa(i+1)+"}", bullet)
		}
	}

	if data.TechnicalSkills != (TemplateSkills{}) {
		replace("{language_names}", data.TechnicalSkills.Languages)
		replace("{framework_names}", data.TechnicalSkills.Frameworks)
		replace("{dev_tools_names}", data.TechnicalSkills.DevTools)
		replace("{library_names}", data.TechnicalSkills.Libraries)
	}

	return content
}

// RenderToFile 渲染模板并写入输出目录下的{filename}.tex，返回tex文件路径
func (r *Renderer) RenderToFile(data *TemplateData, outputDir, filename string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("创建输出目录失败 %s: %w", outputDir, err)
	}

	texPath := filepath.Join(outputDir, filename+".tex")
	if err := os.WriteFile(texPath, []byte(r.Render(data)), 0o644); err != nil {
		return "", fmt.Errorf("写入LaTeX文件失败 %s: %w", texPath, err)
	}
	return texPath, nil
}

// RenderToPDF 渲染模板并调用pdflatex编译成PDF，返回PDF文件路径。
// progress可为nil。需要本机安装pdflatex。
func (r *Renderer) RenderToPDF(ctx context.Context, data *TemplateData, outputDir, filename string, progress RenderProgressFunc) (string, error) {
	ctx, span := tailorTracer.Start(ctx, "Tailor.RenderToPDF")
	defer span.End()
	span.SetAttributes(attribute.String("render.filename", filename))

	report := func(msg string) {
		if progress != nil {
			progress(msg)
		}
	}

	texPath, err := r.RenderToFile(data, outputDir, filename)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return "", err
	}
	report("Generated LaTeX content...\n")
	report("Saved LaTeX file...\n")

	report("Compiling PDF...\n")
	cmd := exec.CommandContext(ctx, "pdflatex", "-interaction=nonstopmode", filepath.Base(texPath))
	cmd.Dir = outputDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		report("LaTeX error output:\n")
		report(string(output) + "\n")
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return "", fmt.Errorf("pdflatex编译失败: %w", err)
	}
	report("LaTeX compilation output:\n")
	report(string(output) + "\n")

	pdfPath := filepath.Join(outputDir, filename+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return "", fmt.Errorf("PDF编译失败，未生成输出文件 %s", pdfPath)
	}

	report("PDF generated successfully!\n")
	span.SetStatus(codes.Ok, "")
	r.log.Info().Str("pdf_path", pdfPath).Msg("PDF渲染完成")
	return pdfPath, nil
}
