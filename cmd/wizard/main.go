package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"resume-wizard/internal/agent"
	"resume-wizard/internal/config"
	"resume-wizard/internal/extractor"
	appLogger "resume-wizard/internal/logger"
	"resume-wizard/internal/parser"
	"resume-wizard/internal/types"
)

// 对单个PDF跑完整抽取流程并把结构化结果打印到标准输出
func main() {
	var configPath string
	var verbose bool
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pflag.Parse()

	if pflag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "用法: wizard [-c config.yaml] <resume.pdf>")
		os.Exit(1)
	}
	resumePath := pflag.Arg(0)

	initLogger(verbose)

	// 本地运行时从.env补充 ANTHROPIC_API_KEY 等环境变量
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("加载配置失败")
	}
	if cfg.Anthropic.APIKey == "" {
		appLogger.Fatal().Msg("未配置ANTHROPIC_API_KEY")
	}

	ctx := context.Background()

	pdfExtractor, err := parser.NewEinoPDFTextExtractor(ctx)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("创建PDF提取器失败")
	}

	fmt.Fprintf(os.Stderr, "\n=== Parsing %s ===\n\n", resumePath)
	text, _, err := pdfExtractor.ExtractFromFile(ctx, resumePath)
	if err != nil {
		appLogger.Fatal().Err(err).Str("file", resumePath).Msg("解析PDF失败")
	}

	chatModel, err := agent.NewClaudeChatModel(
		cfg.Anthropic.APIKey,
		cfg.Anthropic.Model,
		cfg.Anthropic.APIURL,
		agent.WithMaxTokens(cfg.Anthropic.MaxTokens),
	)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("初始化Claude聊天模型失败")
	}

	wizard, err := extractor.NewWizard(chatModel,
		extractor.WithWizardMaxTurns(cfg.Wizard.MaxTurns),
		extractor.WithPassTimeout(config.GetDuration(cfg.Wizard.PassTimeout, 0)),
	)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("初始化抽取编排器失败")
	}

	record, err := wizard.ProcessResumeWithProgress(ctx, text, func(p types.PassProgress) {
		fmt.Fprintf(os.Stderr, "=== Pass %d/%d: %s ===\n", p.Index, p.Total, p.Pass)
		if p.Summary != "" {
			fmt.Fprintf(os.Stderr, "%s\n\n", p.Summary)
		}
	})
	if err != nil {
		appLogger.Fatal().Err(err).Msg("简历抽取失败")
	}

	output, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		appLogger.Fatal().Err(err).Msg("序列化抽取结果失败")
	}

	fmt.Fprint(os.Stderr, "\nFinal Resume Record:\n\n")
	fmt.Println(string(output))
}

func initLogger(verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).With().Timestamp().Logger()

	appLogger.Logger = logger
	zlog.Logger = logger
}
