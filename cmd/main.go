package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"resume-wizard/internal/agent"
	"resume-wizard/internal/api/handler"
	"resume-wizard/internal/api/router"
	"resume-wizard/internal/config"
	"resume-wizard/internal/extractor"
	"resume-wizard/internal/indexer"
	appLogger "resume-wizard/internal/logger"
	"resume-wizard/internal/parser"
	"resume-wizard/internal/storage"
	"resume-wizard/internal/tailor"
)

func main() {
	initLogger()

	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		glog.Fatalf("加载配置失败: %v", err)
	}

	// 按配置重建日志系统，替换启动早期的引导logger
	appLogger.Init(appLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	zlog.Logger = appLogger.Logger
	glog.SetLogger(hertzadapter.From(appLogger.Logger))
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	chatModel, err := agent.NewClaudeChatModel(
		cfg.Anthropic.APIKey,
		cfg.Anthropic.Model,
		cfg.Anthropic.APIURL,
		agent.WithMaxTokens(cfg.Anthropic.MaxTokens),
	)
	if err != nil {
		glog.Fatalf("初始化Claude聊天模型失败: %v", err)
	}
	glog.Info("Claude聊天模型初始化成功")

	pdfExtractor, err := parser.NewEinoPDFTextExtractor(ctx)
	if err != nil {
		glog.Fatalf("创建PDF提取器失败: %v", err)
	}
	glog.Info("PDF提取器初始化成功")

	wizard, err := extractor.NewWizard(chatModel,
		extractor.WithWizardMaxTurns(cfg.Wizard.MaxTurns),
		extractor.WithPassTimeout(config.GetDuration(cfg.Wizard.PassTimeout, 0)),
	)
	if err != nil {
		glog.Fatalf("初始化抽取编排器失败: %v", err)
	}
	glog.Info("抽取编排器初始化成功")

	var recordIndexer handler.RecordIndexer
	if storageManager.Qdrant != nil && cfg.Embedding.APIKey != "" {
		embedder, err := parser.NewOpenAIEmbedder(cfg.Embedding.APIKey, cfg.Embedding)
		if err != nil {
			glog.Fatalf("初始化Embedder失败: %v", err)
		}
		recordIndexer, err = indexer.NewIndexer(embedder, storageManager.Qdrant)
		if err != nil {
			glog.Fatalf("初始化索引器失败: %v", err)
		}
		if count, cntErr := storageManager.Qdrant.CountPoints(ctx); cntErr != nil {
			glog.Warnf("查询向量集合点数失败: %v", cntErr)
		} else {
			glog.Infof("向量索引器初始化成功，集合当前点数: %d", count)
		}
	} else {
		glog.Warn("Qdrant或Embedding未配置，检索功能不可用")
	}

	tailorEngine, err := tailor.NewEngine(chatModel, tailor.WithMaxTurns(cfg.Wizard.MaxTurns))
	if err != nil {
		glog.Fatalf("初始化简历定制引擎失败: %v", err)
	}

	var renderer handler.TemplateRenderer
	if cfg.Tailor.TemplatePath != "" {
		r, err := tailor.NewRenderer(cfg.Tailor.TemplatePath)
		if err != nil {
			glog.Warnf("加载LaTeX模板 %s 失败 (%v)，定制接口将只返回模板数据；"+
				"请检查tailor.template_path指向的文件，仓库自带模板位于templates/resume.tex",
				cfg.Tailor.TemplatePath, err)
		} else {
			renderer = r
			glog.Info("LaTeX渲染器初始化成功")
		}
	}

	resumeHandler := handler.NewResumeHandler(cfg, storageManager, pdfExtractor, wizard, recordIndexer)
	searchHandler := handler.NewSearchHandler(recordIndexer)
	tailorHandler := handler.NewTailorHandler(storageManager, tailorEngine, renderer, cfg.Tailor.OutputDir)
	glog.Info("请求处理器初始化成功")

	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, resumeHandler, searchHandler, tailorHandler)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initLogger 配置加载前的引导logger，LoadConfig之后按cfg.Logger重建
func initLogger() {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimeFieldFormat = "15:04:05"

	logger := zerolog.New(consoleWriter).With().Timestamp().Caller().Logger()
	appLogger.Logger = logger
	zlog.Logger = logger

	glog.SetLogger(hertzadapter.From(appLogger.Logger))
	glog.SetLevel(glog.LevelInfo)
}
