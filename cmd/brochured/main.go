package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"

	"github.com/geoirb/go-brochure/internal/brochure"
	"github.com/geoirb/go-brochure/internal/brochure/api"
	"github.com/geoirb/go-brochure/internal/brochure/mq"
	"github.com/geoirb/go-brochure/internal/converter"
	"github.com/geoirb/go-brochure/internal/kafka"
	"github.com/geoirb/go-brochure/internal/merger"
	"github.com/geoirb/go-brochure/internal/parser"
	"github.com/geoirb/go-brochure/internal/path"
	"github.com/geoirb/go-brochure/internal/placeholder"
	"github.com/geoirb/go-brochure/internal/pptx"
	"github.com/geoirb/go-brochure/internal/qrcode"
	"github.com/geoirb/go-brochure/internal/render"
	"github.com/geoirb/go-brochure/internal/response"
	"github.com/geoirb/go-brochure/internal/store"
)

type configuration struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	TemplateDir string `envconfig:"TEMPLATE_DIR" default:"/template"`
	TemplateRU  string `envconfig:"TEMPLATE_RU" default:"brochure_ru.pptx"`
	TemplateEN  string `envconfig:"TEMPLATE_EN" default:"brochure_en.pptx"`
	TmpDir      string `envconfig:"TMP_DIR" default:"/tmp"`

	SofficeBin         string        `envconfig:"SOFFICE_BIN" default:"soffice"`
	ConvertTimeout     time.Duration `envconfig:"CONVERT_TIMEOUT" default:"2m"`
	ConverterInstances int           `envconfig:"CONVERTER_INSTANCES" default:"1"`
	BatchTimeout       time.Duration `envconfig:"BATCH_TIMEOUT" default:"30m"`
	Workers            int           `envconfig:"WORKERS" default:"4"`
	ReplaceMode        string        `envconfig:"REPLACE_MODE" default:"runs"`
	MaxPerLanguage     int           `envconfig:"MAX_PER_LANGUAGE" default:"500"`
	QRSize             int           `envconfig:"QR_SIZE" default:"512"`

	StoreBackend string        `envconfig:"STORE_BACKEND" default:"sheets"`
	StoreRetries int           `envconfig:"STORE_RETRIES" default:"3"`
	StoreBackoff time.Duration `envconfig:"STORE_BACKOFF" default:"600ms"`

	SpreadsheetID    string `envconfig:"SPREADSHEET_ID"`
	SheetName        string `envconfig:"SHEET_NAME"`
	PasswordColumn   string `envconfig:"PASSWORD_COLUMN" default:"A"`
	GoogleSAJSONPath string `envconfig:"GOOGLE_SA_JSON_PATH" default:"/secrets/sa.json"`

	XLSXPath  string `envconfig:"XLSX_PATH"`
	XLSXSheet string `envconfig:"XLSX_SHEET"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisKey      string `envconfig:"REDIS_KEY" default:"guest:passwords"`

	PostgresDSN   string `envconfig:"POSTGRES_DSN"`
	PostgresTable string `envconfig:"POSTGRES_TABLE" default:"guest_passwords"`

	MemoryPasswords []string `envconfig:"MEMORY_PASSWORDS"`

	MQEnabled             bool   `envconfig:"MQ_ENABLED" default:"false"`
	MQHost                string `envconfig:"MQ_HOST" default:"localhost"`
	MQPort                int    `envconfig:"MQ_PORT" default:"9093"`
	GenerateTopicRequest  string `envconfig:"GENERATE_TOPIC_REQUEST" default:"brochure-request"`
	GenerateTopicResponse string `envconfig:"GENERATE_TOPIC_RESPONSE" default:"brochure-response"`
}

const (
	prefixCfg    = ""
	serviceName  = "brochure"
	templateType = "pptx"

	shutdownTimeout = 30 * time.Second
)

var errTemplateType = errors.New("template must be a pptx file")

func main() {
	logger := log.NewJSONLogger(log.NewSyncWriter(os.Stdout))
	logger = log.WithPrefix(logger, "service", serviceName)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	var cfg configuration
	if err := envconfig.Process(prefixCfg, &cfg); err != nil {
		level.Error(logger).Log("msg", "configuration", "err", err)
		os.Exit(1)
	}

	level.Info(logger).Log("msg", "initialization", "store", cfg.StoreBackend)

	path, err := path.NewBuilder(
		cfg.TemplateDir,
		cfg.TmpDir,
		uuid.New().String,
	)
	if err != nil {
		level.Error(logger).Log("msg", "path init", "err", err)
		os.Exit(1)
	}

	parser, err := parser.New()
	if err != nil {
		level.Error(logger).Log("msg", "parser init", "err", err)
		os.Exit(1)
	}

	placeholder, err := placeholder.New()
	if err != nil {
		level.Error(logger).Log("msg", "placeholder init", "err", err)
		os.Exit(1)
	}

	templates := make(map[render.Language]*render.Template)
	for lang, name := range map[render.Language]string{
		render.RU: cfg.TemplateRU,
		render.EN: cfg.TemplateEN,
	} {
		tpl, err := loadTemplate(parser, placeholder, path.Template(name))
		if err != nil {
			level.Error(logger).Log("msg", "template init", "language", lang, "template", name, "err", err)
			os.Exit(1)
		}
		level.Info(logger).Log("msg", "template loaded", "language", lang, "template", name, "slides", tpl.Slides(), "markers", fmt.Sprint(tpl.Markers()))
		templates[lang] = tpl
	}

	mode, ok := pptx.ParseReplaceMode(cfg.ReplaceMode)
	if !ok {
		level.Error(logger).Log("msg", "unknown replace mode", "mode", cfg.ReplaceMode)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	rows, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		level.Error(logger).Log("msg", "store init", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	soffice, err := converter.NewSoffice(
		&converter.ExecRunner{},
		cfg.SofficeBin,
		cfg.ConvertTimeout,
		cfg.ConverterInstances,
		filepath.Join(cfg.TmpDir, "soffice-profiles"),
	)
	if err != nil {
		level.Error(logger).Log("msg", "converter init", "err", err)
		os.Exit(1)
	}

	svc := brochure.NewService(
		templates[render.RU],
		templates[render.EN],
		store.WithRetry(rows, cfg.StoreRetries, cfg.StoreBackoff, logger),
		qrcode.NewCreator(),
		render.NewRenderer(mode, placeholder),
		soffice,
		merger.NewMerger(),
		path,
		brochure.Config{
			Workers:        cfg.Workers,
			QRSize:         cfg.QRSize,
			MaxPerLanguage: cfg.MaxPerLanguage,
		},
		logger,
	)

	var mqKafka *kafka.MessageQueue
	if cfg.MQEnabled {
		address := fmt.Sprintf("%s:%d", cfg.MQHost, cfg.MQPort)
		if mqKafka, err = kafka.NewMessageQueue([]string{address}); err != nil {
			level.Error(logger).Log("msg", "kafka init", "address", address, "err", err)
			os.Exit(1)
		}

		handler := mq.NewGenerateHandler(
			svc,
			mq.NewGenerateTransport(
				response.BuildWithID,
			),
			mqKafka.NewPublish(cfg.GenerateTopicResponse),
			cfg.BatchTimeout,
			logger,
		)
		if err = mqKafka.Consume(cfg.GenerateTopicRequest, handler); err != nil {
			level.Error(logger).Log("msg", "kafka consume", "topic", cfg.GenerateTopicRequest, "err", err)
			os.Exit(1)
		}

		level.Info(logger).Log("msg", "kafka listener turn on")
		mqKafka.ListenAndServe()
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewHandler(svc, response.Build, cfg.BatchTimeout, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		level.Info(logger).Log("msg", "http server turn on", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			level.Error(logger).Log("msg", "http server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	level.Info(logger).Log("msg", "received signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	level.Info(logger).Log("msg", "http server shutdown")
	if err = server.Shutdown(shutdownCtx); err != nil {
		level.Error(logger).Log("msg", "http server shutdown", "err", err)
	}
	if mqKafka != nil {
		level.Info(logger).Log("msg", "kafka listener shutdown")
		mqKafka.Shutdown()
	}
	level.Info(logger).Log("msg", "stop service")
}

func loadTemplate(parser *parser.Parser, placeholder *placeholder.Placeholder, filename string) (*render.Template, error) {
	typ, err := parser.Type(filename)
	if err != nil {
		return nil, err
	}
	if typ != templateType {
		return nil, fmt.Errorf("%w: %s", errTemplateType, filename)
	}
	return render.LoadTemplate(filename, placeholder)
}
