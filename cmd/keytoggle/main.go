package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/windnow/keytoggle/internal/common"
	"github.com/windnow/keytoggle/internal/config"
	"github.com/windnow/keytoggle/internal/controller"
	"github.com/windnow/keytoggle/internal/flag"
	"github.com/windnow/keytoggle/internal/input"
	"github.com/windnow/keytoggle/internal/output"
	"github.com/windnow/keytoggle/internal/state"
	"github.com/windnow/keytoggle/internal/supervisor"
)

const defaultConfigName = "keytoggle.toml"

var (
	configPath string
	logLevel   string
	logFile    string
	tick       time.Duration
	enable     []string
)

func init() {
	enable = make([]string, 0)
	flag.StringVar(&configPath, "config", "", "Путь к файлу конфигурации (toml или yaml), по умолчанию "+defaultConfigName+" рядом с программой")
	flag.StringVar(&logLevel, "loglevel", "info", "Уровень журнала (debug, info, warn, error)")
	flag.StringVar(&logFile, "logfile", "", "Файл журнала (по умолчанию stderr)")
	flag.DurationVar(&tick, "tick", time.Second, "Длительность такта воркера")
	flag.StringSliceVar(&enable, "enable", "Воркер, включенный при старте (можно повторять)")
	flag.Parse()
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}

	logOut := os.Stderr
	if conf.LogFile != "" {
		f, err := os.OpenFile(conf.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return errors.Wrap(err, "open log file")
		}
		defer f.Close()
		logOut = f
	}
	logger, err := common.NewLogger(logOut, conf.LogLevel)
	if err != nil {
		return err
	}

	keys, err := conf.KeyMap()
	if err != nil {
		return err
	}
	sup, err := supervisor.New(conf.Descriptors(), conf.Tick.Duration, output.New(os.Stdout, conf.Separator), logger)
	if err != nil {
		return err
	}
	sup.Enable(conf.Enable...)

	term, err := input.MakeRaw(int(os.Stdin.Fd()))
	switch {
	case err == nil:
		defer func() {
			if err := term.Restore(); err != nil {
				logger.Errorf("Не удалось восстановить терминал: %s", err.Error())
			}
		}()
	case errors.Is(err, input.ErrNotTerminal):
		logger.Warn("Стандартный ввод не является терминалом, режим терминала не изменен")
	default:
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go breakListener(cancel, logger)

	events := make(chan controller.Event, 16)
	go func() {
		if err := input.NewSource(os.Stdin, keys, logger).Run(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf("Ошибка чтения клавиатуры: %s", err.Error())
		}
	}()

	logger.Infof("Клавиши: %s", describeKeys(conf))
	_, err = sup.Run(ctx, events)
	return err
}

func loadConfig() (*config.Config, error) {
	var conf *config.Config

	path := configPath
	if path == "" {
		var workDir string
		if err := common.WorkingDir(&workDir); err != nil {
			return nil, err
		}
		path = filepath.Join(workDir, defaultConfigName)
	}

	switch {
	case common.FileExistsAndIsReadable(path):
		c, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		conf = c
	case configPath != "":
		return nil, errors.Errorf("не удалось прочитать конфигурацию из файла %s", configPath)
	default:
		conf = config.New()
	}

	if flag.Passed("loglevel") {
		conf.LogLevel = logLevel
	}
	if flag.Passed("logfile") {
		conf.LogFile = logFile
	}
	if flag.Passed("tick") {
		conf.Tick.Duration = tick
	}
	for _, name := range enable {
		id, err := state.ParseWorkerID(name)
		if err != nil {
			return nil, errors.Wrap(err, "-enable")
		}
		conf.Enable = append(conf.Enable, id)
	}

	return conf, conf.Validate()
}

func describeKeys(conf *config.Config) string {
	result := ""
	for _, w := range conf.Workers {
		result += fmt.Sprintf("%s - воркер %s, ", w.Key, w.ID)
	}
	return result + conf.QuitKey + " - выход"
}

func breakListener(cancel context.CancelFunc, log logrus.FieldLogger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	log.Infof("Получен сигнал: %s", sig)
	cancel() // Отменяем контекст
}
