package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cbrbot/internal/supervisor"
)

type command struct {
	name        string
	description string
	flags       func(c *cobra.Command, opts *options)
	run         func(cmd *cobra.Command, opts *options) error
}

func (c command) cobra(opts *options) *cobra.Command {
	cc := &cobra.Command{
		Use:   c.name,
		Short: c.description,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, opts)
		},
	}
	if c.flags != nil {
		c.flags(cc, opts)
	}
	return cc
}

// Order matters: the interactive menu numbers commands as listed here.
var commands = []command{
	{name: "status", description: "Показать состояние фонового процесса бота", run: runStatus},
	{name: "update", description: "Обновить код из git-репозитория", run: runUpdate},
	{name: "restart", description: "Остановить и снова запустить бота", run: runRestart},
	{name: "reload", description: "Перезапустить для перечитывания конфигурации", run: runReload},
	{
		name:        "logs",
		description: "Показать последние строки логов",
		flags: func(c *cobra.Command, opts *options) {
			c.Flags().IntVarP(&opts.lines, "lines", "n", 40, "number of lines to show")
		},
		run: runLogs,
	},
	{name: "stop", description: "Остановить бота", run: runStop},
	{name: "start", description: "Запустить бота", run: runStart},
	{name: "delete", description: "Удалить PID/лог и остановить бота", run: runDelete},
}

func runStatus(cmd *cobra.Command, opts *options) error {
	s, err := opts.supervisor()
	if err != nil {
		return err
	}

	pid, err := s.Status()
	switch {
	case errors.Is(err, supervisor.ErrNotRunning):
		return warnf(cmd, "Бот не запущен.\n")
	case err != nil:
		return err
	}
	return okf(cmd, "Бот запущен (PID %d). Логи: %s\n", pid, s.LogFile())
}

func runStart(cmd *cobra.Command, opts *options) error {
	s, err := opts.supervisor()
	if err != nil {
		return err
	}

	pid, err := s.Start()
	switch {
	case errors.Is(err, supervisor.ErrAlreadyRunning):
		return warnf(cmd, "Бот уже работает (PID %d). Используйте restart, чтобы перезапустить.\n", pid)
	case err != nil:
		return err
	}
	return okf(cmd, "Бот запущен (PID %d). Логи: %s\n", pid, s.LogFile())
}

func runStop(cmd *cobra.Command, opts *options) error {
	s, err := opts.supervisor()
	if err != nil {
		return err
	}

	killed, err := s.Stop()
	switch {
	case errors.Is(err, supervisor.ErrNotRunning):
		return warnf(cmd, "Бот не запущен.\n")
	case err != nil:
		return err
	}
	if killed {
		if err := warnf(cmd, "Процесс не завершился вовремя, отправлен SIGKILL.\n"); err != nil {
			return err
		}
	}
	return okf(cmd, "Бот остановлен.\n")
}

func runRestart(cmd *cobra.Command, opts *options) error {
	s, err := opts.supervisor()
	if err != nil {
		return err
	}

	if err := printf(cmd, "Перезапуск бота...\n"); err != nil {
		return err
	}
	pid, err := s.Restart()
	if err != nil {
		return err
	}
	return okf(cmd, "Бот запущен (PID %d). Логи: %s\n", pid, s.LogFile())
}

func runReload(cmd *cobra.Command, opts *options) error {
	s, err := opts.supervisor()
	if err != nil {
		return err
	}

	pid, err := s.Reload()
	switch {
	case errors.Is(err, supervisor.ErrNotRunning):
		return warnf(cmd, "Бот не запущен, reload невозможен. Используйте start.\n")
	case err != nil:
		return err
	}
	return okf(cmd, "Бот перезапущен для перечитывания .env и кода (PID %d).\n", pid)
}

func runLogs(cmd *cobra.Command, opts *options) error {
	s, err := opts.supervisor()
	if err != nil {
		return err
	}

	lines, err := s.Logs(opts.lines)
	switch {
	case errors.Is(err, supervisor.ErrNoLogs):
		return warnf(cmd, "Файл логов ещё не создан.\n")
	case err != nil:
		return err
	}

	if err := printf(cmd, "Последние %d строк %s:\n", opts.lines, s.LogFile()); err != nil {
		return err
	}
	for _, line := range lines {
		if err := printf(cmd, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func runUpdate(cmd *cobra.Command, opts *options) error {
	s, err := opts.supervisor()
	if err != nil {
		return err
	}

	if err := printf(cmd, "Обновляем репозиторий из удалённого...\n"); err != nil {
		return err
	}
	out, err := s.Update(cmd.Context())
	if err != nil {
		return fmt.Errorf("не удалось обновить репозиторий: %w", err)
	}
	if out == "" {
		out = "Репозиторий уже обновлён."
	}
	return printf(cmd, "%s\n", out)
}

func runDelete(cmd *cobra.Command, opts *options) error {
	s, err := opts.supervisor()
	if err != nil {
		return err
	}

	if err := s.Delete(); err != nil {
		return err
	}
	return okf(cmd, "Удаление завершено. Репозиторий остаётся без изменений.\n")
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
)

func printf(cmd *cobra.Command, format string, args ...any) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), format, args...)
	return err
}

func okf(cmd *cobra.Command, format string, args ...any) error {
	_, err := okColor.Fprintf(cmd.OutOrStdout(), format, args...)
	return err
}

func warnf(cmd *cobra.Command, format string, args ...any) error {
	_, err := warnColor.Fprintf(cmd.OutOrStdout(), format, args...)
	return err
}
