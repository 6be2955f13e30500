// Package cli implements ratesctl, the lifecycle manager of the bot process.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cbrbot/internal/supervisor"
)

const defaultBinary = "cbrbot"

type options struct {
	dir         string
	binary      string
	logFile     string
	stopTimeout time.Duration
	lines       int
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "ratesctl",
		Short:         "Manage the CBR rates bot process",
		Long:          "ratesctl starts, stops and inspects the CBR rates Telegram bot running in the background. Without a command it opens an interactive menu.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dir, "dir", "", "directory of the bot, its pid and log files (default: directory of ratesctl)")
	flags.StringVar(&opts.binary, "bin", "", "bot executable (default: <dir>/"+defaultBinary+")")
	flags.StringVar(&opts.logFile, "log-file", supervisor.DefaultLogFile, "log file, relative to --dir")
	flags.DurationVar(&opts.stopTimeout, "stop-timeout", 6*time.Second, "time to wait after SIGTERM before SIGKILL")

	for _, c := range commands {
		rootCmd.AddCommand(c.cobra(opts))
	}

	return rootCmd
}

func (o *options) supervisor() (*supervisor.Supervisor, error) {
	dir := o.dir
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate ratesctl: %w", err)
		}
		dir = filepath.Dir(exe)
	}

	binary := o.binary
	if binary == "" {
		binary = filepath.Join(dir, defaultBinary)
	}

	return supervisor.New(supervisor.Options{
		Dir:         dir,
		Command:     []string{binary},
		LogFile:     o.logFile,
		StopTimeout: o.stopTimeout,
	}), nil
}

// runInteractive shows the numbered menu until the operator quits or input ends.
func runInteractive(cmd *cobra.Command, opts *options) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	for {
		printMenu(out)
		fmt.Fprint(out, "Введите команду или номер: ")

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		choice := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch choice {
		case "q", "quit", "exit":
			fmt.Fprintln(out, "Выход из менеджера.")
			return nil
		case "":
			continue
		}

		c, ok := lookupCommand(choice)
		if !ok {
			fmt.Fprintln(out, "Неизвестная команда. Попробуйте снова.")
			continue
		}

		if err := c.run(cmd, opts); err != nil {
			errColor.Fprintf(cmd.ErrOrStderr(), "Ошибка: %v\n", err)
		}
	}
}

func printMenu(out io.Writer) {
	fmt.Fprintln(out, "=== CBR Rates Manager ===")
	fmt.Fprintln(out, "Доступные команды:")
	for i, c := range commands {
		fmt.Fprintf(out, "  %d. %-7s - %s\n", i+1, c.name, c.description)
	}
	fmt.Fprintln(out, "  q. Выход")
}

func lookupCommand(choice string) (command, bool) {
	if n, err := strconv.Atoi(choice); err == nil {
		if n >= 1 && n <= len(commands) {
			return commands[n-1], true
		}
		return command{}, false
	}
	for _, c := range commands {
		if c.name == choice {
			return c, true
		}
	}
	return command{}, false
}
