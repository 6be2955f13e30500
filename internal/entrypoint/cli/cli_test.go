//go:build unix

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeBot installs a shell script standing in for the bot binary.
func writeFakeBot(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "fake-bot")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexec sleep 30\n"), 0o755))
	return path
}

func executeCLI(t *testing.T, dir, stdin string, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--dir", dir, "--bin", filepath.Join(dir, "fake-bot"), "--stop-timeout", "1s"}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestStatusWhenStopped(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := executeCLI(t, dir, "", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Бот не запущен.")
}

func TestStartStatusStop(t *testing.T) {
	dir := t.TempDir()
	writeFakeBot(t, dir)
	t.Cleanup(func() { _, _, _ = executeCLI(t, dir, "", "stop") })

	stdout, _, err := executeCLI(t, dir, "", "start")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Бот запущен (PID")
	assert.FileExists(t, filepath.Join(dir, "bot.pid"))

	stdout, _, err = executeCLI(t, dir, "", "start")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Бот уже работает")

	stdout, _, err = executeCLI(t, dir, "", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Бот запущен (PID")

	stdout, _, err = executeCLI(t, dir, "", "stop")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Бот остановлен.")
	assert.NoFileExists(t, filepath.Join(dir, "bot.pid"))
}

func TestStartWithoutBinaryFails(t *testing.T) {
	dir := t.TempDir()

	_, _, err := executeCLI(t, dir, "", "start")
	assert.Error(t, err)
}

func TestReloadWhenStopped(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := executeCLI(t, dir, "", "reload")
	require.NoError(t, err)
	assert.Contains(t, stdout, "reload невозможен")
}

func TestLogs(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := executeCLI(t, dir, "", "logs")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Файл логов ещё не создан.")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bot.log"), []byte("a\nb\nc\n"), 0o644))

	stdout, _, err = executeCLI(t, dir, "", "logs", "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Последние 2 строк")
	assert.NotContains(t, stdout, "a\n")
	assert.Contains(t, stdout, "b\nc\n")
}

func TestDeleteRemovesServiceFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bot.log"), []byte("x\n"), 0o644))

	stdout, _, err := executeCLI(t, dir, "", "delete")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Удаление завершено.")
	assert.NoFileExists(t, filepath.Join(dir, "bot.log"))
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "", "explode")
	assert.Error(t, err)
}

func TestInteractiveMenu(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := executeCLI(t, dir, "1\nstatus\nnope\n9\nq\n")
	require.NoError(t, err)

	assert.Contains(t, stdout, "=== CBR Rates Manager ===")
	assert.Contains(t, stdout, "1. status")
	assert.Contains(t, stdout, "8. delete")
	assert.Equal(t, 2, strings.Count(stdout, "Бот не запущен."))
	assert.Equal(t, 2, strings.Count(stdout, "Неизвестная команда."))
	assert.Contains(t, stdout, "Выход из менеджера.")
}

func TestInteractiveMenuEndsOnEOF(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "status\n")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Бот не запущен.")
}
