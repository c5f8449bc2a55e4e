package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// TokenKey is the env-file key holding the bearer token.
const TokenKey = "BEARER_TOKEN"

// PersistToken rewrites only the token line(s) of the env file at path,
// appending one when absent. Every other line is kept byte for byte. The file
// is replaced atomically.
func PersistToken(path, token string) error {
	if path == "" {
		return errors.New("env file path required")
	}
	line, err := godotenv.Marshal(map[string]string{TokenKey: token})
	if err != nil {
		return err
	}

	mode := fs.FileMode(0o600)
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if info, statErr := os.Stat(path); statErr == nil {
			mode = info.Mode().Perm()
		}
	case errors.Is(err, fs.ErrNotExist):
		existing = nil
	default:
		return fmt.Errorf("read %s: %w", path, err)
	}

	return replaceFile(path, rewriteTokenLine(string(existing), line), mode)
}

func rewriteTokenLine(content, line string) string {
	if content == "" {
		return line + "\n"
	}
	lines := strings.Split(content, "\n")
	replaced := false
	for i, l := range lines {
		if isTokenLine(l) {
			lines[i] = line
			replaced = true
		}
	}
	if replaced {
		return strings.Join(lines, "\n")
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + line + "\n"
}

func isTokenLine(l string) bool {
	l = strings.TrimSpace(strings.TrimSuffix(l, "\r"))
	l = strings.TrimPrefix(l, "export ")
	key, _, ok := strings.Cut(l, "=")
	return ok && strings.TrimSpace(key) == TokenKey
}

func replaceFile(path, content string, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
