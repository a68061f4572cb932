package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/marmos91/nfscall/internal/logger"
	"github.com/marmos91/nfscall/pkg/config"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func getConfigSource(path string) string {
	if path != "" {
		return path
	}
	if _, err := os.Stat(config.GetDefaultConfigPath()); err == nil {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

// readInput reads a file, or stdin for "" and "-". With asHex the content
// is hex text; whitespace is ignored.
func readInput(stdin io.Reader, path string, asHex bool) ([]byte, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if !asHex {
		return data, nil
	}

	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, string(data))
	out, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("decode hex input: %w", err)
	}
	return out, nil
}
