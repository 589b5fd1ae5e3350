package extract

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"autotestcase/internal/logging"
)

// newlines maps CRLF and bare CR line endings to LF.
var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// fromTXT reads a text file as UTF-8, falling back to Latin-1 when the
// bytes are not valid UTF-8. Line endings are normalized to "\n".
func fromTXT(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading TXT file: %w", err)
	}

	if utf8.Valid(data) {
		return newlines.Replace(string(data)), nil
	}

	logging.ExtractDebug("%s is not valid UTF-8, decoding as Latin-1", path)
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("error reading TXT file: %w", err)
	}
	return newlines.Replace(string(decoded)), nil
}
