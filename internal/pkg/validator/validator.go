package validator

import (
	"path/filepath"
	"strings"
)

const maxFileSize = 10 * 1024 * 1024

// Extensions accepted even when the browser leaves the MIME type blank
// (mobile camera capture often does).
var validExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".heic": true,
	".heif": true,
}

type Outcome struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Validate checks a selected file before any decoding or network work.
// Pure function: it looks only at the declared name, type and size.
func Validate(filename, contentType string, size int64) Outcome {
	hasImageMimeType := strings.HasPrefix(contentType, "image/")
	hasValidExtension := validExtensions[strings.ToLower(filepath.Ext(filename))]
	hasNoType := contentType == ""

	if !hasImageMimeType && !hasValidExtension && !hasNoType {
		return Outcome{Valid: false, Reason: "Por favor, selecione um arquivo de imagem."}
	}

	if size == 0 {
		return Outcome{Valid: false, Reason: "O arquivo está vazio."}
	}

	if size > maxFileSize {
		return Outcome{Valid: false, Reason: "Imagem muito grande. O tamanho máximo é 10MB."}
	}

	return Outcome{Valid: true}
}
