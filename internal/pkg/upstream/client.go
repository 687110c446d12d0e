package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"validascan/internal/entity"
)

const defaultProcessTimeout = 60 * time.Second

// Fixed flags sent with every processing request; the service decides what
// extra payload (crops, full OCR, crop images) to return based on them.
var processFlags = map[string]string{
	"return_visualization": "true",
	"return_crops":         "true",
	"return_full_ocr":      "true",
	"return_crop_images":   "true",
}

// Client talks to the remote detection/OCR service.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultProcessTimeout
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
	}
}

// Process uploads the file as multipart form data to /process and returns
// the service's response verbatim. All failures come back as errors whose
// message is already human-readable.
func (c *Client) Process(ctx context.Context, filename string, data []byte) (*entity.ProcessImageResponse, error) {
	started := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(data)).
		SetFormData(processFlags).
		Post("/process")
	if err != nil {
		logrus.Errorf("process request failed: %s", err.Error())
		return nil, errors.New(Classify(err))
	}

	if !resp.IsSuccess() {
		logrus.Errorf("process returned status %d: %s", resp.StatusCode(), resp.String())
		return nil, statusError(resp.StatusCode(), resp.String())
	}

	var result entity.ProcessImageResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		logrus.Errorf("process response parse failed: %s", err.Error())
		return nil, errors.New(Classify(err))
	}

	logrus.Infof("processed %s in %s: status=%s detections=%d",
		filename, time.Since(started).Round(time.Millisecond), result.Status, len(result.Detections))

	return &result, nil
}

func statusError(status int, body string) error {
	switch status {
	case http.StatusBadRequest:
		return errors.New("Arquivo inválido. Envie uma imagem válida.")
	case http.StatusRequestEntityTooLarge:
		return errors.New("Imagem muito grande. O tamanho máximo é 10MB.")
	case http.StatusInternalServerError:
		return errors.New("Erro no servidor. Tente novamente mais tarde.")
	default:
		return fmt.Errorf("Erro ao processar imagem: %s", body)
	}
}
