package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"validascan/internal/entity"
)

const probeTimeout = 5 * time.Second

// Probe runs a best-effort health check against the detection service.
// It never returns an error; every failure becomes a negative status.
// A fresh client is used so the probe shares nothing with Process.
func Probe(ctx context.Context, baseURL string) entity.ProbeStatus {
	resp, err := resty.New().
		SetTimeout(probeTimeout).
		R().
		SetContext(ctx).
		Get(baseURL + "/health")
	if err != nil {
		if isTimeout(err) {
			return entity.ProbeStatus{Success: false, Message: "Timeout ao conectar com o servidor"}
		}
		return entity.ProbeStatus{Success: false, Message: "Não foi possível conectar com o servidor"}
	}

	if resp.IsSuccess() {
		return entity.ProbeStatus{Success: true, Message: "Servidor acessível"}
	}
	return entity.ProbeStatus{Success: false, Message: fmt.Sprintf("Servidor retornou erro %d", resp.StatusCode())}
}
