package upstream

import (
	"context"
	"errors"
	"net"
	"strings"
)

const (
	msgTimeout = "Tempo limite excedido. A imagem pode ser muito grande ou o servidor está lento. Tente com uma imagem menor."
	msgNetwork = "Erro de conexão. Verifique: 1) Sua conexão com a internet, 2) Se você está usando HTTPS, 3) Se o servidor está acessível."
	msgUnknown = "Erro desconhecido ao processar a imagem."
)

// Classify maps a transport-level error to a human-readable reason.
// Timeouts are checked before network failures: an aborted request can
// also look like a network failure, and must not be reported as one.
func Classify(err error) string {
	if err == nil {
		return msgUnknown
	}
	if isTimeout(err) {
		return msgTimeout
	}
	if isNetwork(err) {
		return msgNetwork
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return msgUnknown
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

func isNetwork(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network is unreachable",
		"failed to fetch",
		"network error",
		"network request failed",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
