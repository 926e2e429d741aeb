package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/sheetrelay/internal/sheet"
)

// ErrorResponse is the JSON body sent for every failed /data request.
// Detail is only set for unexpected failures.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// errorFor maps a failed Result to its status code and body. The sheet
// package has already logged the full error; only the minimal message
// leaves the server.
func errorFor(res sheet.Result) (int, ErrorResponse) {
	switch res.Kind {
	case sheet.KindConfigMissing:
		return http.StatusInternalServerError, ErrorResponse{Error: "SHEET_CSV_URL is not set"}
	case sheet.KindTimeout:
		return http.StatusGatewayTimeout, ErrorResponse{Error: "Timeout fetching CSV"}
	case sheet.KindUpstreamStatus:
		status := res.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return http.StatusBadGateway, ErrorResponse{Error: fmt.Sprintf("Upstream returned HTTP %d", status)}
	case sheet.KindEmptyBody:
		return http.StatusBadGateway, ErrorResponse{Error: "CSV response was empty"}
	default:
		detail := "unknown error"
		if res.Err != nil {
			detail = res.Err.Error()
		}
		return http.StatusInternalServerError, ErrorResponse{Error: "Unexpected error", Detail: detail}
	}
}

// writeJSON encodes v as JSON with the given status.
// HTML escaping is off so image URLs with query strings survive untouched.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		// Headers are already sent; all we can do is log.
		logger.Error("json encode error", "error", err)
	}
}
