package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vegas-casino-service/internal/game/blackjack"
)

// errorResponse is the JSON error envelope. Code carries the RPC status
// code name so gateway clients can branch without parsing messages.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// codeFor maps the error taxonomy to RPC status codes. Precondition
// failures (missing round, wrong state, wrong hand shape) are all
// invalid-argument; feature toggles map to permission-denied; everything
// else is internal.
func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, blackjack.ErrDoubleDownDisabled):
		return codes.PermissionDenied
	case errors.Is(err, blackjack.ErrNoRound),
		errors.Is(err, blackjack.ErrInvalidState),
		errors.Is(err, blackjack.ErrNoPlayerCards),
		errors.Is(err, blackjack.ErrNotTwoCards):
		return codes.InvalidArgument
	case errors.Is(err, blackjack.ErrNotPersisted):
		return codes.Internal
	default:
		return codes.Internal
	}
}

// httpStatus maps an RPC status code to its HTTP equivalent.
func httpStatus(code codes.Code) int {
	switch code {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a structured error response.
func writeError(w http.ResponseWriter, err error) {
	st := status.New(codeFor(err), err.Error())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus(st.Code()))
	if encErr := json.NewEncoder(w).Encode(errorResponse{
		Error: st.Message(),
		Code:  st.Code().String(),
	}); encErr != nil {
		log.Warn().Err(encErr).Msg("Failed to encode error response")
	}
}

// writeBadRequest renders a plain invalid-argument error for request
// decoding and bet validation failures.
func writeBadRequest(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: err.Error(),
		Code:  codes.InvalidArgument.String(),
	})
}

// writeJSON renders a success response.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}
