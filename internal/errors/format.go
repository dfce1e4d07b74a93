package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// asBibleError finds the BibleError in err's chain. Plain errors become
// ERR_501_INTERNAL so every surface reports a code.
func asBibleError(err error) *BibleError {
	var be *BibleError
	if errors.As(err, &be) {
		return be
	}
	return Wrap(ErrCodeInternal, err)
}

// FormatForCLI renders err for a terminal:
//
//	Error: <message>
//	  Hint: <suggestion>
//	  Code: <code>
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}
	be := asBibleError(err)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", be.Message)
	if be.Suggestion != "" {
		fmt.Fprintf(&sb, "  Hint: %s\n", be.Suggestion)
	}
	fmt.Fprintf(&sb, "  Code: %s\n", be.Code)
	return sb.String()
}

// errorEnvelope is what --json prints in place of the command's output.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code       string            `json:"code"`
	Kind       string            `json:"kind"`
	Category   Category          `json:"category"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
	Cause      string            `json:"cause,omitempty"`
}

// FormatJSON renders err as {"error": {...}} for --json output.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}
	be := asBibleError(err)

	body := errorBody{
		Code:       be.Code,
		Kind:       be.Kind.String(),
		Category:   be.Category,
		Message:    be.Message,
		Suggestion: be.Suggestion,
		Details:    be.Details,
	}
	if be.Cause != nil {
		body.Cause = be.Cause.Error()
	}
	return json.Marshal(errorEnvelope{Error: body})
}

// LogAttr returns err as an "error" group for slog records. Details are
// nested under "details" in key order.
func LogAttr(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	var be *BibleError
	if !errors.As(err, &be) {
		return slog.String("error", err.Error())
	}

	attrs := []any{
		slog.String("code", be.Code),
		slog.String("kind", be.Kind.String()),
		slog.String("message", be.Message),
	}
	if be.Cause != nil {
		attrs = append(attrs, slog.String("cause", be.Cause.Error()))
	}
	if len(be.Details) > 0 {
		keys := make([]string, 0, len(be.Details))
		for k := range be.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		details := make([]any, 0, len(keys))
		for _, k := range keys {
			details = append(details, slog.String(k, be.Details[k]))
		}
		attrs = append(attrs, slog.Group("details", details...))
	}
	return slog.Group("error", attrs...)
}
