package devpulse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Info is the metadata returned by the backend's info call.
//
// Empty fields mean the backend did not report them; the poller shows
// [Placeholder] in that case.
type Info struct {
	Version     string
	Environment string
}

// InfoExtractor decodes the body of the info call.
//
// An error means the info call failed: the poller then leaves the current
// version and environment untouched.
type InfoExtractor func(body []byte) (Info, error)

// DefaultInfoExtractor reads the top-level "version" and "env" fields.
var DefaultInfoExtractor = JSONInfoExtractor("version", "env")

// JSONInfoExtractor returns an [InfoExtractor] that reads version and
// environment from JSON fields addressed with dot notation.
//
// For example, "meta.build.version" reads {"meta": {"build": {"version": "1.2.0"}}}.
// String values are used as-is; numbers and booleans are formatted. Missing
// fields, nulls, objects and arrays yield an empty string. A body that is not
// a JSON object is an error.
//
// Example:
//
//	be, err := devpulse.NewBackend("http://localhost:8080",
//	    devpulse.WithInfoExtractor(devpulse.JSONInfoExtractor("build.version", "app.env")),
//	)
func JSONInfoExtractor(versionPath, envPath string) InfoExtractor {
	versionParts := strings.Split(versionPath, ".")
	envParts := strings.Split(envPath, ".")

	return func(body []byte) (Info, error) {
		var data map[string]interface{}
		if err := json.Unmarshal(body, &data); err != nil {
			return Info{}, fmt.Errorf("invalid info body: %w", err)
		}
		if data == nil {
			return Info{}, errors.New("invalid info body: expected JSON object, got null")
		}

		return Info{
			Version:     extractJSONPath(data, versionParts),
			Environment: extractJSONPath(data, envParts),
		}, nil
	}
}

// extractJSONPath walks a decoded JSON object using dot notation parts.
func extractJSONPath(data interface{}, parts []string) string {
	current := data

	for _, part := range parts {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return ""
		}
		current, ok = obj[part]
		if !ok {
			return ""
		}
	}

	switch v := current.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// orPlaceholder maps an empty value to [Placeholder].
func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
