package shell

import (
	"encoding/json"
	"errors"

	"src.devlab.sh/pkg/mathexp"
)

// An auxiliary struct for converting errors with diagnostics information to JSON.
type errorInJSON struct {
	FileName string `json:"fileName"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Message  string `json:"message"`
}

// An auxiliary struct for converting errors with only a message to JSON.
type simpleErrorInJSON struct {
	Message string `json:"message"`
}

// Converts the error into JSON.
func errorToJSON(err error) []byte {
	var e any
	var parseErr *mathexp.Error
	if errors.As(err, &parseErr) {
		e = []any{errorInJSON{parseErr.Context.Name,
			parseErr.Context.From, parseErr.Context.To, parseErr.Message}}
	} else {
		e = []any{simpleErrorInJSON{err.Error()}}
	}
	jsonError, errMarshal := json.Marshal(e)
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the errors to JSON"}]`)
	}
	return jsonError
}
