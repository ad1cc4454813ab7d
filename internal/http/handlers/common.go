package handlers

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ridebooking/internal/domain"
)

// Stringish tolerates string, number or bool JSON values as a string.
type Stringish string

func (s *Stringish) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case string(b) == "null" || len(b) == 0:
		*s = ""
		return nil
	case len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Stringish(str)
		return nil
	default:
		*s = Stringish(string(b))
		return nil
	}
}

func (s Stringish) String() string { return string(s) }

// Flag tolerates true/false, "true"/"on"/"yes" and 1/0.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	v := strings.ToLower(strings.Trim(string(bytes.TrimSpace(b)), `"`))
	switch v {
	case "true", "1", "on", "yes":
		*f = true
	default:
		*f = false
	}
	return nil
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondDomainError(c, domain.ValidationError{Msg: "No data provided"})
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondDomainError(c, domain.ValidationError{Msg: "Invalid JSON body", Err: err})
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return n
}
