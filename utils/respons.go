package utils

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error body of the lunch API: a message plus, for
// validation failures, a field -> messages map.
type ErrorResponse struct {
	Error    string              `json:"error"`
	Messages map[string][]string `json:"messages,omitempty"`
}

func RespondJSON(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

func RespondValidation(c *gin.Context, messages map[string][]string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation error", Messages: messages})
}

// JoinValidationMessages renders field -> messages as one display string,
// one segment per field in field order.
func JoinValidationMessages(messages map[string][]string) string {
	fields := make([]string, 0, len(messages))
	for f := range messages {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	segments := make([]string, 0, len(fields))
	for _, f := range fields {
		segments = append(segments, f+": "+strings.Join(messages[f], ", "))
	}
	return strings.Join(segments, " • ")
}
