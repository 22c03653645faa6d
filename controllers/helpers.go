package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yeremiapane/lunchorder/calendar"
	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

func init() {
	// Report json field names in validation messages.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindJSON binds the request body and answers 400 with field messages on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondValidation(c, validationMessages(err))
		return false
	}
	return true
}

func validationMessages(err error) map[string][]string {
	out := make(map[string][]string)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fe.Field()] = append(out[fe.Field()], fieldMessage(fe))
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		out[typeErr.Field] = []string{"Not a valid " + typeErr.Type.String() + "."}
		return out
	}

	out["_schema"] = []string{"Invalid input data."}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Missing data for required field."
	case "email":
		return "Not a valid email address."
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ") + "."
	case "min":
		return "Shorter than minimum length " + fe.Param() + "."
	case "max":
		return "Longer than maximum length " + fe.Param() + "."
	case "datetime":
		return "Not a valid date."
	default:
		return "Invalid value."
	}
}

// paramID parses a positive integer path parameter; it answers 404 otherwise.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("Not found"))
		return 0, false
	}
	return uint(id), true
}

// queryDate reads a YYYY-MM-DD query parameter, defaulting to today.
func queryDate(c *gin.Context, name string) (string, bool) {
	raw := c.Query(name)
	if raw == "" {
		return calendar.FormatDate(calendar.Midnight(time.Now())), true
	}
	if _, err := calendar.ParseDate(raw); err != nil {
		utils.RespondValidation(c, map[string][]string{name: {"Not a valid date."}})
		return "", false
	}
	return raw, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func today() string {
	return calendar.FormatDate(calendar.Midnight(time.Now()))
}

// endBound is the stored form of an end date, used in range queries.
func endBound(e models.EndDate) string {
	if e.IsOpen() {
		return models.NoEndDateSentinel
	}
	return string(e)
}

func currentUserID(c *gin.Context) uint {
	v, _ := c.Get("userID")
	id, _ := v.(uint)
	return id
}

func isAdmin(c *gin.Context) bool {
	role, _ := c.Get("role")
	return role == string(models.RoleAdmin)
}

func validDate(s string) bool {
	_, err := calendar.ParseDate(s)
	return err == nil
}
