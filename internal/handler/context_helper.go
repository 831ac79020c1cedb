package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mentor-site-api/internal/dashboard"
	"github.com/noah-isme/mentor-site-api/internal/middleware"
	"github.com/noah-isme/mentor-site-api/internal/models"
	appErrors "github.com/noah-isme/mentor-site-api/pkg/errors"
	"github.com/noah-isme/mentor-site-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.CurrentUser(c)
}

// confirmFromRequest treats ?confirm=true or an X-Confirm: true header as the
// operator's approval of a destructive action.
func confirmFromRequest(c *gin.Context) dashboard.Confirmer {
	approved := isTrue(c.Query("confirm")) || isTrue(c.GetHeader("X-Confirm"))
	return dashboard.ConfirmFunc(func(context.Context, string) bool { return approved })
}

func isTrue(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}

// bindJSON decodes the request body into dst, responding with a validation
// error on malformed input.
func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

// listView is attached to mutation responses so the console can redraw the
// re-fetched list without another round trip.
type listView[T any] struct {
	Items []T                    `json:"items"`
	State dashboard.RequestState `json:"state"`
}

func viewOf[T any](list *dashboard.ListController[T]) listView[T] {
	return listView[T]{Items: list.Items(), State: list.State()}
}

// declined answers a delete the operator did not confirm: nothing changed.
func declined(c *gin.Context) {
	middleware.SkipAudit(c)
	response.JSON(c, http.StatusOK, gin.H{"deleted": false}, map[string]interface{}{"confirmRequired": true})
}

// publicMeta carries the cache flag and elapsed time of a public list response.
func publicMeta(c *gin.Context, hit bool) map[string]interface{} {
	middleware.SetCacheHit(c, hit)
	middleware.StampProcessingTime(c)
	return middleware.ExtractMeta(c)
}
