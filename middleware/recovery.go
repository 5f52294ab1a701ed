package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/view"
	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into the application's error page
// instead of killing the request. The panic and its stack are logged
// with the request id; the employee sees the same French error view as
// any other server failure.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"error", err,
					"request_id", GetRequestID(c),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)

				c.Abort()
				c.Data(http.StatusInternalServerError, "text/html; charset=utf-8",
					[]byte(view.ErrorUI("Erreur 500")))
			}
		}()

		c.Next()
	}
}
