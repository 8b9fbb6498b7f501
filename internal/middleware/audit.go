// audit.go provides Gin middleware that records real operator actions on the
// admin API and forwards them to the configured audit shippers. Operator
// actions never land in the audit_events table — that table is synthetic bait
// and mixing real records into it would leak the operator's activity to an
// intruder reading it.
package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/decoydrop/decoydrop/internal/audit"
	"github.com/decoydrop/decoydrop/internal/safego"
)

// OperatorAuditMiddleware ships a record for every non-GET request that
// reaches the admin API. Shipping is asynchronous so it never adds latency to
// the request path.
func OperatorAuditMiddleware(shipper audit.Shipper) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if shipper == nil {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "OPTIONS" {
			return
		}

		operator := ""
		if v, exists := c.Get("operator"); exists {
			if name, ok := v.(string); ok {
				operator = name
			}
		}

		rec := &audit.Record{
			Timestamp:     time.Now(),
			Kind:          audit.KindOperator,
			Action:        fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path),
			Operator:      operator,
			OriginAddress: c.ClientIP(),
			StatusCode:    c.Writer.Status(),
		}

		safego.Go(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shipper.Ship(ctx, rec)
		})
	}
}
