package main

import (
	"net/http"

	"telephony-common/internal/audit"
	"telephony-common/internal/auth"
	"telephony-common/internal/calls"
	"telephony-common/internal/httpapi"
	"telephony-common/internal/rbac"
	"telephony-common/internal/reporting"
	"telephony-common/internal/subscription"
	"telephony-common/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Title templates served by POST /v1/subscriptions/title.
var titleStrings = subscription.Strings{
	1: "Call settings (%s)",
	2: "Call forwarding (%s)",
	3: "Call barring (%s)",
	4: "Fixed dialing numbers (%s)",
	5: "Voicemail (%s)",
}

type routeDeps struct {
	Audit       *audit.Service
	Auth        *auth.Manager
	Calls       *calls.Service
	Phones      subscription.PhoneLookup
	Reports     *reporting.Service
	Metrics     prometheus.Gatherer
	IssueTokens bool
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, d routeDeps) {
	h := httpapi.Handlers{
		Audit:       d.Audit,
		Auth:        d.Auth,
		Calls:       d.Calls,
		Phones:      d.Phones,
		Reports:     d.Reports,
		Strings:     titleStrings,
		IssueTokens: d.IssueTokens,
	}

	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler(d.Metrics)))
	if d.IssueTokens {
		r.POST("/auth/token", h.IssueToken)
	}

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(d.Auth))

	read := rbac.RequireAnyRole(rbac.RoleOperator, rbac.RoleViewer)
	write := rbac.RequireAnyRole(rbac.RoleOperator)

	// CALLS routes
	callsGroup := v1.Group("/calls")
	{
		callsGroup.GET("/:call_id", read, h.GetCall)
		callsGroup.GET("/:call_id/parcel", read, h.GetCallParcel)
		callsGroup.PUT("/:call_id", write, h.PutCall)
		callsGroup.POST("/parcel", read, h.DecodeParcel)
		callsGroup.GET("/:call_id/audit", rbac.RequireAnyRole(rbac.RoleAdmin), h.ListCallAudit)
	}

	// REPORTS routes
	v1.GET("/reports/calls", read, h.CallsSummary)

	// SUBSCRIPTION routes; all are pure transformations of the posted intent.
	subs := v1.Group("/subscriptions")
	subs.Use(read)
	{
		subs.POST("/intent", h.ForwardIntent)
		subs.POST("/attach", h.AttachSubscription)
		subs.POST("/title", h.Title)
		subs.POST("/phone", h.ResolvePhone)
	}
}
