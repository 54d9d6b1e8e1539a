package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"telephony-common/internal/audit"
	"telephony-common/internal/auth"
	"telephony-common/internal/calls"
	"telephony-common/internal/rbac"
	"telephony-common/internal/reporting"
	"telephony-common/internal/subscription"
	"telephony-common/pkg/logger"

	"github.com/gin-gonic/gin"
)

// maxParcelBytes bounds request bodies on the parcel decode endpoint.
const maxParcelBytes = 64 << 10

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Audit   *audit.Service
	Auth    *auth.Manager
	Calls   *calls.Service
	Phones  subscription.PhoneLookup
	Reports *reporting.Service
	Strings subscription.StringTable

	// IssueTokens enables POST /auth/token. Never set in production.
	IssueTokens bool
}

// --- Auth ---

type tokenRequest struct {
	OperatorID string `json:"operator_id"`
	Role       string `json:"role"`
}

// IssueToken hands out an access token without checking credentials. It is
// meant for local development only.
func (h Handlers) IssueToken(c *gin.Context) {
	if !h.IssueTokens || h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !rbac.IsKnownRole(req.Role) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	tok, err := h.Auth.Issue(time.Now(), req.OperatorID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": tok})
}

// --- Calls ---

// callIDParam parses the path id. Ids travel as int32 in parcels, so wider
// values are rejected here rather than truncated later.
func callIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.ParseInt(c.Param("call_id"), 10, 32)
	if err != nil || id == calls.InvalidCallID {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "call_id must be a 32-bit integer other than -1"})
		return 0, false
	}
	return int(id), true
}

func (h Handlers) callsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, calls.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
	case errors.Is(err, calls.ErrInvalidRecord), errors.Is(err, calls.ErrDecode):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call store failed"})
	}
}

// PutCall stores the snapshot in the body under the call id from the path.
func (h Handlers) PutCall(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "calls not configured"})
		return
	}
	id, ok := callIDParam(c)
	if !ok {
		return
	}
	var v calls.View
	if err := c.ShouldBindJSON(&v); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid call: " + err.Error()})
		return
	}
	if v.CallID != 0 && v.CallID != id {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "call_id in body does not match path"})
		return
	}
	v.CallID = id

	r := v.Record()
	if err := h.Calls.Save(c.Request.Context(), r); err != nil {
		h.callsError(c, err)
		return
	}
	h.journal(c, r, (*audit.Service).LogCallSaved)
	c.JSON(http.StatusOK, r.View())
}

// journal appends an audit event for r. Failures are logged and never fail the request.
func (h Handlers) journal(c *gin.Context, r *calls.Record,
	log func(*audit.Service, context.Context, string, string, string, *calls.Record) error) {
	if h.Audit == nil {
		return
	}
	ctx := c.Request.Context()
	operatorID, _ := auth.OperatorID(ctx)
	role, _ := auth.Role(ctx)
	if err := log(h.Audit, ctx, operatorID, role, c.ClientIP(), r); err != nil {
		logger.FromGin(c).Warn("audit append failed", "call_id", r.CallID(), "err", err)
	}
}

func (h Handlers) GetCall(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "calls not configured"})
		return
	}
	id, ok := callIDParam(c)
	if !ok {
		return
	}
	r, err := h.Calls.Get(c.Request.Context(), id)
	if err != nil {
		h.callsError(c, err)
		return
	}
	c.JSON(http.StatusOK, r.View())
}

// GetCallParcel returns the stored record in parcel form.
func (h Handlers) GetCallParcel(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "calls not configured"})
		return
	}
	id, ok := callIDParam(c)
	if !ok {
		return
	}
	b, err := h.Calls.Encode(c.Request.Context(), id)
	if err != nil {
		h.callsError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", b)
}

// DecodeParcel decodes a parcel body and echoes the record as JSON.
func (h Handlers) DecodeParcel(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "calls not configured"})
		return
	}
	b, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxParcelBytes))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "parcel too large"})
		return
	}
	r, err := h.Calls.Decode(c.Request.Context(), b)
	if err != nil {
		h.callsError(c, err)
		return
	}
	if r.CallID() != calls.InvalidCallID {
		h.journal(c, r, (*audit.Service).LogParcelDecoded)
	}
	c.JSON(http.StatusOK, r.View())
}

// ListCallAudit returns the write journal for a call, newest first.
func (h Handlers) ListCallAudit(c *gin.Context) {
	if h.Audit == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit not configured"})
		return
	}
	id, ok := callIDParam(c)
	if !ok {
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}
	evs, err := h.Audit.List(c.Request.Context(), id, limit)
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit read failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"call_id": id, "events": evs})
}

// CallsSummary aggregates stored calls, optionally filtered by ?state=.
func (h Handlers) CallsSummary(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reports not configured"})
		return
	}
	out, err := h.Reports.CallsSummary(c.Request.Context(), reporting.CallsSummaryRequest{States: c.QueryArray("state")})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Subscriptions ---

type forwardRequest struct {
	Intent *subscription.Intent `json:"intent"`
	Target string               `json:"target"`
}

// ForwardIntent builds an intent for target carrying the subscription found
// in the incoming intent.
func (h Handlers) ForwardIntent(c *gin.Context) {
	var req forwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Target == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "target required"})
		return
	}
	sc := subscription.FromIntent(req.Intent)
	logger.FromGin(c).Debug("forwarding intent", "target", req.Target, "has_subscription", sc.HasSubscriptionID())
	c.JSON(http.StatusOK, sc.Intent(req.Target))
}

type attachRequest struct {
	Intent       *subscription.Intent `json:"intent"`
	Subscription *subscription.Info   `json:"subscription"`
}

func (h Handlers) AttachSubscription(c *gin.Context) {
	var req attachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Intent == nil || req.Subscription == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "intent and subscription required"})
		return
	}
	subscription.AttachTo(req.Intent, *req.Subscription)
	c.JSON(http.StatusOK, req.Intent)
}

type titleRequest struct {
	Intent     *subscription.Intent `json:"intent"`
	TemplateID int                  `json:"template_id"`
}

type titleRecorder struct {
	title string
	set   bool
}

func (t *titleRecorder) SetTitle(s string) { t.title, t.set = s, true }

// Title renders the title a screen opened with the intent would show.
func (h Handlers) Title(c *gin.Context) {
	if h.Strings == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "strings not configured"})
		return
	}
	var req titleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	var rec titleRecorder
	subscription.FromIntent(req.Intent).ApplyTitle(&rec, h.Strings, req.TemplateID)
	c.JSON(http.StatusOK, gin.H{"title": rec.title, "applied": rec.set})
}

type phoneRequest struct {
	Intent *subscription.Intent `json:"intent"`
}

func (h Handlers) ResolvePhone(c *gin.Context) {
	if h.Phones == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "phones not configured"})
		return
	}
	var req phoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	sc := subscription.FromIntent(req.Intent)
	c.JSON(http.StatusOK, gin.H{
		"subscription_id": sc.SubscriptionID(),
		"phone":           sc.Phone(h.Phones),
	})
}
