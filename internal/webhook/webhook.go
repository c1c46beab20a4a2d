// Package webhook receives payment outcomes over HTTP: a token-protected
// callback for trusted payment services and the Omise event webhook.
package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/omise/omise-go"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/booking-engine/internal/apperr"
	"github.com/Leganyst/booking-engine/internal/checkout"
	"github.com/Leganyst/booking-engine/internal/gateway"
	"github.com/Leganyst/booking-engine/internal/model"
)

const (
	TokenHeader   = "X-Callback-Token"
	maxBodyBytes  = 64 << 10
	omiseComplete = "charge.complete"
)

// OutcomeHandler is the part of the orchestrator the webhook drives.
type OutcomeHandler interface {
	HandlePaymentOutcome(ctx context.Context, in checkout.PaymentOutcome) (*model.CheckoutSession, error)
}

type Server struct {
	handler OutcomeHandler
	omise   gateway.OmiseAPI
	token   string
	log     logrus.FieldLogger
}

type Option func(*Server)

// WithOmise enables the Omise webhook; events are re-fetched from the API
// before they are trusted.
func WithOmise(api gateway.OmiseAPI) Option { return func(s *Server) { s.omise = api } }

// WithCallbackToken enables the generic callback guarded by token.
func WithCallbackToken(token string) Option { return func(s *Server) { s.token = token } }

func New(handler OutcomeHandler, log logrus.FieldLogger, opts ...Option) *Server {
	s := &Server{handler: handler, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func init() { gin.SetMode(gin.ReleaseMode) }

// Routes builds the HTTP handler. Unconfigured endpoints are not mounted.
func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog(), limitBody(maxBodyBytes))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	pay := r.Group("/v1/payments")
	if s.token != "" {
		pay.POST("/callback", requireToken(s.token), s.callback)
	}
	if s.omise != nil {
		pay.POST("/omise", s.omiseEvent)
	}
	return r
}

func requireToken(token string) gin.HandlerFunc {
	want := []byte(token)
	return func(c *gin.Context) {
		if subtle.ConstantTimeCompare([]byte(c.GetHeader(TokenHeader)), want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Code: apperr.CodeInvalidArgument, Message: "invalid callback token"})
			return
		}
		c.Next()
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("http request")
	}
}

type callbackRequest struct {
	SessionID        string          `json:"session_id"`
	Outcome          gateway.Outcome `json:"outcome"`
	GatewayReference string          `json:"gateway_reference"`
	Reason           string          `json:"reason"`
}

type sessionResponse struct {
	SessionID string             `json:"session_id"`
	State     model.SessionState `json:"state"`
	BookingID string             `json:"booking_id,omitempty"`
}

type errorResponse struct {
	Code     apperr.Code       `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (s *Server) callback(c *gin.Context) {
	var req callbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: apperr.CodeInvalidArgument, Message: "malformed body"})
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Code: apperr.CodeInvalidArgument, Message: "session_id is required"})
		return
	}

	sess, err := s.handler.HandlePaymentOutcome(c.Request.Context(), checkout.PaymentOutcome{
		SessionID:        req.SessionID,
		Outcome:          req.Outcome,
		GatewayReference: req.GatewayReference,
		Reason:           req.Reason,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{SessionID: sess.ID, State: sess.State, BookingID: deref(sess.BookingID)})
}

type omiseIncoming struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// omiseEvent answers 2xx for everything Omise should not redeliver and 5xx
// only for transient failures.
func (s *Server) omiseEvent(c *gin.Context) {
	var inc omiseIncoming
	if err := c.ShouldBindJSON(&inc); err != nil || inc.ID == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	ev, err := s.omise.RetrieveEvent(inc.ID)
	if err != nil {
		s.log.WithError(err).WithField("event_id", inc.ID).Warn("omise: retrieve event")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	log := s.log.WithFields(logrus.Fields{"event_id": inc.ID, "event_key": ev.Key})
	if ev.Key != omiseComplete {
		log.Debug("omise: skip event")
		c.Status(http.StatusOK)
		return
	}

	ch, err := chargeOf(ev)
	if err != nil {
		log.WithError(err).Error("omise: decode charge")
		c.Status(http.StatusOK)
		return
	}
	sessionID, _ := ch.Metadata[gateway.MetaSessionID].(string)
	if sessionID == "" {
		log.WithField("charge_id", ch.ID).Warn("omise: charge without session_id")
		c.Status(http.StatusOK)
		return
	}

	in := checkout.PaymentOutcome{SessionID: sessionID, Outcome: gateway.OutcomeSuccess, GatewayReference: ch.ID}
	if ch.Status != "successful" {
		in.Outcome = gateway.OutcomeFailure
		in.Reason = failureReason(ch)
	}
	if _, err := s.handler.HandlePaymentOutcome(c.Request.Context(), in); err != nil {
		if apperr.CodeOf(err) == apperr.CodeUnknown {
			log.WithError(err).Error("omise: apply outcome")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		log.WithError(err).Warn("omise: outcome rejected")
	}
	c.Status(http.StatusOK)
}

func chargeOf(ev *omise.Event) (*omise.Charge, error) {
	raw, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, err
	}
	var ch omise.Charge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func failureReason(ch *omise.Charge) string {
	if ch.FailureCode != nil && *ch.FailureCode != "" {
		return *ch.FailureCode
	}
	return "charge " + string(ch.Status)
}

func (s *Server) writeError(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		s.log.WithError(err).Error("webhook: internal error")
		c.JSON(http.StatusInternalServerError, errorResponse{Code: apperr.CodeUnknown, Message: "internal error"})
		return
	}
	c.JSON(e.Code.HTTPStatus(), errorResponse{Code: e.Code, Message: e.Message, Metadata: e.Metadata})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
