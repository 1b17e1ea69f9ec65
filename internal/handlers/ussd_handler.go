package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ArowuTest/homeradio-cashout/internal/services"
	"github.com/ArowuTest/homeradio-cashout/internal/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

// maxCallbackBody caps the gateway payload we are willing to read
const maxCallbackBody = 64 << 10

// FieldAliases lists the accepted payload keys per field, in priority order
type FieldAliases struct {
	SessionID []string
	Phone     []string
	UserID    []string
	Text      []string
}

// USSDHandler handles gateway callbacks
type USSDHandler struct {
	sessionService services.SessionService
	aliases        FieldAliases
}

// NewUSSDHandler creates a new USSDHandler
func NewUSSDHandler(sessionService services.SessionService, aliases FieldAliases) *USSDHandler {
	return &USSDHandler{
		sessionService: sessionService,
		aliases:        aliases,
	}
}

// USSDResponse is the JSON body returned to the gateway. Some gateways read
// UserID, others userID, so both are sent.
type USSDResponse struct {
	SessionID       string `json:"sessionID"`
	UserIDUpper     string `json:"UserID"`
	UserID          string `json:"userID"`
	MSISDN          string `json:"msisdn"`
	ContinueSession bool   `json:"continueSession"`
	Message         string `json:"message"`
}

// Callback handles GET and POST /ussd/callback
func (h *USSDHandler) Callback(c *gin.Context) {
	payload := h.payload(c)

	phone := utils.PickField(payload, h.aliases.Phone)
	userID := utils.PickField(payload, h.aliases.UserID)
	if userID == "" {
		userID = phone
	}
	req := services.USSDRequest{
		SessionID: utils.PickField(payload, h.aliases.SessionID),
		MSISDN:    phone,
		UserID:    userID,
		Text:      utils.PickField(payload, h.aliases.Text),
	}

	reply := h.sessionService.HandleRequest(c.Request.Context(), req)

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, USSDResponse{
		SessionID:       reply.SessionID,
		UserIDUpper:     reply.UserID,
		UserID:          reply.UserID,
		MSISDN:          reply.MSISDN,
		ContinueSession: reply.ContinueSession,
		Message:         reply.Message,
	})
}

// payload merges query parameters and the body; body keys win
func (h *USSDHandler) payload(c *gin.Context) map[string]string {
	data := map[string]string{}
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			data[k] = v[0]
		}
	}
	if c.Request.Body == nil {
		return data
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
	if err != nil {
		slog.Warn("Failed to read USSD callback body", "error", err)
		return data
	}
	for k, v := range parseBody(c.ContentType(), raw) {
		data[k] = v
	}
	return data
}

func parseBody(contentType string, raw []byte) map[string]string {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	switch {
	case strings.Contains(contentType, "application/json"):
		fields, _ := parseJSON(raw)
		return fields
	case strings.Contains(contentType, "application/x-www-form-urlencoded"):
		return parseForm(raw)
	}
	if fields, err := parseJSON(raw); err == nil {
		return fields
	}
	return parseForm(raw)
}

func parseJSON(raw []byte) (map[string]string, error) {
	var body map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(body))
	for k, v := range body {
		switch val := v.(type) {
		case nil:
		case string:
			fields[k] = val
		case json.Number:
			fields[k] = val.String()
		case bool:
			fields[k] = fmt.Sprint(val)
		}
	}
	return fields, nil
}

func parseForm(raw []byte) map[string]string {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil
	}
	fields := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields
}
