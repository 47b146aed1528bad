// Package response writes JSON responses. Successful payloads are written
// bare (the browser client reads them directly); failures share one envelope.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the error envelope.
type Body struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Detail  string `json:"detail,omitempty"`
}

// Message is the confirmation payload for operations with nothing to return.
type Message struct {
	Message string `json:"message"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Confirm sends a 200 confirmation message.
func Confirm(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, Message{Message: msg})
}

// Error sends the error envelope with the given status.
func Error(c *gin.Context, status int, msg, detail string) {
	c.JSON(status, Body{Success: false, Error: msg, Detail: detail})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	Error(c, http.StatusBadRequest, err, "")
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	Error(c, http.StatusUnauthorized, err, "")
}
