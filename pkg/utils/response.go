package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse define la estructura estándar para las respuestas de error.
type ErrorResponse struct {
	Message string `json:"message"`
	// RestartPagination indica al cliente que debe reiniciar el listado
	// desde la primera página (ej. cursor malformado).
	RestartPagination bool `json:"restartPagination,omitempty"`
	// Retryable indica que el fallo es transitorio y se puede reintentar.
	Retryable bool `json:"retryable,omitempty"`
}

// SendSuccess envía una respuesta exitosa con un payload de datos.
func SendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"data": data,
	})
}

// SendError envía una respuesta de error con un formato estandarizado.
func SendError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error": ErrorResponse{Message: message},
	})
}

// --- Helpers específicos para errores comunes ---

func SendBadRequest(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, message)
}

// SendBadCursor responde 400 señalando al cliente que reinicie la paginación
// sin cursor. Un cursor roto nunca es un fallo de servidor.
func SendBadCursor(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": ErrorResponse{Message: message, RestartPagination: true},
	})
}

func SendNotFound(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, message)
}

// SendStoreUnavailable responde 503 marcando el fallo como reintenable.
func SendStoreUnavailable(c *gin.Context, message string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error": ErrorResponse{Message: message, Retryable: true},
	})
}

func SendInternalServerError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, message)
}
