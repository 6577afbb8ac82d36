package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"parfumerie/internal/domain"
	"parfumerie/internal/service/session"
	"parfumerie/internal/service/storefront"
)

const (
	msgMissingSession = "Session manquante"
	msgInvalidSession = "Session invalide ou expirée"
	msgNotFound       = "Introuvable"
	msgBusy           = "Votre commande est en cours de traitement"
	msgUnavailable    = "Service momentanément indisponible. Veuillez réessayer."
	msgOrderFailed    = "Une erreur est survenue lors de la création de votre commande. Veuillez réessayer."
	msgInternal       = "Erreur interne"
	msgInvalidBody    = "Requête invalide"
)

func errorBody(message, field string) gin.H {
	body := gin.H{"error": message}
	if field != "" {
		body["field"] = field
	}
	return body
}

// writeError maps service errors to status codes. Collaborator details are
// logged by the request logger and never sent to the client.
func writeError(c *gin.Context, err error) {
	writeErrorWith(c, err, msgUnavailable)
}

func writeErrorWith(c *gin.Context, err error, unavailable string) {
	_ = c.Error(err)

	var (
		verr *domain.ValidationError
		cerr *domain.CollaboratorError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorBody(verr.Message, verr.Field))
	case errors.Is(err, session.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, errorBody(msgInvalidSession, ""))
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody(msgNotFound, ""))
	case errors.Is(err, storefront.ErrSubmissionInProgress):
		c.JSON(http.StatusConflict, errorBody(msgBusy, ""))
	case errors.As(err, &cerr):
		c.JSON(http.StatusBadGateway, errorBody(unavailable, ""))
	default:
		c.JSON(http.StatusInternalServerError, errorBody(msgInternal, ""))
	}
}
