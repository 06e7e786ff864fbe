package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"wearxture_back_end/internal/catalog"
	"wearxture_back_end/internal/errs"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/rs/zerolog"
)

// RespondError traduit une erreur de service en réponse JSON.
func RespondError(c *gin.Context, err error) {
	status := errs.StatusCode(err)
	body := gin.H{"error": err.Error()}

	var shortage *errs.InsufficientInventoryError
	if errors.As(err, &shortage) {
		body["shortages"] = shortage.Shortages
	}
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("❌ Erreur serveur")
		if status == http.StatusInternalServerError {
			body["error"] = "Erreur interne"
		}
	}
	c.AbortWithStatusJSON(status, body)
}

// BindJSON répond 400 si le corps est invalide.
func BindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return false
	}
	return true
}

// ParamID lit un UUID de chemin et répond 400 s'il est invalide.
func ParamID(c *gin.Context, name string) (gocql.UUID, bool) {
	id, err := catalog.ParseID(c.Param(name))
	if err != nil {
		RespondError(c, err)
		return gocql.UUID{}, false
	}
	return id, true
}

// Uploads ouvre les fichiers d'un champ multipart; close doit toujours être appelé.
func Uploads(c *gin.Context, field string) (files []catalog.Upload, close func(), err error) {
	var opened []io.Closer
	close = func() {
		for _, f := range opened {
			f.Close()
		}
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, close, errs.Validation("formulaire multipart attendu")
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, close, errs.Validation("champ %q vide", field)
	}
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return nil, close, err
		}
		opened = append(opened, f)
		files = append(files, upload(h, f))
	}
	return files, close, nil
}

func upload(h *multipart.FileHeader, body io.Reader) catalog.Upload {
	return catalog.Upload{
		Filename:    h.Filename,
		ContentType: h.Header.Get("Content-Type"),
		Size:        h.Size,
		Body:        body,
	}
}
