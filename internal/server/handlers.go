package server

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/KaramelBytes/folio-cli/internal/dataurl"
	"github.com/KaramelBytes/folio-cli/internal/github"
	"github.com/KaramelBytes/folio-cli/internal/project"
	"github.com/KaramelBytes/folio-cli/internal/publish"
	"github.com/gin-gonic/gin"
)

// ProjectsResponse is the body of GET /projects.
type ProjectsResponse struct {
	Projects []project.Project `json:"projects"`
	Total    int               `json:"total"`
}

// PublishRequest is the body of POST /projects/:id/publish. Empty fields
// fall back to the server's configured defaults.
type PublishRequest struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
	Token  string `json:"token"`
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func ListProjects(repo *project.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ps := repo.List()
		c.JSON(http.StatusOK, ProjectsResponse{Projects: ps, Total: len(ps)})
	}
}

func CreateProject(repo *project.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := project.NewProject{
			Title:       c.PostForm("title"),
			Description: c.PostForm("description"),
		}
		fh, err := c.FormFile("file")
		switch {
		case err == nil:
			in.File = formAttachment(fh)
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := repo.Create(c.Request.Context(), in)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func formAttachment(fh *multipart.FileHeader) *project.Attachment {
	return &project.Attachment{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func GetProject(repo *project.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := repo.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// DownloadFile serves the decoded attachment with the stored filename.
func DownloadFile(repo *project.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := repo.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		if !p.HasFile() {
			c.JSON(http.StatusNotFound, gin.H{"error": "project has no file"})
			return
		}
		mediaType, data, err := dataurl.Decode(p.FileData)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		disposition := mime.FormatMediaType("attachment", map[string]string{"filename": p.Filename})
		if disposition == "" {
			disposition = "attachment"
		}
		c.Header("Content-Disposition", disposition)
		c.Data(http.StatusOK, mediaType, data)
	}
}

// DeleteProject requires ?confirm=true; without it nothing is removed.
func DeleteProject(repo *project.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		confirmed, _ := strconv.ParseBool(c.Query("confirm"))
		_, err := repo.Delete(c.Request.Context(), c.Param("id"), func(string) bool { return confirmed })
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func PublishProject(repo *project.Repository, pub *publish.Publisher, defaults publish.Target, defaultToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PublishRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		p, ok := repo.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		target := publish.Target{
			Owner:  firstNonEmpty(req.Owner, defaults.Owner),
			Repo:   firstNonEmpty(req.Repo, defaults.Repo),
			Branch: firstNonEmpty(req.Branch, defaults.Branch),
		}
		res, err := pub.Publish(c.Request.Context(), p, target, firstNonEmpty(req.Token, defaultToken))
		status := publish.StatusMessage(res, err)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": status})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": status, "path": res.Path, "created": res.Created, "operation_id": res.OperationID})
	}
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	var (
		verr     *project.ValidationError
		fre      *dataurl.FileReadError
		missing  publish.MissingCredentialError
		conflict *github.ConflictError
		auth     *github.AuthError
		limited  *github.RateLimitError
		down     *project.StoreUnavailableError
	)
	switch {
	case errors.As(err, &down):
		return http.StatusServiceUnavailable
	case errors.As(err, &verr), errors.As(err, &fre), errors.As(err, &missing):
		return http.StatusBadRequest
	case errors.Is(err, project.ErrDeleteDeclined), errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &auth):
		return http.StatusUnauthorized
	case errors.As(err, &limited):
		return http.StatusTooManyRequests
	case github.IsRemoteRejection(err):
		return http.StatusBadGateway
	}
	var te *github.TransportError
	if errors.As(err, &te) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
