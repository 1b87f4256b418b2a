package publish

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KaramelBytes/folio-cli/internal/dataurl"
	"github.com/KaramelBytes/folio-cli/internal/github"
	"github.com/KaramelBytes/folio-cli/internal/logging"
	"github.com/KaramelBytes/folio-cli/internal/project"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBranch is the branch commits land on unless configured.
	DefaultBranch = "main"
	remoteDir     = "_projects"
)

// MissingCredentialError is returned before any network call when no token
// was supplied.
type MissingCredentialError struct{}

func (MissingCredentialError) Error() string {
	return "a GitHub personal access token is required to publish"
}

// Target identifies the repository and branch a project is published to.
type Target struct {
	Owner  string
	Repo   string
	Branch string
}

// Result describes a successful publish.
type Result struct {
	OperationID string
	Path        string
	SHA         string
	CommitSHA   string
	Created     bool
}

// ContentAPI is the part of the GitHub client the publisher needs.
type ContentAPI interface {
	GetContent(ctx context.Context, owner, repo, path, ref string) (*github.Content, error)
	PutContent(ctx context.Context, owner, repo, path string, req github.PutContentRequest) (*github.PutContentResponse, error)
}

// Publisher pushes single projects to a repository's contents API.
type Publisher struct {
	newClient func(credential string) ContentAPI
	log       logrus.FieldLogger
}

// New returns a Publisher talking to baseURL (empty means api.github.com).
func New(baseURL string, httpTimeout time.Duration, log logrus.FieldLogger) *Publisher {
	return NewWithClientFactory(func(credential string) ContentAPI {
		return github.NewClientWithBaseURL(credential, httpTimeout, baseURL)
	}, log)
}

// NewWithClientFactory lets callers supply their own ContentAPI per credential.
func NewWithClientFactory(newClient func(credential string) ContentAPI, log logrus.FieldLogger) *Publisher {
	if log == nil {
		log = logging.Discard()
	}
	return &Publisher{newClient: newClient, log: log}
}

// RemotePath is where a project lives in the repository. It depends only on
// the project, so republishing always targets the same file.
func RemotePath(p project.Project) string {
	name := p.Filename
	if name == "" {
		name = p.Title
	}
	return fmt.Sprintf("%s/%s_%s.data", remoteDir, p.ID, name)
}

type metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Payload returns the base64 content to upload: the attached file without
// its data URL header, or a small JSON metadata document.
func Payload(p project.Project) (string, error) {
	if p.HasFile() {
		return dataurl.StripHeader(p.FileData), nil
	}
	b, err := json.Marshal(metadata{Title: p.Title, Description: p.Description})
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// CommitMessage names the project in the commit.
func CommitMessage(p project.Project) string {
	return fmt.Sprintf("Add project %s (%s) via folio", p.Title, p.ID)
}

// Publish creates or updates the project's remote file. It reads the file
// first to learn its sha; a 404 means create. There is no retry, and p is
// never modified.
func (pb *Publisher) Publish(ctx context.Context, p project.Project, target Target, credential string) (*Result, error) {
	if credential == "" {
		return nil, MissingCredentialError{}
	}
	if target.Owner == "" {
		return nil, &project.ValidationError{Field: "Owner", Reason: "is required"}
	}
	if target.Repo == "" {
		return nil, &project.ValidationError{Field: "Repo", Reason: "is required"}
	}
	branch := target.Branch
	if branch == "" {
		branch = DefaultBranch
	}

	path := RemotePath(p)
	content, err := Payload(p)
	if err != nil {
		return nil, err
	}
	opID := uuid.NewString()
	log := pb.log.WithFields(logrus.Fields{
		"op":     opID,
		"owner":  target.Owner,
		"repo":   target.Repo,
		"branch": branch,
		"path":   path,
	})
	client := pb.newClient(credential)

	var sha string
	var serverErr *github.ServerError
	existing, err := client.GetContent(ctx, target.Owner, target.Repo, path, branch)
	switch {
	case err == nil:
		sha = existing.SHA
		log.WithField("sha", sha).Debug("remote file exists, updating")
	case errors.Is(err, github.ErrNotFound):
		log.Debug("remote file absent, creating")
	case errors.As(err, &serverErr):
		// A 5xx lookup is inconclusive; write without sha.
		log.WithError(err).Warn("lookup of remote file failed, writing without sha")
	default:
		log.WithError(err).Warn("lookup of remote file failed")
		return nil, fmt.Errorf("look up %s: %w", path, err)
	}

	resp, err := client.PutContent(ctx, target.Owner, target.Repo, path, github.PutContentRequest{
		Message: CommitMessage(p),
		Content: content,
		Branch:  branch,
		SHA:     sha,
	})
	if err != nil {
		log.WithError(err).Warn("publish rejected")
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	res := &Result{
		OperationID: opID,
		Path:        resp.Content.Path,
		SHA:         resp.Content.SHA,
		CommitSHA:   resp.Commit.SHA,
		Created:     sha == "",
	}
	if res.Path == "" {
		res.Path = path
	}
	log.WithField("created", res.Created).Info("project published")
	return res, nil
}
