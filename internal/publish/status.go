package publish

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/folio-cli/internal/github"
)

// StatusMessage renders the outcome of Publish as one line for the user.
// Remote rejections carry GitHub's own message when it sent one.
func StatusMessage(res *Result, err error) string {
	if err == nil {
		if res == nil {
			return "publish finished"
		}
		return fmt.Sprintf("published: %s", res.Path)
	}
	var missing MissingCredentialError
	if errors.As(err, &missing) {
		return fmt.Sprintf("publish rejected: %s", missing.Error())
	}
	var apiErr *github.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Sprintf("publish failed: %s", apiErr.Message)
		}
		return fmt.Sprintf("publish failed: %s", apiErr.Error())
	}
	var te *github.TransportError
	if errors.As(err, &te) {
		return fmt.Sprintf("publish error: %v", te.Err)
	}
	return fmt.Sprintf("publish failed: %v", err)
}
