// Package gitlab implements a git.Provisioner that creates the site
// project on GitLab (gitlab.com or self-managed).
package gitlab
