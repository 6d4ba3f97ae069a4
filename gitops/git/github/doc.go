// Package github implements a git.Provisioner that creates the site
// repository on GitHub (cloud or enterprise). Configure with a Config
// containing the repository name, description and personal access token.
// Set EnterpriseHost for GitHub Enterprise installations and Org to create
// the repository under an organisation instead of the token owner.
package github
