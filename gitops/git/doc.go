// Package git provides the local version-control operations and the
// hosting-platform abstractions used to publish a site.
//
// VCS is the capability set the publisher needs from a working tree
// (init, status, config, add, commit, remotes, branch rename, push).
// Repo implements it by shelling out to the git binary, so callers can
// substitute a fake in tests.
//
// Provisioner ensures the remote repository exists. Implementations
// exist for GitHub and GitLab in sub-packages. ProvisionerFunc is a
// convenience adapter that lets plain functions satisfy the interface.
//
// Platform describes the git host and the pages host a site lives on and
// derives the remote URL, the public URL and the committer identity.
package git
