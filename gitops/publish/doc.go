// Package publish deploys a static site folder to a Pages-backed
// repository. A Sequencer validates the request, ensures the remote
// repository exists through a git.Provisioner, then drives a git.VCS
// through init, status, identity config, add, commit, remote setup,
// branch rename and push.
//
// Run executes one deployment synchronously and always returns an
// Outcome carrying a single human-readable message; Start runs it on a
// goroutine for callers that must stay responsive. Two deployments of the
// same folder never interleave: the second is rejected with ErrBusy.
package publish
