// Package commitmsg renders the commit message recorded for each site
// publication. Messages are templates with {name} placeholders filled from
// the deployment being published.
package commitmsg
