// Package cache maps (component, version, platform) keys to paths in the
// local artifact cache. The cache is append-only from the launcher's point
// of view: presence of a non-empty file settles the question.
package cache
