// Package handoff terminates the launcher by replacing its process image
// with a target executable. The success path never returns to the caller;
// failures surface as LaunchError.
package handoff
