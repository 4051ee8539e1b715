// ABOUTME: Main astgc package providing version information and package documentation
// ABOUTME: This is the root package for the expression-tree collector and its tooling

// Package astgc is a garbage-collected node allocator for expression trees
// with trail-based undo. The collector lives in package gc; graph and
// heapdump analyse snapshots of its heap; cmd/astgc drives both.
package astgc

// Version is the semantic version of astgc
const Version = "0.1.0-dev"
