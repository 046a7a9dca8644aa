// Package main hosts the decant CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once, then hands off to the
// runner for "run" and "cleanup", to the ledger for "history" and "metadata",
// and to the archive sniffer for "sniff". Tables are rendered with go-pretty
// when stdout is a terminal and as tab-separated rows otherwise.
package main
