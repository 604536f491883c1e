// Package siteconf manages layered account and host configuration records
// for an HPC facility:
//
// - Document trees (Node) parsed from YAML, with deterministic key order
// - A deep-merge engine with later-wins precedence (Merge)
// - A stable error model via Issues (dotted field path, code, message)
// - Forest loading of many YAML files under a merge strategy (ParseForest)
//
// Design policy:
// - Keep only the untyped tree, merge, and error model in the root package.
// - Place the typed record registry and validator under schema/, intake
//   conversion under intake/, host template projection under hostconf/,
//   and the CLI under cmd/siteconf.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	forest, err := siteconf.ParseForest(files, siteconf.MergeAll)
//	set, err := schema.DefaultRegistry().Validate(forest["merged-all"])
package siteconf
