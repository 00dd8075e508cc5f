// Package bobinfo holds build-time version metadata and the runtime
// quiet/debug/verbose switches every command reads, plus the BOB_*
// environment injection every checkout/build/package step's exec
// environment carries (§6 "Environment variables").
package bobinfo
