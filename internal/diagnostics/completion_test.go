package diagnostics

import (
	"testing"

	"github.com/go-openapi/testify/v2/require"
)

func TestClassifyTopLevel(t *testing.T) {
	src := `su`
	result := Classify(Request{Source: src, Offset: len(src)})
	require.Equal(t, ContextTopLevel, result.Context)
	require.Equal(t, "su", result.Prefix)
}

func TestClassifyInsideSuite(t *testing.T) {
	src := `suite "s" {
  it`
	result := Classify(Request{Source: src, Offset: len(src)})
	require.Equal(t, ContextInsideSuite, result.Context)
}

func TestClassifyInsideBench(t *testing.T) {
	src := `suite "s" {
  bench "b" {
    de`
	result := Classify(Request{Source: src, Offset: len(src)})
	require.Equal(t, ContextInsideBench, result.Context)
}

func TestClassifyEmbeddedCodeNoCompletions(t *testing.T) {
	src := `suite "s" {
  bench "b" {
    go: { x := suit`
	result := Classify(Request{Source: src, Offset: len(src)})
	require.Equal(t, ContextEmbeddedCode, result.Context)
}

func TestClassifyTriggerCharacterBypassesMinPrefix(t *testing.T) {
	src := `suite "s" {
  baseline:`
	result := Classify(Request{Source: src, Offset: len(src)})
	require.True(t, result.Trigger)
	require.Equal(t, ContextAfterColon, result.Context)
}

func TestClassifyShortPrefixWithoutTriggerIsNotFiltered(t *testing.T) {
	src := `s`
	result := Classify(Request{Source: src, Offset: len(src)})
	require.False(t, result.Trigger)
	require.True(t, len(result.Prefix) < minPrefixLength)
}

func TestClassifyUseStdModule(t *testing.T) {
	src := `use std::`
	result := Classify(Request{Source: src, Offset: len(src)})
	require.True(t, result.Trigger)
	require.Equal(t, ContextModuleDot, result.Context)
}

func TestClassifyAfterCharting(t *testing.T) {
	src := `charting.`
	result := Classify(Request{Source: src, Offset: len(src)})
	require.True(t, result.Trigger)
	require.Equal(t, ContextChartingCall, result.Context)
}
