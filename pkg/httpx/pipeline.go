package httpx

import "net/http"

// Pipeline is an ordered middleware sequence ending in a terminal handler,
// bound to one named operation. Pipelines are assembled once at startup and
// immutable afterwards.
type Pipeline struct {
	Steps    []Middleware
	Terminal http.Handler
}

// Handler composes the pipeline into a mountable http.Handler.
func (p Pipeline) Handler() http.Handler {
	return Chain(p.Terminal, p.Steps...)
}

type overrideKind int

const (
	overrideNone overrideKind = iota
	overrideStep
	overridePipeline
)

// Override replaces an operation's built-in pipeline. The zero value keeps
// the fallback. An override, once supplied, supersedes the fallback entirely:
// partial overrides do not exist, so a caller who wants to keep rate limiting
// while swapping the terminal handler must supply the full pipeline.
type Override struct {
	kind     overrideKind
	step     http.Handler
	pipeline Pipeline
}

// ReplaceStep overrides an operation with a single terminal handler, wrapped
// into a one-element pipeline with no middleware in front of it.
func ReplaceStep(h http.Handler) Override {
	return Override{kind: overrideStep, step: h}
}

// ReplacePipeline overrides an operation with a complete pipeline.
func ReplacePipeline(p Pipeline) Override {
	return Override{kind: overridePipeline, pipeline: p}
}

// Resolve returns the pipeline this override selects given the fallback.
func (o Override) Resolve(fallback Pipeline) Pipeline {
	switch o.kind {
	case overrideStep:
		return Pipeline{Terminal: o.step}
	case overridePipeline:
		return o.pipeline
	default:
		return fallback
	}
}
