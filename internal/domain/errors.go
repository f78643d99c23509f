package domain

import "errors"

var (
	// ErrNotApplicable marks a repository with nothing for a tool to analyze.
	ErrNotApplicable = errors.New("not applicable")
	// ErrUpstreamUnavailable wraps failures of the file or text-generation providers.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMalformedOutput marks generated text that fails its structural check.
	ErrMalformedOutput = errors.New("malformed provider output")
	// ErrToolInvocation wraps failures to run or parse an external tool.
	ErrToolInvocation = errors.New("tool invocation failed")
	ErrNotFound       = errors.New("not found")
	ErrReadOnly       = errors.New("provider is read-only")
	ErrUnsupported    = errors.New("not supported by provider")
)
