package hmmlib

import (
	"errors"
	"fmt"
)

// API error taxonomy. Structural mutations either take effect
// atomically or leave the model unchanged; every error below is
// recoverable at the call site with errors.Is.
var (
	ErrStateNotFound          = errors.New("state was not found in the model")
	ErrStateExists            = errors.New("tried to add a state already contained by the model")
	ErrTransitionNotFound     = errors.New("tried to use a transition not contained by the model")
	ErrTransitionExists       = errors.New("tried to add a transition already contained by the model")
	ErrTransitionLogic        = errors.New("transition is not allowed")
	ErrStateHasNoDistribution = errors.New("silent state has no distribution")
	ErrSymbolNotFound         = errors.New("symbol not found in distribution")
	ErrCompile                = errors.New("model cannot be compiled")
	ErrNotCompiled            = errors.New("model must be compiled first")
	ErrEmptySequence          = errors.New("empty observation sequence")
)

// A removed begin or end state reads as a missing state.
var (
	ErrNoBeginState = fmt.Errorf("no begin state was found, maybe it has been removed: %w", ErrStateNotFound)
	ErrNoEndState   = fmt.Errorf("no end state was found, maybe it has been removed: %w", ErrStateNotFound)
)
