package engine

import (
	"fmt"

	"github.com/dd0wney/bgpsim/pkg/asgraph"
	"github.com/dd0wney/bgpsim/pkg/route"
)

// MissingPolicyError means an AS had no policy assigned when Run started.
// This is an orchestration bug, fatal to the trial.
type MissingPolicyError struct {
	ASN asgraph.ASN
}

func (e *MissingPolicyError) Error() string {
	return fmt.Sprintf("engine: AS %d has no assigned policy", e.ASN)
}

// UnexpectedLoopError means a route containing the owning AS's own ASN
// survived import. Policies reject loops unconditionally, so reaching this
// state indicates a propagation bug, fatal to the trial.
type UnexpectedLoopError struct {
	ASN   asgraph.ASN
	Route *route.Route
}

func (e *UnexpectedLoopError) Error() string {
	return fmt.Sprintf("engine: loop detected unexpectedly at AS %d: %s", e.ASN, e.Route)
}
