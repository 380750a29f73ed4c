// Command see-federate runs a sample federate of the space exploration
// federation and inspects its trace files.
//
// Usage:
//
//	see-federate run --config federate.yaml [--console]
//	see-federate discover [--federation SEE] [--timeout 5s]
//	see-federate trace view [--direction out] [--category time] <trace.cbor>
//	see-federate trace stats <trace.cbor>
//
// The run command joins an in-process federation, publishes a lander
// PhysicalEntity and propagates it once per granted time step. Execution
// control follows the freeze, run and shutdown points named in the
// configuration, and ModeTransitionRequest interactions.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
