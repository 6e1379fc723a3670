// Package main provides chaosctl, the operator CLI for driving fault
// scenarios and collecting telemetry from a running faultmesh stack.
package main

func main() {
	Execute()
}
