// Package testing provides test utilities, builders, and fixtures shared by
// Galley's package tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - ArchitectureBuilder: Fluent builder for design graphs
//   - ResourceManagerFixture: Pre-configured mock Resource Manager for common job outcomes
//   - RecordingRunner: Command runner that records invocations instead of spawning processes
//
// Usage:
//
//	arch := testing.NewArchitectureBuilder().
//	    WithComponent("net", "vcn", "main", nil).
//	    WithComponent("web", "compute", "Web Server", nil).
//	    Build()
//
//	rm := testing.NewResourceManagerFixture().SucceedingPlan("1 to add, 0 to change, 0 to destroy")
package testing
