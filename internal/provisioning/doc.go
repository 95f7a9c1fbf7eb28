// Package provisioning runs plan, apply and destroy for a design session
// through OCI Resource Manager.
//
// One call walks a fixed pipeline of phases sharing a [Context]:
// package the synthesized bundle, create or update the session's stack,
// create the job, poll it to a terminal state, fetch and parse its log.
// The [Guard] admits at most one call per session; a second call fails
// fast with an in-progress error instead of queuing.
//
// Remote failures never escape [Orchestrator.Run]: they come back as a
// failed [Result] carrying the job id, captured log and parsed Terraform
// errors. Only precondition failures are returned as errors.
package provisioning
