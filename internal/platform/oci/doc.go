// Package oci is a thin client for the OCI Resource Manager REST API.
//
// Only the calls galley needs are covered: stack create/update/get, job
// create/get and job log retrieval. Requests are signed with the
// oci-go-sdk request signer, using either an API key from the OCI config
// file or a resource principal. The HTTP client is built lazily on first
// use; a failed initialisation is retried on the next call.
//
// [Manager] is the interface consumed by the provisioning layer and
// [MockClient] its hand-written test double.
package oci
