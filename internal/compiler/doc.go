// Package compiler turns CUE action-pack files into a linked action
// registry.
//
// An action pack declares data-driven atomics (operation + expect
// clause) and composites (ordered step lists) without writing Go:
//
//	pack: {
//	    atomics: {
//	        activate_device: {
//	            op: "post"
//	            args: {url: "${base_url}/devices/${device_id}/activate"}
//	            expect: {status: 200}
//	        }
//	        verify_device_active: {
//	            op: "get"
//	            args: {url: "${base_url}/devices/${device_id}"}
//	            expect: {json_equals: {field: "status", value: "active"}}
//	        }
//	    }
//	    composites: {
//	        perform_device_upgrade: {
//	            steps: ["create_device", "activate_device", "verify_device_active"]
//	        }
//	    }
//	}
//
// # Expect Clauses
//
// An atomic's expect clause compiles to exactly one verification
// predicate. Supported fields (conjoined when several are present):
//
//   - status: int or list of ints
//   - not_status: int
//   - count_over: int (observed count must exceed it)
//   - contains: {key, value} substring check
//   - flag: {key, value} boolean check
//   - json_equals: {field, value}
//   - json_has: field name
//
// An atomic without any expect field is rejected: unverified actions are
// malformed by definition.
//
// # Templates
//
// String arguments may reference run state with ${key}; values are
// resolved at invocation time from the action context, which is how
// scenario step arguments and entity IDs created by earlier steps reach
// later operations.
//
// # Linking
//
// Link resolves composite steps against the pack's own definitions plus
// an optional base registry; unresolved steps and cyclic composite
// references fail fast as composition errors before any test executes.
package compiler
